// This file is part of diskshift
// Copyright (c) 2026 The diskshift authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package migrate

import (
	"context"

	"github.com/diskshift/diskshift/pkg/device"
	"github.com/diskshift/diskshift/pkg/luks"
	"github.com/diskshift/diskshift/pkg/mount"
)

// LocalSystem implements System against the running host.
type LocalSystem struct{}

func (LocalSystem) DiskSize(disk string) (uint64, error) {
	probed, err := device.ProbeDisk(disk)
	if err != nil {
		return 0, err
	}
	return probed.Size, nil
}

func (LocalSystem) Partitions(disk string) ([]Partition, error) {
	probed, err := device.ProbeDisk(disk)
	if err != nil {
		return nil, err
	}
	var partitions []Partition
	for _, child := range probed.Partitions {
		partitions = append(partitions, Partition{
			Device: child.Path(),
			Name:   child.Name,
			Size:   child.Size,
			FSType: child.FSType(),
		})
	}
	return partitions, nil
}

func (LocalSystem) ActiveMapperName(partitionName string) (string, error) {
	return device.ActiveMapperName(partitionName)
}

func (LocalSystem) MapperActive(name string) bool {
	return luks.Active(name)
}

func (LocalSystem) OpenMapper(ctx context.Context, devicePath, name string) (bool, error) {
	return luks.Open(ctx, devicePath, name)
}

func (LocalSystem) CloseMapper(ctx context.Context, name string) error {
	return luks.Close(ctx, name)
}

func (LocalSystem) FSType(devicePath string) (string, error) {
	probed, err := device.Probe(devicePath)
	if err != nil {
		return "", err
	}
	return probed.FSType(), nil
}

func (LocalSystem) Mount(source, target, fsType string) error {
	return mount.SafeMount(source, target, fsType)
}

func (LocalSystem) BindMount(source, target string) error {
	return mount.SafeBindMount(source, target)
}

func (LocalSystem) Unmount(target string) error {
	return mount.SafeUnmount(target)
}

func (LocalSystem) UsedBytes(path string) (uint64, error) {
	return mount.UsedBytes(path)
}

func (LocalSystem) CheckRootHierarchy(path string) error {
	return mount.CheckRootHierarchy(path)
}
