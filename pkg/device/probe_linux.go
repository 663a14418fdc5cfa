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

package device

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	losetup "gopkg.in/freddierice/go-losetup.v1"
	"k8s.io/klog/v2"
)

// ErrNotBlockDevice denotes that the given path is not a block device.
var ErrNotBlockDevice = errors.New("not a block device")

// Probe probes a single block device.
func Probe(path string) (Device, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return Device{}, fmt.Errorf("unable to resolve %v; %w", path, err)
	}

	fi, err := os.Stat(resolved)
	if err != nil {
		return Device{}, err
	}
	if fi.Mode()&os.ModeDevice == 0 || fi.Mode()&os.ModeCharDevice != 0 {
		return Device{}, fmt.Errorf("%v: %w", path, ErrNotBlockDevice)
	}

	name := filepath.Base(resolved)
	return probeByName(name)
}

func probeByName(name string) (Device, error) {
	device := Device{Name: name}

	majorMinor, err := getMajorMinor(name)
	if err != nil {
		return Device{}, err
	}
	if majorMinor == "" {
		return Device{}, fmt.Errorf("device %v not found in /sys/class/block", name)
	}
	device.MajorMinor = majorMinor

	if device.Size, err = getSize(name); err != nil {
		return Device{}, err
	}
	if device.Partition, err = getPartitionNumber(name); err != nil {
		return Device{}, err
	}
	if device.Holders, err = getHolders(name); err != nil {
		return Device{}, err
	}

	// Udev data may be missing for freshly created devices; callers
	// requiring signatures must settle udev first.
	device.UDevData, err = ReadRunUdevDataByMajorMinor(majorMinor)
	if err != nil {
		klog.V(5).Infof("no udev data for device %v; %v", name, err)
		device.UDevData = map[string]string{}
	}

	return device, nil
}

// ProbeDisk probes a whole disk and its partitions in physical order.
func ProbeDisk(path string) (*Disk, error) {
	dev, err := Probe(path)
	if err != nil {
		return nil, err
	}
	if dev.Partition > 0 {
		return nil, fmt.Errorf("%v is a partition, not a disk", path)
	}

	names, err := getPartitionNames(dev.Name)
	if err != nil {
		return nil, err
	}

	partitions := []Device{}
	for _, name := range names {
		partition, err := probeByName(name)
		if err != nil {
			return nil, fmt.Errorf("unable to probe partition %v; %w", name, err)
		}
		partitions = append(partitions, partition)
	}
	sortByPartitionNumber(partitions)

	return &Disk{Device: dev, Partitions: partitions}, nil
}

// ActiveMapperName returns the device-mapper name holding the named
// partition, if any. An empty result means no mapping is open.
func ActiveMapperName(partitionName string) (string, error) {
	holders, err := getHolders(partitionName)
	if err != nil {
		return "", err
	}
	for _, holder := range holders {
		dmName, err := getDMName(holder)
		if err != nil {
			return "", err
		}
		if dmName != "" {
			return dmName, nil
		}
	}
	return "", nil
}

// AttachImage attaches a disk image file as a loop device and returns the
// loop device path with a detach function.
func AttachImage(filename string) (string, func() error, error) {
	loopDevice, err := losetup.Attach(filename, 0, false)
	if err != nil {
		return "", nil, fmt.Errorf("unable to attach %v as loop device; %w", filename, err)
	}
	klog.V(3).Infof("attached %v as %v", filename, loopDevice.Path())
	return loopDevice.Path(), loopDevice.Detach, nil
}
