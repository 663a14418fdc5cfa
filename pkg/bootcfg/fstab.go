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

// Package bootcfg regenerates destination boot metadata: the UUID-based
// mount table, the encrypted-container unlock table, and the bootloader.
package bootcfg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/diskshift/diskshift/pkg/plan"
)

// GenerateFstab renders the destination mount table. uuids maps each
// destination device to its filesystem UUID; mapperNames maps the source
// device of each encrypted record to its final boot-time mapper name.
// Records are emitted root first, then by mount point depth, so the mount
// order at boot matches the dependency order.
func GenerateFstab(p *plan.MigrationPlan, uuids map[string]string, mapperNames map[string]string) (string, error) {
	records := make([]*plan.PartitionRecord, len(p.Records))
	copy(records, p.Records)
	sort.SliceStable(records, func(i, j int) bool {
		return mountDepth(records[i].MountPoint) < mountDepth(records[j].MountPoint)
	})

	var b strings.Builder
	b.WriteString("# /etc/fstab generated by diskshift\n")
	b.WriteString("# <file system> <mount point> <type> <options> <dump> <pass>\n")

	for _, r := range records {
		line, err := fstabLine(r, uuids, mapperNames)
		if err != nil {
			return "", err
		}
		b.WriteString(line + "\n")
	}
	return b.String(), nil
}

func fstabLine(r *plan.PartitionRecord, uuids, mapperNames map[string]string) (string, error) {
	if r.Encrypted() {
		// Encrypted filesystems are addressed via their boot-time
		// mapper, never a raw UUID of the outer container.
		name, found := mapperNames[r.Device]
		if !found || name == "" {
			return "", fmt.Errorf("no mapper name resolved for encrypted partition %v", r.Device)
		}
		return fmt.Sprintf("/dev/mapper/%v %v %v defaults 0 2", name, r.MountPoint, r.EffectiveFSType()), nil
	}

	uuid, found := uuids[r.DestDevice]
	if !found || uuid == "" {
		return "", fmt.Errorf("no filesystem UUID for %v", r.DestDevice)
	}

	switch r.Role {
	case plan.RoleEFI:
		return fmt.Sprintf("UUID=%v %v vfat umask=0077 0 1", uuid, r.MountPoint), nil
	case plan.RoleSwap:
		return fmt.Sprintf("UUID=%v none swap sw 0 0", uuid), nil
	case plan.RoleRoot:
		return fmt.Sprintf("UUID=%v / %v errors=remount-ro 0 1", uuid, r.EffectiveFSType()), nil
	default:
		return fmt.Sprintf("UUID=%v %v %v defaults 0 2", uuid, r.MountPoint, r.EffectiveFSType()), nil
	}
}

func mountDepth(mountPoint string) int {
	if mountPoint == "/" {
		return 0
	}
	if mountPoint == plan.MountPointSwap {
		return 1
	}
	return 1 + strings.Count(strings.TrimSuffix(mountPoint, "/"), "/")
}
