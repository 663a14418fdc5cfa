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

// Package partition creates partition table entries and filesystems on the
// destination disk from a planned layout.
package partition

import (
	"fmt"

	"github.com/diskshift/diskshift/pkg/plan"
)

// Path returns the partition device path for the given disk and 1-based
// partition number. Disks whose name ends in a digit (nvme0n1, mmcblk0,
// loop0) take a "p" separator.
func Path(disk string, number int) string {
	if disk != "" {
		if last := disk[len(disk)-1]; last >= '0' && last <= '9' {
			return fmt.Sprintf("%vp%d", disk, number)
		}
	}
	return fmt.Sprintf("%v%d", disk, number)
}

// TypeCode returns the GPT partition type code sgdisk expects for a role.
func TypeCode(role plan.Role) string {
	switch role {
	case plan.RoleEFI:
		return "ef00"
	case plan.RoleSwap:
		return "8200"
	default:
		return "8300"
	}
}

// mkfsCommand returns the formatting command line for a record's
// destination filesystem. target is the device to format, which is the
// mapper path for encrypted containers.
func mkfsCommand(r *plan.PartitionRecord, target string) []string {
	if r.Role == plan.RoleSwap {
		return []string{"mkswap", target}
	}
	if r.Role == plan.RoleEFI {
		return []string{"mkfs.vfat", "-F", "32", target}
	}

	switch fsType := r.EffectiveFSType(); fsType {
	case "xfs":
		return []string{"mkfs.xfs", "-f", target}
	case "btrfs":
		return []string{"mkfs.btrfs", "-f", target}
	case "ext2", "ext3", "ext4":
		return []string{"mkfs." + fsType, "-F", "-q", target}
	default:
		// Unknown or missing signatures land on ext4.
		return []string{"mkfs.ext4", "-F", "-q", target}
	}
}
