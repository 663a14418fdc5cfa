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

// Package device probes block devices from /sys and /run/udev/data.
package device

import "sort"

// Device denotes a block device.
type Device struct {
	// Name is the device name without /dev prefix.
	Name string

	// MajorMinor is major:minor of this device.
	MajorMinor string

	// Size is total size of this device in bytes.
	Size uint64

	// Partition is the partition number; zero for a whole disk.
	Partition int

	// Holders is the device names holding this device e.g. an open
	// dm-crypt mapping.
	Holders []string

	// UDevData is the udev database properties of this device.
	UDevData map[string]string
}

// Path returns /dev notation of this device.
func (d Device) Path() string {
	return "/dev/" + d.Name
}

// FSType returns filesystem signature found on this device.
func (d Device) FSType() string {
	return d.UDevData["ID_FS_TYPE"]
}

// FSUUID returns filesystem UUID of this device.
func (d Device) FSUUID() string {
	return d.UDevData["ID_FS_UUID"]
}

// PartTableType returns partition table type of this device.
func (d Device) PartTableType() string {
	return d.UDevData["ID_PART_TABLE_TYPE"]
}

// Disk denotes a whole disk and its partitions in physical order.
type Disk struct {
	Device

	// Partitions is child partitions, ordered by partition number.
	Partitions []Device
}

func sortByPartitionNumber(devices []Device) {
	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].Partition < devices[j].Partition
	})
}
