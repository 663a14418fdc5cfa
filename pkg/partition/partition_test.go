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

package partition

import (
	"reflect"
	"testing"

	"github.com/diskshift/diskshift/pkg/plan"
)

func TestPath(t *testing.T) {
	testCases := []struct {
		disk     string
		number   int
		expected string
	}{
		{"/dev/sda", 1, "/dev/sda1"},
		{"/dev/sdb", 3, "/dev/sdb3"},
		{"/dev/vda", 2, "/dev/vda2"},
		{"/dev/nvme0n1", 1, "/dev/nvme0n1p1"},
		{"/dev/mmcblk0", 2, "/dev/mmcblk0p2"},
		{"/dev/loop7", 1, "/dev/loop7p1"},
	}
	for _, testCase := range testCases {
		if result := Path(testCase.disk, testCase.number); result != testCase.expected {
			t.Fatalf("disk %v number %v: expected %v, got %v",
				testCase.disk, testCase.number, testCase.expected, result)
		}
	}
}

func TestTypeCode(t *testing.T) {
	testCases := []struct {
		role     plan.Role
		expected string
	}{
		{plan.RoleEFI, "ef00"},
		{plan.RoleSwap, "8200"},
		{plan.RoleRoot, "8300"},
		{plan.RoleHome, "8300"},
		{plan.RoleOther, "8300"},
	}
	for _, testCase := range testCases {
		if result := TypeCode(testCase.role); result != testCase.expected {
			t.Fatalf("role %v: expected %v, got %v", testCase.role, testCase.expected, result)
		}
	}
}

func TestMkfsCommand(t *testing.T) {
	testCases := []struct {
		record   plan.PartitionRecord
		target   string
		expected []string
	}{
		{
			record:   plan.PartitionRecord{Role: plan.RoleEFI, FSType: "vfat"},
			target:   "/dev/sdb1",
			expected: []string{"mkfs.vfat", "-F", "32", "/dev/sdb1"},
		},
		{
			record:   plan.PartitionRecord{Role: plan.RoleSwap, FSType: "swap"},
			target:   "/dev/sdb4",
			expected: []string{"mkswap", "/dev/sdb4"},
		},
		{
			record:   plan.PartitionRecord{Role: plan.RoleRoot, FSType: "ext4"},
			target:   "/dev/sdb2",
			expected: []string{"mkfs.ext4", "-F", "-q", "/dev/sdb2"},
		},
		{
			record:   plan.PartitionRecord{Role: plan.RoleHome, FSType: "xfs"},
			target:   "/dev/sdb3",
			expected: []string{"mkfs.xfs", "-f", "/dev/sdb3"},
		},
		{
			// Encrypted container formats its inner filesystem on the mapper.
			record:   plan.PartitionRecord{Role: plan.RoleHome, FSType: plan.FSTypeLUKS, InnerFSType: "ext4", MapperName: "sda3_crypt"},
			target:   "/dev/mapper/sda3_crypt-dst",
			expected: []string{"mkfs.ext4", "-F", "-q", "/dev/mapper/sda3_crypt-dst"},
		},
		{
			// Unknown signatures land on ext4.
			record:   plan.PartitionRecord{Role: plan.RoleOther, FSType: "unknown"},
			target:   "/dev/sdb5",
			expected: []string{"mkfs.ext4", "-F", "-q", "/dev/sdb5"},
		},
	}

	for i, testCase := range testCases {
		record := testCase.record
		result := mkfsCommand(&record, testCase.target)
		if !reflect.DeepEqual(result, testCase.expected) {
			t.Fatalf("case %v: expected %v, got %v", i+1, testCase.expected, result)
		}
	}
}
