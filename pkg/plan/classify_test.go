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

package plan

import "testing"

func TestSuggestRole(t *testing.T) {
	testCases := []struct {
		fsType       string
		rootAssigned bool
		expectedRole Role
	}{
		{"vfat", false, RoleEFI},
		{"vfat", true, RoleEFI},
		{"FAT32", false, RoleEFI},
		{"swap", false, RoleSwap},
		{"swap", true, RoleSwap},
		{"crypto_LUKS", false, RoleHome},
		{"crypto_LUKS", true, RoleHome},
		{"ext4", false, RoleRoot},
		{"ext4", true, RoleHome},
		{"xfs", false, RoleRoot},
		{"btrfs", true, RoleHome},
		{"", false, RoleRoot},
		{"", true, RoleHome},
	}

	for i, testCase := range testCases {
		role := SuggestRole(testCase.fsType, testCase.rootAssigned)
		if role != testCase.expectedRole {
			t.Fatalf("case %v: fsType %v rootAssigned %v: expected %v, got %v",
				i+1, testCase.fsType, testCase.rootAssigned, testCase.expectedRole, role)
		}
	}
}

func TestSuggestRoleSingleRoot(t *testing.T) {
	// Classifying a disk in physical order must yield exactly one root.
	signatures := []string{"vfat", "ext4", "ext4", "crypto_LUKS", "swap"}

	var roots int
	rootAssigned := false
	for _, fsType := range signatures {
		role := SuggestRole(fsType, rootAssigned)
		if role == RoleRoot {
			roots++
			rootAssigned = true
		}
	}
	if roots != 1 {
		t.Fatalf("expected exactly one root, got %v", roots)
	}
}

func TestDefaultMountPoint(t *testing.T) {
	testCases := []struct {
		role     Role
		expected string
	}{
		{RoleRoot, "/"},
		{RoleEFI, "/boot/efi"},
		{RoleHome, "/home"},
		{RoleSwap, MountPointSwap},
		{RoleOther, "/srv"},
	}

	for _, testCase := range testCases {
		if result := DefaultMountPoint(testCase.role); result != testCase.expected {
			t.Fatalf("role %v: expected %v, got %v", testCase.role, testCase.expected, result)
		}
	}
}

func TestValidate(t *testing.T) {
	validPlan := func() *MigrationPlan {
		return &MigrationPlan{
			SourceDisk: "/dev/sda",
			DestDisk:   "/dev/sdb",
			Records: []*PartitionRecord{
				{Device: "/dev/sda1", Role: RoleEFI, FSType: "vfat", MountPoint: "/boot/efi", SourceSize: 512 << 20, UsedBytes: 10 << 20},
				{Device: "/dev/sda2", Role: RoleRoot, FSType: "ext4", MountPoint: "/", SourceSize: 100 << 30, UsedBytes: 30 << 30},
				{Device: "/dev/sda3", Role: RoleHome, FSType: "crypto_LUKS", InnerFSType: "ext4", MountPoint: "/home", MapperName: "sda3_crypt", SourceSize: 200 << 30, UsedBytes: 50 << 30},
				{Device: "/dev/sda4", Role: RoleSwap, FSType: "swap", MountPoint: MountPointSwap, SourceSize: 8 << 30},
			},
		}
	}

	if err := validPlan().Validate(); err != nil {
		t.Fatalf("valid plan rejected: %v", err)
	}

	p := validPlan()
	p.Records[1].Role = RoleHome // no root
	if err := p.Validate(); err == nil {
		t.Fatal("plan without root accepted")
	}

	p = validPlan()
	p.Records[1].Role = RoleRoot
	p.Records[2].Role = RoleRoot // two roots
	p.Records[2].MapperName = "sda3_crypt"
	if err := p.Validate(); err == nil {
		t.Fatal("plan with two roots accepted")
	}

	p = validPlan()
	p.Records[2].MapperName = "" // encrypted without mapper
	if err := p.Validate(); err == nil {
		t.Fatal("encrypted partition without mapper name accepted")
	}

	p = validPlan()
	p.Records[1].UsedBytes = p.Records[1].SourceSize + 1
	if err := p.Validate(); err == nil {
		t.Fatal("used bytes above source size accepted")
	}
}

func TestRefreshEncryptedHome(t *testing.T) {
	p := &MigrationPlan{
		Records: []*PartitionRecord{
			{Device: "/dev/sda2", Role: RoleRoot, FSType: "ext4"},
			{Device: "/dev/sda3", Role: RoleHome, FSType: "crypto_LUKS", MapperName: "sda3_crypt"},
		},
	}
	p.RefreshEncryptedHome()
	if !p.EncryptedHome {
		t.Fatal("encrypted home not derived")
	}

	p.Records[1].FSType = "ext4"
	p.RefreshEncryptedHome()
	if p.EncryptedHome {
		t.Fatal("encrypted home flag not cleared")
	}
}
