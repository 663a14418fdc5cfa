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

// Package plan holds the migration plan model, the role classifier, the
// destination sizing arithmetic and the plan state persistence.
package plan

import (
	"errors"
	"fmt"
)

// Role denotes the semantic purpose of a partition.
type Role string

// Partition roles.
const (
	RoleEFI   Role = "efi"
	RoleRoot  Role = "root"
	RoleHome  Role = "home"
	RoleSwap  Role = "swap"
	RoleOther Role = "other"
)

// Filesystem signatures with special meaning to the classifier.
const (
	FSTypeLUKS = "crypto_LUKS"
	FSTypeSwap = "swap"
)

// MountPointSwap is the sentinel mount point of swap partitions.
const MountPointSwap = "[SWAP]"

// ParseRole converts a string to a Role.
func ParseRole(value string) (Role, error) {
	switch role := Role(value); role {
	case RoleEFI, RoleRoot, RoleHome, RoleSwap, RoleOther:
		return role, nil
	default:
		return "", fmt.Errorf("unknown role %v", value)
	}
}

// PartitionRecord denotes one source partition and its planned destination.
type PartitionRecord struct {
	// Device is the source block device path; the identity key.
	Device string `json:"device"`

	Role Role `json:"role"`

	// FSType is the raw on-disk filesystem signature.
	FSType string `json:"fsType"`

	// InnerFSType is the filesystem found inside an encrypted container
	// once unlocked; empty otherwise.
	InnerFSType string `json:"innerFSType,omitempty"`

	// MountPoint is the target path under the root hierarchy; "/" for
	// root, MountPointSwap for swap.
	MountPoint string `json:"mountPoint"`

	// MapperName is the logical name bound to the unlocked encrypted
	// container; empty if not encrypted.
	MapperName string `json:"mapperName,omitempty"`

	SourceSize uint64 `json:"sourceSizeBytes"`
	UsedBytes  uint64 `json:"usedBytes"`
	DestSize   uint64 `json:"destSizeBytes"`

	// DestDevice is assigned once destination partitioning executes.
	DestDevice string `json:"destDevice,omitempty"`

	// OpenedSourceMapper and OpenedDestMapper record whether this run,
	// not some earlier process, opened the mappings. Cleanup closes only
	// mappings owned by this run. Never persisted.
	OpenedSourceMapper bool `json:"-"`
	OpenedDestMapper   bool `json:"-"`
}

// Encrypted reports whether the source partition is an encrypted container.
func (r *PartitionRecord) Encrypted() bool {
	return r.FSType == FSTypeLUKS
}

// EffectiveFSType returns the filesystem holding data: the inner type for
// encrypted containers, the raw signature otherwise.
func (r *PartitionRecord) EffectiveFSType() string {
	if r.Encrypted() && r.InnerFSType != "" {
		return r.InnerFSType
	}
	return r.FSType
}

// Sizable reports whether the destination size is usage-derived. EFI is
// fixed and swap copies its source size.
func (r *PartitionRecord) Sizable() bool {
	return r.Role != RoleEFI && r.Role != RoleSwap
}

// SourcePath returns the device to mount on the source side; the mapper
// path for encrypted containers.
func (r *PartitionRecord) SourcePath() string {
	if r.Encrypted() {
		return "/dev/mapper/" + r.MapperName
	}
	return r.Device
}

// DestMapperName returns the mapper name used for the destination copy of
// an encrypted container while both disks are attached.
func (r *PartitionRecord) DestMapperName() string {
	return r.MapperName + "-dst"
}

// DestPath returns the device to mount on the destination side.
func (r *PartitionRecord) DestPath() string {
	if r.Encrypted() {
		return "/dev/mapper/" + r.DestMapperName()
	}
	return r.DestDevice
}

// MigrationPlan is the ordered collection of partition records for one
// source disk to destination disk migration.
type MigrationPlan struct {
	SourceDisk    string             `json:"sourceDisk"`
	DestDisk      string             `json:"destDisk"`
	EncryptedHome bool               `json:"hasEncryptedHome"`
	Records       []*PartitionRecord `json:"partitions"`
}

// Root returns the root partition record, if assigned.
func (p *MigrationPlan) Root() *PartitionRecord {
	for _, r := range p.Records {
		if r.Role == RoleRoot {
			return r
		}
	}
	return nil
}

// RefreshEncryptedHome recomputes the derived encrypted-home flag.
func (p *MigrationPlan) RefreshEncryptedHome() {
	p.EncryptedHome = false
	for _, r := range p.Records {
		if r.Role == RoleHome && r.Encrypted() {
			p.EncryptedHome = true
			return
		}
	}
}

// Validate enforces the plan invariants before any destructive step.
func (p *MigrationPlan) Validate() error {
	if p.SourceDisk == "" || p.DestDisk == "" {
		return errors.New("source and destination disks must be set")
	}
	if len(p.Records) == 0 {
		return errors.New("no partitions in plan")
	}

	var roots, efis int
	for _, r := range p.Records {
		switch r.Role {
		case RoleRoot:
			roots++
		case RoleEFI:
			efis++
		case RoleSwap:
			if r.MountPoint != MountPointSwap {
				return fmt.Errorf("swap partition %v must use mount point %v", r.Device, MountPointSwap)
			}
		}
		if r.Encrypted() && r.MapperName == "" {
			return fmt.Errorf("encrypted partition %v has no mapper name", r.Device)
		}
		if r.UsedBytes > r.SourceSize {
			return fmt.Errorf("partition %v: used bytes %v exceed size %v", r.Device, r.UsedBytes, r.SourceSize)
		}
	}
	if roots != 1 {
		return fmt.Errorf("exactly one root partition required, found %v", roots)
	}
	if efis > 1 {
		return fmt.Errorf("at most one EFI partition allowed, found %v", efis)
	}
	return nil
}
