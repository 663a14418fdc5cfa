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

// Package migrate drives the migration: partition discovery and role
// classification, usage measurement, destination sizing, the checkpointed
// resume engine, and the mount and transfer orchestration.
package migrate

import (
	"context"

	"github.com/diskshift/diskshift/pkg/consts"
	"github.com/diskshift/diskshift/pkg/plan"
)

// Options configures one migration run.
type Options struct {
	// SourceDisk and DestDisk are whole-disk block device paths.
	SourceDisk string
	DestDisk   string

	// DryRun replaces destructive partitioning, the transfer and the
	// config writes with descriptions of intended actions.
	DryRun bool

	// ExtraExcludes are operator-supplied patterns merged into the fixed
	// transfer exclusion set. Accepted on full and resumed runs.
	ExtraExcludes []string

	// StateFile is where the plan is persisted after the destructive
	// partitioning step; the checkpoint resume loads.
	StateFile string

	// SourceRoot and DestRoot are the staging directories where the two
	// filesystem hierarchies are assembled.
	SourceRoot string
	DestRoot   string

	// VerifySamples bounds post-transfer spot verification; zero
	// disables it.
	VerifySamples int

	// PresentPlan, when set, renders the proposed plan to the operator
	// after sizing and before the destructive confirmation.
	PresentPlan func(p *plan.MigrationPlan)
}

func (opts *Options) applyDefaults() {
	if opts.StateFile == "" {
		opts.StateFile = consts.PlanFile
	}
	if opts.SourceRoot == "" {
		opts.SourceRoot = consts.SourceMountDir
	}
	if opts.DestRoot == "" {
		opts.DestRoot = consts.DestMountDir
	}
}

// Console is how the engine asks the operator questions. Inferred values
// are always presented as defaults, never applied silently.
type Console interface {
	// Confirm asks a yes/no question.
	Confirm(format string, args ...interface{}) bool

	// Ask prompts for a value, offering a default.
	Ask(prompt, defaultValue string) string
}

// Partition is one discovered source partition.
type Partition struct {
	// Device is the /dev path.
	Device string

	// Name is the kernel device name.
	Name string

	// Size is the partition size in bytes.
	Size uint64

	// FSType is the on-disk filesystem signature.
	FSType string
}

// System abstracts the host operations the engine performs, so tests can
// run the state machine against a fake host.
type System interface {
	// DiskSize returns the total capacity of a disk.
	DiskSize(disk string) (uint64, error)

	// Partitions enumerates child partitions of a disk in physical order.
	Partitions(disk string) ([]Partition, error)

	// ActiveMapperName returns the mapper name already holding the named
	// partition, empty if none.
	ActiveMapperName(partitionName string) (string, error)

	// MapperActive reports whether a mapping with the given name is open.
	MapperActive(name string) bool

	// OpenMapper unlocks device under name; alreadyActive reports that a
	// pre-existing mapping was reused.
	OpenMapper(ctx context.Context, device, name string) (alreadyActive bool, err error)

	// CloseMapper tears down an open mapping.
	CloseMapper(ctx context.Context, name string) error

	// FSType returns the filesystem signature of a device, used for the
	// inner filesystem of unlocked containers.
	FSType(device string) (string, error)

	// Mount mounts source at target, skipping already-mounted targets.
	Mount(source, target, fsType string) error

	// BindMount binds a directory at target, skipping mounted targets.
	BindMount(source, target string) error

	// Unmount unmounts target; not-mounted targets are not an error.
	Unmount(target string) error

	// UsedBytes returns bytes in use on the filesystem mounted at path.
	UsedBytes(path string) (uint64, error)

	// CheckRootHierarchy verifies path plausibly holds a root filesystem.
	CheckRootHierarchy(path string) error
}

// Partitioner is the partition/format execution backend. Apply is
// destructive and never runs on a resumed run.
type Partitioner interface {
	Apply(ctx context.Context, p *plan.MigrationPlan) error
	Describe(p *plan.MigrationPlan) []string
}

// Transferrer is the data transfer backend, invoked once per run against
// the fully assembled source and destination trees.
type Transferrer interface {
	Sync(ctx context.Context, src, dst string, extraExcludes []string) error
	CommandString(src, dst string, extraExcludes []string) string
}

// BootConfigurer regenerates destination boot metadata after transfer.
type BootConfigurer interface {
	Configure(ctx context.Context, p *plan.MigrationPlan, destRoot string) error
	Describe(p *plan.MigrationPlan, destRoot string) []string
}

// BootInstaller reinstalls the bootloader on the destination disk.
type BootInstaller interface {
	Install(ctx context.Context, destRoot, destDisk string) error
	Describe(destRoot, destDisk string) []string
}

// ManifestExporter captures package/service manifests onto the
// destination tree.
type ManifestExporter interface {
	Export(ctx context.Context, outDir string) error
}

// Backends groups the external collaborators of the engine.
type Backends struct {
	Partitioner Partitioner
	Transfer    Transferrer
	BootConfig  BootConfigurer
	BootLoader  BootInstaller

	// Manifests is optional; nil skips manifest capture.
	Manifests ManifestExporter
}
