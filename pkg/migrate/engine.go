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
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/diskshift/diskshift/pkg/consts"
	"github.com/diskshift/diskshift/pkg/luks"
	"github.com/diskshift/diskshift/pkg/plan"
	"github.com/diskshift/diskshift/pkg/transfer"
	"github.com/diskshift/diskshift/pkg/utils"
	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"
)

// ErrAborted denotes that the operator declined to proceed.
var ErrAborted = errors.New("aborted by operator")

// Engine runs the migration as a sequence of phases with one durable
// checkpoint: the plan is persisted right after destination partitioning
// succeeds, and a resumed run re-enters at the transfer phase.
type Engine struct {
	opts     Options
	system   System
	console  Console
	backends Backends

	plan *plan.MigrationPlan

	// mounted holds unmount targets in mount order, including bind
	// mounts. Cleanup unmounts in reverse.
	mounted []string
}

// New creates an engine over the given host and collaborators.
func New(opts Options, system System, console Console, backends Backends) *Engine {
	opts.applyDefaults()
	return &Engine{
		opts:     opts,
		system:   system,
		console:  console,
		backends: backends,
	}
}

// Plan builds the migration plan: discovery, role classification, source
// unlocking, usage measurement and destination sizing. Source filesystems
// remain mounted afterwards for the transfer phase; Cleanup releases them.
func (e *Engine) Plan(ctx context.Context) (*plan.MigrationPlan, error) {
	capacity, err := e.system.DiskSize(e.opts.DestDisk)
	if err != nil {
		return nil, err
	}

	partitions, err := e.system.Partitions(e.opts.SourceDisk)
	if err != nil {
		return nil, err
	}
	if len(partitions) == 0 {
		return nil, fmt.Errorf("no partitions found on %v", e.opts.SourceDisk)
	}

	p := &plan.MigrationPlan{
		SourceDisk: e.opts.SourceDisk,
		DestDisk:   e.opts.DestDisk,
	}

	rootAssigned := false
	for _, partition := range partitions {
		record := &plan.PartitionRecord{
			Device:     partition.Device,
			FSType:     partition.FSType,
			SourceSize: partition.Size,
		}

		role, err := e.askRole(partition, plan.SuggestRole(partition.FSType, rootAssigned))
		if err != nil {
			return nil, err
		}
		record.Role = role
		if role == plan.RoleRoot {
			rootAssigned = true
		}

		if role == plan.RoleSwap {
			record.MountPoint = plan.MountPointSwap
		} else {
			record.MountPoint = e.console.Ask(
				fmt.Sprintf("Mount point for %v", partition.Device),
				plan.DefaultMountPoint(role),
			)
		}

		if record.Encrypted() {
			if err := e.unlockSource(ctx, partition, record); err != nil {
				return nil, err
			}
		}

		p.Records = append(p.Records, record)
	}

	p.RefreshEncryptedHome()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e.plan = p

	if err := e.mountTree(p, e.opts.SourceRoot, false); err != nil {
		return nil, err
	}
	if err := e.system.CheckRootHierarchy(e.opts.SourceRoot); err != nil {
		return nil, err
	}
	if err := e.measure(p); err != nil {
		return nil, err
	}

	if err := e.size(p, capacity); err != nil {
		return nil, err
	}
	return p, nil
}

// Run executes a full migration. The plan is persisted immediately after
// the destructive partitioning step succeeds; any later failure leaves a
// checkpoint a resumed run picks up.
func (e *Engine) Run(ctx context.Context) error {
	p, err := e.Plan(ctx)
	if err != nil {
		return err
	}

	if e.opts.PresentPlan != nil {
		e.opts.PresentPlan(p)
	}

	if e.opts.DryRun {
		e.describeRun(p)
		return nil
	}

	if !e.console.Confirm("Partitioning will ERASE all data on %v. Continue?", e.opts.DestDisk) {
		return ErrAborted
	}

	if err := e.backends.Partitioner.Apply(ctx, p); err != nil {
		return err
	}
	if err := plan.Save(p, e.opts.StateFile); err != nil {
		return fmt.Errorf("destination is partitioned but the plan could not be saved; %w", err)
	}
	klog.V(2).Infof("plan checkpointed to %v", e.opts.StateFile)

	return e.transferAndConfigure(ctx)
}

// Resume re-enters a checkpointed migration at the transfer phase. The
// destination layout is taken from the saved plan; partitioning never
// runs again.
func (e *Engine) Resume(ctx context.Context) error {
	p, err := plan.Load(e.opts.StateFile)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("saved plan is not usable; %w", err)
	}
	e.plan = p
	e.opts.SourceDisk = p.SourceDisk
	e.opts.DestDisk = p.DestDisk

	if e.opts.DryRun {
		e.describeResume(p)
		return nil
	}

	if err := e.reopenMappers(ctx, p); err != nil {
		return err
	}
	if err := e.mountTree(p, e.opts.SourceRoot, false); err != nil {
		return err
	}
	if err := e.system.CheckRootHierarchy(e.opts.SourceRoot); err != nil {
		return err
	}
	return e.transferAndConfigure(ctx)
}

// Cleanup releases everything this run acquired: bind mounts and both
// filesystem trees in reverse mount order, then encrypted mappings this
// run opened. Mappings that were already open when the run started are
// left alone.
func (e *Engine) Cleanup(ctx context.Context) error {
	var errs error
	for i := len(e.mounted) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, e.system.Unmount(e.mounted[i]))
	}
	e.mounted = nil

	if e.plan != nil {
		for _, record := range e.plan.Records {
			if record.OpenedDestMapper {
				errs = multierr.Append(errs, e.system.CloseMapper(ctx, record.DestMapperName()))
				record.OpenedDestMapper = false
			}
			if record.OpenedSourceMapper {
				errs = multierr.Append(errs, e.system.CloseMapper(ctx, record.MapperName))
				record.OpenedSourceMapper = false
			}
		}
	}
	return errs
}

func (e *Engine) askRole(partition Partition, suggested plan.Role) (plan.Role, error) {
	prompt := fmt.Sprintf("Role for %v (%v, %v) [efi/root/home/swap/other]",
		partition.Device, partition.FSType, humanize.IBytes(partition.Size))
	for i := 0; i < 3; i++ {
		reply := e.console.Ask(prompt, string(suggested))
		role, err := plan.ParseRole(reply)
		if err == nil {
			return role, nil
		}
		utils.Eprintf(false, false, "%v\n", err)
	}
	return "", fmt.Errorf("no valid role given for %v", partition.Device)
}

// unlockSource makes the encrypted container readable, reusing an active
// mapping when one exists and remembering ownership when this run opens
// one.
func (e *Engine) unlockSource(ctx context.Context, partition Partition, record *plan.PartitionRecord) error {
	existing, err := e.system.ActiveMapperName(partition.Name)
	if err != nil {
		return err
	}
	if existing != "" {
		record.MapperName = existing
		klog.V(3).Infof("reusing active mapping %v for %v", existing, partition.Device)
	} else {
		name := partition.Name + "_crypt"
		alreadyActive, err := e.system.OpenMapper(ctx, partition.Device, name)
		if err != nil {
			return err
		}
		record.MapperName = name
		record.OpenedSourceMapper = !alreadyActive
	}

	innerFSType, err := e.system.FSType(luks.MapperPath(record.MapperName))
	if err != nil {
		return fmt.Errorf("unable to probe filesystem inside %v; %w", record.Device, err)
	}
	record.InnerFSType = innerFSType
	return nil
}

func (e *Engine) measure(p *plan.MigrationPlan) error {
	for _, record := range p.Records {
		if record.Role == plan.RoleSwap {
			continue
		}
		used, err := e.system.UsedBytes(filepath.Join(e.opts.SourceRoot, record.MountPoint))
		if err != nil {
			return fmt.Errorf("unable to measure usage of %v; %w", record.Device, err)
		}
		record.UsedBytes = used
	}
	return nil
}

// size computes destination sizes, checks feasibility, lets the operator
// override individual sizes and re-validates the overrides against the
// headroom floor.
func (e *Engine) size(p *plan.MigrationPlan, capacity uint64) error {
	if err := plan.ComputeSizes(p.Records, capacity); err != nil {
		return err
	}

	available := plan.Available(p.Records, capacity)
	totalUsed := plan.TotalUsed(p.Records)
	if !plan.Feasible(available, totalUsed) {
		if !e.console.Confirm(
			"destination holds %v for %v of data plus headroom; transfer may run out of space. Continue?",
			humanize.IBytes(available), humanize.IBytes(totalUsed)) {
			return ErrAborted
		}
	}

	for _, record := range p.Records {
		if !record.Sizable() {
			continue
		}
		prompt := fmt.Sprintf("Destination size in bytes for %v (%v used, proposed %v)",
			record.Device, humanize.IBytes(record.UsedBytes), humanize.IBytes(record.DestSize))
		reply := e.console.Ask(prompt, strconv.FormatUint(record.DestSize, 10))
		value, err := humanize.ParseBytes(reply)
		if err != nil {
			utils.Eprintf(false, false, "ignoring unparsable size %q for %v\n", reply, record.Device)
			continue
		}
		record.DestSize = value
	}

	for _, record := range plan.BelowFloor(p.Records) {
		floor := plan.HeadroomFloor(record.UsedBytes)
		if !e.console.Confirm("size for %v is below the %v safety floor; keep it anyway?",
			record.Device, humanize.IBytes(floor)) {
			record.DestSize = floor
		}
	}

	added := plan.AllocateRemainder(p.Records, capacity)
	if added > 0 {
		klog.V(3).Infof("allocated remaining %v to the last partition", humanize.IBytes(added))
	}
	return nil
}

func (e *Engine) transferAndConfigure(ctx context.Context) error {
	p := e.plan
	if err := e.mountTree(p, e.opts.DestRoot, true); err != nil {
		return err
	}

	if err := e.backends.Transfer.Sync(ctx, e.opts.SourceRoot, e.opts.DestRoot, e.opts.ExtraExcludes); err != nil {
		return fmt.Errorf("transfer failed; fix the cause and run `%v resume`: %w", consts.AppName, err)
	}
	if err := transfer.RecreateSkeleton(e.opts.DestRoot); err != nil {
		return err
	}

	if e.opts.VerifySamples > 0 {
		mismatches, err := transfer.Verify(e.opts.SourceRoot, e.opts.DestRoot, e.opts.VerifySamples)
		if err != nil {
			return err
		}
		if len(mismatches) > 0 {
			for _, mismatch := range mismatches {
				utils.Eprintf(false, true, "verification mismatch: %v: %v\n", mismatch.Path, mismatch.Reason)
			}
			return fmt.Errorf("%v of %v sampled files differ after transfer", len(mismatches), e.opts.VerifySamples)
		}
	}

	if e.backends.Manifests != nil {
		outDir := filepath.Join(e.opts.DestRoot, "var/backups", consts.AppName)
		if err := e.backends.Manifests.Export(ctx, outDir); err != nil {
			utils.Eprintf(false, false, "manifest capture failed: %v\n", err)
		}
	}

	if err := e.backends.BootConfig.Configure(ctx, p, e.opts.DestRoot); err != nil {
		return err
	}

	for _, dir := range []string{"/dev", "/proc", "/sys"} {
		target := filepath.Join(e.opts.DestRoot, dir)
		if err := e.system.BindMount(dir, target); err != nil {
			return err
		}
		e.mounted = append(e.mounted, target)
	}
	if err := e.backends.BootLoader.Install(ctx, e.opts.DestRoot, e.opts.DestDisk); err != nil {
		return err
	}

	fmt.Printf("Migration from %v to %v complete\n", e.opts.SourceDisk, e.opts.DestDisk)
	return nil
}

// reopenMappers restores the encrypted mappings a resumed run needs,
// tracking ownership exactly like a full run does.
func (e *Engine) reopenMappers(ctx context.Context, p *plan.MigrationPlan) error {
	for _, record := range p.Records {
		if !record.Encrypted() {
			continue
		}

		if !e.system.MapperActive(record.MapperName) {
			alreadyActive, err := e.system.OpenMapper(ctx, record.Device, record.MapperName)
			if err != nil {
				return err
			}
			record.OpenedSourceMapper = !alreadyActive
		}

		if record.DestDevice == "" {
			return fmt.Errorf("saved plan has no destination device for %v", record.Device)
		}
		if !e.system.MapperActive(record.DestMapperName()) {
			alreadyActive, err := e.system.OpenMapper(ctx, record.DestDevice, record.DestMapperName())
			if err != nil {
				return err
			}
			record.OpenedDestMapper = !alreadyActive
		}
	}
	return nil
}

// mountTree mounts the plan's filesystems under root, parents before
// children. Swap never mounts. Targets are recorded for Cleanup even when
// already mounted by an earlier attempt.
func (e *Engine) mountTree(p *plan.MigrationPlan, root string, dest bool) error {
	for _, record := range mountOrder(p.Records) {
		source := record.SourcePath()
		if dest {
			source = record.DestPath()
		}
		target := filepath.Join(root, record.MountPoint)
		if err := e.system.Mount(source, target, record.EffectiveFSType()); err != nil {
			return err
		}
		e.mounted = append(e.mounted, target)
	}
	return nil
}

func (e *Engine) describeRun(p *plan.MigrationPlan) {
	actions := e.backends.Partitioner.Describe(p)
	actions = append(actions, fmt.Sprintf("write plan checkpoint to %v", e.opts.StateFile))
	actions = append(actions, e.transferActions(p)...)
	printActions(actions)
}

func (e *Engine) describeResume(p *plan.MigrationPlan) {
	printActions(e.transferActions(p))
}

func (e *Engine) transferActions(p *plan.MigrationPlan) []string {
	actions := []string{
		"run " + e.backends.Transfer.CommandString(e.opts.SourceRoot, e.opts.DestRoot, e.opts.ExtraExcludes),
	}
	actions = append(actions, e.backends.BootConfig.Describe(p, e.opts.DestRoot)...)
	actions = append(actions, e.backends.BootLoader.Describe(e.opts.DestRoot, e.opts.DestDisk)...)
	return actions
}

func printActions(actions []string) {
	fmt.Println("Dry run; intended actions:")
	for _, action := range actions {
		fmt.Println("  * " + action)
	}
}

// mountOrder returns mountable records sorted parents-first: root, then
// increasing mount point depth.
func mountOrder(records []*plan.PartitionRecord) []*plan.PartitionRecord {
	var mountable []*plan.PartitionRecord
	for _, record := range records {
		if record.Role != plan.RoleSwap {
			mountable = append(mountable, record)
		}
	}
	sort.SliceStable(mountable, func(i, j int) bool {
		return mountDepth(mountable[i].MountPoint) < mountDepth(mountable[j].MountPoint)
	})
	return mountable
}

func mountDepth(mountPoint string) int {
	if mountPoint == "/" {
		return 0
	}
	return strings.Count(mountPoint, "/")
}
