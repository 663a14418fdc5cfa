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
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/diskshift/diskshift/pkg/luks"
	"github.com/diskshift/diskshift/pkg/plan"
	"k8s.io/klog/v2"
)

// Backend executes destination partitioning and formatting with sgdisk and
// mkfs. Zapping the partition table and formatting are irreversible; the
// engine never invokes this backend on a resumed run.
type Backend struct{}

// Apply creates the planned partition table on the destination disk and
// formats every partition. Destination devices are assigned to the plan
// records as partitions are created.
func (Backend) Apply(ctx context.Context, p *plan.MigrationPlan) error {
	if err := run(ctx, "sgdisk", "--zap-all", p.DestDisk); err != nil {
		return fmt.Errorf("zeroing partition table on %v failed; %w", p.DestDisk, err)
	}

	for i, r := range p.Records {
		number := i + 1
		args := []string{
			fmt.Sprintf("--new=%d:0:+%dK", number, r.DestSize/1024),
			fmt.Sprintf("--typecode=%d:%v", number, TypeCode(r.Role)),
			p.DestDisk,
		}
		if err := run(ctx, "sgdisk", args...); err != nil {
			return fmt.Errorf("creating partition %v on %v failed; %w", number, p.DestDisk, err)
		}
		r.DestDevice = Path(p.DestDisk, number)
	}

	// Let udev create the partition device nodes before formatting.
	if err := run(ctx, "udevadm", "settle"); err != nil {
		klog.V(3).Infof("udevadm settle failed; %v", err)
	}

	for _, r := range p.Records {
		if err := format(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func format(ctx context.Context, r *plan.PartitionRecord) error {
	target := r.DestDevice

	if r.Encrypted() {
		if err := luks.Format(ctx, r.DestDevice); err != nil {
			return fmt.Errorf("formatting encrypted container on %v failed; %w", r.DestDevice, err)
		}
		alreadyActive, err := luks.Open(ctx, r.DestDevice, r.DestMapperName())
		if err != nil {
			return fmt.Errorf("opening destination container %v failed; %w", r.DestDevice, err)
		}
		r.OpenedDestMapper = !alreadyActive
		target = luks.MapperPath(r.DestMapperName())
	}

	command := mkfsCommand(r, target)
	if err := run(ctx, command[0], command[1:]...); err != nil {
		return fmt.Errorf("formatting %v failed; %w", target, err)
	}
	return nil
}

// Describe returns the actions Apply would perform, for dry runs.
func (Backend) Describe(p *plan.MigrationPlan) []string {
	actions := []string{
		fmt.Sprintf("zero partition table on %v (sgdisk --zap-all)", p.DestDisk),
	}
	for i, r := range p.Records {
		number := i + 1
		destDevice := Path(p.DestDisk, number)
		actions = append(actions, fmt.Sprintf(
			"create partition %v (%v, type %v, %v KiB)",
			destDevice, r.Role, TypeCode(r.Role), r.DestSize/1024,
		))
		if r.Encrypted() {
			actions = append(actions,
				fmt.Sprintf("format encrypted container on %v, open as %v", destDevice, r.DestMapperName()),
				fmt.Sprintf("run %v", strings.Join(mkfsCommand(r, luks.MapperPath(r.DestMapperName())), " ")),
			)
			continue
		}
		actions = append(actions, fmt.Sprintf("run %v", strings.Join(mkfsCommand(r, destDevice), " ")))
	}
	return actions
}

func run(ctx context.Context, bin string, args ...string) error {
	klog.V(3).Infof("running %v %v", bin, strings.Join(args, " "))
	output, err := exec.CommandContext(ctx, bin, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%v: %v; %w", bin, strings.TrimSpace(string(output)), err)
	}
	return nil
}
