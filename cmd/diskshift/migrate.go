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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/diskshift/diskshift/pkg/bootcfg"
	"github.com/diskshift/diskshift/pkg/consts"
	"github.com/diskshift/diskshift/pkg/device"
	"github.com/diskshift/diskshift/pkg/manifest"
	"github.com/diskshift/diskshift/pkg/migrate"
	"github.com/diskshift/diskshift/pkg/partition"
	"github.com/diskshift/diskshift/pkg/transfer"
	"github.com/diskshift/diskshift/pkg/utils"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var migrateCmd = &cobra.Command{
	Use:           "migrate SOURCE-DISK DEST-DISK",
	Short:         "Migrate an installation from the source disk to the destination disk",
	SilenceUsage:  true,
	SilenceErrors: true,
	Example: strings.ReplaceAll(
		`# Migrate /dev/sda to the bigger or smaller /dev/sdb
$ {PLUGIN_NAME} migrate --dangerous /dev/sda /dev/sdb

# Show what a migration would do without touching the destination
$ {PLUGIN_NAME} migrate --dry-run /dev/sda /dev/sdb

# Exclude large scratch files from the transfer
$ {PLUGIN_NAME} migrate --dangerous --exclude='/var/cache/*' /dev/sda /dev/sdb`,
		`{PLUGIN_NAME}`,
		consts.AppName,
	),
	Args: cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		if err := validateMigrateCmd(); err != nil {
			utils.Eprintf(quietFlag, true, "%v\n", err)
			os.Exit(-1)
		}
		return migrateMain(c.Context(), args[0], args[1])
	},
}

func init() {
	addDryRunFlag(migrateCmd, "Describe intended actions without partitioning, transferring or writing configs")
	addDangerousFlag(migrateCmd, "Confirm erasing all data on the destination disk")
	addExcludeFlag(migrateCmd)
	addVerifySamplesFlag(migrateCmd)
}

func validateMigrateCmd() error {
	if os.Geteuid() != 0 {
		return errors.New("migration requires root privilege")
	}
	if !dryRunFlag && !dangerousFlag {
		return fmt.Errorf("migrating erases all data on the destination disk; retry with %v", "--dangerous")
	}
	return nil
}

func migrateMain(ctx context.Context, sourceArg, destArg string) error {
	sourceDisk, detachSource, err := resolveDisk(sourceArg)
	if err != nil {
		utils.Eprintf(quietFlag, true, "%v\n", err)
		os.Exit(-1)
	}
	defer detachSource()

	destDisk, detachDest, err := resolveDisk(destArg)
	if err != nil {
		utils.Eprintf(quietFlag, true, "%v\n", err)
		os.Exit(-1)
	}
	defer detachDest()

	engine := newEngine(migrate.Options{
		SourceDisk:    sourceDisk,
		DestDisk:      destDisk,
		DryRun:        dryRunFlag,
		ExtraExcludes: excludeArgs,
		StateFile:     stateFilePath(),
		VerifySamples: verifySamples,
		PresentPlan:   renderPlanTable,
	})
	defer cleanupEngine(engine)

	if err := engine.Run(ctx); err != nil {
		utils.Eprintf(quietFlag, true, "%v\n", err)
		return err
	}
	return nil
}

func newEngine(opts migrate.Options) *migrate.Engine {
	console := terminalConsole{}
	return migrate.New(opts, migrate.LocalSystem{}, console, migrate.Backends{
		Partitioner: partition.Backend{},
		Transfer:    rsyncBackend{},
		BootConfig:  bootcfg.Backend{Confirm: console.Confirm},
		BootLoader:  bootcfg.Installer{},
		Manifests:   manifest.Exporter{},
	})
}

func cleanupEngine(engine *migrate.Engine) {
	if err := engine.Cleanup(context.Background()); err != nil {
		utils.Eprintf(quietFlag, false, "cleanup incomplete: %v\n", err)
	}
}

// resolveDisk accepts a block device path or a raw disk image; images are
// attached to a loop device for the duration of the run.
func resolveDisk(arg string) (string, func(), error) {
	info, err := os.Stat(arg)
	if err != nil {
		return "", nil, fmt.Errorf("invalid disk reference %v; %w", arg, err)
	}
	if !info.Mode().IsRegular() {
		return arg, func() {}, nil
	}

	loopDevice, detach, err := device.AttachImage(arg)
	if err != nil {
		return "", nil, err
	}
	klog.V(2).Infof("attached image %v at %v", arg, loopDevice)
	return loopDevice, func() {
		if err := detach(); err != nil {
			utils.Eprintf(quietFlag, false, "unable to detach %v: %v\n", loopDevice, err)
		}
	}, nil
}

// rsyncBackend adapts the transfer package to the engine's backend
// interface.
type rsyncBackend struct{}

func (rsyncBackend) Sync(ctx context.Context, src, dst string, extraExcludes []string) error {
	return transfer.Sync(ctx, src, dst, extraExcludes)
}

func (rsyncBackend) CommandString(src, dst string, extraExcludes []string) string {
	return transfer.CommandString(src, dst, extraExcludes)
}
