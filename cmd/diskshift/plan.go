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
	"os"
	"strings"

	"github.com/diskshift/diskshift/pkg/consts"
	"github.com/diskshift/diskshift/pkg/migrate"
	"github.com/diskshift/diskshift/pkg/utils"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:           "plan SOURCE-DISK DEST-DISK",
	Short:         "Build and display a migration plan without executing it",
	SilenceUsage:  true,
	SilenceErrors: true,
	Example: strings.ReplaceAll(
		`# Show the proposed destination layout
$ {PLUGIN_NAME} plan /dev/sda /dev/sdb

# Export the plan for review
$ {PLUGIN_NAME} plan -o yaml /dev/sda /dev/sdb`,
		`{PLUGIN_NAME}`,
		consts.AppName,
	),
	Args: cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		if os.Geteuid() != 0 {
			utils.Eprintf(quietFlag, true, "planning mounts source filesystems and requires root privilege\n")
			os.Exit(-1)
		}
		return planMain(c, args[0], args[1])
	},
}

func init() {
	addOutputFormatFlag(planCmd, "Output format; one of: yaml|json")
}

func planMain(c *cobra.Command, sourceArg, destArg string) error {
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
		SourceDisk: sourceDisk,
		DestDisk:   destDisk,
		DryRun:     true,
		StateFile:  stateFilePath(),
	})
	defer cleanupEngine(engine)

	p, err := engine.Plan(c.Context())
	if err != nil {
		utils.Eprintf(quietFlag, true, "%v\n", err)
		return err
	}

	switch outputFormat {
	case "yaml":
		return printYAML(p)
	case "json":
		return printJSON(p)
	default:
		renderPlanTable(p)
		return nil
	}
}
