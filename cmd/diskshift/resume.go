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
	"errors"
	"os"
	"strings"

	"github.com/diskshift/diskshift/pkg/consts"
	"github.com/diskshift/diskshift/pkg/migrate"
	"github.com/diskshift/diskshift/pkg/plan"
	"github.com/diskshift/diskshift/pkg/utils"
	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:           "resume",
	Short:         "Resume an interrupted migration from its checkpoint",
	Long:          "Reloads the plan persisted after destination partitioning and redoes the mount, transfer and configuration phases. Partitioning never runs again.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Example: strings.ReplaceAll(
		`# Resume after a failed transfer
$ {PLUGIN_NAME} resume

# Resume shedding a problem directory
$ {PLUGIN_NAME} resume --exclude='/home/*/.cache/*'`,
		`{PLUGIN_NAME}`,
		consts.AppName,
	),
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		if os.Geteuid() != 0 {
			utils.Eprintf(quietFlag, true, "resume requires root privilege\n")
			os.Exit(-1)
		}
		return resumeMain(c)
	},
}

func init() {
	addDryRunFlag(resumeCmd, "Describe intended actions without transferring or writing configs")
	addExcludeFlag(resumeCmd)
	addVerifySamplesFlag(resumeCmd)
}

func resumeMain(c *cobra.Command) error {
	engine := newEngine(migrate.Options{
		DryRun:        dryRunFlag,
		ExtraExcludes: excludeArgs,
		StateFile:     stateFilePath(),
		VerifySamples: verifySamples,
	})
	defer cleanupEngine(engine)

	if err := engine.Resume(c.Context()); err != nil {
		if errors.Is(err, plan.ErrNoState) {
			utils.Eprintf(quietFlag, true, "no migration to resume: %v\n", err)
			os.Exit(-1)
		}
		utils.Eprintf(quietFlag, true, "%v\n", err)
		return err
	}
	return nil
}
