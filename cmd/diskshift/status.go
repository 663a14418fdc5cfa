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
	"fmt"

	"github.com/diskshift/diskshift/pkg/plan"
	"github.com/diskshift/diskshift/pkg/utils"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:           "status",
	Short:         "Show the checkpointed migration, if any",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return statusMain()
	},
}

func init() {
	addOutputFormatFlag(statusCmd, "Output format; one of: yaml|json")
}

func statusMain() error {
	p, err := plan.Load(stateFilePath())
	if err != nil {
		if errors.Is(err, plan.ErrNoState) {
			fmt.Println("No migration in progress")
			return nil
		}
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
		fmt.Println("Destination is partitioned; continue with `" + resumeCmd.Use + "`")
		return nil
	}
}
