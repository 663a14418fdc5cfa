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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/diskshift/diskshift/pkg/consts"
	"github.com/diskshift/diskshift/pkg/plan"
	"github.com/diskshift/diskshift/pkg/utils"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mitchellh/go-homedir"
)

const dot = "•"

func newTableWriter(header table.Row, sortBy []table.SortBy, noColor bool) table.Writer {
	writer := table.NewWriter()
	writer.SetOutputMirror(os.Stdout)
	writer.AppendHeader(header)
	writer.SortBy(sortBy)
	style := table.StyleLight
	style.Options.DrawBorder = false
	style.Options.SeparateColumns = false
	if !noColor {
		style.Color.Header = text.Colors{text.FgHiCyan, text.Bold}
	}
	writer.SetStyle(style)
	return writer
}

func printableString(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printableBytes(value int64) string {
	if value == 0 {
		return "-"
	}
	return humanize.IBytes(uint64(value))
}

func printYAML(obj interface{}) error {
	y, err := utils.ToYAML(obj)
	if err != nil {
		return err
	}
	fmt.Println(y)
	return nil
}

func printJSON(obj interface{}) error {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal object; %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// stateFilePath resolves the checkpoint location: the --state-file flag
// wins, root uses the system location, everyone else a dotfile in their
// home directory.
func stateFilePath() string {
	if stateFileArg != "" {
		return stateFileArg
	}
	if os.Geteuid() == 0 {
		return consts.PlanFile
	}
	home, err := homedir.Dir()
	if err != nil {
		return consts.PlanFile
	}
	return filepath.Join(home, "."+consts.AppName, "plan.state")
}

func renderPlanTable(p *plan.MigrationPlan) {
	fmt.Printf("Migration %v %v %v\n", p.SourceDisk, dot, p.DestDisk)

	writer := newTableWriter(
		table.Row{
			"DEVICE",
			"ROLE",
			"FILESYSTEM",
			"MOUNTPOINT",
			"SIZE",
			"USED",
			"DEST SIZE",
			"DEST DEVICE",
		},
		nil,
		false,
	)
	for _, record := range p.Records {
		writer.AppendRow(table.Row{
			record.Device,
			string(record.Role),
			printableString(record.EffectiveFSType()),
			record.MountPoint,
			printableBytes(int64(record.SourceSize)),
			printableBytes(int64(record.UsedBytes)),
			printableBytes(int64(record.DestSize)),
			printableString(record.DestDevice),
		})
	}
	writer.Render()
	fmt.Println()
}
