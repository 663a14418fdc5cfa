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

import "github.com/spf13/cobra"

var (
	quietFlag     bool     // --quiet flag
	dryRunFlag    bool     // --dry-run flag
	dangerousFlag bool     // --dangerous flag
	outputFormat  string   // --output flag
	excludeArgs   []string // --exclude flag
	stateFileArg  string   // --state-file flag
	verifySamples int      // --verify-samples flag
)

func addDryRunFlag(cmd *cobra.Command, usage string) {
	cmd.PersistentFlags().BoolVar(&dryRunFlag, "dry-run", dryRunFlag, usage)
}

func addDangerousFlag(cmd *cobra.Command, usage string) {
	cmd.PersistentFlags().BoolVar(&dangerousFlag, "dangerous", dangerousFlag, usage)
}

func addOutputFormatFlag(cmd *cobra.Command, usage string) {
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputFormat, usage)
}

func addExcludeFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringSliceVar(&excludeArgs, "exclude", excludeArgs,
		"Additional transfer exclusion patterns; may be repeated")
}

func addVerifySamplesFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().IntVar(&verifySamples, "verify-samples", verifySamples,
		"Number of transferred files to spot-check by checksum; 0 disables verification")
}
