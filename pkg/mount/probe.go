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

// Package mount establishes and tears down the source and destination
// filesystem hierarchies idempotently.
package mount

import (
	"bufio"
	"io"
	"strings"
)

// Info denotes one entry of the process mount table.
type Info struct {
	Source     string
	MountPoint string
	FSType     string
}

// parseMounts parses /proc/self/mounts content. Octal escapes in mount
// points (e.g. \040 for space) are decoded.
func parseMounts(r io.Reader) ([]Info, error) {
	var mounts []Info
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		tokens := strings.Fields(scanner.Text())
		if len(tokens) < 3 {
			continue
		}
		mounts = append(mounts, Info{
			Source:     tokens[0],
			MountPoint: unescape(tokens[1]),
			FSType:     tokens[2],
		})
	}
	return mounts, scanner.Err()
}

func unescape(s string) string {
	replacer := strings.NewReplacer(
		`\040`, " ",
		`\011`, "\t",
		`\012`, "\n",
		`\134`, `\`,
	)
	return replacer.Replace(s)
}

func mountPointSet(mounts []Info) map[string]struct{} {
	targets := make(map[string]struct{}, len(mounts))
	for _, m := range mounts {
		targets[m.MountPoint] = struct{}{}
	}
	return targets
}
