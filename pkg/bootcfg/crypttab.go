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

package bootcfg

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PreservedMapperName extracts the logical mapper name from an existing
// crypttab, typically the one the transfer copied onto the destination.
// Keeping the name the migrated system already references avoids breaking
// its boot configuration. Returns fallback when no entry is derivable.
func PreservedMapperName(existing io.Reader, fallback string) string {
	scanner := bufio.NewScanner(existing)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if tokens := strings.Fields(line); len(tokens) >= 2 {
			return tokens[0]
		}
	}
	return fallback
}

// CryptEntry is one unlock-table row: the boot-time mapper name and the
// UUID of the encrypted container itself, not the inner filesystem.
type CryptEntry struct {
	Name string
	UUID string
}

// GenerateCrypttab renders the unlock table for every encrypted partition.
func GenerateCrypttab(entries []CryptEntry) string {
	var b strings.Builder
	b.WriteString("# /etc/crypttab generated by diskshift\n")
	for _, entry := range entries {
		fmt.Fprintf(&b, "%v UUID=%v none luks,discard\n", entry.Name, entry.UUID)
	}
	return b.String()
}
