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

// Package manifest captures installed-package and enabled-service lists
// from the running system so they can be replayed on the migrated one.
package manifest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"k8s.io/klog/v2"
)

// captures maps output file names to the command capturing them. The
// first available package manager wins.
var captures = []struct {
	filename string
	commands [][]string
}{
	{
		filename: "packages.list",
		commands: [][]string{
			{"dpkg", "--get-selections"},
			{"pacman", "-Qqe"},
			{"rpm", "-qa"},
		},
	},
	{
		filename: "services.list",
		commands: [][]string{
			{"systemctl", "list-unit-files", "--state=enabled", "--no-legend"},
		},
	},
}

// Exporter writes system manifests into a directory on the destination
// tree.
type Exporter struct{}

// Export captures manifests into outDir. Capture failures are logged and
// skipped; an incomplete manifest never fails the migration.
func (Exporter) Export(ctx context.Context, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("unable to create manifest directory %v; %w", outDir, err)
	}

	for _, capture := range captures {
		for _, command := range capture.commands {
			output, err := exec.CommandContext(ctx, command[0], command[1:]...).Output()
			if err != nil {
				klog.V(5).Infof("manifest command %v unavailable; %v", command[0], err)
				continue
			}
			filename := filepath.Join(outDir, capture.filename)
			if err := os.WriteFile(filename, output, 0o644); err != nil {
				return fmt.Errorf("unable to write %v; %w", filename, err)
			}
			klog.V(3).Infof("captured %v via %v", capture.filename, command[0])
			break
		}
	}
	return nil
}
