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

// Package transfer mirrors the assembled source tree onto the destination
// tree with rsync.
package transfer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/diskshift/diskshift/pkg/consts"
	"k8s.io/klog/v2"
)

// fixedExcludes keeps virtual filesystems, swap files and the mount
// staging area out of the copy.
var fixedExcludes = []string{
	"/dev/*",
	"/proc/*",
	"/sys/*",
	"/tmp/*",
	"/run/*",
	"/mnt/*",
	"/media/*",
	"/lost+found",
	"/swapfile",
	consts.AppRootDir + "/*",
}

// skeletonDirs are recreated on the destination after the transfer so the
// migrated system boots with the expected top-level layout.
var skeletonDirs = []struct {
	name string
	mode os.FileMode
}{
	{"dev", 0o755},
	{"proc", 0o555},
	{"sys", 0o555},
	{"run", 0o755},
	{"mnt", 0o755},
	{"media", 0o755},
	{"tmp", 0o777 | os.ModeSticky},
}

// Excludes merges operator-supplied patterns into the fixed exclusion set,
// order-preserving and deduplicated. Patterns configured earlier in the
// run are never altered by later additions.
func Excludes(extra []string) []string {
	merged := make([]string, 0, len(fixedExcludes)+len(extra))
	seen := map[string]struct{}{}
	for _, pattern := range append(append([]string{}, fixedExcludes...), extra...) {
		if _, found := seen[pattern]; found {
			continue
		}
		seen[pattern] = struct{}{}
		merged = append(merged, pattern)
	}
	return merged
}

func buildArgs(src, dst string, excludes []string) []string {
	args := []string{"-aAXH", "--delete", "--numeric-ids", "--info=progress2"}
	for _, pattern := range excludes {
		args = append(args, "--exclude="+pattern)
	}
	return append(args, src+"/", dst+"/")
}

// CommandString renders the rsync invocation for dry runs and logs.
func CommandString(src, dst string, extra []string) string {
	return "rsync " + strings.Join(buildArgs(src, dst, Excludes(extra)), " ")
}

// Sync mirrors src onto dst. A failed transfer leaves the plan valid; the
// operator retries via resume, optionally with more exclusions.
func Sync(ctx context.Context, src, dst string, extra []string) error {
	args := buildArgs(src, dst, Excludes(extra))
	klog.V(3).Infof("running rsync %v", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, "rsync", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("transfer from %v to %v failed; %w", src, dst, err)
	}
	return nil
}

// RecreateSkeleton restores the excluded top-level mount point directories
// on the destination tree.
func RecreateSkeleton(dst string) error {
	for _, dir := range skeletonDirs {
		path := filepath.Join(dst, dir.name)
		if err := os.MkdirAll(path, dir.mode.Perm()); err != nil {
			return fmt.Errorf("unable to recreate %v; %w", path, err)
		}
		if err := os.Chmod(path, dir.mode); err != nil {
			return err
		}
	}
	return nil
}
