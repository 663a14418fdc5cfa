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

// Package luks wraps cryptsetup for opening, closing and formatting
// encrypted containers.
package luks

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"k8s.io/klog/v2"
)

// MapperPath returns the device path of an open mapping.
func MapperPath(name string) string {
	return "/dev/mapper/" + name
}

// Active reports whether a mapping with the given name is open.
func Active(name string) bool {
	_, err := os.Stat(MapperPath(name))
	return err == nil
}

// Open unlocks device under the given mapper name. If the mapping is
// already active it is reused; alreadyActive lets the caller record that
// an earlier process, not this run, owns it. cryptsetup prompts for the
// passphrase on the inherited terminal.
func Open(ctx context.Context, device, name string) (alreadyActive bool, err error) {
	if Active(name) {
		klog.V(3).Infof("mapper %v is already active; reusing", name)
		return true, nil
	}

	cmd := exec.CommandContext(ctx, "cryptsetup", "open", device, name)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err = cmd.Run(); err != nil {
		return false, fmt.Errorf("unable to open %v as %v; %w", device, name, err)
	}
	return false, nil
}

// Close tears down an open mapping. Closing an inactive mapping is not an
// error.
func Close(ctx context.Context, name string) error {
	if !Active(name) {
		return nil
	}
	output, err := exec.CommandContext(ctx, "cryptsetup", "close", name).CombinedOutput()
	if err != nil {
		return fmt.Errorf("unable to close mapper %v; %v; %w", name, string(output), err)
	}
	return nil
}

// Format initializes a new encrypted container on device. The passphrase
// dialog runs on the inherited terminal.
func Format(ctx context.Context, device string) error {
	cmd := exec.CommandContext(ctx, "cryptsetup", "luksFormat", "--batch-mode", "--verify-passphrase", device)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("unable to format %v as encrypted container; %w", device, err)
	}
	return nil
}
