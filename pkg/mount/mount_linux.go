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

package mount

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"
)

func probeMounts() ([]Info, error) {
	file, err := os.Open("/proc/self/mounts")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseMounts(file)
}

// Mounted reports whether target is a mount point.
func Mounted(target string) (bool, error) {
	mounts, err := probeMounts()
	if err != nil {
		return false, err
	}
	_, found := mountPointSet(mounts)[target]
	return found, nil
}

// SafeMount mounts source at target. An already mounted target is success
// by detection, required for resumed runs where a prior attempt may have
// left mounts in place.
func SafeMount(source, target, fsType string) error {
	mounted, err := Mounted(target)
	if err != nil {
		return err
	}
	if mounted {
		klog.V(3).Infof("target %v is already mounted; skipping", target)
		return nil
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return err
	}
	if err := unix.Mount(source, target, fsType, 0, ""); err != nil {
		return fmt.Errorf("unable to mount %v on %v; %w", source, target, err)
	}
	klog.V(3).Infof("mounted %v on %v", source, target)
	return nil
}

// SafeBindMount binds source directory at target, idempotently.
func SafeBindMount(source, target string) error {
	mounted, err := Mounted(target)
	if err != nil {
		return err
	}
	if mounted {
		klog.V(3).Infof("bind target %v is already mounted; skipping", target)
		return nil
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return err
	}
	if err := unix.Mount(source, target, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("unable to bind mount %v on %v; %w", source, target, err)
	}
	return nil
}

// SafeUnmount unmounts target. A target that is not mounted is success by
// detection.
func SafeUnmount(target string) error {
	mounted, err := Mounted(target)
	if err != nil {
		return err
	}
	if !mounted {
		return nil
	}
	if err := unix.Unmount(target, 0); err != nil {
		return fmt.Errorf("unable to unmount %v; %w", target, err)
	}
	klog.V(3).Infof("unmounted %v", target)
	return nil
}
