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
	"context"
	"fmt"
	"os/exec"
	"strings"

	"k8s.io/klog/v2"
)

// initramfsScript regenerates the initramfs with whichever tool the
// migrated distribution ships.
const initramfsScript = `if command -v update-initramfs >/dev/null; then update-initramfs -u -k all;
elif command -v mkinitcpio >/dev/null; then mkinitcpio -P;
elif command -v dracut >/dev/null; then dracut --regenerate-all --force;
fi`

// Installer reinstalls the bootloader and regenerates the initramfs inside
// the destination tree. The engine bind mounts /dev, /proc and /sys into
// the tree before Install runs.
type Installer struct{}

// Install runs grub-install and initramfs regeneration chrooted into
// destRoot.
func (Installer) Install(ctx context.Context, destRoot, destDisk string) error {
	commands := [][]string{
		{"chroot", destRoot, "grub-install", destDisk},
		{"chroot", destRoot, "sh", "-c", "command -v update-grub >/dev/null && update-grub || grub-mkconfig -o /boot/grub/grub.cfg"},
		{"chroot", destRoot, "sh", "-c", initramfsScript},
	}
	for _, command := range commands {
		klog.V(3).Infof("running %v", strings.Join(command, " "))
		output, err := exec.CommandContext(ctx, command[0], command[1:]...).CombinedOutput()
		if err != nil {
			return fmt.Errorf("boot integration step %q failed: %v; %w",
				strings.Join(command[2:], " "), strings.TrimSpace(string(output)), err)
		}
	}
	return nil
}

// Describe returns the actions Install would perform, for dry runs.
func (Installer) Describe(destRoot, destDisk string) []string {
	return []string{
		fmt.Sprintf("chroot %v and reinstall bootloader on %v", destRoot, destDisk),
		fmt.Sprintf("regenerate initramfs inside %v", destRoot),
	}
}
