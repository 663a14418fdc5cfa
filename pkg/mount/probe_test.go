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
	"reflect"
	"strings"
	"testing"
)

func TestParseMounts(t *testing.T) {
	data := `sysfs /sys sysfs rw,nosuid,nodev,noexec,relatime 0 0
/dev/sda2 / ext4 rw,relatime 0 0
/dev/mapper/sda3_crypt /home ext4 rw,relatime 0 0
/dev/sda1 /boot/efi vfat rw,umask=0077 0 0
/dev/sdc1 /mnt/with\040space ext4 rw 0 0
garbage
`
	mounts, err := parseMounts(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	expected := []Info{
		{Source: "sysfs", MountPoint: "/sys", FSType: "sysfs"},
		{Source: "/dev/sda2", MountPoint: "/", FSType: "ext4"},
		{Source: "/dev/mapper/sda3_crypt", MountPoint: "/home", FSType: "ext4"},
		{Source: "/dev/sda1", MountPoint: "/boot/efi", FSType: "vfat"},
		{Source: "/dev/sdc1", MountPoint: "/mnt/with space", FSType: "ext4"},
	}
	if !reflect.DeepEqual(mounts, expected) {
		t.Fatalf("expected %+v, got %+v", expected, mounts)
	}

	targets := mountPointSet(mounts)
	if _, found := targets["/home"]; !found {
		t.Fatal("mount point set misses /home")
	}
	if _, found := targets["/does/not/exist"]; found {
		t.Fatal("mount point set contains unknown target")
	}
}
