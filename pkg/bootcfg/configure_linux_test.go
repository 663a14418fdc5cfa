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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func stubUUIDs(t *testing.T, uuids map[string]string) {
	t.Helper()
	previous := readUUID
	t.Cleanup(func() { readUUID = previous })
	readUUID = func(_ context.Context, device string) (string, error) {
		value, found := uuids[device]
		if !found {
			return "", fmt.Errorf("device %v has no filesystem UUID", device)
		}
		return value, nil
	}
}

func writeDestFile(t *testing.T, destRoot, name, content string) string {
	t.Helper()
	path := filepath.Join(destRoot, "etc", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigureWritesBothTables(t *testing.T) {
	stubUUIDs(t, map[string]string{
		"/dev/sdb1": "A1B2-C3D4",
		"/dev/sdb2": "7f3c9a10-1111-4222-8333-abcdefabcdef",
		"/dev/sdb3": "0dc3c15e-5d16-4e99-a1a2-c13b11d09a3c",
		"/dev/sdb4": "52f24caf-4444-4555-8666-fedcbafedcba",
	})

	destRoot := t.TempDir()
	fstabPath := writeDestFile(t, destRoot, "fstab", "UUID=old / ext4 defaults 0 1\n")
	crypttabPath := writeDestFile(t, destRoot, "crypttab",
		"cryptohome UUID=11111111-aaaa-4bbb-8ccc-222222222222 none luks\n")

	backend := Backend{Confirm: func(string, ...interface{}) bool { return true }}
	if err := backend.Configure(context.TODO(), migratedPlan(), destRoot); err != nil {
		t.Fatal(err)
	}

	fstab, err := os.ReadFile(fstabPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(fstab), "UUID=7f3c9a10-1111-4222-8333-abcdefabcdef / ext4") {
		t.Fatalf("mount table not regenerated:\n%v", string(fstab))
	}
	// The preserved mapper name is carried over from the copied crypttab.
	if !strings.Contains(string(fstab), "/dev/mapper/cryptohome /home ext4") {
		t.Fatalf("preserved mapper name not used:\n%v", string(fstab))
	}

	crypttab, err := os.ReadFile(crypttabPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(crypttab), "cryptohome UUID=0dc3c15e-5d16-4e99-a1a2-c13b11d09a3c") {
		t.Fatalf("unlock table not regenerated:\n%v", string(crypttab))
	}
}

func TestConfigureDeclinedFstabStillWritesCrypttab(t *testing.T) {
	stubUUIDs(t, map[string]string{
		"/dev/sdb1": "A1B2-C3D4",
		"/dev/sdb2": "7f3c9a10-1111-4222-8333-abcdefabcdef",
		"/dev/sdb3": "0dc3c15e-5d16-4e99-a1a2-c13b11d09a3c",
		"/dev/sdb4": "52f24caf-4444-4555-8666-fedcbafedcba",
	})

	destRoot := t.TempDir()
	previousFstab := "UUID=old / ext4 defaults 0 1\n"
	previousCrypttab := "cryptohome UUID=11111111-aaaa-4bbb-8ccc-222222222222 none luks\n"
	fstabPath := writeDestFile(t, destRoot, "fstab", previousFstab)
	crypttabPath := writeDestFile(t, destRoot, "crypttab", previousCrypttab)

	backend := Backend{Confirm: func(string, ...interface{}) bool { return false }}
	if err := backend.Configure(context.TODO(), migratedPlan(), destRoot); err != nil {
		t.Fatal(err)
	}

	// The declined mount table stays untouched, with its backup kept.
	fstab, err := os.ReadFile(fstabPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(fstab) != previousFstab {
		t.Fatalf("declined mount table was replaced:\n%v", string(fstab))
	}
	if _, err := os.Stat(fstabPath + backupSuffix); err != nil {
		t.Fatal(err)
	}

	// The unlock table is regenerated regardless: the destination container
	// carries a new UUID the copied crypttab cannot unlock.
	crypttab, err := os.ReadFile(crypttabPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(crypttab), "cryptohome UUID=0dc3c15e-5d16-4e99-a1a2-c13b11d09a3c") {
		t.Fatalf("unlock table not regenerated:\n%v", string(crypttab))
	}
	if strings.Contains(string(crypttab), "11111111-aaaa-4bbb-8ccc-222222222222") {
		t.Fatalf("unlock table still references the source container:\n%v", string(crypttab))
	}

	backup, err := os.ReadFile(crypttabPath + backupSuffix)
	if err != nil {
		t.Fatal(err)
	}
	if string(backup) != previousCrypttab {
		t.Fatalf("unexpected unlock-table backup:\n%v", string(backup))
	}
}
