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

package transfer

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestVerifyCleanCopy(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	files := map[string]string{
		"etc/fstab":       "UUID=x / ext4 defaults 0 1\n",
		"home/user/a.txt": "hello",
		"home/user/b.txt": "world",
		"usr/bin/somebin": "\x7fELF",
		"var/log/syslog":  "log line\n",
	}
	writeTree(t, src, files)
	writeTree(t, dst, files)

	mismatches, err := Verify(src, dst, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(mismatches) != 0 {
		t.Fatalf("unexpected mismatches %v", mismatches)
	}
}

func TestVerifyDetectsDifferences(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeTree(t, src, map[string]string{
		"etc/fstab": "UUID=x / ext4 defaults 0 1\n",
		"a.txt":     "hello",
	})
	writeTree(t, dst, map[string]string{
		"etc/fstab": "CORRUPTED",
	})

	mismatches, err := Verify(src, dst, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(mismatches) != 2 {
		t.Fatalf("expected 2 mismatches, got %v", mismatches)
	}

	reasons := map[string]string{}
	for _, m := range mismatches {
		reasons[m.Path] = m.Reason
	}
	if reasons[filepath.Join("etc", "fstab")] != "checksum differs" {
		t.Fatalf("unexpected reasons %v", reasons)
	}
	if reasons["a.txt"] != "missing on destination" {
		t.Fatalf("unexpected reasons %v", reasons)
	}
}

func TestVerifySampleBound(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		files[name] = name
	}
	writeTree(t, src, files)

	// Destination is empty but only up to maxSamples files are checked.
	mismatches, err := Verify(src, dst, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(mismatches) != 2 {
		t.Fatalf("expected 2 sampled mismatches, got %v", len(mismatches))
	}

	// Zero samples disables verification.
	mismatches, err = Verify(src, dst, 0)
	if err != nil || mismatches != nil {
		t.Fatalf("expected no verification, got %v %v", mismatches, err)
	}
}
