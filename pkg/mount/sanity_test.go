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
	"os"
	"path/filepath"
	"testing"
)

func TestCheckRootHierarchy(t *testing.T) {
	dir := t.TempDir()
	if err := CheckRootHierarchy(dir); err == nil {
		t.Fatal("empty directory accepted as root filesystem")
	}

	for _, name := range []string{"etc", "usr", "var"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := CheckRootHierarchy(dir); err != nil {
		t.Fatalf("plausible root rejected: %v", err)
	}

	// A file where a directory is expected is rejected.
	dir = t.TempDir()
	for _, name := range []string{"etc", "usr"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "var"), []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CheckRootHierarchy(dir); err == nil {
		t.Fatal("root with non-directory marker accepted")
	}
}
