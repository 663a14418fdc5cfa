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
	"path/filepath"
)

var rootMarkers = []string{"etc", "usr", "var"}

// CheckRootHierarchy verifies that dir plausibly holds a mounted root
// filesystem before any data is copied out of it. Guards against silently
// transferring the wrong disk.
func CheckRootHierarchy(dir string) error {
	for _, marker := range rootMarkers {
		fi, err := os.Stat(filepath.Join(dir, marker))
		if err != nil {
			return fmt.Errorf("%v does not look like a root filesystem: missing /%v", dir, marker)
		}
		if !fi.IsDir() {
			return fmt.Errorf("%v does not look like a root filesystem: /%v is not a directory", dir, marker)
		}
	}
	return nil
}
