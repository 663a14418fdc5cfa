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

package main

import "testing"

func TestPrintableString(t *testing.T) {
	if result := printableString(""); result != "-" {
		t.Fatalf("expected -, got %v", result)
	}
	if result := printableString("ext4"); result != "ext4" {
		t.Fatalf("expected ext4, got %v", result)
	}
}

func TestPrintableBytes(t *testing.T) {
	if result := printableBytes(0); result != "-" {
		t.Fatalf("expected -, got %v", result)
	}
	if result := printableBytes(1024 * 1024 * 1024); result != "1.0 GiB" {
		t.Fatalf("expected 1.0 GiB, got %v", result)
	}
}

func TestStateFilePathFlagWins(t *testing.T) {
	previous := stateFileArg
	defer func() { stateFileArg = previous }()

	stateFileArg = "/tmp/migration.state"
	if result := stateFilePath(); result != "/tmp/migration.state" {
		t.Fatalf("expected flag value, got %v", result)
	}
}
