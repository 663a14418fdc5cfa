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

package consts

const (
	// AppName denotes application/tool name.
	AppName = "diskshift"

	// AppPrettyName denotes application/tool pretty name.
	AppPrettyName = "DiskShift"

	// AppCapsName denotes application/tool name in capital letters.
	AppCapsName = "DISKSHIFT"

	// AppRootDir is application root directory.
	AppRootDir = "/var/lib/" + AppName

	// MountRootDir is mount staging root directory.
	MountRootDir = AppRootDir + "/mnt"

	// SourceMountDir is where the source tree is assembled.
	SourceMountDir = MountRootDir + "/src"

	// DestMountDir is where the destination tree is assembled.
	DestMountDir = MountRootDir + "/dst"

	// PlanFile is the persisted migration plan location.
	PlanFile = AppRootDir + "/plan.state"

	// UdevDataDir is Udev data directory.
	UdevDataDir = "/run/udev/data"

	// EFIPartitionSize is the fixed destination EFI system partition size.
	EFIPartitionSize = 512 * 1024 * 1024

	// LUKSHeaderSize is the reserve added per encrypted container for its
	// on-disk header and keyslots.
	LUKSHeaderSize = 16 * 1024 * 1024
)
