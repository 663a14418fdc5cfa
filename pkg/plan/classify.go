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

package plan

import "strings"

// SuggestRole infers a default role from an on-disk filesystem signature.
// The result is a proposal; the operator confirms or overrides it before it
// enters the plan. Encrypted containers are assumed to hold user data,
// never root. The first otherwise-unclassified partition becomes root.
func SuggestRole(fsType string, rootAssigned bool) Role {
	switch {
	case isFAT(fsType):
		return RoleEFI
	case fsType == FSTypeSwap:
		return RoleSwap
	case fsType == FSTypeLUKS:
		return RoleHome
	case !rootAssigned:
		return RoleRoot
	default:
		return RoleHome
	}
}

// DefaultMountPoint returns the conventional mount point for a role.
func DefaultMountPoint(role Role) string {
	switch role {
	case RoleRoot:
		return "/"
	case RoleEFI:
		return "/boot/efi"
	case RoleHome:
		return "/home"
	case RoleSwap:
		return MountPointSwap
	default:
		return "/srv"
	}
}

func isFAT(fsType string) bool {
	switch strings.ToLower(fsType) {
	case "vfat", "fat", "fat16", "fat32", "msdos":
		return true
	default:
		return false
	}
}
