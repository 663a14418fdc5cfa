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

import (
	"errors"

	"github.com/diskshift/diskshift/pkg/consts"
)

// Headroom multiplier 1.2x expressed as an integer fraction. All sizing
// arithmetic is integer; shares are computed in permille.
const (
	headroomNum = 6
	headroomDen = 5
	permille    = 1000
)

// ErrNoUsage denotes that no sizable partition reported used bytes.
var ErrNoUsage = errors.New("no measured usage on sizable partitions")

// HeadroomFloor returns the minimum destination size for the given usage.
// Rounded up so the result never lands below 1.2x.
func HeadroomFloor(used uint64) uint64 {
	return (used*headroomNum + headroomDen - 1) / headroomDen
}

// Available returns destination bytes left for usage-derived sizing after
// the fixed allocations: the EFI partition, swap copies and encrypted
// container headers. Reserving them up front keeps the total allocation
// within capacity, so the remainder step can make it exact. When the fixed
// allocations alone exceed the capacity nothing is left to share; the
// result is clamped at zero so the feasibility check fires.
func Available(records []*PartitionRecord, capacity uint64) uint64 {
	var fixed uint64
	for _, r := range records {
		switch {
		case r.Role == RoleEFI:
			fixed += consts.EFIPartitionSize
		case r.Role == RoleSwap:
			fixed += r.SourceSize
		case r.Encrypted():
			fixed += consts.LUKSHeaderSize
		}
	}
	if fixed >= capacity {
		return 0
	}
	return capacity - fixed
}

// TotalUsed sums measured usage over all sizable partitions.
func TotalUsed(records []*PartitionRecord) uint64 {
	var total uint64
	for _, r := range records {
		if r.Sizable() {
			total += r.UsedBytes
		}
	}
	return total
}

// Feasible reports whether the available bytes cover the measured usage
// with headroom. An infeasible destination is a warning requiring explicit
// operator confirmation, not a hard error.
func Feasible(available, totalUsed uint64) bool {
	return available >= HeadroomFloor(totalUsed)
}

// ComputeSizes fills DestSize for every record: fixed size for EFI, source
// size for swap, and a proportional share of the available bytes with a
// 1.2x-usage floor for everything else. Encrypted containers get the LUKS
// header reserve on top.
func ComputeSizes(records []*PartitionRecord, capacity uint64) error {
	available := Available(records, capacity)
	totalUsed := TotalUsed(records)
	if totalUsed == 0 {
		return ErrNoUsage
	}

	for _, r := range records {
		switch r.Role {
		case RoleEFI:
			r.DestSize = consts.EFIPartitionSize
		case RoleSwap:
			r.DestSize = r.SourceSize
		default:
			share := r.UsedBytes * permille / totalUsed
			size := available / permille * share
			if floor := HeadroomFloor(r.UsedBytes); size < floor {
				size = floor
			}
			if r.Encrypted() {
				size += consts.LUKSHeaderSize
			}
			r.DestSize = size
		}
	}
	return nil
}

// AllocateRemainder adds any unallocated capacity to the last sizable
// partition in physical order, making the total allocation exact. Returns
// the bytes added. Idempotent: with nothing remaining, sizes are unchanged.
func AllocateRemainder(records []*PartitionRecord, capacity uint64) uint64 {
	var total uint64
	for _, r := range records {
		total += r.DestSize
	}
	if total >= capacity {
		return 0
	}
	remaining := capacity - total

	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Sizable() {
			records[i].DestSize += remaining
			return remaining
		}
	}
	return 0
}

// BelowFloor returns the records whose destination size violates the
// headroom floor. Used to re-validate after operator overrides.
func BelowFloor(records []*PartitionRecord) []*PartitionRecord {
	var violations []*PartitionRecord
	for _, r := range records {
		if r.Sizable() && r.DestSize < HeadroomFloor(r.UsedBytes) {
			violations = append(violations, r)
		}
	}
	return violations
}
