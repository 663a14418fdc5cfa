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
	"testing"

	"github.com/diskshift/diskshift/pkg/consts"
)

const (
	gib = uint64(1) << 30
)

func sizingRecords(homeUsed uint64) []*PartitionRecord {
	return []*PartitionRecord{
		{Device: "/dev/sda1", Role: RoleEFI, FSType: "vfat", MountPoint: "/boot/efi", SourceSize: 512 << 20, UsedBytes: 10 << 20},
		{Device: "/dev/sda2", Role: RoleRoot, FSType: "ext4", MountPoint: "/", SourceSize: 100 * gib, UsedBytes: 30 * gib},
		{Device: "/dev/sda3", Role: RoleHome, FSType: "ext4", MountPoint: "/home", SourceSize: 200 * gib, UsedBytes: homeUsed},
	}
}

func TestHeadroomFloor(t *testing.T) {
	testCases := []struct {
		used     uint64
		expected uint64
	}{
		{0, 0},
		{5, 6},
		{1, 2},               // rounds up, never below 1.2x
		{30 * gib, 36 * gib}, // exact multiple
		{10, 12},
	}
	for _, testCase := range testCases {
		if result := HeadroomFloor(testCase.used); result != testCase.expected {
			t.Fatalf("used %v: expected %v, got %v", testCase.used, testCase.expected, result)
		}
	}
}

func TestComputeSizesProportional(t *testing.T) {
	// 100 GiB destination, 512 MiB EFI, 30 GiB root usage, 50 GiB home
	// usage: shares land near 37.3/62.2 GiB, both above their floors.
	records := sizingRecords(50 * gib)
	capacity := 100 * gib

	available := Available(records, capacity)
	if expected := capacity - uint64(consts.EFIPartitionSize); available != expected {
		t.Fatalf("available: expected %v, got %v", expected, available)
	}

	totalUsed := TotalUsed(records)
	if expected := 80 * gib; totalUsed != uint64(expected) {
		t.Fatalf("total used: expected %v, got %v", expected, totalUsed)
	}

	if !Feasible(available, totalUsed) {
		t.Fatal("feasible layout reported infeasible")
	}

	if err := ComputeSizes(records, capacity); err != nil {
		t.Fatal(err)
	}

	if records[0].DestSize != uint64(consts.EFIPartitionSize) {
		t.Fatalf("EFI size: expected %v, got %v", consts.EFIPartitionSize, records[0].DestSize)
	}

	rootSize, homeSize := records[1].DestSize, records[2].DestSize

	// Each size respects its floor and the proportional split.
	if rootSize < HeadroomFloor(records[1].UsedBytes) {
		t.Fatalf("root size %v below floor", rootSize)
	}
	if homeSize < HeadroomFloor(records[2].UsedBytes) {
		t.Fatalf("home size %v below floor", homeSize)
	}
	if rootSize >= homeSize {
		t.Fatalf("proportionality violated: root %v >= home %v", rootSize, homeSize)
	}

	// Sum of usage-derived sizes never exceeds the available bytes.
	if rootSize+homeSize > available {
		t.Fatalf("allocated %v exceeds available %v", rootSize+homeSize, available)
	}

	// Root share is 375 permille of available (30/80).
	if expected := available / 1000 * 375; rootSize != expected {
		t.Fatalf("root share: expected %v, got %v", expected, rootSize)
	}
}

func TestComputeSizesFloorApplied(t *testing.T) {
	// A tiny partition's proportional share falls below its 1.2x floor.
	records := []*PartitionRecord{
		{Device: "/dev/sda1", Role: RoleRoot, FSType: "ext4", MountPoint: "/", SourceSize: 100 * gib, UsedBytes: 99 * gib},
		{Device: "/dev/sda2", Role: RoleHome, FSType: "ext4", MountPoint: "/home", SourceSize: 10 * gib, UsedBytes: 1 * gib},
	}
	// Destination barely feasible: 100 GiB usage, 121 GiB capacity.
	capacity := 121 * gib

	if err := ComputeSizes(records, capacity); err != nil {
		t.Fatal(err)
	}
	// home share would be 121 GiB * 10/1000 = 1.21 GiB, floor is 1.2 GiB;
	// both must hold.
	if records[1].DestSize < HeadroomFloor(records[1].UsedBytes) {
		t.Fatalf("floor not applied: %v", records[1].DestSize)
	}
}

func TestComputeSizesEncryptedOverhead(t *testing.T) {
	records := []*PartitionRecord{
		{Device: "/dev/sda1", Role: RoleRoot, FSType: "ext4", MountPoint: "/", SourceSize: 100 * gib, UsedBytes: 30 * gib},
		{Device: "/dev/sda2", Role: RoleHome, FSType: FSTypeLUKS, InnerFSType: "ext4", MountPoint: "/home", MapperName: "sda2_crypt", SourceSize: 100 * gib, UsedBytes: 30 * gib},
	}
	if err := ComputeSizes(records, 200*gib); err != nil {
		t.Fatal(err)
	}
	if records[1].DestSize != records[0].DestSize+uint64(consts.LUKSHeaderSize) {
		t.Fatalf("encrypted partition misses header reserve: plain %v encrypted %v",
			records[0].DestSize, records[1].DestSize)
	}
}

func TestComputeSizesSwapKeepsSourceSize(t *testing.T) {
	records := append(sizingRecords(50*gib), &PartitionRecord{
		Device: "/dev/sda4", Role: RoleSwap, FSType: "swap", MountPoint: MountPointSwap, SourceSize: 8 * gib,
	})
	if err := ComputeSizes(records, 200*gib); err != nil {
		t.Fatal(err)
	}
	if records[3].DestSize != 8*gib {
		t.Fatalf("swap size: expected %v, got %v", 8*gib, records[3].DestSize)
	}
}

func TestComputeSizesNoUsage(t *testing.T) {
	records := []*PartitionRecord{
		{Device: "/dev/sda1", Role: RoleRoot, FSType: "ext4", MountPoint: "/"},
	}
	if err := ComputeSizes(records, 100*gib); err != ErrNoUsage {
		t.Fatalf("expected ErrNoUsage, got %v", err)
	}
}

func TestFeasibilityWarning(t *testing.T) {
	// Same disks with 90 GiB home usage: 120 GiB total usage needs 144
	// GiB headroom against ~99.5 GiB available.
	records := sizingRecords(90 * gib)
	capacity := 100 * gib

	available := Available(records, capacity)
	totalUsed := TotalUsed(records)
	if Feasible(available, totalUsed) {
		t.Fatalf("undersized destination reported feasible: available %v, used %v", available, totalUsed)
	}
}

func TestFeasibilityFixedAllocationsExceedCapacity(t *testing.T) {
	// A 4 GiB destination cannot even hold the fixed allocations (512 MiB
	// EFI plus an 8 GiB swap copy). Available must clamp at zero instead
	// of wrapping around, so the layout is reported infeasible.
	records := []*PartitionRecord{
		{Device: "/dev/sda1", Role: RoleEFI, FSType: "vfat", MountPoint: "/boot/efi", SourceSize: 512 << 20, UsedBytes: 10 << 20},
		{Device: "/dev/sda2", Role: RoleRoot, FSType: "ext4", MountPoint: "/", SourceSize: 100 * gib, UsedBytes: 30 * gib},
		{Device: "/dev/sda3", Role: RoleSwap, FSType: "swap", MountPoint: MountPointSwap, SourceSize: 8 * gib},
	}
	capacity := 4 * gib

	available := Available(records, capacity)
	if available != 0 {
		t.Fatalf("available: expected 0, got %v", available)
	}
	if Feasible(available, TotalUsed(records)) {
		t.Fatal("undersized destination reported feasible")
	}
}

func TestAllocateRemainder(t *testing.T) {
	records := sizingRecords(50 * gib)
	capacity := 100 * gib
	if err := ComputeSizes(records, capacity); err != nil {
		t.Fatal(err)
	}

	added := AllocateRemainder(records, capacity)
	if added == 0 {
		t.Fatal("expected positive remainder")
	}

	// Remainder goes to the last sizable record in physical order.
	var total uint64
	for _, r := range records {
		total += r.DestSize
	}
	if total != capacity {
		t.Fatalf("total allocation %v != capacity %v", total, capacity)
	}

	// Idempotent: re-running with zero remaining leaves sizes unchanged.
	before := []uint64{records[0].DestSize, records[1].DestSize, records[2].DestSize}
	if added = AllocateRemainder(records, capacity); added != 0 {
		t.Fatalf("second allocation added %v", added)
	}
	for i, r := range records {
		if r.DestSize != before[i] {
			t.Fatalf("record %v size changed on idempotent re-run", i)
		}
	}
}

func TestAllocateRemainderSkipsSwapAndEFI(t *testing.T) {
	records := []*PartitionRecord{
		{Device: "/dev/sda1", Role: RoleEFI, DestSize: uint64(consts.EFIPartitionSize)},
		{Device: "/dev/sda2", Role: RoleRoot, UsedBytes: 10 * gib, DestSize: 20 * gib},
		{Device: "/dev/sda3", Role: RoleSwap, SourceSize: 8 * gib, DestSize: 8 * gib},
	}
	capacity := 100 * gib
	AllocateRemainder(records, capacity)

	if records[2].DestSize != 8*gib {
		t.Fatal("remainder leaked into swap")
	}
	if records[0].DestSize != uint64(consts.EFIPartitionSize) {
		t.Fatal("remainder leaked into EFI")
	}
	if records[1].DestSize == 20*gib {
		t.Fatal("remainder not allocated to last sizable partition")
	}
}

func TestBelowFloor(t *testing.T) {
	records := sizingRecords(50 * gib)
	if err := ComputeSizes(records, 200*gib); err != nil {
		t.Fatal(err)
	}
	if violations := BelowFloor(records); len(violations) != 0 {
		t.Fatalf("unexpected violations %v", violations)
	}

	// Operator override below the floor is detected.
	records[2].DestSize = records[2].UsedBytes
	violations := BelowFloor(records)
	if len(violations) != 1 || violations[0].Device != "/dev/sda3" {
		t.Fatalf("override violation not detected: %v", violations)
	}
}
