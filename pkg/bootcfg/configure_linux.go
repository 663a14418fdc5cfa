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
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/diskshift/diskshift/pkg/consts"
	"github.com/diskshift/diskshift/pkg/plan"
	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

const backupSuffix = "." + consts.AppName + ".bak"

// Backend regenerates /etc/fstab and /etc/crypttab on the mounted
// destination tree. The previous versions are backed up first; the
// regenerated mount table is only accepted after confirmation, otherwise
// the backup stays authoritative.
type Backend struct {
	// Confirm gates replacing the copied mount table.
	Confirm func(format string, args ...interface{}) bool
}

// Configure rewrites destination boot metadata to the new device
// identifiers.
func (b Backend) Configure(ctx context.Context, p *plan.MigrationPlan, destRoot string) error {
	uuids := map[string]string{}
	for _, r := range p.Records {
		value, err := readUUID(ctx, r.DestDevice)
		if err != nil {
			return err
		}
		uuids[r.DestDevice] = value
	}

	// Resolve final boot-time mapper names, preferring whatever the
	// migrated crypttab already references.
	mapperNames := map[string]string{}
	for _, r := range p.Records {
		if !r.Encrypted() {
			continue
		}
		name := r.MapperName
		if file, err := os.Open(filepath.Join(destRoot, "etc", "crypttab")); err == nil {
			name = PreservedMapperName(file, name)
			file.Close()
		}
		mapperNames[r.Device] = name
	}

	fstab, err := GenerateFstab(p, uuids, mapperNames)
	if err != nil {
		return err
	}

	fstabPath := filepath.Join(destRoot, "etc", "fstab")
	if err := backupFile(fstabPath); err != nil {
		return err
	}

	fmt.Println("Regenerated mount table:")
	fmt.Println(fstab)
	if b.Confirm != nil && !b.Confirm("Write regenerated mount table to %v?", fstabPath) {
		fmt.Printf("Keeping previous mount table; backup at %v\n", fstabPath+backupSuffix)
	} else if err := os.WriteFile(fstabPath, []byte(fstab), 0o644); err != nil {
		return fmt.Errorf("unable to write %v; %w", fstabPath, err)
	}

	// The unlock table is regenerated even when the mount table is kept:
	// formatting gave the destination containers new UUIDs, so the copied
	// crypttab cannot unlock them at boot.
	return b.writeCrypttab(ctx, p, destRoot, mapperNames)
}

func (b Backend) writeCrypttab(ctx context.Context, p *plan.MigrationPlan, destRoot string, mapperNames map[string]string) error {
	var entries []CryptEntry
	for _, r := range p.Records {
		if !r.Encrypted() {
			continue
		}
		containerUUID, err := readUUID(ctx, r.DestDevice)
		if err != nil {
			return err
		}
		entries = append(entries, CryptEntry{Name: mapperNames[r.Device], UUID: containerUUID})
	}
	if len(entries) == 0 {
		return nil
	}

	crypttabPath := filepath.Join(destRoot, "etc", "crypttab")
	if err := backupFile(crypttabPath); err != nil {
		return err
	}
	return os.WriteFile(crypttabPath, []byte(GenerateCrypttab(entries)), 0o600)
}

// Describe returns the actions Configure would perform, for dry runs.
func (Backend) Describe(p *plan.MigrationPlan, destRoot string) []string {
	actions := []string{
		fmt.Sprintf("regenerate %v from destination filesystem UUIDs (backup kept)", filepath.Join(destRoot, "etc", "fstab")),
	}
	for _, r := range p.Records {
		if r.Encrypted() {
			actions = append(actions, fmt.Sprintf(
				"generate unlock-table entry for %v preserving the existing mapper name where derivable", r.Device))
		}
	}
	return actions
}

func backupFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return os.WriteFile(path+backupSuffix, data, 0o644)
}

// readUUID is a variable for tests.
var readUUID = func(ctx context.Context, device string) (string, error) {
	output, err := exec.CommandContext(ctx, "blkid", "-o", "value", "-s", "UUID", device).Output()
	if err != nil {
		return "", fmt.Errorf("unable to read filesystem UUID of %v; %w", device, err)
	}
	value := strings.TrimSpace(string(output))
	if value == "" {
		return "", fmt.Errorf("device %v has no filesystem UUID", device)
	}
	// FAT volume IDs are short; everything else must be RFC-4122 shaped.
	if len(value) == 36 {
		if _, err := uuid.Parse(value); err != nil {
			return "", fmt.Errorf("device %v has malformed UUID %v; %w", device, value, err)
		}
	}
	klog.V(5).Infof("device %v has UUID %v", device, value)
	return value, nil
}
