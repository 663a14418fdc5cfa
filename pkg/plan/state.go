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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// The persisted plan is a flat KEY=value record, written once immediately
// after destination partitioning succeeds and read wholesale on resume.
// Per-partition fields are indexed by partition position.

const stateVersion = "1"

const (
	keyVersion        = "VERSION"
	keySourceDisk     = "SOURCE_DISK"
	keyDestDisk       = "DEST_DISK"
	keyEncryptedHome  = "ENCRYPTED_HOME"
	keyPartitionCount = "PARTITION_COUNT"
)

var partitionFieldKeys = []string{
	"DEVICE", "ROLE", "FSTYPE", "INNER_FSTYPE", "MOUNTPOINT",
	"MAPPER", "SRC_SIZE", "USED", "DEST_SIZE", "DEST_DEVICE",
}

// ErrNoState denotes that no persisted migration plan exists. Resume
// cannot fabricate a plan; this is fatal on resumed runs.
var ErrNoState = errors.New("no persisted migration plan found")

// Save writes the whole plan to filename atomically.
func Save(p *MigrationPlan, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err = encodePlan(tmp, p); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}

// Load reads a previously persisted plan. The whole plan is reconstructed
// or the load fails; there is no partial recovery.
func Load(filename string) (*MigrationPlan, error) {
	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %v", ErrNoState, filename)
		}
		return nil, err
	}
	defer file.Close()

	return decodePlan(file)
}

func encodePlan(w io.Writer, p *MigrationPlan) error {
	writer := bufio.NewWriter(w)

	writeKV := func(key, value string) {
		fmt.Fprintf(writer, "%v=%v\n", key, value)
	}

	writeKV(keyVersion, stateVersion)
	writeKV(keySourceDisk, p.SourceDisk)
	writeKV(keyDestDisk, p.DestDisk)
	writeKV(keyEncryptedHome, strconv.FormatBool(p.EncryptedHome))
	writeKV(keyPartitionCount, strconv.Itoa(len(p.Records)))

	for i, r := range p.Records {
		values := []string{
			r.Device, string(r.Role), r.FSType, r.InnerFSType, r.MountPoint,
			r.MapperName,
			strconv.FormatUint(r.SourceSize, 10),
			strconv.FormatUint(r.UsedBytes, 10),
			strconv.FormatUint(r.DestSize, 10),
			r.DestDevice,
		}
		for j, key := range partitionFieldKeys {
			writeKV(fmt.Sprintf("PART_%d_%v", i, key), values[j])
		}
	}

	return writer.Flush()
}

func decodePlan(r io.Reader) (*MigrationPlan, error) {
	values := map[string]string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens := strings.SplitN(line, "=", 2)
		if len(tokens) != 2 {
			return nil, fmt.Errorf("malformed state line %q", line)
		}
		values[tokens[0]] = tokens[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	require := func(key string) (string, error) {
		value, found := values[key]
		if !found {
			return "", fmt.Errorf("state file misses key %v", key)
		}
		return value, nil
	}

	version, err := require(keyVersion)
	if err != nil {
		return nil, err
	}
	if version != stateVersion {
		return nil, fmt.Errorf("unsupported state version %v", version)
	}

	p := &MigrationPlan{}
	if p.SourceDisk, err = require(keySourceDisk); err != nil {
		return nil, err
	}
	if p.DestDisk, err = require(keyDestDisk); err != nil {
		return nil, err
	}
	encryptedHome, err := require(keyEncryptedHome)
	if err != nil {
		return nil, err
	}
	if p.EncryptedHome, err = strconv.ParseBool(encryptedHome); err != nil {
		return nil, fmt.Errorf("invalid %v value; %w", keyEncryptedHome, err)
	}
	countValue, err := require(keyPartitionCount)
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(countValue)
	if err != nil || count <= 0 {
		return nil, fmt.Errorf("invalid %v value %v", keyPartitionCount, countValue)
	}

	for i := 0; i < count; i++ {
		fields := map[string]string{}
		for _, key := range partitionFieldKeys {
			value, err := require(fmt.Sprintf("PART_%d_%v", i, key))
			if err != nil {
				return nil, err
			}
			fields[key] = value
		}

		role, err := ParseRole(fields["ROLE"])
		if err != nil {
			return nil, fmt.Errorf("partition %v: %w", i, err)
		}

		record := &PartitionRecord{
			Device:      fields["DEVICE"],
			Role:        role,
			FSType:      fields["FSTYPE"],
			InnerFSType: fields["INNER_FSTYPE"],
			MountPoint:  fields["MOUNTPOINT"],
			MapperName:  fields["MAPPER"],
			DestDevice:  fields["DEST_DEVICE"],
		}
		if record.SourceSize, err = strconv.ParseUint(fields["SRC_SIZE"], 10, 64); err != nil {
			return nil, fmt.Errorf("partition %v: invalid source size; %w", i, err)
		}
		if record.UsedBytes, err = strconv.ParseUint(fields["USED"], 10, 64); err != nil {
			return nil, fmt.Errorf("partition %v: invalid used bytes; %w", i, err)
		}
		if record.DestSize, err = strconv.ParseUint(fields["DEST_SIZE"], 10, 64); err != nil {
			return nil, fmt.Errorf("partition %v: invalid destination size; %w", i, err)
		}

		p.Records = append(p.Records, record)
	}

	return p, nil
}
