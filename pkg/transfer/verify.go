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
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	sha256 "github.com/minio/sha256-simd"
	"k8s.io/klog/v2"
)

var errEnoughSamples = errors.New("enough samples")

// Mismatch denotes a verification failure for one file.
type Mismatch struct {
	Path   string
	Reason string
}

// Verify spot-checks the transfer by hashing a sample of regular files
// from the source tree and comparing against the destination. maxSamples
// bounds the work; zero disables verification.
func Verify(src, dst string, maxSamples int) ([]Mismatch, error) {
	if maxSamples <= 0 {
		return nil, nil
	}

	var mismatches []Mismatch
	sampled := 0

	err := filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			klog.V(5).Infof("skipping %v during verification; %v", path, err)
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if sampled >= maxSamples {
			return errEnoughSamples
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		relative, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		sampled++

		srcSum, err := checksum(path)
		if err != nil {
			klog.V(5).Infof("unable to hash source %v; %v", path, err)
			return nil
		}
		dstSum, err := checksum(filepath.Join(dst, relative))
		if err != nil {
			mismatches = append(mismatches, Mismatch{Path: relative, Reason: "missing on destination"})
			return nil
		}
		if srcSum != dstSum {
			mismatches = append(mismatches, Mismatch{Path: relative, Reason: "checksum differs"})
		}
		return nil
	})
	if err != nil && !errors.Is(err, errEnoughSamples) {
		return nil, err
	}
	return mismatches, nil
}

func checksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err = io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
