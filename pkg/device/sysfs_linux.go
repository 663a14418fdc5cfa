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

package device

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
)

const sectorSize = 512

func readFirstLine(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	s, err := bufio.NewReader(file).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func readdirnames(dirname string) ([]string, error) {
	dir, err := os.Open(dirname)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer dir.Close()
	return dir.Readdirnames(-1)
}

func getMajorMinor(name string) (string, error) {
	return readFirstLine("/sys/class/block/" + name + "/dev")
}

func getSize(name string) (uint64, error) {
	s, err := readFirstLine("/sys/class/block/" + name + "/size")
	if err != nil {
		return 0, err
	}
	ui64, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ui64 * sectorSize, nil
}

func getPartitionNumber(name string) (int, error) {
	s, err := readFirstLine("/sys/class/block/" + name + "/partition")
	if err != nil || s == "" {
		return 0, err
	}
	return strconv.Atoi(s)
}

func getPartitionNames(name string) ([]string, error) {
	names, err := readdirnames("/sys/block/" + name)
	if err != nil {
		return nil, err
	}

	partitions := []string{}
	for _, n := range names {
		if strings.HasPrefix(n, name) {
			partitions = append(partitions, n)
		}
	}
	return partitions, nil
}

func getHolders(name string) ([]string, error) {
	return readdirnames("/sys/class/block/" + name + "/holders")
}

func getDMName(name string) (string, error) {
	return readFirstLine("/sys/class/block/" + name + "/dm/name")
}
