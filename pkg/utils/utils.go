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

// Package utils provides small printing and encoding helpers shared by the
// command line and the engine.
package utils

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"sigs.k8s.io/yaml"
)

// Eprintf prints the formatted message to STDERR. Error messages are
// prefixed and printed even in quiet mode.
func Eprintf(quiet, asErr bool, format string, args ...interface{}) {
	if quiet && !asErr {
		return
	}
	if asErr {
		fmt.Fprintf(os.Stderr, "%v ", color.HiRedString("ERROR"))
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// ToYAML converts any object to its YAML representation.
func ToYAML(obj interface{}) (string, error) {
	data, err := yaml.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("unable to marshal object to YAML; %w", err)
	}
	return string(data), nil
}
