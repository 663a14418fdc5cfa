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

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// terminalConsole asks the operator questions on the controlling
// terminal. Interrupt exits immediately; a migration must never proceed
// on an unanswered question.
type terminalConsole struct{}

func (terminalConsole) Confirm(format string, args ...interface{}) bool {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf(format, args...),
		IsConfirm: true,
	}
	result, err := prompt.Run()
	if err == promptui.ErrInterrupt {
		fmt.Fprintf(os.Stderr, "Exiting by interrupt\n")
		os.Exit(-1)
	}
	return strings.EqualFold(result, "y")
}

func (terminalConsole) Ask(label, defaultValue string) string {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   defaultValue,
		AllowEdit: true,
	}
	result, err := prompt.Run()
	if err == promptui.ErrInterrupt {
		fmt.Fprintf(os.Stderr, "Exiting by interrupt\n")
		os.Exit(-1)
	}
	if err != nil || result == "" {
		return defaultValue
	}
	return result
}
