// Copyright 2019 the Drone Authors. All rights reserved.
// Use of this source code is governed by the Blue Oak Model License
// that can be found in the LICENSE file.

package lastpass

import (
	"errors"
	"fmt"
	"strings"
)

// notFoundMarker is printed by lpass when nothing matches a query or id.
const notFoundMarker = "Error: Could not find specified account(s)."

var (
	// ErrNotInstalled is returned when the lpass executable is not on PATH.
	ErrNotInstalled = errors.New("lpass cli is not installed")
	// ErrNotAuthenticated is returned when lpass status reports no session.
	ErrNotAuthenticated = errors.New("not logged in to LastPass")
	// ErrEntryNotFound is returned by GetEntry for unknown ids.
	ErrEntryNotFound = errors.New("entry not found")
)

// ToolError is a failed lpass invocation. Output holds the combined
// stdout and stderr so callers can show it to the user.
type ToolError struct {
	ExitCode int
	Output   string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("lpass exited with status %d: %s", e.ExitCode, strings.TrimSpace(e.Output))
}

func isNotFound(output string) bool {
	return strings.Contains(output, notFoundMarker)
}
