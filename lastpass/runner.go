// Copyright 2019 the Drone Authors. All rights reserved.
// Use of this source code is governed by the Blue Oak Model License
// that can be found in the LICENSE file.

package lastpass

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Runner executes a program with an explicit argument vector.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// ExecRunner runs commands as local subprocesses. No shell is involved.
type ExecRunner struct{}

// Run blocks until the process exits. A non-zero exit is reported in the
// result rather than as an error; a process that cannot be started gets
// exit code -1 and the start error as output.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := combineOutput(stdout.String(), stderr.String())
	if err == nil {
		return Result{ExitCode: 0, Output: output}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{ExitCode: exitErr.ExitCode(), Output: output}
	}
	return Result{ExitCode: -1, Output: combineOutput(output, err.Error())}
}

func combineOutput(stdout, stderr string) string {
	switch {
	case stdout != "" && stderr != "":
		return stdout + " / " + stderr
	case stdout != "":
		return stdout
	default:
		return stderr
	}
}
