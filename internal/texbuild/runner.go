// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package texbuild

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Result is the captured outcome of one tool invocation.
type Result struct {
	// ExitCode is the process exit status. -1 when the process never ran
	// or was killed by a signal.
	ExitCode int

	Stdout string
	Stderr string

	// StartErr is set when the process could not be started at all
	// (e.g. the binary is not on PATH).
	StartErr error
}

// Runner invokes an external tool with dir as its working directory.
// Implementations never return an error for a non-zero exit; that is
// reported through Result and judged by Classify.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) Result
}

// ExecRunner is the production Runner backed by os/exec. Standard input is
// left unattached so a tool that prompts reads EOF instead of blocking.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) Result {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
		res.StartErr = err
	}
	return res
}
