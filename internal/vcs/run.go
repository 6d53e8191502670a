package vcs

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Cmd describes one external invocation: the executable, its argument
// list, the working directory, a timeout, and a human label for logs
// and journal rows.
type Cmd struct {
	Name    string
	Args    []string
	Dir     string
	Timeout time.Duration
	Label   string
}

// RunFunc executes a Cmd. Backends hold one so tests can substitute a
// recorder and assert argument assembly without spawning anything.
type RunFunc func(ctx context.Context, c Cmd) Outcome

// Run spawns c, captures both output streams, and maps every failure
// mode onto an exit code:
//
//	0    the tool ran and succeeded
//	n    the tool ran and exited n
//	127  the executable could not be found
//	128  spawn failed for another reason, or the timeout killed it
//
// Run never returns an error; a failed invocation is an Outcome with a
// non-zero code, which the orchestrator treats as "batch stays pending".
func Run(ctx context.Context, c Cmd) Outcome {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	hideWindow(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	oc := Outcome{
		Label:    c.Label,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	switch {
	case err == nil:
		oc.ExitCode = 0
	case errors.Is(err, exec.ErrNotFound):
		oc.ExitCode = ExitNotFound
	case ctx.Err() != nil:
		// Killed by the timeout (or an outer cancel); either way the
		// batch did not complete.
		oc.ExitCode = ExitSpawnFailure
		if oc.Stderr == "" {
			oc.Stderr = ErrTimeout.Error()
		}
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			oc.ExitCode = exitErr.ExitCode()
		} else {
			oc.ExitCode = ExitSpawnFailure
			if oc.Stderr == "" {
				oc.Stderr = err.Error()
			}
		}
	}
	return oc
}
