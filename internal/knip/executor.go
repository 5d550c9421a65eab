package knip

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// waitDelay bounds how long Run waits for the output pipes after the
// process was killed. Children that inherited them may outlive the kill.
const waitDelay = 2 * time.Second

// RunResult is the outcome of a finished subprocess. A non-zero exit code
// is data, not an error.
type RunResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Runner runs a command in dir. It returns an error only when the command
// could not be started or was killed through ctx.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (RunResult, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Env is appended to the inherited environment.
	Env []string
}

func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (RunResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	// knip colors its output when it thinks it talks to a terminal
	env := append(cmd.Environ(), "NO_COLOR=1", "FORCE_COLOR=0")
	cmd.Env = append(env, r.Env...)
	// npx and pnpm exec start node as a child; kill the whole group
	killGroup(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := RunResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	// The process exited but a leftover child kept the pipes open.
	if errors.Is(err, exec.ErrWaitDelay) {
		res.ExitCode = cmd.ProcessState.ExitCode()
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if err != nil {
		return res, err
	}
	return res, nil
}
