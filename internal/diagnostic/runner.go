package diagnostic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single checker run.
const DefaultTimeout = 60 * time.Second

// RunResult is the captured outcome of a checker process.
type RunResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Runner executes a checker process. A non-zero exit code is a result,
// not an error; errors are reserved for processes that could not run.
type Runner interface {
	Run(ctx context.Context, argv []string, dir string) (*RunResult, error)
}

// ExecRunner runs checkers with os/exec.
type ExecRunner struct {
	Timeout time.Duration
}

// NewExecRunner creates a runner; a non-positive timeout uses DefaultTimeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{Timeout: timeout}
}

// Run implements Runner. A missing or unexecutable binary yields
// ErrCheckerUnavailable.
func (r *ExecRunner) Run(ctx context.Context, argv []string, dir string) (*RunResult, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty checker command")
	}

	binary, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCheckerUnavailable, argv[0], err)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, binary, argv[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	result := &RunResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		if execCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s timed out (%s)", argv[0], timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrCheckerUnavailable, argv[0], err)
	}

	return result, nil
}
