package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	osexec "os/exec"
	"strings"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second
	waitDelay      = time.Second
)

type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (r *Result) Failed() bool {
	return r.ExitCode != 0
}

// Runner executes a single external program. A nonzero exit code is reported
// through Result, not as an error.
type Runner interface {
	Run(ctx context.Context, argv ...string) (*Result, error)
}

type execRunner struct {
	timeout  time.Duration
	useSudo  bool
	sudoPath string
}

func NewRunner(timeout time.Duration, useSudo bool) (Runner, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	sudoPath := ""
	if useSudo {
		var err error
		sudoPath, err = osexec.LookPath("sudo")
		if err != nil {
			return nil, fmt.Errorf("failed to find sudo command: %w", err)
		}
	}

	return &execRunner{
		timeout:  timeout,
		useSudo:  useSudo,
		sudoPath: sudoPath,
	}, nil
}

func (r *execRunner) Run(ctx context.Context, argv ...string) (*Result, error) {
	if len(argv) == 0 {
		return nil, &LaunchError{Err: errors.New("empty command")}
	}

	cmdName := argv[0]
	cmdArgs := argv[1:]
	if r.useSudo {
		cmdName = r.sudoPath
		cmdArgs = append([]string{"-n"}, argv...)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := osexec.CommandContext(timeoutCtx, cmdName, cmdArgs...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if err == nil {
		return &Result{
			Stdout: stdout.String(),
			Stderr: stderr.String(),
		}, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("command %s aborted: %w", argv[0], ctxErr)
	}
	if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
		return nil, &TimeoutError{Argv: argv, Timeout: r.timeout}
	}

	// A process that ran reports its exit status even when Wait also failed,
	// e.g. a daemonized child kept the output pipes open past waitDelay.
	if cmd.ProcessState == nil {
		return nil, &LaunchError{Argv: argv, Err: err}
	}

	result := &Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if r.useSudo && sudoPasswordRequired(result) {
		return nil, fmt.Errorf("%w: %s", ErrSudoPasswordRequired, strings.Join(argv, " "))
	}
	return result, nil
}

// UsesSudo reports whether commands run through sudo.
func (r *execRunner) UsesSudo() bool {
	return r.useSudo
}

func sudoPasswordRequired(result *Result) bool {
	if !result.Failed() {
		return false
	}
	lower := strings.ToLower(result.Stderr)
	return strings.Contains(lower, "a password is required") || strings.Contains(lower, "no tty present")
}

// UsesSudo reports whether runner elevates commands through sudo. Callers
// that would otherwise touch root-owned files directly go through the runner
// instead.
func UsesSudo(runner Runner) bool {
	s, ok := runner.(interface{ UsesSudo() bool })
	return ok && s.UsesSudo()
}
