// Package commandtest provides a scripted command.Runner for tests of
// packages that shell out to native tools.
package commandtest

import (
	"context"
	"strings"
	"sync"

	"github.com/netdash/netdash/pkg/command"
)

// Response is the pre-programmed outcome of one command line.
type Response struct {
	Result *command.Result
	Err    error
}

// Runner records every invocation and answers from the responses registered
// with On. Unknown command lines exit with code 127. It is safe for
// concurrent use.
type Runner struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     [][]string
	sudo      bool
}

func NewRunner() *Runner {
	return &Runner{
		responses: make(map[string]Response),
	}
}

// WithSudo makes the runner report sudo mode, so callers route file access
// through it.
func (r *Runner) WithSudo() *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sudo = true
	return r
}

func (r *Runner) UsesSudo() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sudo
}

// On registers the response for the exact argv.
func (r *Runner) On(argv []string, response Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[key(argv)] = response
	return r
}

// OnResult is a shorthand for On with a completed process.
func (r *Runner) OnResult(argv []string, exitCode int, stdout string, stderr string) *Runner {
	return r.On(argv, Response{
		Result: &command.Result{
			ExitCode: exitCode,
			Stdout:   stdout,
			Stderr:   stderr,
		},
	})
}

func (r *Runner) Run(_ context.Context, argv ...string) (*command.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, append([]string(nil), argv...))

	response, ok := r.responses[key(argv)]
	if !ok {
		return &command.Result{
			ExitCode: 127,
			Stderr:   "unexpected command: " + strings.Join(argv, " "),
		}, nil
	}
	if response.Err != nil {
		return nil, response.Err
	}

	result := *response.Result
	return &result, nil
}

// Calls returns a copy of every argv seen so far.
func (r *Runner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	calls := make([][]string, 0, len(r.calls))
	for _, call := range r.calls {
		calls = append(calls, append([]string(nil), call...))
	}
	return calls
}

func key(argv []string) string {
	return strings.Join(argv, "\x00")
}
