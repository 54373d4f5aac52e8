package command

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrSudoPasswordRequired = errors.New("passwordless sudo is required")
)

// LaunchError reports that the executable could not be started at all.
type LaunchError struct {
	Argv []string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", strings.Join(e.Argv, " "), e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that the command was killed after running for longer
// than the configured timeout.
type TimeoutError struct {
	Argv    []string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command timed out after %s: %s", e.Timeout, strings.Join(e.Argv, " "))
}
