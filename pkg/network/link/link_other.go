//go:build !linux

package link

import "errors"

type stateReader struct{}

func (stateReader) State(string) (string, error) {
	return StateUnknown, errors.New("link state is only supported on linux")
}
