package manage

import "errors"

var (
	ErrExternalIPDisabled = errors.New("external ip lookup is disabled")
)
