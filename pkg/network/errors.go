package network

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidAction  = errors.New("invalid action")
	ErrUnknownKind    = errors.New("unknown backend kind")
	ErrToolFailure    = errors.New("tool failure")
)
