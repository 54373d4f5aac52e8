package network

import (
	"fmt"
)

// Registry holds the controller of each backend kind. It is fixed at
// construction.
type Registry struct {
	controllers map[Kind]Controller
}

// NewRegistry indexes controllers by kind; a later controller replaces an
// earlier one of the same kind.
func NewRegistry(controllers ...Controller) *Registry {
	r := &Registry{
		controllers: make(map[Kind]Controller, len(controllers)),
	}
	for _, c := range controllers {
		r.controllers[c.Kind()] = c
	}
	return r
}

func (r *Registry) Get(kind Kind) (Controller, error) {
	c, ok := r.controllers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return c, nil
}
