package network

import "context"

// Controller translates action requests for one backend into native tool
// invocations.
type Controller interface {
	Kind() Kind
	Actions() []Action
	Validate(request ActionRequest) error
	Control(ctx context.Context, request ActionRequest) ActionResult
}

// Inventory enumerates the configured entities of one backend and probes
// their status.
type Inventory interface {
	Kind() Kind
	List(ctx context.Context) ([]string, error)
	Status(ctx context.Context, name string) Status
}
