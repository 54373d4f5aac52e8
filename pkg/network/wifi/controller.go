package wifi

import (
	"context"
	"fmt"

	"github.com/netdash/netdash/pkg/network"
)

var actions = []network.Action{network.ActionConnect}

func (a *Adapter) Kind() network.Kind {
	return network.KindWifi
}

func (a *Adapter) Actions() []network.Action {
	return actions
}

func (a *Adapter) Validate(request network.ActionRequest) error {
	if request.SSID == "" {
		return fmt.Errorf("%w: %w", network.ErrInvalidRequest, ErrSSIDRequired)
	}
	return nil
}

func (a *Adapter) Control(ctx context.Context, request network.ActionRequest) network.ActionResult {
	return a.Connect(ctx, request.Name, request.SSID, request.Password)
}
