package manage

import (
	"context"
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/netdash/netdash/pkg/network"
)

// Dispatch validates the request and hands it to the controller of its kind.
// Validation errors wrap network.ErrInvalidRequest or network.ErrInvalidAction
// and are returned before any process is spawned. Tool failures are reported
// through the result, never through the error.
func (s *service) Dispatch(ctx context.Context, request network.ActionRequest) (network.ActionResult, error) {
	request.Name = strings.TrimSpace(request.Name)

	kind, err := network.ParseKind(string(request.Kind))
	if err != nil {
		return network.ActionResult{}, fmt.Errorf("%w: %w", network.ErrInvalidRequest, err)
	}
	request.Kind = kind

	controller, err := s.registry.Get(kind)
	if err != nil {
		return network.ActionResult{}, fmt.Errorf("%w: %w", network.ErrInvalidRequest, err)
	}

	if !network.ContainsAction(controller.Actions(), request.Action) {
		return network.ActionResult{}, fmt.Errorf("%w: %q is not supported by %s", network.ErrInvalidAction, request.Action, controller.Kind())
	}

	if _, err := govalidator.ValidateStruct(request); err != nil {
		return network.ActionResult{}, fmt.Errorf("%w: %w", network.ErrInvalidRequest, err)
	}

	if err := controller.Validate(request); err != nil {
		return network.ActionResult{}, err
	}

	logger := logrus.
		WithField("actionId", uuid.NewString()).
		WithField("kind", request.Kind).
		WithField("name", request.Name).
		WithField("action", request.Action)
	if request.SSID != "" {
		logger = logger.WithField("ssid", request.SSID)
	}

	logger.Info("dispatching action")
	result := controller.Control(ctx, request)
	if result.Succeeded {
		logger.Info("action succeeded")
	} else {
		logger.WithField("message", result.Message).Warn("action failed")
	}
	return result, nil
}
