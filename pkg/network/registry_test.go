package network

import (
	"context"
	"errors"
	"testing"
)

type stubController struct {
	kind Kind
}

func (c stubController) Kind() Kind {
	return c.kind
}

func (c stubController) Actions() []Action {
	return []Action{ActionUp}
}

func (c stubController) Validate(ActionRequest) error {
	return nil
}

func (c stubController) Control(context.Context, ActionRequest) ActionResult {
	return Succeeded(string(c.kind))
}

func TestRegistryGet(t *testing.T) {
	registry := NewRegistry(stubController{kind: KindWireguard})

	controller, err := registry.Get(KindWireguard)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if controller.Kind() != KindWireguard {
		t.Fatalf("expected wireguard controller, got %s", controller.Kind())
	}

	if _, err := registry.Get(KindOpenvpn); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

type otherStubController struct {
	stubController
}

func (c otherStubController) Control(context.Context, ActionRequest) ActionResult {
	return Succeeded("replaced")
}

func TestRegistryLaterControllerReplaces(t *testing.T) {
	registry := NewRegistry(stubController{kind: KindWifi}, otherStubController{stubController{kind: KindWifi}})

	controller, err := registry.Get(KindWifi)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if result := controller.Control(context.Background(), ActionRequest{}); result.Message != "replaced" {
		t.Fatalf("unexpected result %+v", result)
	}
}
