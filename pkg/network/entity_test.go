package network

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	kind, err := ParseKind(" WireGuard ")
	if err != nil {
		t.Fatalf("ParseKind returned error: %v", err)
	}
	if kind != KindWireguard {
		t.Fatalf("expected wireguard, got %q", kind)
	}

	if _, err := ParseKind("ipsec"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestStatusFromExitCode(t *testing.T) {
	if status := StatusFromExitCode(0); status != StatusConnected {
		t.Fatalf("expected Connected, got %s", status)
	}
	for _, code := range []int{1, 2, 127} {
		if status := StatusFromExitCode(code); status != StatusDisconnected {
			t.Fatalf("expected Disconnected for exit code %d, got %s", code, status)
		}
	}
}
