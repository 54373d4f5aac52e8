package network

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindWifi      Kind = "wifi"
	KindWireguard Kind = "wireguard"
	KindOpenvpn   Kind = "openvpn"
)

func ParseKind(v string) (Kind, error) {
	switch kind := Kind(strings.ToLower(strings.TrimSpace(v))); kind {
	case KindWifi, KindWireguard, KindOpenvpn:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, v)
	}
}

type Status string

const (
	StatusConnected    Status = "Connected"
	StatusDisconnected Status = "Disconnected"
	StatusUnknown      Status = "Unknown"
)

// StatusFromExitCode maps the probe convention shared by wg and pgrep:
// zero means the entity is live.
func StatusFromExitCode(exitCode int) Status {
	if exitCode == 0 {
		return StatusConnected
	}
	return StatusDisconnected
}

type Entity struct {
	Kind   Kind   `json:"kind"`
	Name   string `json:"name"`
	Status Status `json:"status"`
}
