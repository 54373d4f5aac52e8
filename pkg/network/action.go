package network

import "slices"

type Action string

const (
	ActionUp         Action = "up"
	ActionDown       Action = "down"
	ActionConnect    Action = "connect"
	ActionDisconnect Action = "disconnect"
)

func ContainsAction(actions []Action, action Action) bool {
	return slices.Contains(actions, action)
}

// ActionRequest is a single mutating request. For Wi-Fi, Name is the client
// interface and SSID selects the network to join.
type ActionRequest struct {
	Kind     Kind   `json:"kind"`
	Name     string `json:"name" valid:"required"`
	Action   Action `json:"action"`
	SSID     string `json:"ssid,omitempty"`
	Password string `json:"password,omitempty"`
}

type ActionResult struct {
	Succeeded bool   `json:"succeeded"`
	Message   string `json:"message"`
}

func Succeeded(message string) ActionResult {
	return ActionResult{Succeeded: true, Message: message}
}

func Failed(message string) ActionResult {
	return ActionResult{Succeeded: false, Message: message}
}
