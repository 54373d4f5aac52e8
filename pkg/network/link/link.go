// Package link reads kernel link state of network interfaces.
package link

const StateUnknown = "unknown"

// StateReader reports the operational state of an interface, such as "up"
// or "down".
type StateReader interface {
	State(name string) (string, error)
}

func NewStateReader() StateReader {
	return stateReader{}
}
