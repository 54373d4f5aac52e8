//go:build linux

package link

import (
	"fmt"

	"github.com/vishvananda/netlink"
)

type stateReader struct{}

func (stateReader) State(name string) (string, error) {
	l, err := netlink.LinkByName(name)
	if err != nil {
		return StateUnknown, fmt.Errorf("failed to find interface by name %s: %w", name, err)
	}
	return l.Attrs().OperState.String(), nil
}
