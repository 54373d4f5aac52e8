package manage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/netdash/netdash/pkg/network"
	"github.com/netdash/netdash/pkg/network/link"
)

type Snapshot struct {
	WifiInterface      string           `json:"wifiInterface"`
	WifiInterfaceState string           `json:"wifiInterfaceState"`
	WifiCurrent        string           `json:"wifiCurrent"`
	WifiNetworks       []string         `json:"wifiNetworks"`
	Wireguard          []network.Entity `json:"wireguard"`
	Openvpn            []network.Entity `json:"openvpn"`
	TakenAt            time.Time        `json:"takenAt"`
}

// Snapshot queries every entity of every backend. The returned snapshot is
// never nil; the error lists the queries that could not be answered.
func (s *service) Snapshot(ctx context.Context) (*Snapshot, error) {
	snapshot := &Snapshot{
		WifiInterface:      s.wifi.InterfaceName(),
		WifiInterfaceState: s.interfaceState(s.wifi.InterfaceName()),
		TakenAt:            time.Now(),
	}

	var (
		mu   sync.Mutex
		errs *multierror.Error
	)
	appendErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = multierror.Append(errs, err)
	}

	wireguardNames, err := s.wireguard.List(ctx)
	if err != nil {
		appendErr(fmt.Errorf("failed to list wireguard interfaces: %w", err))
	}
	openvpnNames, err := s.openvpn.List(ctx)
	if err != nil {
		appendErr(fmt.Errorf("failed to list openvpn clients: %w", err))
	}

	snapshot.Wireguard = make([]network.Entity, len(wireguardNames))
	snapshot.Openvpn = make([]network.Entity, len(openvpnNames))

	var g errgroup.Group
	g.SetLimit(s.snapshotConcurrency)

	g.Go(func() error {
		current, err := s.wifi.CurrentAssociation(ctx, "")
		if err != nil {
			appendErr(fmt.Errorf("failed to query current wifi association: %w", err))
			return nil
		}
		snapshot.WifiCurrent = current
		return nil
	})

	g.Go(func() error {
		networks, err := s.wifi.ListAvailableNetworks(ctx)
		if err != nil {
			appendErr(fmt.Errorf("failed to list wifi networks: %w", err))
			return nil
		}
		snapshot.WifiNetworks = networks
		return nil
	})

	s.queryStatuses(&g, ctx, s.wireguard, wireguardNames, snapshot.Wireguard)
	s.queryStatuses(&g, ctx, s.openvpn, openvpnNames, snapshot.Openvpn)

	_ = g.Wait()

	return snapshot, errs.ErrorOrNil()
}

// queryStatuses fills entities[i] with the status of names[i].
func (s *service) queryStatuses(g *errgroup.Group, ctx context.Context, inventory network.Inventory, names []string, entities []network.Entity) {
	for i, name := range names {
		g.Go(func() error {
			entities[i] = network.Entity{
				Kind:   inventory.Kind(),
				Name:   name,
				Status: inventory.Status(ctx, name),
			}
			return nil
		})
	}
}

func (s *service) interfaceState(name string) string {
	if s.linkStateReader == nil {
		return link.StateUnknown
	}

	state, err := s.linkStateReader.State(name)
	if err != nil {
		logrus.WithError(err).WithField("interface", name).Debug("failed to read link state")
		return link.StateUnknown
	}
	return state
}
