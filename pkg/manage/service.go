package manage

import (
	"context"
	"net"

	"github.com/netdash/netdash/pkg/network"
	"github.com/netdash/netdash/pkg/network/egress"
	"github.com/netdash/netdash/pkg/network/link"
	"github.com/netdash/netdash/pkg/network/openvpn"
	"github.com/netdash/netdash/pkg/network/wifi"
	"github.com/netdash/netdash/pkg/network/wireguard"
)

const defaultSnapshotConcurrency = 4

type Service interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
	Dispatch(ctx context.Context, request network.ActionRequest) (network.ActionResult, error)
	CurrentWifiAssociation(ctx context.Context, interfaceName string) (string, error)
	AssociatedStations(ctx context.Context) ([]string, error)
	NeighborTable(ctx context.Context) (string, error)
	WireguardDevice(ctx context.Context, name string) (*wireguard.Device, error)
	OpenvpnSessions(ctx context.Context) ([]*openvpn.SessionStatus, error)
	ExternalIP(ctx context.Context) (net.IP, error)
}

type Options struct {
	Wifi                *wifi.Adapter
	Wireguard           *wireguard.Adapter
	Openvpn             *openvpn.Adapter
	LinkStateReader     link.StateReader
	EgressResolver      egress.Resolver
	SnapshotConcurrency int
}

type service struct {
	wifi                *wifi.Adapter
	wireguard           *wireguard.Adapter
	openvpn             *openvpn.Adapter
	registry            *network.Registry
	linkStateReader     link.StateReader
	egressResolver      egress.Resolver
	snapshotConcurrency int
}

func NewService(options Options) Service {
	concurrency := options.SnapshotConcurrency
	if concurrency <= 0 {
		concurrency = defaultSnapshotConcurrency
	}

	return &service{
		wifi:                options.Wifi,
		wireguard:           options.Wireguard,
		openvpn:             options.Openvpn,
		registry:            network.NewRegistry(options.Wifi, options.Wireguard, options.Openvpn),
		linkStateReader:     options.LinkStateReader,
		egressResolver:      options.EgressResolver,
		snapshotConcurrency: concurrency,
	}
}

func (s *service) CurrentWifiAssociation(ctx context.Context, interfaceName string) (string, error) {
	return s.wifi.CurrentAssociation(ctx, interfaceName)
}

func (s *service) AssociatedStations(ctx context.Context) ([]string, error) {
	return s.wifi.ListAssociatedStations(ctx)
}

func (s *service) NeighborTable(ctx context.Context) (string, error) {
	return s.wifi.NeighborTable(ctx)
}

func (s *service) WireguardDevice(ctx context.Context, name string) (*wireguard.Device, error) {
	return s.wireguard.Device(ctx, name)
}

func (s *service) OpenvpnSessions(ctx context.Context) ([]*openvpn.SessionStatus, error) {
	return s.openvpn.Sessions(ctx)
}

func (s *service) ExternalIP(ctx context.Context) (net.IP, error) {
	if s.egressResolver == nil {
		return nil, ErrExternalIPDisabled
	}
	return s.egressResolver.ExternalIP(ctx)
}
