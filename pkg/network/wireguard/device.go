package wireguard

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.zx2c4.com/wireguard/wgctrl"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

type Device struct {
	Name         string  `json:"name"`
	PublicKey    string  `json:"publicKey"`
	ListenPort   int     `json:"listenPort"`
	FirewallMark int     `json:"firewallMark"`
	Peers        []*Peer `json:"peers"`
}

type Peer struct {
	PublicKey           string    `json:"publicKey"`
	Endpoint            string    `json:"endpoint,omitempty"`
	AllowedIPs          []string  `json:"allowedIps"`
	LastHandshakeTime   time.Time `json:"lastHandshakeTime"`
	ReceiveBytes        int64     `json:"receiveBytes"`
	TransmitBytes       int64     `json:"transmitBytes"`
	PersistentKeepalive string    `json:"persistentKeepalive,omitempty"`
}

type DeviceReader interface {
	Device(name string) (*Device, error)
	Close() error
}

type wgctrlDeviceReader struct {
	client *wgctrl.Client
}

func NewDeviceReader() (DeviceReader, error) {
	client, err := wgctrl.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize wireguard client: %w", err)
	}
	return &wgctrlDeviceReader{
		client: client,
	}, nil
}

func (r *wgctrlDeviceReader) Device(name string) (*Device, error) {
	device, err := r.client.Device(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, name)
		}
		return nil, err
	}
	return deviceFromWgtypes(device), nil
}

func (r *wgctrlDeviceReader) Close() error {
	return r.client.Close()
}

func deviceFromWgtypes(device *wgtypes.Device) *Device {
	d := &Device{
		Name:         device.Name,
		PublicKey:    device.PublicKey.String(),
		ListenPort:   device.ListenPort,
		FirewallMark: device.FirewallMark,
	}
	for _, peer := range device.Peers {
		d.Peers = append(d.Peers, peerFromWgtypes(peer))
	}
	return d
}

func peerFromWgtypes(peer wgtypes.Peer) *Peer {
	p := &Peer{
		PublicKey:         peer.PublicKey.String(),
		LastHandshakeTime: peer.LastHandshakeTime,
		ReceiveBytes:      peer.ReceiveBytes,
		TransmitBytes:     peer.TransmitBytes,
	}
	if peer.Endpoint != nil {
		p.Endpoint = peer.Endpoint.String()
	}
	for _, allowedIP := range peer.AllowedIPs {
		p.AllowedIPs = append(p.AllowedIPs, allowedIP.String())
	}
	if peer.PersistentKeepaliveInterval > 0 {
		p.PersistentKeepalive = peer.PersistentKeepaliveInterval.String()
	}
	return p
}
