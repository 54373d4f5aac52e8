package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Network holds the fixed inputs of the orchestration layer. It is read once
// at start and never reloaded.
type Network struct {
	WifiInterface       string        `split_words:"true" default:"wlan1"`
	WireguardDir        string        `split_words:"true" default:"/etc/wireguard"`
	OpenvpnDir          string        `split_words:"true" default:"/etc/openvpn/client"`
	OpenvpnRunDir       string        `split_words:"true" default:"/run/netdash"`
	CommandTimeout      time.Duration `split_words:"true" default:"10s"`
	UseSudo             bool          `split_words:"true" default:"false"`
	SnapshotConcurrency int           `split_words:"true" default:"4"`
}

func (n *Network) Validate() error {
	if n == nil {
		return errors.New("network config is required")
	}
	if n.WifiInterface == "" {
		return errors.New("wifi interface is required")
	}
	for _, dir := range []string{n.WireguardDir, n.OpenvpnDir, n.OpenvpnRunDir} {
		if !filepath.IsAbs(dir) {
			return fmt.Errorf("path must be absolute: %q", dir)
		}
	}
	if n.CommandTimeout <= 0 {
		return fmt.Errorf("command timeout must be positive, got %s", n.CommandTimeout)
	}
	if n.SnapshotConcurrency <= 0 {
		return fmt.Errorf("snapshot concurrency must be positive, got %d", n.SnapshotConcurrency)
	}
	return nil
}
