package manage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"testing"

	"github.com/netdash/netdash/pkg/command"
	"github.com/netdash/netdash/pkg/command/commandtest"
	"github.com/netdash/netdash/pkg/network"
	"github.com/netdash/netdash/pkg/network/openvpn"
	"github.com/netdash/netdash/pkg/network/wifi"
	"github.com/netdash/netdash/pkg/network/wireguard"
)

type fakeLinkStateReader struct {
	state string
	err   error
}

func (r fakeLinkStateReader) State(string) (string, error) {
	return r.state, r.err
}

type testEnv struct {
	runner       *commandtest.Runner
	wireguardDir string
	openvpnDir   string
	service      Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		runner:       commandtest.NewRunner(),
		wireguardDir: t.TempDir(),
		openvpnDir:   t.TempDir(),
	}
	env.service = NewService(Options{
		Wifi:                wifi.NewAdapter(env.runner, "wlan1"),
		Wireguard:           wireguard.NewAdapter(env.runner, env.wireguardDir, nil),
		Openvpn:             openvpn.NewAdapter(env.runner, env.openvpnDir, t.TempDir(), nil),
		LinkStateReader:     fakeLinkStateReader{state: "up"},
		SnapshotConcurrency: 2,
	})
	return env
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("[Interface]\n"), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

func TestSnapshot(t *testing.T) {
	env := newTestEnv(t)
	writeFiles(t, env.wireguardDir, "office.conf", "home.conf")
	writeFiles(t, env.openvpnDir, "berlin.ovpn")

	env.runner.
		OnResult([]string{"nmcli", "-t", "-f", "ACTIVE,SSID", "device", "wifi", "list", "ifname", "wlan1"}, 0, "no:Guest\nyes:HomeNet\n", "").
		OnResult([]string{"nmcli", "--colors", "no", "-m", "multiline", "--get-value", "SSID", "dev", "wifi", "list", "ifname", "wlan1"}, 0, "HomeNet\n\nGuest\nHomeNet\n", "").
		OnResult([]string{"wg", "show", "office"}, 0, "interface: office\n", "").
		OnResult([]string{"wg", "show", "home"}, 1, "", "Unable to access interface: No such device\n").
		OnResult([]string{"pgrep", "-f", regexp.QuoteMeta(filepath.Join(env.openvpnDir, "berlin.ovpn"))}, 1, "", "")

	snapshot, err := env.service.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}

	if snapshot.WifiInterface != "wlan1" || snapshot.WifiInterfaceState != "up" {
		t.Fatalf("unexpected wifi interface %q state %q", snapshot.WifiInterface, snapshot.WifiInterfaceState)
	}
	if snapshot.WifiCurrent != "HomeNet" {
		t.Fatalf("expected current wifi HomeNet, got %q", snapshot.WifiCurrent)
	}
	if !reflect.DeepEqual(snapshot.WifiNetworks, []string{"HomeNet", "Guest"}) {
		t.Fatalf("unexpected wifi networks %v", snapshot.WifiNetworks)
	}

	expectedWireguard := []network.Entity{
		{Kind: network.KindWireguard, Name: "home", Status: network.StatusDisconnected},
		{Kind: network.KindWireguard, Name: "office", Status: network.StatusConnected},
	}
	if !reflect.DeepEqual(snapshot.Wireguard, expectedWireguard) {
		t.Fatalf("expected %+v, got %+v", expectedWireguard, snapshot.Wireguard)
	}

	expectedOpenvpn := []network.Entity{
		{Kind: network.KindOpenvpn, Name: "berlin", Status: network.StatusDisconnected},
	}
	if !reflect.DeepEqual(snapshot.Openvpn, expectedOpenvpn) {
		t.Fatalf("expected %+v, got %+v", expectedOpenvpn, snapshot.Openvpn)
	}
	if snapshot.TakenAt.IsZero() {
		t.Fatalf("expected snapshot time to be set")
	}
}

func TestSnapshotIsPartialOnFailure(t *testing.T) {
	env := newTestEnv(t)
	writeFiles(t, env.wireguardDir, "office.conf")

	launchErr := &command.LaunchError{Argv: []string{"wg"}, Err: os.ErrNotExist}
	env.runner.
		OnResult([]string{"nmcli", "-t", "-f", "ACTIVE,SSID", "device", "wifi", "list", "ifname", "wlan1"}, 10, "", "Error: Device 'wlan1' not found.\n").
		OnResult([]string{"nmcli", "--colors", "no", "-m", "multiline", "--get-value", "SSID", "dev", "wifi", "list", "ifname", "wlan1"}, 0, "HomeNet\n", "").
		On([]string{"wg", "show", "office"}, commandtest.Response{Err: launchErr})

	snapshot, err := env.service.Snapshot(context.Background())
	if snapshot == nil {
		t.Fatalf("expected a snapshot even on failure")
	}
	if !errors.Is(err, network.ErrToolFailure) {
		t.Fatalf("expected tool failure, got %v", err)
	}
	if snapshot.WifiCurrent != "" {
		t.Fatalf("expected empty current wifi, got %q", snapshot.WifiCurrent)
	}
	if !reflect.DeepEqual(snapshot.WifiNetworks, []string{"HomeNet"}) {
		t.Fatalf("unexpected wifi networks %v", snapshot.WifiNetworks)
	}
	if len(snapshot.Wireguard) != 1 || snapshot.Wireguard[0].Status != network.StatusUnknown {
		t.Fatalf("expected office to be Unknown, got %+v", snapshot.Wireguard)
	}
	if len(snapshot.Openvpn) != 0 {
		t.Fatalf("expected no openvpn entities, got %+v", snapshot.Openvpn)
	}
}

func TestSnapshotUnknownLinkState(t *testing.T) {
	runner := commandtest.NewRunner()
	service := NewService(Options{
		Wifi:            wifi.NewAdapter(runner, "wlan1"),
		Wireguard:       wireguard.NewAdapter(runner, t.TempDir(), nil),
		Openvpn:         openvpn.NewAdapter(runner, t.TempDir(), t.TempDir(), nil),
		LinkStateReader: fakeLinkStateReader{err: errors.New("link not found")},
	})

	snapshot, _ := service.Snapshot(context.Background())
	if snapshot.WifiInterfaceState != "unknown" {
		t.Fatalf("expected unknown link state, got %q", snapshot.WifiInterfaceState)
	}
}

func TestDispatchValidation(t *testing.T) {
	testCases := []struct {
		name     string
		request  network.ActionRequest
		expected error
	}{
		{
			name:     "unknown kind",
			request:  network.ActionRequest{Kind: "bluetooth", Name: "hci0", Action: network.ActionConnect},
			expected: network.ErrInvalidRequest,
		},
		{
			name:     "action of another backend",
			request:  network.ActionRequest{Kind: network.KindWireguard, Name: "home", Action: network.ActionConnect},
			expected: network.ErrInvalidAction,
		},
		{
			name:     "wifi disconnect",
			request:  network.ActionRequest{Kind: network.KindWifi, Name: "wlan1", Action: network.ActionDisconnect, SSID: "HomeNet"},
			expected: network.ErrInvalidAction,
		},
		{
			name:     "empty name",
			request:  network.ActionRequest{Kind: network.KindOpenvpn, Name: "", Action: network.ActionConnect},
			expected: network.ErrInvalidRequest,
		},
		{
			name:     "blank name",
			request:  network.ActionRequest{Kind: network.KindWireguard, Name: "   ", Action: network.ActionUp},
			expected: network.ErrInvalidRequest,
		},
		{
			name:     "name outside the config directory",
			request:  network.ActionRequest{Kind: network.KindOpenvpn, Name: "../../tmp/x", Action: network.ActionConnect},
			expected: network.ErrInvalidRequest,
		},
		{
			name:     "name read as an option",
			request:  network.ActionRequest{Kind: network.KindWireguard, Name: "-h", Action: network.ActionUp},
			expected: network.ErrInvalidRequest,
		},
		{
			name:     "wifi without ssid",
			request:  network.ActionRequest{Kind: network.KindWifi, Name: "wlan1", Action: network.ActionConnect},
			expected: network.ErrInvalidRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.service.Dispatch(context.Background(), tc.request)
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
			if calls := env.runner.Calls(); len(calls) != 0 {
				t.Fatalf("expected no process to be spawned, got %v", calls)
			}
		})
	}
}

func TestDispatchWireguardUp(t *testing.T) {
	env := newTestEnv(t)
	env.runner.OnResult([]string{"wg-quick", "up", "home"}, 0, "Interface up", "")

	result, err := env.service.Dispatch(context.Background(), network.ActionRequest{
		Kind:   network.KindWireguard,
		Name:   "home",
		Action: network.ActionUp,
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if !result.Succeeded || result.Message != "Interface up" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestDispatchDoesNotCheckEntityExistence(t *testing.T) {
	env := newTestEnv(t)
	env.runner.OnResult([]string{"wg-quick", "down", "missing"}, 1, "", "wg-quick: `missing' is not a WireGuard interface\n")

	result, err := env.service.Dispatch(context.Background(), network.ActionRequest{
		Kind:   network.KindWireguard,
		Name:   "missing",
		Action: network.ActionDown,
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if result.Succeeded {
		t.Fatalf("expected failure, got %+v", result)
	}
	if result.Message != "wg-quick: `missing' is not a WireGuard interface\n" {
		t.Fatalf("expected raw stderr, got %q", result.Message)
	}
}

func TestDispatchWifiConnectStderrFails(t *testing.T) {
	env := newTestEnv(t)
	env.runner.OnResult(
		[]string{"nmcli", "--colors", "no", "device", "wifi", "connect", "HomeNet", "ifname", "wlan1", "password", "secret"},
		0, "", "Error: invalid password",
	)

	result, err := env.service.Dispatch(context.Background(), network.ActionRequest{
		Kind:     network.KindWifi,
		Name:     "wlan1",
		Action:   network.ActionConnect,
		SSID:     "HomeNet",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if result.Succeeded || result.Message != "Error: invalid password" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestExternalIPDisabled(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.service.ExternalIP(context.Background()); !errors.Is(err, ErrExternalIPDisabled) {
		t.Fatalf("expected ErrExternalIPDisabled, got %v", err)
	}
}
