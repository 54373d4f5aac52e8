// Package wifi drives the Wi-Fi client interface through nmcli and reports
// associated stations through hostapd_cli.
package wifi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/netdash/netdash/pkg/command"
	"github.com/netdash/netdash/pkg/network"
)

const (
	NotConnected = "Not connected"

	connectFailedMessage = "failed to connect"
)

var ErrSSIDRequired = errors.New("ssid is required")

type Adapter struct {
	runner        command.Runner
	interfaceName string
}

func NewAdapter(runner command.Runner, interfaceName string) *Adapter {
	return &Adapter{
		runner:        runner,
		interfaceName: interfaceName,
	}
}

func (a *Adapter) InterfaceName() string {
	return a.interfaceName
}

// CurrentAssociation returns the SSID of the active row for the interface,
// or NotConnected when no row is active.
func (a *Adapter) CurrentAssociation(ctx context.Context, interfaceName string) (string, error) {
	if interfaceName == "" {
		interfaceName = a.interfaceName
	}

	output, err := a.query(ctx, "nmcli", "-t", "-f", "ACTIVE,SSID", "device", "wifi", "list", "ifname", interfaceName)
	if err != nil {
		return "", err
	}
	return parseActiveSSID(output), nil
}

// ListAvailableNetworks returns the SSIDs of the last scan, without blank
// (hidden) entries and without repeats.
func (a *Adapter) ListAvailableNetworks(ctx context.Context) ([]string, error) {
	output, err := a.query(ctx, "nmcli", "--colors", "no", "-m", "multiline", "--get-value", "SSID", "dev", "wifi", "list", "ifname", a.interfaceName)
	if err != nil {
		return nil, err
	}
	return parseSSIDList(output), nil
}

func (a *Adapter) Connect(ctx context.Context, interfaceName string, ssid string, password string) network.ActionResult {
	if interfaceName == "" {
		interfaceName = a.interfaceName
	}

	logger := logrus.WithField("interface", interfaceName).WithField("ssid", ssid)

	result, err := a.runner.Run(ctx, connectArgv(interfaceName, ssid, password)...)
	if err != nil {
		logger.WithError(err).Warn("failed to run wifi connect")
		return network.Failed(err.Error())
	}

	if connectFailed(result) {
		logger.WithField("exitCode", result.ExitCode).Warn("wifi connect failed")
		return network.Failed(result.Stderr)
	}
	if result.Stdout != "" {
		logger.Info("wifi connected")
		return network.Succeeded(result.Stdout)
	}
	return network.Failed(connectFailedMessage)
}

// ListAssociatedStations returns the identifiers of the stations associated
// with the local access point.
func (a *Adapter) ListAssociatedStations(ctx context.Context) ([]string, error) {
	output, err := a.query(ctx, "hostapd_cli", "all_sta")
	if err != nil {
		return nil, err
	}
	return parseStations(output), nil
}

// NeighborTable returns the raw ARP table.
func (a *Adapter) NeighborTable(ctx context.Context) (string, error) {
	return a.query(ctx, "arp", "-a")
}

func (a *Adapter) query(ctx context.Context, argv ...string) (string, error) {
	result, err := a.runner.Run(ctx, argv...)
	if err != nil {
		return "", err
	}
	if result.Failed() {
		return "", fmt.Errorf("%w: %s exited with code %d: %s", network.ErrToolFailure, argv[0], result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return result.Stdout, nil
}

func connectArgv(interfaceName string, ssid string, password string) []string {
	argv := []string{"nmcli", "--colors", "no", "device", "wifi", "connect", ssid, "ifname", interfaceName}
	if len(password) > 0 {
		argv = append(argv, "password", password)
	}
	return argv
}

// connectFailed treats any stderr output as failure, even with a zero exit
// code. nmcli reports some successful joins with warnings on stderr, which
// this misreports.
func connectFailed(result *command.Result) bool {
	return result.Stderr != ""
}

func parseActiveSSID(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := splitTerseFields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[0] == "yes" {
			return fields[1]
		}
	}
	return NotConnected
}

func parseSSIDList(output string) []string {
	seen := make(map[string]struct{})
	var ssids []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		ssid := unescapeTerse(strings.TrimRight(scanner.Text(), "\r"))
		if strings.TrimSpace(ssid) == "" {
			continue
		}
		if _, ok := seen[ssid]; ok {
			continue
		}
		seen[ssid] = struct{}{}
		ssids = append(ssids, ssid)
	}
	return ssids
}

func parseStations(output string) []string {
	var stations []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "Station") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		stations = append(stations, fields[1])
	}
	return stations
}

// unescapeTerse removes the escaping of a single terse value.
func unescapeTerse(value string) string {
	return strings.Join(splitTerseFields(value), ":")
}

// splitTerseFields splits a line of nmcli terse output on unescaped colons
// and removes the backslash escaping of ':' and '\'.
func splitTerseFields(line string) []string {
	var fields []string
	var sb strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			sb.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			fields = append(fields, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	return append(fields, sb.String())
}
