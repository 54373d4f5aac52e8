// Package wireguard manages wg-quick interfaces described by the *.conf
// files of a config directory.
package wireguard

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/netdash/netdash/pkg/command"
	"github.com/netdash/netdash/pkg/network"
)

const (
	DefaultConfigDir = "/etc/wireguard"
	configExt        = ".conf"
)

var (
	ErrDeviceReaderUnavailable = errors.New("wireguard device reader is not available")
	ErrDeviceNotFound          = errors.New("wireguard device not found")
)

var actions = []network.Action{network.ActionUp, network.ActionDown}

type Adapter struct {
	runner       command.Runner
	configDir    string
	deviceReader DeviceReader
}

func NewAdapter(runner command.Runner, configDir string, deviceReader DeviceReader) *Adapter {
	if configDir == "" {
		configDir = DefaultConfigDir
	}
	return &Adapter{
		runner:       runner,
		configDir:    configDir,
		deviceReader: deviceReader,
	}
}

func (a *Adapter) Kind() network.Kind {
	return network.KindWireguard
}

func (a *Adapter) Actions() []network.Action {
	return actions
}

func (a *Adapter) List(ctx context.Context) ([]string, error) {
	return network.ListConfigs(ctx, a.runner, a.configDir, configExt)
}

// Status reports Connected when `wg show` accepts the interface. An unknown
// interface and a down interface both read as Disconnected.
func (a *Adapter) Status(ctx context.Context, name string) network.Status {
	result, err := a.runner.Run(ctx, "wg", "show", name)
	if err != nil {
		logrus.WithError(err).WithField("interface", name).Warn("failed to query wireguard status")
		return network.StatusUnknown
	}
	return network.StatusFromExitCode(result.ExitCode)
}

func (a *Adapter) Validate(request network.ActionRequest) error {
	return network.ValidateEntityName(request.Name)
}

// Control runs wg-quick for the requested action without checking the
// current state first; repeated up/down is left to wg-quick.
func (a *Adapter) Control(ctx context.Context, request network.ActionRequest) network.ActionResult {
	logger := logrus.WithField("interface", request.Name).WithField("action", request.Action)

	result, err := a.runner.Run(ctx, "wg-quick", string(request.Action), request.Name)
	if err != nil {
		logger.WithError(err).Warn("failed to run wg-quick")
		return network.Failed(err.Error())
	}

	if result.Failed() {
		logger.WithField("exitCode", result.ExitCode).Warn("wg-quick failed")
		return network.Failed(result.Stderr)
	}
	return network.Succeeded(result.Stdout)
}

// Device returns the live configuration and peer statistics of a running
// interface.
func (a *Adapter) Device(_ context.Context, name string) (*Device, error) {
	if a.deviceReader == nil {
		return nil, ErrDeviceReaderUnavailable
	}

	device, err := a.deviceReader.Device(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read wireguard device %s: %w", name, err)
	}
	return device, nil
}
