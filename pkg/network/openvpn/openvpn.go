// Package openvpn manages OpenVPN client profiles (*.ovpn). Status is a
// process table heuristic: a running openvpn process that references the
// profile path counts as connected, whether or not the tunnel is up.
package openvpn

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/netdash/netdash/pkg/command"
	"github.com/netdash/netdash/pkg/network"
)

const (
	DefaultConfigDir = "/etc/openvpn/client"
	DefaultRunDir    = "/run/netdash"
	profileExt       = ".ovpn"
	daemonPrefix     = "netdash-"
)

var actions = []network.Action{network.ActionConnect, network.ActionDisconnect}

type Adapter struct {
	runner    command.Runner
	configDir string
	runDir    string
	sessions  SessionRepository
}

func NewAdapter(runner command.Runner, configDir string, runDir string, sessions SessionRepository) *Adapter {
	if configDir == "" {
		configDir = DefaultConfigDir
	}
	if runDir == "" {
		runDir = DefaultRunDir
	}
	return &Adapter{
		runner:    runner,
		configDir: configDir,
		runDir:    runDir,
		sessions:  sessions,
	}
}

func (a *Adapter) Kind() network.Kind {
	return network.KindOpenvpn
}

func (a *Adapter) Actions() []network.Action {
	return actions
}

func (a *Adapter) List(ctx context.Context) ([]string, error) {
	return network.ListConfigs(ctx, a.runner, a.configDir, profileExt)
}

func (a *Adapter) Status(ctx context.Context, name string) network.Status {
	result, err := a.runner.Run(ctx, "pgrep", "-f", a.processPattern(name))
	if err != nil {
		logrus.WithError(err).WithField("client", name).Warn("failed to query openvpn status")
		return network.StatusUnknown
	}
	return network.StatusFromExitCode(result.ExitCode)
}

func (a *Adapter) Validate(request network.ActionRequest) error {
	return network.ValidateEntityName(request.Name)
}

func (a *Adapter) Control(ctx context.Context, request network.ActionRequest) network.ActionResult {
	switch request.Action {
	case network.ActionConnect:
		return a.connect(ctx, request.Name)
	case network.ActionDisconnect:
		return a.disconnect(ctx, request.Name)
	default:
		return network.Failed(fmt.Sprintf("unsupported openvpn action %q", request.Action))
	}
}

// Sessions lists the recorded sessions together with their live status.
func (a *Adapter) Sessions(ctx context.Context) ([]*SessionStatus, error) {
	if a.sessions == nil {
		return nil, nil
	}

	sessions, err := a.sessions.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find openvpn sessions: %w", err)
	}

	statuses := make([]*SessionStatus, 0, len(sessions))
	for _, session := range sessions {
		statuses = append(statuses, &SessionStatus{
			Session: session,
			Status:  string(a.Status(ctx, session.Name)),
		})
	}
	return statuses, nil
}

func (a *Adapter) connect(ctx context.Context, name string) network.ActionResult {
	logger := logrus.WithField("client", name)

	if session := a.runningSession(ctx, name); session != nil {
		return network.Failed(fmt.Sprintf("%s is already connected (pid %d, started %s)", name, session.Pid, session.StartedAt.Format(time.RFC3339)))
	}

	if err := a.ensureRunDir(ctx); err != nil {
		logger.WithError(err).Warn("failed to create openvpn run directory")
		return network.Failed(fmt.Sprintf("failed to create run directory %s: %v", a.runDir, err))
	}

	profilePath := a.profilePath(name)
	pidFile := a.pidFilePath(name)
	result, err := a.runner.Run(ctx,
		"openvpn",
		"--config", profilePath,
		"--daemon", daemonPrefix+name,
		"--writepid", pidFile,
	)
	if err != nil {
		logger.WithError(err).Warn("failed to run openvpn")
		return network.Failed(err.Error())
	}

	if result.Failed() {
		logger.WithField("exitCode", result.ExitCode).Warn("openvpn failed to start")
		return network.Failed(failureOutput(result))
	}

	a.recordSession(ctx, &Session{
		Id:          uuid.NewString(),
		Name:        name,
		ProfilePath: profilePath,
		PidFile:     pidFile,
		Pid:         a.readPid(ctx, pidFile),
		StartedAt:   time.Now(),
	})

	logger.Info("openvpn client started")
	return network.Succeeded(result.Stdout)
}

func (a *Adapter) disconnect(ctx context.Context, name string) network.ActionResult {
	logger := logrus.WithField("client", name)

	result, err := a.runner.Run(ctx, "pkill", "-f", a.processPattern(name))
	if err != nil {
		logger.WithError(err).Warn("failed to run pkill")
		return network.Failed(err.Error())
	}

	if result.Failed() {
		if strings.TrimSpace(result.Stderr) == "" && result.ExitCode == 1 {
			return network.Failed(fmt.Sprintf("no running session for %s", name))
		}
		logger.WithField("exitCode", result.ExitCode).Warn("pkill failed")
		return network.Failed(result.Stderr)
	}

	a.forgetSession(ctx, name)

	logger.Info("openvpn client stopped")
	return network.Succeeded(result.Stdout)
}

// runningSession returns the recorded session of name when its process is
// still alive. Clients started outside this process have no record and are
// left to openvpn.
func (a *Adapter) runningSession(ctx context.Context, name string) *Session {
	if a.sessions == nil {
		return nil
	}

	session, err := a.sessions.FindOne(ctx, name)
	if err != nil {
		logrus.WithError(err).WithField("client", name).Warn("failed to find openvpn session")
		return nil
	}
	if session == nil || a.Status(ctx, name) != network.StatusConnected {
		return nil
	}
	return session
}

func (a *Adapter) ensureRunDir(ctx context.Context) error {
	if !command.UsesSudo(a.runner) {
		return os.MkdirAll(a.runDir, 0o755)
	}

	result, err := a.runner.Run(ctx, "mkdir", "-p", a.runDir)
	if err != nil {
		return err
	}
	if result.Failed() {
		return fmt.Errorf("%w: mkdir exited with code %d: %s", network.ErrToolFailure, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// readPid returns the PID openvpn wrote, or 0 when it cannot be read.
func (a *Adapter) readPid(ctx context.Context, path string) int {
	if !command.UsesSudo(a.runner) {
		content, err := os.ReadFile(path)
		if err != nil {
			return 0
		}
		return parsePid(string(content))
	}

	result, err := a.runner.Run(ctx, "cat", path)
	if err != nil || result.Failed() {
		return 0
	}
	return parsePid(result.Stdout)
}

func (a *Adapter) recordSession(ctx context.Context, session *Session) {
	if a.sessions == nil {
		return
	}
	if err := a.sessions.Save(ctx, session); err != nil {
		logrus.WithError(err).WithField("client", session.Name).Warn("failed to save openvpn session")
	}
}

func (a *Adapter) forgetSession(ctx context.Context, name string) {
	if a.sessions == nil {
		return
	}
	if err := a.sessions.Delete(ctx, name); err != nil {
		logrus.WithError(err).WithField("client", name).Warn("failed to delete openvpn session")
	}
}

func (a *Adapter) profilePath(name string) string {
	return filepath.Join(a.configDir, name+profileExt)
}

func (a *Adapter) pidFilePath(name string) string {
	return filepath.Join(a.runDir, name+".pid")
}

// processPattern matches the command line of an openvpn process started for
// the profile. pgrep and pkill take an extended regular expression.
func (a *Adapter) processPattern(name string) string {
	return regexp.QuoteMeta(a.profilePath(name))
}

// failureOutput prefers stderr but falls back to stdout, where openvpn
// reports option and config errors.
func failureOutput(result *command.Result) string {
	if result.Stderr != "" {
		return result.Stderr
	}
	return result.Stdout
}

func parsePid(content string) int {
	pid, err := strconv.Atoi(strings.TrimSpace(content))
	if err != nil {
		return 0
	}
	return pid
}
