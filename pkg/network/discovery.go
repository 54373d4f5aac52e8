package network

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/netdash/netdash/pkg/command"
)

// DiscoverConfigs returns the names of the configuration files with the
// given extension in dir, without path and extension, sorted. A missing
// directory yields no names.
func DiscoverConfigs(dir string, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list config files in %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, entry.Name())
	}
	return configNames(files, ext), nil
}

// ListConfigs is DiscoverConfigs for a runner that may elevate through sudo.
// Config directories are usually readable by root only, so under sudo the
// directory is listed with find through the runner.
func ListConfigs(ctx context.Context, runner command.Runner, dir string, ext string) ([]string, error) {
	if !command.UsesSudo(runner) {
		return DiscoverConfigs(dir, ext)
	}

	result, err := runner.Run(ctx, "find", dir, "-maxdepth", "1", "-type", "f", "-name", "*"+ext, "-print")
	if err != nil {
		return nil, fmt.Errorf("failed to list config files with sudo in %s: %w", dir, err)
	}
	if result.Failed() {
		if strings.Contains(strings.ToLower(result.Stderr), "no such file or directory") {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: find exited with code %d: %s", ErrToolFailure, result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	return configNames(strings.Split(result.Stdout, "\n"), ext), nil
}

func configNames(paths []string, ext string) []string {
	seen := make(map[string]struct{}, len(paths))
	var names []string
	for _, path := range paths {
		name, ok := ConfigName(strings.TrimSpace(path), ext)
		if !ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConfigName strips directory and extension from a config file path.
func ConfigName(path string, ext string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ext) {
		return "", false
	}
	name := strings.TrimSuffix(base, ext)
	if strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}

// ValidateEntityName rejects names that would leave the config directory
// when joined to it or read as an option by the native tool.
func ValidateEntityName(name string) error {
	switch {
	case name == "." || name == "..":
		return fmt.Errorf("%w: invalid name %q", ErrInvalidRequest, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: name %q must not contain a path separator", ErrInvalidRequest, name)
	case strings.HasPrefix(name, "-"):
		return fmt.Errorf("%w: name %q must not start with '-'", ErrInvalidRequest, name)
	}
	return nil
}
