package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	appName  = "kls"
	fileName = "config.yaml"
)

// ProjectConfigNames are the file names that mark a project configuration.
var ProjectConfigNames = []string{".kls.yaml", ".kls.yml"}

// GetPath returns the path of the user configuration file:
// $XDG_CONFIG_HOME/kls/config.yaml, else ~/.config/kls/config.yaml.
func GetPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, fileName)
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".config", appName, fileName)
	}

	path := filepath.Join(os.TempDir(), appName, fileName)

	slog.Warn("could not determine user config directory, using temp path",
		slog.String("path", path),
		slog.Any("error", err),
	)

	return path
}

// FindProjectConfig returns the nearest project configuration file at or
// above path. The search stops at the first directory containing .git, so
// a checkout never picks up configuration from outside of it. An empty
// string is returned when there is none.
func FindProjectConfig(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("find project config: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("find project config: %w", err)
	}

	dir := abs
	if !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	for {
		for _, name := range ProjectConfigNames {
			candidate := filepath.Join(dir, name)
			if isRegular(candidate) {
				return candidate, nil
			}
		}

		if exists(filepath.Join(dir, ".git")) {
			return "", nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}

		dir = parent
	}
}

// WriteDefault writes the embedded default configuration to path. An
// existing file is kept unless force is set, in which case it is renamed to
// <name>.<unix-nanos>.old first.
func WriteDefault(path string, force bool) error {
	err := writeFile(path, defaultConfigYAML, force)
	if err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}

// Write writes c to path unless a file already exists there.
func (c Config) Write(path string) error {
	b, err := c.MarshalYAML()
	if err != nil {
		return err
	}

	err = writeFile(path, b, false)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

func writeFile(path string, data []byte, force bool) error {
	info, err := os.Stat(path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("stat %s: %w", path, err)
	case info.IsDir():
		return fmt.Errorf("%s: path is a directory", path)
	case !info.Mode().IsRegular():
		return fmt.Errorf("%s: not a regular file", path)
	case !force:
		slog.Debug("keeping existing file", slog.String("path", path))

		return nil
	default:
		backup := fmt.Sprintf("%s.%d.old", path, time.Now().UnixNano())

		slog.Info("backing up existing file", slog.String("path", backup))

		err = os.Rename(path, backup)
		if err != nil {
			return fmt.Errorf("back up %s: %w", path, err)
		}
	}

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	slog.Info("wrote file", slog.String("path", path))

	return nil
}

// readFile reads a regular file.
func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%s: path is a directory", path)
	}

	//nolint:gosec // G304: Paths come from the user.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func isRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
