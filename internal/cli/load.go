package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/macropower/kls/pkg/config"
	"github.com/macropower/kls/pkg/lint"
	"github.com/macropower/kls/pkg/schema"
)

// workspace is the configuration and schemas a command operates with.
type workspace struct {
	Config *config.Config
	// Schemas is nil when no schema fragments are registered.
	Schemas *schema.Registry
	// ConfigPath is empty when the defaults are used.
	ConfigPath string
}

// loadWorkspace loads the configuration for target. The --config flag wins,
// then the nearest project config (.kls.yaml) at or above target, then the
// user config. Without any of them the defaults are used.
func loadWorkspace(ra *RootArgs, target string) (*workspace, error) {
	path, err := configPathFor(ra, target)
	if err != nil {
		return nil, err
	}

	ws := &workspace{Config: config.New(), ConfigPath: path}

	if path != "" {
		ws.Config, err = config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}

		slog.Debug("loaded config", slog.String("path", path))
	}

	if len(ws.Config.Schemas) == 0 {
		return ws, nil
	}

	reg := schema.NewRegistry()
	base := "."

	if path != "" {
		base = filepath.Dir(path)
	}

	for _, p := range ws.Config.Schemas {
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}

		err := reg.AddPath(p)
		if err != nil {
			slog.Warn("some schemas could not be registered",
				slog.String("path", p),
				slog.Any("error", err),
			)
		}
	}

	slog.Debug("registered schemas", slog.Int("fragments", reg.Len()))

	if reg.Len() > 0 {
		ws.Schemas = reg
	}

	return ws, nil
}

func configPathFor(ra *RootArgs, target string) (string, error) {
	if ra.ConfigPath != "" {
		return ra.ConfigPath, nil
	}

	if target != "" {
		project, err := config.FindProjectConfig(target)
		if err != nil {
			slog.Debug("search project config", slog.Any("error", err))
		} else if project != "" {
			return project, nil
		}
	}

	user := config.GetPath()

	_, err := os.Stat(user)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", fmt.Errorf("stat user config: %w", err)
	}
}

// Linters returns the linters enabled by the workspace configuration.
func (ws *workspace) Linters() []lint.Linter {
	if ws.Schemas == nil {
		return ws.Config.Linters(nil)
	}

	return ws.Config.Linters(ws.Schemas)
}
