package storage

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jwebster45206/stage-engine/pkg/scenario"
)

// scriptDir loads scripts from <dataDir>/scripts. It is shared by every
// save slot backend.
type scriptDir struct {
	dataDir string
	logger  *slog.Logger
}

func isScriptFile(path string) bool {
	switch filepath.Ext(path) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func (d scriptDir) listScripts() (map[string]string, error) {
	scriptsDir := filepath.Join(d.dataDir, "scripts")
	scripts := make(map[string]string)

	err := filepath.WalkDir(scriptsDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() || !isScriptFile(path) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			d.logger.Warn("Failed to read script file", "path", path, "error", err)
			return nil
		}

		s, err := scenario.ParseScript(path, data)
		if err != nil {
			d.logger.Warn("Failed to parse script file", "path", path, "error", err)
			return nil
		}

		scripts[s.Name] = filepath.Base(path)
		return nil
	})

	if err != nil {
		d.logger.Error("Failed to walk scripts directory", "error", err)
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}

	return scripts, nil
}

func (d scriptDir) getScript(filename string) (*scenario.Script, error) {
	path := filepath.Join(d.dataDir, "scripts", filepath.Base(filename))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("script not found: %s", filename)
		}
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}

	return scenario.ParseScript(path, data)
}
