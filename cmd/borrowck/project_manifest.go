package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const manifestName = "borrowck.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
	meta   toml.MetaData
}

type projectConfig struct {
	Check  checkConfig  `toml:"check"`
	Output outputConfig `toml:"output"`
}

type checkConfig struct {
	Strict           bool `toml:"strict"`
	FreezeBorrowed   bool `toml:"freeze_borrowed"`
	RejectDangling   bool `toml:"reject_dangling"`
	NoWarnings       bool `toml:"no_warnings"`
	WarningsAsErrors bool `toml:"warnings_as_errors"`
	MaxDiagnostics   int  `toml:"max_diagnostics"`
	Jobs             int  `toml:"jobs"`
	Cache            bool `toml:"cache"`
}

type outputConfig struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, meta, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
		meta:   meta,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, toml.MetaData, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, meta, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, meta, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if meta.IsDefined("check", "max_diagnostics") && cfg.Check.MaxDiagnostics <= 0 {
		return projectConfig{}, meta, fmt.Errorf("%s: [check].max_diagnostics must be positive", path)
	}
	if meta.IsDefined("check", "jobs") && cfg.Check.Jobs < 0 {
		return projectConfig{}, meta, fmt.Errorf("%s: [check].jobs must not be negative", path)
	}
	if meta.IsDefined("output", "format") {
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
		if !validFormat(cfg.Output.Format) {
			return projectConfig{}, meta, fmt.Errorf("%s: [output].format must be pretty, json or short", path)
		}
	}
	if meta.IsDefined("output", "color") {
		cfg.Output.Color = strings.ToLower(strings.TrimSpace(cfg.Output.Color))
		switch cfg.Output.Color {
		case "auto", "on", "off":
		default:
			return projectConfig{}, meta, fmt.Errorf("%s: [output].color must be auto, on or off", path)
		}
	}
	return cfg, meta, nil
}

// defines reports whether the manifest set key explicitly.
func (m *projectManifest) defines(key ...string) bool {
	return m != nil && m.meta.IsDefined(key...)
}

func validFormat(format string) bool {
	switch format {
	case "pretty", "json", "short":
		return true
	}
	return false
}
