// Package config loads layered YAML configuration. Flags still win:
// the CLI only consults config for flags the user left at defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config mirrors the scan flag names. Zero values mean "not set".
type Config struct {
	Workers       *int     `yaml:"workers,omitempty"`
	Format        string   `yaml:"format,omitempty"`
	FailOn        string   `yaml:"fail_on,omitempty"`
	Exclude       []string `yaml:"exclude,omitempty"`
	Languages     []string `yaml:"languages,omitempty"`
	RulesDir      string   `yaml:"rules_dir,omitempty"`
	NoCustomRules *bool    `yaml:"no_custom_rules,omitempty"`
	OnlyCategory  []string `yaml:"only_category,omitempty"`
	NoSuppress    *bool    `yaml:"no_suppress,omitempty"`
	FileTimeout   string   `yaml:"file_timeout,omitempty"`
	MaxFileBytes  *int64   `yaml:"max_file_bytes,omitempty"`
	Verbose       *bool    `yaml:"verbose,omitempty"`
	NoTUI         *bool    `yaml:"no_tui,omitempty"`
}

// Load reads config from layered sources:
//  1. ~/.sentinel/config.yaml (global)
//  2. ./.sentinel/config.yaml (repo-local, takes precedence)
//
// Missing files are silently ignored. Returns zero Config if neither
// exists.
func Load() (Config, error) {
	home, _ := os.UserHomeDir()
	var globalPath string
	if home != "" {
		globalPath = filepath.Join(home, ".sentinel", "config.yaml")
	}

	cwd, _ := os.Getwd()
	var localPath string
	if cwd != "" {
		localPath = filepath.Join(cwd, ".sentinel", "config.yaml")
	}

	var merged Config

	if globalPath != "" {
		global, err := loadFile(globalPath)
		if err != nil {
			return Config{}, fmt.Errorf("load global config %s: %w", globalPath, err)
		}
		merged = merge(merged, global)
	}

	if localPath != "" {
		local, err := loadFile(localPath)
		if err != nil {
			return Config{}, fmt.Errorf("load local config %s: %w", localPath, err)
		}
		merged = merge(merged, local)
	}

	return merged, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, nil
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// merge applies overrides from b onto a. Non-zero fields in b win.
func merge(a, b Config) Config {
	if b.Workers != nil {
		a.Workers = b.Workers
	}
	if b.Format != "" {
		a.Format = b.Format
	}
	if b.FailOn != "" {
		a.FailOn = b.FailOn
	}
	if len(b.Exclude) > 0 {
		a.Exclude = b.Exclude
	}
	if len(b.Languages) > 0 {
		a.Languages = b.Languages
	}
	if b.RulesDir != "" {
		a.RulesDir = b.RulesDir
	}
	if b.NoCustomRules != nil {
		a.NoCustomRules = b.NoCustomRules
	}
	if len(b.OnlyCategory) > 0 {
		a.OnlyCategory = b.OnlyCategory
	}
	if b.NoSuppress != nil {
		a.NoSuppress = b.NoSuppress
	}
	if b.FileTimeout != "" {
		a.FileTimeout = b.FileTimeout
	}
	if b.MaxFileBytes != nil {
		a.MaxFileBytes = b.MaxFileBytes
	}
	if b.Verbose != nil {
		a.Verbose = b.Verbose
	}
	if b.NoTUI != nil {
		a.NoTUI = b.NoTUI
	}
	return a
}
