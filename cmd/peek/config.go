// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/peekdbg/peek/expr"
)

// Config is the optional settings file. Command-line flags override
// whatever it sets.
type Config struct {
	// Language selects the expression grammar: "c" (which also covers
	// C++) or "rust".
	Language string `yaml:"language"`

	// Color is "auto", "always" or "never".
	Color string `yaml:"color"`

	// HistoryFile is where REPL history is kept. Empty selects a file
	// under the user config directory; "none" disables history.
	HistoryFile string `yaml:"history_file"`

	// Prompt is the REPL prompt.
	Prompt string `yaml:"prompt"`
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "peek"), nil
}

// loadConfig reads the settings file at path, or the default location
// when path is empty. A missing file at the default location is not an
// error. Validation and defaults are applied by the caller, after flag
// overrides.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(dir, "config.yaml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		return nil, err
	}
	var c Config
	if err := yaml.UnmarshalWithOptions(data, &c, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return &c, nil
}

func validateConfig(c *Config) error {
	switch c.Language {
	case "", "c", "c++", "rust":
	default:
		return fmt.Errorf("invalid language %q: must be c, c++ or rust", c.Language)
	}
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q: must be auto, always or never", c.Color)
	}
	return nil
}

func applyDefaults(c *Config) {
	if c.Language == "" {
		c.Language = "c"
	}
	if c.Color == "" {
		c.Color = "auto"
	}
	if c.Prompt == "" {
		c.Prompt = "(peek) "
	}
	if c.HistoryFile == "" {
		if dir, err := configDir(); err == nil {
			c.HistoryFile = filepath.Join(dir, "history.db")
		} else {
			c.HistoryFile = "none"
		}
	}
}

func parseLanguage(s string) (expr.Language, error) {
	switch s {
	case "c", "c++":
		return expr.LanguageC, nil
	case "rust":
		return expr.LanguageRust, nil
	}
	return 0, fmt.Errorf("unknown language %q", s)
}
