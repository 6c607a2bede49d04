// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/peekdbg/peek/expr"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, "language: rust\ncolor: never\nprompt: \"db> \"\n")
	c, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if c.Language != "rust" || c.Color != "never" || c.Prompt != "db> " {
		t.Errorf("loadConfig = %+v", c)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := writeConfig(t, "langauge: c\n")
	if _, err := loadConfig(path); err == nil {
		t.Error("loadConfig accepted an unknown key")
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")
	if _, err := loadConfig(path); err == nil {
		t.Error("loadConfig accepted a missing explicit path")
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(&Config{}); err != nil {
		t.Errorf("empty config invalid: %v", err)
	}
	if err := validateConfig(&Config{Language: "fortran"}); err == nil {
		t.Error("bad language accepted")
	}
	if err := validateConfig(&Config{Color: "sometimes"}); err == nil {
		t.Error("bad color accepted")
	}
}

func TestApplyDefaults(t *testing.T) {
	c := &Config{}
	applyDefaults(c)
	if c.Language != "c" || c.Color != "auto" || c.Prompt != "(peek) " {
		t.Errorf("defaults = %+v", c)
	}
	if c.HistoryFile == "" {
		t.Error("no default history file")
	}

	// Explicit settings survive.
	c = &Config{Language: "rust", HistoryFile: "none"}
	applyDefaults(c)
	if c.Language != "rust" || c.HistoryFile != "none" {
		t.Errorf("defaults clobbered settings: %+v", c)
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want expr.Language
		ok   bool
	}{
		{"c", expr.LanguageC, true},
		{"c++", expr.LanguageC, true},
		{"rust", expr.LanguageRust, true},
		{"go", 0, false},
	}
	for _, tc := range tests {
		got, err := parseLanguage(tc.in)
		if tc.ok != (err == nil) {
			t.Errorf("parseLanguage(%q) err = %v", tc.in, err)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("parseLanguage(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
