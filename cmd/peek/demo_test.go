// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"testing"

	"github.com/fatih/color"

	"github.com/peekdbg/peek/expr"
)

func init() {
	color.NoColor = true
	evalLang = expr.LanguageC
}

// TestDemoSession runs expressions through the same path the CLI uses:
// parse, evaluate over the mock target, pump the loop, format.
func TestDemoSession(t *testing.T) {
	s := newDemoSession()
	defer s.Close()

	tests := []struct {
		src  string
		want string
	}{
		{"g_score", "42"},
		{"g_score * 2 + 1", "85"},
		{"g_speed", "0.5"},
		{"g_levels", "int[4]{10, 20, 30, 40}"},
		{"g_levels[2]", "30"},
		{"g_origin", "Point {x: 3, y: 4}"},
		{"g_origin.y", "4"},
		{"g_pscore", "(int*) 0x2000"},
		{"*g_pscore", "42"},
		{"g_flags", "Flags {ready: 1, level: 7}"},
		{"g_flags.level", "7"},
		{"g_color", "kGreen"},
		{"(Color)2", "kBlue"},
		{"g_name", `"hello"`},
		{"g_rscore", "(int&) 0x2000"},
		{"g_rscore + 8", "50"},
		{"game::lives", "3"},
		{"g_boss", "(Boss*) 0x3000"},
		{"g_boss->hp", "250"},
		{"g_boss->id + g_levels[1]", "27"},
		{"$reg(rax)", "42"},
		{"$reg(eax)", "42"},
		{"$reg(rax) == g_score", "true"},
		{"spawn", "(void()*) 0x1100"},
		{"sizeof(Point)", "8"},
		{"{ auto t = 0; for (auto i = 0; i < 4; i = i + 1) t = t + g_levels[i]; t }", "100"},

		// Writes go through to the backing bytes.
		{"g_levels[0] = g_levels[0] + 5", "15"},
		{"g_levels", "int[4]{15, 20, 30, 40}"},
		{"g_score = 100", "100"},
		{"*g_pscore", "100"},
	}
	for _, tc := range tests {
		out, err := s.eval(tc.src)
		if err != nil {
			t.Errorf("eval(%q): %v", tc.src, err)
			continue
		}
		if out != tc.want {
			t.Errorf("eval(%q) = %q, want %q", tc.src, out, tc.want)
		}
	}

	if _, err := s.eval("g_missing"); err == nil {
		t.Error("eval(g_missing) unexpectedly succeeded")
	}
}
