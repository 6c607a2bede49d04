// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tokenTexts(toks []Token) []string {
	var out []string
	for _, tok := range toks {
		if tok.Kind == TokenEnd {
			break
		}
		out = append(out, tok.Text)
	}
	return out
}

func tokenKinds(toks []Token) []TokenKind {
	var out []TokenKind
	for _, tok := range toks {
		if tok.Kind == TokenEnd {
			break
		}
		out = append(out, tok.Kind)
	}
	return out
}

func TestTokenizeOperators(t *testing.T) {
	tests := []struct {
		input string
		lang  Language
		kinds []TokenKind
	}{
		{"a + b", LanguageC, []TokenKind{TokenIdentifier, TokenPlus, TokenIdentifier}},
		{"a->b.c", LanguageC, []TokenKind{TokenIdentifier, TokenArrow, TokenIdentifier, TokenDot, TokenIdentifier}},
		{"a<<1", LanguageC, []TokenKind{TokenIdentifier, TokenShiftLeft, TokenInteger}},
		{"a<<=1", LanguageC, []TokenKind{TokenIdentifier, TokenShiftLeftEq, TokenInteger}},
		// Right shift is never tokenized; the two > stay separate so
		// nested templates can close.
		{"a>>1", LanguageC, []TokenKind{TokenIdentifier, TokenGreater, TokenGreater, TokenInteger}},
		{"a>>=1", LanguageC, []TokenKind{TokenIdentifier, TokenGreater, TokenGreaterEquals, TokenInteger}},
		{"a<=>b", LanguageC, []TokenKind{TokenIdentifier, TokenSpaceship, TokenIdentifier}},
		{"a<=b", LanguageC, []TokenKind{TokenIdentifier, TokenLessEquals, TokenIdentifier}},
		{"x::y::z", LanguageC, []TokenKind{TokenIdentifier, TokenColonColon, TokenIdentifier, TokenColonColon, TokenIdentifier}},
		{"a&&b||!c", LanguageC, []TokenKind{TokenIdentifier, TokenDoubleAnd, TokenIdentifier, TokenDoubleOr, TokenBang, TokenIdentifier}},
		{"a+=b-=c", LanguageC, []TokenKind{TokenIdentifier, TokenPlusEquals, TokenIdentifier, TokenMinusEquals, TokenIdentifier}},
		{"i++", LanguageC, []TokenKind{TokenIdentifier, TokenPlusPlus}},
		{"--i", LanguageC, []TokenKind{TokenMinusMinus, TokenIdentifier}},
		{"x[0]", LanguageC, []TokenKind{TokenIdentifier, TokenLeftBracket, TokenInteger, TokenRightBracket}},
		{"{a; b}", LanguageC, []TokenKind{TokenLeftBrace, TokenIdentifier, TokenSemicolon, TokenIdentifier, TokenRightBrace}},
	}
	for _, test := range tests {
		toks, err := Tokenize(test.input, test.lang)
		if err != nil {
			t.Errorf("Tokenize(%q): %v", test.input, err)
			continue
		}
		if diff := cmp.Diff(test.kinds, tokenKinds(toks)); diff != "" {
			t.Errorf("Tokenize(%q) kinds mismatch (-want +got):\n%s", test.input, diff)
		}
	}
}

func TestTokenizeKeywordsPerLanguage(t *testing.T) {
	// "as" is a keyword only in Rust, "static_cast" only in C++.
	toks, err := Tokenize("x as u32", LanguageRust)
	if err != nil {
		t.Fatal(err)
	}
	if got := tokenKinds(toks); got[1] != TokenAs {
		t.Errorf("Rust 'as' lexed as %v, want TokenAs", got[1])
	}
	toks, err = Tokenize("x as u32", LanguageC)
	if err != nil {
		t.Fatal(err)
	}
	if got := tokenKinds(toks); got[1] != TokenIdentifier {
		t.Errorf("C 'as' lexed as %v, want TokenIdentifier", got[1])
	}

	toks, err = Tokenize("static_cast<int>(x)", LanguageC)
	if err != nil {
		t.Fatal(err)
	}
	if got := tokenKinds(toks); got[0] != TokenStaticCast {
		t.Errorf("C 'static_cast' lexed as %v, want TokenStaticCast", got[0])
	}
	toks, err = Tokenize("let mut x", LanguageRust)
	if err != nil {
		t.Fatal(err)
	}
	want := []TokenKind{TokenLet, TokenMut, TokenIdentifier}
	if diff := cmp.Diff(want, tokenKinds(toks)); diff != "" {
		t.Errorf("Rust let binding kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tests := []struct {
		input string
		lang  Language
		text  string
		kind  TokenKind
	}{
		{"123", LanguageC, "123", TokenInteger},
		{"0x1f", LanguageC, "0x1f", TokenInteger},
		{"0b101", LanguageRust, "0b101", TokenInteger},
		{"0o777", LanguageRust, "0o777", TokenInteger},
		{"123u", LanguageC, "123u", TokenInteger},
		{"123ull", LanguageC, "123ull", TokenInteger},
		{"1_000_000", LanguageRust, "1_000_000", TokenInteger},
		{"42i64", LanguageRust, "42i64", TokenInteger},
		{"1'000'000", LanguageC, "1'000'000", TokenInteger},
		{"1.5", LanguageC, "1.5", TokenFloat},
		{"1.5e10", LanguageC, "1.5e10", TokenFloat},
		{"1e-3", LanguageC, "1e-3", TokenFloat},
		{"2.5f", LanguageC, "2.5f", TokenFloat},
		{".5", LanguageC, ".5", TokenFloat},
	}
	for _, test := range tests {
		toks, err := Tokenize(test.input, test.lang)
		if err != nil {
			t.Errorf("Tokenize(%q): %v", test.input, err)
			continue
		}
		if len(toks) != 2 || toks[0].Text != test.text || toks[0].Kind != test.kind {
			t.Errorf("Tokenize(%q) = %v, want single %v token %q", test.input, toks, test.kind, test.text)
		}
	}

	// 1'000 in Rust is not a C++ digit separator; the apostrophe ends
	// the number.
	toks, err := Tokenize("1'a'", LanguageRust)
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 3 || toks[0].Text != "1" || toks[1].Kind != TokenChar {
		t.Errorf("Tokenize(1'a') in Rust = %v, want integer then char", toks)
	}
}

func TestTokenizeStringsAndChars(t *testing.T) {
	toks, err := Tokenize(`"hello\"there" 'x' '\n'`, LanguageC)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{`"hello\"there"`, `'x'`, `'\n'`}
	if diff := cmp.Diff(want, tokenTexts(toks)); diff != "" {
		t.Errorf("string tokens mismatch (-want +got):\n%s", diff)
	}
	kinds := tokenKinds(toks)
	if kinds[0] != TokenString || kinds[1] != TokenChar || kinds[2] != TokenChar {
		t.Errorf("kinds = %v", kinds)
	}
}

func TestTokenizeComments(t *testing.T) {
	toks, err := Tokenize("a /* mid */ + b // tail", LanguageC)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "+", "b"}
	if diff := cmp.Diff(want, tokenTexts(toks)); diff != "" {
		t.Errorf("comment stripping mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		input string
		pos   int
	}{
		{"a @ b", 2},
		{`"unterminated`, 0},
		{"'x", 0},
		{"a /* no end", 2},
		{"a + $", 4},
	}
	for _, test := range tests {
		_, err := Tokenize(test.input, LanguageC)
		if err == nil {
			t.Errorf("Tokenize(%q) succeeded, want error", test.input)
			continue
		}
		pe, ok := err.(*ParseError)
		if !ok {
			t.Errorf("Tokenize(%q) error type %T, want *ParseError", test.input, err)
			continue
		}
		if pe.Pos != test.pos {
			t.Errorf("Tokenize(%q) error at %d, want %d", test.input, pe.Pos, test.pos)
		}
	}
}

func TestTokenPositions(t *testing.T) {
	toks, err := Tokenize("ab >> cd", LanguageC)
	if err != nil {
		t.Fatal(err)
	}
	wantPos := []int{0, 3, 4, 6}
	for i, want := range wantPos {
		if toks[i].Pos != want {
			t.Errorf("token %d at %d, want %d", i, toks[i].Pos, want)
		}
	}
	// The two > of >> are adjacent; a spaced "> >" would not be.
	if !adjacent(toks[1], toks[2]) {
		t.Error("tokens of >> not adjacent")
	}
	toks, err = Tokenize("a > > b", LanguageC)
	if err != nil {
		t.Fatal(err)
	}
	if adjacent(toks[1], toks[2]) {
		t.Error("spaced > > reported adjacent")
	}

	toks, err = Tokenize("$reg(rax)", LanguageC)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != TokenSpecial || toks[0].Text != "$reg" {
		t.Errorf("special token = %v", toks[0])
	}
}
