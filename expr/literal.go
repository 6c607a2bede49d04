// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/peekdbg/peek/arch"
	"github.com/peekdbg/peek/symbol"
)

func namedBase(name string, size int64, enc symbol.BaseEncoding) symbol.Type {
	return &symbol.BaseType{
		CommonType: symbol.CommonType{Name: name, ByteSize: size},
		Encoding:   enc,
	}
}

// literalValue turns one literal token into a value.
func literalValue(a *arch.Architecture, lang Language, tok Token) (Value, error) {
	switch tok.Kind {
	case TokenTrue:
		return makeUintValue(a, boolType(), 1), nil
	case TokenFalse:
		return makeUintValue(a, boolType(), 0), nil
	case TokenInteger:
		return integerLiteral(a, lang, tok)
	case TokenFloat:
		return floatLiteral(a, lang, tok)
	case TokenChar:
		return charLiteral(a, lang, tok)
	case TokenString:
		return stringLiteral(a, lang, tok)
	}
	return Value{}, parseErrorf(tok.Pos, "unexpected literal %q", tok.Text)
}

// stripSeparators removes digit separators, ' in C++ and _ in Rust.
// The tokenizer already rejected badly placed C++ separators.
func stripSeparators(s string, lang Language) string {
	if lang == LanguageRust {
		return strings.ReplaceAll(s, "_", "")
	}
	return strings.ReplaceAll(s, "'", "")
}

func integerLiteral(a *arch.Architecture, lang Language, tok Token) (Value, error) {
	text := stripSeparators(tok.Text, lang)
	if lang == LanguageRust {
		return rustIntegerLiteral(a, tok, text)
	}
	return cIntegerLiteral(a, tok, text)
}

func cIntegerLiteral(a *arch.Architecture, tok Token, text string) (Value, error) {
	// Split off any u/l suffix run.
	i := len(text)
	us, ls := 0, 0
suffix:
	for i > 0 {
		switch text[i-1] {
		case 'u', 'U':
			us++
		case 'l', 'L':
			ls++
		default:
			break suffix
		}
		i--
	}
	digits := text[:i]
	if us > 1 || ls > 2 || digits == "" || strings.ContainsRune(digits, '_') {
		return Value{}, parseErrorf(tok.Pos, "invalid number %q", tok.Text)
	}
	// Base 0 understands the 0x, 0b and leading-0 octal prefixes.
	x, err := strconv.ParseUint(digits, 0, 64)
	if err != nil {
		return Value{}, parseErrorf(tok.Pos, "invalid number %q", tok.Text)
	}
	// Pick the first type that holds the value, the way a compiler
	// types an unsuffixed literal: int, then long. Values above
	// INT64_MAX fall over to unsigned long.
	var t symbol.Type
	switch {
	case us > 0 && ls == 0 && x <= math.MaxUint32:
		t = namedBase("unsigned int", 4, symbol.EncodingUnsigned)
	case us > 0:
		t = namedBase("unsigned long", 8, symbol.EncodingUnsigned)
	case ls == 0 && x <= math.MaxInt32:
		t = namedBase("int", 4, symbol.EncodingSigned)
	case x <= math.MaxInt64:
		t = namedBase("long", 8, symbol.EncodingSigned)
	default:
		t = namedBase("unsigned long", 8, symbol.EncodingUnsigned)
	}
	return makeUintValue(a, t, x), nil
}

// rustIntSuffixes are tried longest first so the digits keep as much of
// the token as possible. A hex literal like 0xf32 never splits: its
// candidate digits "0x" fail to parse and the whole token is the number.
var rustIntSuffixes = []string{
	"isize", "usize",
	"i16", "i32", "i64", "u16", "u32", "u64", "f32", "f64",
	"i8", "u8",
}

func rustIntegerLiteral(a *arch.Architecture, tok Token, text string) (Value, error) {
	parse := func(d string) (uint64, bool) {
		if len(d) > 1 && d[0] == '0' && d[1] >= '0' && d[1] <= '9' {
			// A leading zero is not octal in Rust.
			x, err := strconv.ParseUint(d, 10, 64)
			return x, err == nil
		}
		x, err := strconv.ParseUint(d, 0, 64)
		return x, err == nil
	}
	hasBasePrefix := len(text) > 1 && text[0] == '0' && (text[1] < '0' || text[1] > '9')
	for _, s := range rustIntSuffixes {
		if !strings.HasSuffix(text, s) {
			continue
		}
		if (s == "f32" || s == "f64") && hasBasePrefix {
			// f is a hex digit; 0x1f32 is a number, not a float.
			continue
		}
		digits := text[:len(text)-len(s)]
		x, ok := parse(digits)
		if !ok {
			continue
		}
		if s == "f32" || s == "f64" {
			size := 8
			if s == "f32" {
				size = 4
			}
			return makeFloatValue(a, typeForFloat(LanguageRust, size), size, float64(x)), nil
		}
		t, _ := rustBuiltinType(s)
		bits := uint(t.Size()) * 8
		if bits < 64 {
			max := uint64(1)<<bits - 1
			if s[0] == 'i' {
				// Allow up to 2^(n-1) so a negated minimum like
				// -128i8 still parses.
				max = 1 << (bits - 1)
			}
			if x > max {
				return Value{}, parseErrorf(tok.Pos, "literal out of range for %s", s)
			}
		}
		return makeUintValue(a, t, x), nil
	}
	x, ok := parse(text)
	if !ok {
		return Value{}, parseErrorf(tok.Pos, "invalid number %q", tok.Text)
	}
	var t symbol.Type
	switch {
	case x <= math.MaxInt32:
		t, _ = rustBuiltinType("i32")
	case x <= math.MaxInt64:
		t, _ = rustBuiltinType("i64")
	default:
		t, _ = rustBuiltinType("u64")
	}
	return makeUintValue(a, t, x), nil
}

func floatLiteral(a *arch.Architecture, lang Language, tok Token) (Value, error) {
	text := stripSeparators(tok.Text, lang)
	digits := text
	size := 8
	if lang == LanguageRust {
		switch {
		case strings.HasSuffix(text, "f32"):
			size = 4
			digits = text[:len(text)-3]
		case strings.HasSuffix(text, "f64"):
			digits = text[:len(text)-3]
		}
	} else if len(text) > 0 {
		switch text[len(text)-1] {
		case 'f', 'F':
			size = 4
			digits = text[:len(text)-1]
		case 'l', 'L':
			return Value{}, parseErrorf(tok.Pos, "long double literals are not supported")
		}
	}
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return Value{}, parseErrorf(tok.Pos, "invalid number %q", tok.Text)
	}
	return makeFloatValue(a, typeForFloat(lang, size), size, f), nil
}

func charLiteral(a *arch.Architecture, lang Language, tok Token) (Value, error) {
	body := tok.Text
	if len(body) < 2 || body[0] != '\'' || body[len(body)-1] != '\'' {
		return Value{}, parseErrorf(tok.Pos, "invalid character literal")
	}
	b, err := unescape(body[1:len(body)-1], tok.Pos)
	if err != nil {
		return Value{}, err
	}
	if lang == LanguageRust {
		r, n := utf8.DecodeRune(b)
		if n != len(b) || r == utf8.RuneError && n <= 1 {
			return Value{}, parseErrorf(tok.Pos, "invalid character literal")
		}
		t, ok := rustBuiltinType("char")
		if !ok {
			t = namedBase("char", 4, symbol.EncodingUTF)
		}
		return makeUintValue(a, t, uint64(r)), nil
	}
	if len(b) != 1 {
		return Value{}, parseErrorf(tok.Pos, "invalid character literal")
	}
	return makeUintValue(a, namedBase("char", 1, symbol.EncodingSignedChar), uint64(b[0])), nil
}

// stringLiteral builds a char array holding the string and its NUL
// terminator. The value is a temporary; it has no address in the
// target.
func stringLiteral(a *arch.Architecture, lang Language, tok Token) (Value, error) {
	if lang == LanguageRust {
		return Value{}, parseErrorf(tok.Pos, "string literals are not supported for Rust")
	}
	body := tok.Text
	if len(body) < 2 || body[0] != '"' || body[len(body)-1] != '"' {
		return Value{}, parseErrorf(tok.Pos, "invalid string literal")
	}
	b, err := unescape(body[1:len(body)-1], tok.Pos)
	if err != nil {
		return Value{}, err
	}
	data := append(b, 0)
	t := &symbol.ArrayType{
		CommonType: symbol.CommonType{ByteSize: int64(len(data))},
		Elem:       namedBase("char", 1, symbol.EncodingSignedChar),
		Count:      int64(len(data)),
	}
	return Value{Type: t, Bytes: data}, nil
}

// unescape decodes the body of a quoted literal.
func unescape(s string, pos int) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(s) {
			return nil, parseErrorf(pos, "bad escape at end of literal")
		}
		switch s[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case '0':
			out = append(out, 0)
		case '\\', '\'', '"':
			out = append(out, s[i])
		case 'x':
			if i+3 > len(s) {
				return nil, parseErrorf(pos, "bad \\x escape")
			}
			x, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return nil, parseErrorf(pos, "bad \\x escape")
			}
			out = append(out, byte(x))
			i += 2
		default:
			return nil, parseErrorf(pos, "unknown escape \\%c", s[i])
		}
	}
	return out, nil
}
