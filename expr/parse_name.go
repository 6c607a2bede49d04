// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/peekdbg/peek/symbol"
)

// errNotAType is the soft failure of a speculative type parse; the
// caller falls back to expression parsing.
var errNotAType = errors.New("not a type")

// Name parsing runs a small state machine so that each transition has
// one obvious owner: a scope operator must be followed by a component,
// a component may be followed by template arguments, and only a
// component can end the name.
type nameState int

const (
	nameBegin          nameState = iota // expect :: or a component
	nameAfterScope                      // just consumed ::, component required
	nameAfterComponent                  // have a component; :: continues
)

// parseFullIdentifier parses a qualified, possibly templated name
// starting at the current token: x, ns::x, ::x, vector<int>::size,
// $reg(rax).
func (p *parser) parseFullIdentifier() (ParsedIdentifier, error) {
	var ident ParsedIdentifier
	state := nameBegin
	for {
		tok := p.peek()
		switch state {
		case nameBegin, nameAfterScope:
			if tok.Kind == TokenSpecial {
				if state != nameBegin || ident.InGlobalNamespace {
					return ident, parseErrorf(tok.Pos, "%q cannot be qualified", tok.Text)
				}
				comp, err := p.parseSpecialComponent()
				if err != nil {
					return ident, err
				}
				ident.Components = append(ident.Components, comp)
				return ident, nil
			}
			if state == nameBegin && tok.Kind == TokenColonColon {
				p.next()
				ident.InGlobalNamespace = true
				state = nameAfterScope
				continue
			}
			if tok.Kind != TokenIdentifier {
				return ident, parseErrorf(tok.Pos, "expected a name, got %s", tokenDesc(tok))
			}
			p.next()
			comp := IdentifierComponent{Name: tok.Text}
			if p.peek().Kind == TokenLess && p.wantTemplate(ident, comp) {
				args, err := p.parseTemplateArgs()
				if err != nil {
					return ident, err
				}
				comp.HasTemplate = true
				comp.TemplateArgs = args
			}
			ident.Components = append(ident.Components, comp)
			state = nameAfterComponent
		case nameAfterComponent:
			if tok.Kind == TokenColonColon {
				p.next()
				state = nameAfterScope
				continue
			}
			return ident, nil
		}
	}
}

func (p *parser) parseSpecialComponent() (IdentifierComponent, error) {
	tok := p.next()
	var kind SpecialIdentifier
	switch tok.Text {
	case "$reg":
		kind = SpecialRegister
	case "$plt":
		kind = SpecialPLT
	default:
		return IdentifierComponent{}, parseErrorf(tok.Pos, "unknown special name %q", tok.Text)
	}
	if _, err := p.expect(TokenLeftParen, "'(' after "+tok.Text); err != nil {
		return IdentifierComponent{}, err
	}
	name, err := p.expect(TokenIdentifier, "a name inside "+tok.Text+"()")
	if err != nil {
		return IdentifierComponent{}, err
	}
	if _, err := p.expect(TokenRightParen, "')'"); err != nil {
		return IdentifierComponent{}, err
	}
	return IdentifierComponent{Name: name.Text, Special: kind}, nil
}

// wantTemplate decides whether a < after a name opens template
// arguments or is a comparison. Inside a committed type it always
// opens; in expressions the symbol index is consulted for template
// instantiations of the name seen so far.
func (p *parser) wantTemplate(sofar ParsedIdentifier, comp IdentifierComponent) bool {
	if p.typeCommitted {
		return true
	}
	if p.lookup == nil {
		return false
	}
	cand := sofar
	cand.Components = append(append([]IdentifierComponent(nil), sofar.Components...), comp)
	return p.lookup.LookupName(cand).Kind == FoundTemplate
}

// parseTemplateArgs consumes from the opening < through the matching >.
// Arguments are captured as canonical text; nesting is tracked for <,
// ( and [, and a > at depth zero closes the list. Right angles are
// single tokens, so vector<vector<int>> closes twice without any >>
// ever existing.
func (p *parser) parseTemplateArgs() ([]string, error) {
	open := p.next()
	args := []string{}
	var cur []Token
	depth := 0
	flush := func(tok Token) error {
		if len(cur) == 0 {
			if len(args) > 0 {
				return parseErrorf(tok.Pos, "missing template argument")
			}
			return nil
		}
		args = append(args, renderTokens(cur))
		cur = nil
		return nil
	}
	for {
		tok := p.peek()
		switch tok.Kind {
		case TokenEnd:
			return nil, parseErrorf(open.Pos, "template arguments not closed")
		case TokenLess, TokenLeftParen, TokenLeftBracket:
			depth++
		case TokenRightParen, TokenRightBracket:
			if depth == 0 {
				return nil, parseErrorf(tok.Pos, "unexpected %q in template arguments", tok.Text)
			}
			depth--
		case TokenGreater:
			if depth == 0 {
				p.next()
				if err := flush(tok); err != nil {
					return nil, err
				}
				return args, nil
			}
			depth--
		case TokenComma:
			if depth == 0 {
				if len(cur) == 0 {
					return nil, parseErrorf(tok.Pos, "missing template argument")
				}
				p.next()
				if err := flush(tok); err != nil {
					return nil, err
				}
				continue
			}
		}
		p.next()
		cur = append(cur, tok)
	}
}

// renderTokens renders captured tokens canonically: a space between two
// word-like tokens and after every comma, nothing else. This matches
// how qualified names are written into the symbol index.
func renderTokens(toks []Token) string {
	var b strings.Builder
	for i, tok := range toks {
		if i > 0 {
			prev := toks[i-1]
			if prev.Kind == TokenComma ||
				(isIdentChar(lastByte(prev.Text)) && isIdentChar(tok.Text[0])) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

func lastByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[len(s)-1]
}

// attemptType speculatively parses a type at the cursor. ok is false
// with the cursor restored when the tokens do not begin a type. Errors
// are only returned for input that committed to type syntax and then
// went wrong.
func (p *parser) attemptType() (*TypeNode, bool, error) {
	save := p.cur
	old := p.typeCommitted
	p.typeCommitted = false
	tn, err := p.parseTypeName()
	p.typeCommitted = old
	if err != nil {
		p.cur = save
		if err == errNotAType {
			return nil, false, nil
		}
		return nil, false, err
	}
	return tn, true, nil
}

// parseTypeCommitted parses a type in a position where only a type can
// appear, so failures are hard errors and a < always opens template
// arguments.
func (p *parser) parseTypeCommitted() (*TypeNode, error) {
	old := p.typeCommitted
	p.typeCommitted = true
	tn, err := p.parseTypeName()
	p.typeCommitted = old
	if err == errNotAType {
		err = parseErrorf(p.peek().Pos, "expected a type name")
	}
	return tn, err
}

func (p *parser) parseTypeName() (*TypeNode, error) {
	if p.lang == LanguageRust {
		return p.parseRustTypeName()
	}
	return p.parseCTypeName()
}

func (p *parser) parseCTypeName() (*TypeNode, error) {
	pos := p.peek().Pos

	var quals []symbol.ModifierKind
qualifiers:
	for {
		switch p.peek().Kind {
		case TokenConst:
			quals = append(quals, symbol.KindConst)
		case TokenVolatile:
			quals = append(quals, symbol.KindVolatile)
		case TokenRestrict:
			quals = append(quals, symbol.KindRestrict)
		default:
			break qualifiers
		}
		p.next()
	}

	base, err := p.parseCBaseType()
	if err != nil {
		return nil, err
	}
	for i := len(quals) - 1; i >= 0; i-- {
		base = qualify(quals[i], base)
	}

	for {
		switch p.peek().Kind {
		case TokenStar:
			base = p.indirect(symbol.KindPointer, base)
		case TokenAmpersand:
			base = p.indirect(symbol.KindReference, base)
		case TokenDoubleAnd:
			base = p.indirect(symbol.KindRvalueReference, base)
		case TokenConst:
			base = qualify(symbol.KindConst, base)
		case TokenVolatile:
			base = qualify(symbol.KindVolatile, base)
		case TokenRestrict:
			base = qualify(symbol.KindRestrict, base)
		default:
			return &TypeNode{Type: base, pos: pos}, nil
		}
		p.next()
	}
}

func (p *parser) parseCBaseType() (symbol.Type, error) {
	// A run of built-in type words: "unsigned", "long long int", ...
	var words []string
	for p.peek().Kind == TokenIdentifier && cTypeWords[p.peek().Text] {
		words = append(words, p.next().Text)
	}
	if len(words) > 0 {
		t := cBuiltinType(words)
		if t == nil {
			return nil, parseErrorf(p.peek().Pos, "invalid type name %q", strings.Join(words, " "))
		}
		return t, nil
	}

	save := p.cur
	ident, err := p.parseFullIdentifier()
	if err != nil {
		if p.typeCommitted {
			return nil, err
		}
		p.cur = save
		return nil, errNotAType
	}
	return p.lookupTypeName(ident, save)
}

func (p *parser) lookupTypeName(ident ParsedIdentifier, save int) (symbol.Type, error) {
	var f FoundName
	if p.lookup != nil {
		f = p.lookup.LookupName(ident)
	}
	if f.Kind != FoundType {
		if p.typeCommitted {
			return nil, parseErrorf(p.toks[save].Pos, "unknown type name %q", ident.FullName())
		}
		p.cur = save
		return nil, errNotAType
	}
	return f.Type, nil
}

func qualify(kind symbol.ModifierKind, t symbol.Type) symbol.Type {
	return &symbol.ModifiedType{
		CommonType: symbol.CommonType{ByteSize: byteSizeOf(t)},
		Kind:       kind,
		Modified:   t,
	}
}

func (p *parser) indirect(kind symbol.ModifierKind, t symbol.Type) symbol.Type {
	return &symbol.ModifiedType{
		CommonType: symbol.CommonType{ByteSize: int64(p.ptrSize)},
		Kind:       kind,
		Modified:   t,
	}
}

func byteSizeOf(t symbol.Type) int64 {
	if t == nil {
		return 0
	}
	return t.Size()
}

func (p *parser) parseRustTypeName() (*TypeNode, error) {
	pos := p.peek().Pos
	t, err := p.parseRustType()
	if err != nil {
		return nil, err
	}
	return &TypeNode{Type: t, pos: pos}, nil
}

func (p *parser) parseRustType() (symbol.Type, error) {
	switch tok := p.peek(); tok.Kind {
	case TokenAmpersand:
		p.next()
		if p.peek().Kind == TokenMut {
			p.next()
		}
		inner, err := p.parseRustType()
		if err != nil {
			return nil, err
		}
		return p.indirect(symbol.KindReference, inner), nil
	case TokenStar:
		p.next()
		switch p.peek().Kind {
		case TokenConst, TokenMut:
			p.next()
		default:
			if p.typeCommitted {
				return nil, parseErrorf(p.peek().Pos, "expected 'const' or 'mut' in raw pointer type")
			}
			return nil, errNotAType
		}
		inner, err := p.parseRustType()
		if err != nil {
			return nil, err
		}
		return p.indirect(symbol.KindPointer, inner), nil
	case TokenLeftBracket:
		p.next()
		elem, err := p.parseRustType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenSemicolon, "';' in array type"); err != nil {
			return nil, err
		}
		count, err := p.expect(TokenInteger, "an array length")
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseUint(count.Text, 0, 32)
		if err != nil {
			return nil, parseErrorf(count.Pos, "invalid array length %q", count.Text)
		}
		if _, err := p.expect(TokenRightBracket, "']'"); err != nil {
			return nil, err
		}
		return &symbol.ArrayType{
			CommonType: symbol.CommonType{ByteSize: byteSizeOf(elem) * int64(n)},
			Elem:       elem,
			Count:      int64(n),
		}, nil
	case TokenIdentifier:
		if t, ok := rustBuiltinType(tok.Text); ok {
			p.next()
			return t, nil
		}
		save := p.cur
		ident, err := p.parseFullIdentifier()
		if err != nil {
			if p.typeCommitted {
				return nil, err
			}
			p.cur = save
			return nil, errNotAType
		}
		return p.lookupTypeName(ident, save)
	default:
		if p.typeCommitted {
			return nil, parseErrorf(tok.Pos, "expected a type name, got %s", tokenDesc(tok))
		}
		return nil, errNotAType
	}
}

// cTypeWords are the words that can compose a built-in C type name.
var cTypeWords = map[string]bool{
	"void": true, "bool": true, "char": true, "short": true, "int": true,
	"long": true, "float": true, "double": true, "signed": true, "unsigned": true,
}

type builtinSpec struct {
	name string
	size int64
	enc  symbol.BaseEncoding
}

// cBuiltins maps the sorted word list of a built-in type to its
// canonical spelling. Sorting makes "unsigned long" and "long unsigned"
// the same key.
var cBuiltins = map[string]builtinSpec{
	"void":                    {"void", 0, symbol.EncodingNone},
	"bool":                    {"bool", 1, symbol.EncodingBoolean},
	"char":                    {"char", 1, symbol.EncodingSignedChar},
	"char signed":             {"signed char", 1, symbol.EncodingSignedChar},
	"char unsigned":           {"unsigned char", 1, symbol.EncodingUnsignedChar},
	"short":                   {"short", 2, symbol.EncodingSigned},
	"int short":               {"short", 2, symbol.EncodingSigned},
	"short signed":            {"short", 2, symbol.EncodingSigned},
	"int short signed":        {"short", 2, symbol.EncodingSigned},
	"short unsigned":          {"unsigned short", 2, symbol.EncodingUnsigned},
	"int short unsigned":      {"unsigned short", 2, symbol.EncodingUnsigned},
	"int":                     {"int", 4, symbol.EncodingSigned},
	"signed":                  {"int", 4, symbol.EncodingSigned},
	"int signed":              {"int", 4, symbol.EncodingSigned},
	"unsigned":                {"unsigned int", 4, symbol.EncodingUnsigned},
	"int unsigned":            {"unsigned int", 4, symbol.EncodingUnsigned},
	"long":                    {"long", 8, symbol.EncodingSigned},
	"int long":                {"long", 8, symbol.EncodingSigned},
	"long signed":             {"long", 8, symbol.EncodingSigned},
	"int long signed":         {"long", 8, symbol.EncodingSigned},
	"long unsigned":           {"unsigned long", 8, symbol.EncodingUnsigned},
	"int long unsigned":       {"unsigned long", 8, symbol.EncodingUnsigned},
	"long long":               {"long long", 8, symbol.EncodingSigned},
	"int long long":           {"long long", 8, symbol.EncodingSigned},
	"long long signed":        {"long long", 8, symbol.EncodingSigned},
	"int long long signed":    {"long long", 8, symbol.EncodingSigned},
	"long long unsigned":      {"unsigned long long", 8, symbol.EncodingUnsigned},
	"int long long unsigned":  {"unsigned long long", 8, symbol.EncodingUnsigned},
	"float":                   {"float", 4, symbol.EncodingFloat},
	"double":                  {"double", 8, symbol.EncodingFloat},
	"double long":             {"long double", 16, symbol.EncodingFloat},
}

func cBuiltinType(words []string) symbol.Type {
	sorted := append([]string(nil), words...)
	sort.Strings(sorted)
	spec, ok := cBuiltins[strings.Join(sorted, " ")]
	if !ok {
		return nil
	}
	return &symbol.BaseType{
		CommonType: symbol.CommonType{Name: spec.name, ByteSize: spec.size},
		Encoding:   spec.enc,
	}
}

var rustBuiltins = map[string]builtinSpec{
	"i8":    {"i8", 1, symbol.EncodingSigned},
	"i16":   {"i16", 2, symbol.EncodingSigned},
	"i32":   {"i32", 4, symbol.EncodingSigned},
	"i64":   {"i64", 8, symbol.EncodingSigned},
	"isize": {"isize", 8, symbol.EncodingSigned},
	"u8":    {"u8", 1, symbol.EncodingUnsigned},
	"u16":   {"u16", 2, symbol.EncodingUnsigned},
	"u32":   {"u32", 4, symbol.EncodingUnsigned},
	"u64":   {"u64", 8, symbol.EncodingUnsigned},
	"usize": {"usize", 8, symbol.EncodingUnsigned},
	"f32":   {"f32", 4, symbol.EncodingFloat},
	"f64":   {"f64", 8, symbol.EncodingFloat},
	"bool":  {"bool", 1, symbol.EncodingBoolean},
	"char":  {"char", 4, symbol.EncodingUTF},
}

func rustBuiltinType(name string) (symbol.Type, bool) {
	spec, ok := rustBuiltins[name]
	if !ok {
		return nil, false
	}
	return &symbol.BaseType{
		CommonType: symbol.CommonType{Name: spec.name, ByteSize: spec.size},
		Encoding:   spec.enc,
	}, true
}
