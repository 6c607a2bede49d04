// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import "strings"

// A SpecialIdentifier marks identifier components that name debugger
// entities rather than symbols.
type SpecialIdentifier int

const (
	SpecialNone     SpecialIdentifier = iota
	SpecialRegister                   // $reg(name)
	SpecialPLT                        // $plt(name)
)

// An IdentifierComponent is one segment of a qualified name. Template
// arguments are kept as canonical source strings; the debugger matches
// them textually against the symbol index.
type IdentifierComponent struct {
	Name         string
	Special      SpecialIdentifier
	HasTemplate  bool
	TemplateArgs []string
}

func (c IdentifierComponent) FullName() string {
	switch c.Special {
	case SpecialRegister:
		return "$reg(" + c.Name + ")"
	case SpecialPLT:
		return "$plt(" + c.Name + ")"
	}
	if !c.HasTemplate {
		return c.Name
	}
	return c.Name + "<" + strings.Join(c.TemplateArgs, ", ") + ">"
}

// A ParsedIdentifier is a qualified name broken into components.
// "::std::vector<int>::size" has InGlobalNamespace set and two
// components, the first templated.
type ParsedIdentifier struct {
	InGlobalNamespace bool
	Components        []IdentifierComponent
}

// FullName renders the identifier in canonical form: components joined
// by "::", template arguments separated by ", ".
func (p ParsedIdentifier) FullName() string {
	var b strings.Builder
	if p.InGlobalNamespace {
		b.WriteString("::")
	}
	for i, c := range p.Components {
		if i > 0 {
			b.WriteString("::")
		}
		b.WriteString(c.FullName())
	}
	return b.String()
}

// Simple reports the bare name if the identifier is a single plain
// component: no qualification, no template, no special.
func (p ParsedIdentifier) Simple() (string, bool) {
	if p.InGlobalNamespace || len(p.Components) != 1 {
		return "", false
	}
	c := p.Components[0]
	if c.Special != SpecialNone || c.HasTemplate {
		return "", false
	}
	return c.Name, true
}

// ParseIdentifier parses input as a qualified name by itself, for
// callers that hold a name outside any expression, such as symbol
// lookup commands.
func ParseIdentifier(input string, lang Language) (ParsedIdentifier, error) {
	toks, err := Tokenize(input, lang)
	if err != nil {
		return ParsedIdentifier{}, err
	}
	p := newParser(toks, lang, nil)
	// A bare name is a committed context: any < opens template
	// arguments, no symbol index needed.
	p.typeCommitted = true
	ident, err := p.parseFullIdentifier()
	if err != nil {
		return ParsedIdentifier{}, err
	}
	if tok := p.peek(); tok.Kind != TokenEnd {
		return ParsedIdentifier{}, parseErrorf(tok.Pos, "unexpected %q after name", tok.Text)
	}
	return ident, nil
}
