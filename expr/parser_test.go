// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/peekdbg/peek/symbol"
)

func lines(s ...string) string { return strings.Join(s, "\n") + "\n" }

// tableLookup resolves names from fixed tables, standing in for the
// symbol index the parser consults during disambiguation.
type tableLookup struct {
	types     map[string]symbol.Type
	templates map[string]bool
}

func (l *tableLookup) LookupName(ident ParsedIdentifier) FoundName {
	name := ident.FullName()
	if t, ok := l.types[name]; ok {
		return FoundName{Kind: FoundType, Type: t}
	}
	if l.templates[name] {
		return FoundName{Kind: FoundTemplate, Name: name}
	}
	return FoundName{}
}

func testLookup() *tableLookup {
	mk := func(name string) symbol.Type {
		return &symbol.Collection{
			CommonType: symbol.CommonType{Name: name, ByteSize: 8},
			Kind:       symbol.Class,
		}
	}
	return &tableLookup{
		types: map[string]symbol.Type{
			"MyType":              mk("MyType"),
			"List<int>":           mk("List<int>"),
			"vector<vector<int>>": mk("vector<vector<int>>"),
		},
		templates: map[string]bool{"vector": true, "Pair": true, "List": true},
	}
}

func checkParse(t *testing.T, input string, lang Language, lookup NameLookup, want string) {
	t.Helper()
	n, err := ParseExpression(input, lang, lookup)
	if err != nil {
		t.Errorf("ParseExpression(%q): %v", input, err)
		return
	}
	if diff := cmp.Diff(want, dumpNode(n)); diff != "" {
		t.Errorf("ParseExpression(%q) tree mismatch (-want +got):\n%s", input, diff)
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", lines(
			"BINARY(+)",
			"  LITERAL(1)",
			"  BINARY(*)",
			"    LITERAL(2)",
			"    LITERAL(3)",
		)},
		{"(1 + 2) * 3", lines(
			"BINARY(*)",
			"  BINARY(+)",
			"    LITERAL(1)",
			"    LITERAL(2)",
			"  LITERAL(3)",
		)},
		// The two > of a right shift are separate tokens until they
		// reach operator position.
		{"a < b >> c", lines(
			"BINARY(<)",
			"  IDENT(\"a\")",
			"  BINARY(>>)",
			"    IDENT(\"b\")",
			"    IDENT(\"c\")",
		)},
		{"a >> b >> c", lines(
			"BINARY(>>)",
			"  BINARY(>>)",
			"    IDENT(\"a\")",
			"    IDENT(\"b\")",
			"  IDENT(\"c\")",
		)},
		{"a >>= b", lines(
			"BINARY(>>=)",
			"  IDENT(\"a\")",
			"  IDENT(\"b\")",
		)},
		// Assignment is right associative.
		{"a = b = c", lines(
			"BINARY(=)",
			"  IDENT(\"a\")",
			"  BINARY(=)",
			"    IDENT(\"b\")",
			"    IDENT(\"c\")",
		)},
		// The C gotcha: == binds tighter than &.
		{"a & b == c", lines(
			"BINARY(&)",
			"  IDENT(\"a\")",
			"  BINARY(==)",
			"    IDENT(\"b\")",
			"    IDENT(\"c\")",
		)},
		{"-a * b", lines(
			"BINARY(*)",
			"  UNARY(-)",
			"    IDENT(\"a\")",
			"  IDENT(\"b\")",
		)},
		{"~bits & mask", lines(
			"BINARY(&)",
			"  UNARY(~)",
			"    IDENT(\"bits\")",
			"  IDENT(\"mask\")",
		)},
		{"a || b && c", lines(
			"BINARY(||)",
			"  IDENT(\"a\")",
			"  BINARY(&&)",
			"    IDENT(\"b\")",
			"    IDENT(\"c\")",
		)},
		{"a <=> b < c", lines(
			"BINARY(<)",
			"  BINARY(<=>)",
			"    IDENT(\"a\")",
			"    IDENT(\"b\")",
			"  IDENT(\"c\")",
		)},
		{"x += y | z", lines(
			"BINARY(+=)",
			"  IDENT(\"x\")",
			"  BINARY(|)",
			"    IDENT(\"y\")",
			"    IDENT(\"z\")",
		)},
		{"a, b = c", lines(
			"BINARY(,)",
			"  IDENT(\"a\")",
			"  BINARY(=)",
			"    IDENT(\"b\")",
			"    IDENT(\"c\")",
		)},
		// Without a symbol index a < b > c can only be comparisons.
		{"a < b > c", lines(
			"BINARY(>)",
			"  BINARY(<)",
			"    IDENT(\"a\")",
			"    IDENT(\"b\")",
			"  IDENT(\"c\")",
		)},
	}
	for _, test := range tests {
		checkParse(t, test.input, LanguageC, nil, test.want)
	}
}

func TestParseMemberAccess(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// Member access binds tighter than dereference.
		{"*p->x", lines(
			"UNARY(*)",
			"  MEMBER(->, \"x\")",
			"    IDENT(\"p\")",
		)},
		{"a.b->c[0]", lines(
			"SUBSCRIPT",
			"  MEMBER(->, \"c\")",
			"    MEMBER(., \"b\")",
			"      IDENT(\"a\")",
			"  LITERAL(0)",
		)},
		{"&v[i]", lines(
			"UNARY(&)",
			"  SUBSCRIPT",
			"    IDENT(\"v\")",
			"    IDENT(\"i\")",
		)},
	}
	for _, test := range tests {
		checkParse(t, test.input, LanguageC, nil, test.want)
	}
}

func TestParseNames(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"std::mem::size", lines(`IDENT("std::mem::size")`)},
		{"::flag", lines(`IDENT("::flag")`)},
		{"$reg(rax)", lines(`IDENT("$reg(rax)")`)},
		{"$plt(open) + 4", lines(
			"BINARY(+)",
			"  IDENT(\"$plt(open)\")",
			"  LITERAL(4)",
		)},
	}
	for _, test := range tests {
		checkParse(t, test.input, LanguageC, nil, test.want)
	}
}

func TestParseTemplates(t *testing.T) {
	lookup := testLookup()
	tests := []struct {
		input string
		want  string
	}{
		// Each > is its own token, so the nested list closes without a
		// >> ever existing.
		{"vector<vector<int>>", lines(`IDENT("vector<vector<int>>")`)},
		{"Pair<int, 4>", lines(`IDENT("Pair<int, 4>")`)},
		// A name the index does not know as a template stays a
		// comparison even when the lookup is present.
		{"a < b", lines(
			"BINARY(<)",
			"  IDENT(\"a\")",
			"  IDENT(\"b\")",
		)},
	}
	for _, test := range tests {
		checkParse(t, test.input, LanguageC, lookup, test.want)
	}
}

func TestParseCasts(t *testing.T) {
	lookup := testLookup()
	tests := []struct {
		input  string
		lang   Language
		lookup NameLookup
		want   string
	}{
		{"(int)x + 1", LanguageC, nil, lines(
			"BINARY(+)",
			"  CAST(cast, int)",
			"    IDENT(\"x\")",
			"  LITERAL(1)",
		)},
		{"(unsigned long long)x", LanguageC, nil, lines(
			"CAST(cast, unsigned long long)",
			"  IDENT(\"x\")",
		)},
		{"(const char*)s", LanguageC, nil, lines(
			"CAST(cast, const char*)",
			"  IDENT(\"s\")",
		)},
		// (MyType)*p is a cast of *p when MyType names a type, and a
		// multiplication when it does not.
		{"(MyType)*p", LanguageC, lookup, lines(
			"CAST(cast, MyType)",
			"  UNARY(*)",
			"    IDENT(\"p\")",
		)},
		{"(MyType)*p", LanguageC, nil, lines(
			"BINARY(*)",
			"  IDENT(\"MyType\")",
			"  IDENT(\"p\")",
		)},
		{"static_cast<List<int>>(x)", LanguageC, lookup, lines(
			"CAST(static_cast, List<int>)",
			"  IDENT(\"x\")",
		)},
		{"reinterpret_cast<unsigned long>(p)", LanguageC, nil, lines(
			"CAST(reinterpret_cast, unsigned long)",
			"  IDENT(\"p\")",
		)},
		{"const_cast<char*>(s)", LanguageC, nil, lines(
			"CAST(const_cast, char*)",
			"  IDENT(\"s\")",
		)},
		{"x as u32", LanguageRust, nil, lines(
			"CAST(as, u32)",
			"  IDENT(\"x\")",
		)},
		{"p as *const u8", LanguageRust, nil, lines(
			"CAST(as, u8*)",
			"  IDENT(\"p\")",
		)},
		{"b as [u8; 4]", LanguageRust, nil, lines(
			"CAST(as, u8[4])",
			"  IDENT(\"b\")",
		)},
		// as binds looser than unary minus and tighter than +.
		{"-x as u32", LanguageRust, nil, lines(
			"CAST(as, u32)",
			"  UNARY(-)",
			"    IDENT(\"x\")",
		)},
		{"x as u32 + 1", LanguageRust, nil, lines(
			"BINARY(+)",
			"  CAST(as, u32)",
			"    IDENT(\"x\")",
			"  LITERAL(1)",
		)},
	}
	for _, test := range tests {
		checkParse(t, test.input, test.lang, test.lookup, test.want)
	}
}

func TestParseSizeof(t *testing.T) {
	tests := []struct {
		input  string
		lookup NameLookup
		want   string
	}{
		{"sizeof(int)", nil, lines(
			"SIZEOF",
			"  TYPE(int)",
		)},
		{"sizeof(long double)", nil, lines(
			"SIZEOF",
			"  TYPE(long double)",
		)},
		{"sizeof(x)", nil, lines(
			"SIZEOF",
			"  IDENT(\"x\")",
		)},
		{"sizeof x", nil, lines(
			"SIZEOF",
			"  IDENT(\"x\")",
		)},
		{"sizeof(MyType)", testLookup(), lines(
			"SIZEOF",
			"  TYPE(MyType)",
		)},
	}
	for _, test := range tests {
		checkParse(t, test.input, LanguageC, test.lookup, test.want)
	}
}

func TestParseBlocks(t *testing.T) {
	tests := []struct {
		input string
		lang  Language
		want  string
	}{
		{"{auto total = 0; total + 1}", LanguageC, lines(
			"BLOCK",
			"  DECL(\"total\", slot 0)",
			"    LITERAL(0)",
			"  BINARY(+)",
			"    LOCAL(\"total\", slot 0)",
			"    LITERAL(1)",
		)},
		// A trailing semicolon discards the block's value.
		{"{1;}", LanguageC, lines(
			"BLOCK(;)",
			"  LITERAL(1)",
		)},
		// The second let shadows the first, but its initializer still
		// reads the outer binding.
		{"{let x = 1; let x = x + 1; x}", LanguageRust, lines(
			"BLOCK",
			"  DECL(\"x\", slot 0)",
			"    LITERAL(1)",
			"  DECL(\"x\", slot 1)",
			"    BINARY(+)",
			"      LOCAL(\"x\", slot 0)",
			"      LITERAL(1)",
			"  LOCAL(\"x\", slot 1)",
		)},
		{"let len: usize = 0", LanguageRust, lines(
			"DECL(\"len\", slot 0, usize)",
			"  LITERAL(0)",
		)},
		{"let mut count = 0", LanguageRust, lines(
			"DECL(\"count\", slot 0)",
			"  LITERAL(0)",
		)},
		// The inner block's declaration goes out of scope, so the
		// trailing a is a symbol lookup again.
		{"{{auto a = 1;} a}", LanguageC, lines(
			"BLOCK",
			"  BLOCK(;)",
			"    DECL(\"a\", slot 0)",
			"      LITERAL(1)",
			"  IDENT(\"a\")",
		)},
	}
	for _, test := range tests {
		checkParse(t, test.input, test.lang, nil, test.want)
	}
}

func TestParseControlFlow(t *testing.T) {
	tests := []struct {
		input string
		lang  Language
		want  string
	}{
		{"if (a) b else c", LanguageC, lines(
			"IF",
			"  IDENT(\"a\")",
			"  IDENT(\"b\")",
			"  IDENT(\"c\")",
		)},
		{"if (a > 1) { b }", LanguageC, lines(
			"IF",
			"  BINARY(>)",
			"    IDENT(\"a\")",
			"    LITERAL(1)",
			"  BLOCK",
			"    IDENT(\"b\")",
		)},
		{"if a { 1 } else if b { 2 } else { 3 }", LanguageRust, lines(
			"IF",
			"  IDENT(\"a\")",
			"  BLOCK",
			"    LITERAL(1)",
			"  IF",
			"    IDENT(\"b\")",
			"    BLOCK",
			"      LITERAL(2)",
			"    BLOCK",
			"      LITERAL(3)",
		)},
		{"while (i < 9) i = i + 1", LanguageC, lines(
			"LOOP(while)",
			"  BINARY(<)",
			"    IDENT(\"i\")",
			"    LITERAL(9)",
			"  BINARY(=)",
			"    IDENT(\"i\")",
			"    BINARY(+)",
			"      IDENT(\"i\")",
			"      LITERAL(1)",
		)},
		{"do { x } while (y)", LanguageC, lines(
			"LOOP(do)",
			"  IDENT(\"y\")",
			"  BLOCK",
			"    IDENT(\"x\")",
		)},
		{"for (auto i = 0; i < 3; i += 1) { i }", LanguageC, lines(
			"LOOP(for)",
			"  DECL(\"i\", slot 0)",
			"    LITERAL(0)",
			"  BINARY(<)",
			"    LOCAL(\"i\", slot 0)",
			"    LITERAL(3)",
			"  BINARY(+=)",
			"    LOCAL(\"i\", slot 0)",
			"    LITERAL(1)",
			"  BLOCK",
			"    LOCAL(\"i\", slot 0)",
		)},
		{"for (;;) break", LanguageC, lines(
			"LOOP(for)",
			"  BREAK",
		)},
		{"loop { break }", LanguageRust, lines(
			"LOOP(loop)",
			"  BLOCK",
			"    BREAK",
		)},
		{"while x < 5 { x = x + 1 }", LanguageRust, lines(
			"LOOP(while)",
			"  BINARY(<)",
			"    IDENT(\"x\")",
			"    LITERAL(5)",
			"  BLOCK",
			"    BINARY(=)",
			"      IDENT(\"x\")",
			"      BINARY(+)",
			"        IDENT(\"x\")",
			"        LITERAL(1)",
		)},
	}
	for _, test := range tests {
		checkParse(t, test.input, test.lang, nil, test.want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input  string
		lang   Language
		lookup NameLookup
		msg    string
		pos    int
	}{
		{"", LanguageC, nil, "expected expression", 0},
		{"a +", LanguageC, nil, "expected expression", 3},
		{"(a", LanguageC, nil, `expected ')', got end of input`, 2},
		{"a b", LanguageC, nil, `unexpected "b" after expression`, 2},
		{"x++", LanguageC, nil, `"++" is not supported`, 1},
		{"--x", LanguageC, nil, `"--" is not supported`, 0},
		{"f(1)", LanguageC, nil, "function calls are not supported", 1},
		{"a ? b : c", LanguageC, nil, "the conditional operator is not supported", 2},
		{"{a;", LanguageC, nil, "block not closed", 0},
		{"{a b}", LanguageC, nil, "expected ';' between statements", 3},
		{"break", LanguageC, nil, "break outside of a loop", 0},
		{"static_cast<Missing>(x)", LanguageC, nil, `unknown type name "Missing"`, 12},
		{"vector < 3", LanguageC, testLookup(), "template arguments not closed", 7},
		{"ns::$reg(rax)", LanguageC, nil, `"$reg" cannot be qualified`, 4},
		{"$frob(x)", LanguageC, nil, `unknown special name "$frob"`, 0},
		{"p->q", LanguageRust, nil, "use '.' to access members in Rust", 1},
		{"x as 3", LanguageRust, nil, `expected a type name, got "3"`, 5},
	}
	for _, test := range tests {
		_, err := ParseExpression(test.input, test.lang, test.lookup)
		if err == nil {
			t.Errorf("ParseExpression(%q) succeeded, want error", test.input)
			continue
		}
		pe, ok := err.(*ParseError)
		if !ok {
			t.Errorf("ParseExpression(%q) error type %T, want *ParseError", test.input, err)
			continue
		}
		if pe.Msg != test.msg || pe.Pos != test.pos {
			t.Errorf("ParseExpression(%q) = %q at %d, want %q at %d",
				test.input, pe.Msg, pe.Pos, test.msg, test.pos)
		}
	}
}

func TestParseIdentifierNames(t *testing.T) {
	ident, err := ParseIdentifier("std::vector<int>::size", LanguageC)
	if err != nil {
		t.Fatal(err)
	}
	if got := ident.FullName(); got != "std::vector<int>::size" {
		t.Errorf("FullName = %q", got)
	}
	if len(ident.Components) != 3 || !ident.Components[1].HasTemplate {
		t.Errorf("components = %+v", ident.Components)
	}

	ident, err = ParseIdentifier("::main", LanguageC)
	if err != nil {
		t.Fatal(err)
	}
	if !ident.InGlobalNamespace || ident.FullName() != "::main" {
		t.Errorf("parsed %+v", ident)
	}

	// Template arguments come back in canonical spelling: no stray
	// spaces, one space after each comma.
	ident, err = ParseIdentifier("Map< int , Pair<char,4> >", LanguageC)
	if err != nil {
		t.Fatal(err)
	}
	if got := ident.FullName(); got != "Map<int, Pair<char, 4>>" {
		t.Errorf("FullName = %q", got)
	}

	_, err = ParseIdentifier("x+y", LanguageC)
	pe, ok := err.(*ParseError)
	if !ok || pe.Msg != `unexpected "+" after name` || pe.Pos != 1 {
		t.Errorf("ParseIdentifier(x+y) error = %v", err)
	}
}
