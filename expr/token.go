// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package expr parses and evaluates C, C++ and Rust expressions against
// the symbols and memory of a debugged process.
package expr

// A Language selects the expression grammar.
type Language int

const (
	// LanguageC covers both C and C++.
	LanguageC Language = iota
	LanguageRust
)

func (l Language) String() string {
	if l == LanguageRust {
		return "Rust"
	}
	return "C"
}

// A TokenKind classifies one token of an expression.
type TokenKind int

const (
	TokenInvalid TokenKind = iota
	TokenEnd

	TokenIdentifier
	TokenInteger
	TokenFloat
	TokenString
	TokenChar
	TokenSpecial // $name

	TokenPlus          // +
	TokenMinus         // -
	TokenStar          // *
	TokenSlash         // /
	TokenPercent       // %
	TokenCaret         // ^
	TokenAmpersand     // &
	TokenDoubleAnd     // &&
	TokenPipe          // |
	TokenDoubleOr      // ||
	TokenTilde         // ~
	TokenBang          // !
	TokenEquals        // =
	TokenDoubleEquals  // ==
	TokenNotEquals     // !=
	TokenLess          // <
	TokenGreater       // >
	TokenLessEquals    // <=
	TokenGreaterEquals // >=
	TokenSpaceship     // <=>
	TokenShiftLeft     // <<
	TokenShiftLeftEq   // <<=
	TokenPlusEquals    // +=
	TokenMinusEquals   // -=
	TokenStarEquals    // *=
	TokenSlashEquals   // /=
	TokenPercentEquals // %=
	TokenCaretEquals   // ^=
	TokenAndEquals     // &=
	TokenOrEquals      // |=
	TokenDot           // .
	TokenArrow         // ->
	TokenComma         // ,
	TokenSemicolon     // ;
	TokenColon         // :
	TokenColonColon    // ::
	TokenQuestion      // ?
	TokenLeftParen     // (
	TokenRightParen    // )
	TokenLeftBracket   // [
	TokenRightBracket  // ]
	TokenLeftBrace     // {
	TokenRightBrace    // }
	TokenPlusPlus      // ++
	TokenMinusMinus    // --

	// The tokenizer never emits these two: a > followed by an adjacent >
	// or >= stays split so template argument lists can close. The parser
	// merges them back when they appear in operator position.
	TokenShiftRight   // >>
	TokenShiftRightEq // >>=

	// Keywords. Only the current language's keywords lex as such; the
	// rest stay identifiers.
	TokenTrue
	TokenFalse
	TokenConst
	TokenVolatile
	TokenRestrict
	TokenSizeof
	TokenStaticCast
	TokenReinterpretCast
	TokenConstCast
	TokenAuto
	TokenDo
	TokenFor
	TokenWhile
	TokenIf
	TokenElse
	TokenBreak
	TokenAs
	TokenLet
	TokenMut
	TokenLoop

	numTokenKinds
)

// A Token is one lexical element of an expression. Text aliases the input
// string and Pos is the byte offset of its first character, so adjacency
// of two tokens can be recovered as a.Pos+len(a.Text) == b.Pos.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

func adjacent(a, b Token) bool {
	return a.Pos+len(a.Text) == b.Pos
}

var cKeywords = map[string]TokenKind{
	"true":             TokenTrue,
	"false":            TokenFalse,
	"const":            TokenConst,
	"volatile":         TokenVolatile,
	"restrict":         TokenRestrict,
	"sizeof":           TokenSizeof,
	"static_cast":      TokenStaticCast,
	"reinterpret_cast": TokenReinterpretCast,
	"const_cast":       TokenConstCast,
	"auto":             TokenAuto,
	"do":               TokenDo,
	"for":              TokenFor,
	"while":            TokenWhile,
	"if":               TokenIf,
	"else":             TokenElse,
	"break":            TokenBreak,
}

var rustKeywords = map[string]TokenKind{
	"true":  TokenTrue,
	"false": TokenFalse,
	"const": TokenConst,
	"as":    TokenAs,
	"let":   TokenLet,
	"mut":   TokenMut,
	"loop":  TokenLoop,
	"while": TokenWhile,
	"if":    TokenIf,
	"else":  TokenElse,
	"break": TokenBreak,
}

func keywords(lang Language) map[string]TokenKind {
	if lang == LanguageRust {
		return rustKeywords
	}
	return cKeywords
}
