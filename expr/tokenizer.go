// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

type tokenizer struct {
	input string
	pos   int
	lang  Language
	kw    map[string]TokenKind
	toks  []Token
}

// Tokenize splits input into tokens for the given language. The returned
// slice always ends with a TokenEnd whose Pos is len(input). Number
// tokens are captured loosely; their digits and suffixes are validated
// when the literal is evaluated.
func Tokenize(input string, lang Language) ([]Token, error) {
	t := &tokenizer{input: input, lang: lang, kw: keywords(lang)}
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			t.pos++
		case c == '/' && t.at(1) == '/':
			for t.pos < len(t.input) && t.input[t.pos] != '\n' {
				t.pos++
			}
		case c == '/' && t.at(1) == '*':
			if err := t.skipBlockComment(); err != nil {
				return nil, err
			}
		case isIdentStart(c):
			t.scanIdentifier()
		case isDigit(c) || (c == '.' && isDigit(t.at(1))):
			t.scanNumber()
		case c == '"':
			if err := t.scanQuoted('"', TokenString, "string"); err != nil {
				return nil, err
			}
		case c == '\'':
			if err := t.scanQuoted('\'', TokenChar, "character literal"); err != nil {
				return nil, err
			}
		case c == '$':
			if err := t.scanSpecial(); err != nil {
				return nil, err
			}
		default:
			if err := t.scanOperator(); err != nil {
				return nil, err
			}
		}
	}
	t.toks = append(t.toks, Token{Kind: TokenEnd, Pos: len(input)})
	return t.toks, nil
}

// at returns the byte at offset d from the current position, or 0 past
// the end of the input.
func (t *tokenizer) at(d int) byte {
	if t.pos+d >= len(t.input) {
		return 0
	}
	return t.input[t.pos+d]
}

func (t *tokenizer) add(kind TokenKind, start int) {
	t.toks = append(t.toks, Token{Kind: kind, Text: t.input[start:t.pos], Pos: start})
}

func (t *tokenizer) skipBlockComment() error {
	start := t.pos
	t.pos += 2
	for t.pos+1 < len(t.input) {
		if t.input[t.pos] == '*' && t.input[t.pos+1] == '/' {
			t.pos += 2
			return nil
		}
		t.pos++
	}
	return parseErrorf(start, "comment not terminated")
}

func (t *tokenizer) scanIdentifier() {
	start := t.pos
	for t.pos < len(t.input) && isIdentChar(t.input[t.pos]) {
		t.pos++
	}
	kind := TokenIdentifier
	if k, ok := t.kw[t.input[start:t.pos]]; ok {
		kind = k
	}
	t.add(kind, start)
}

// scanNumber captures a whole number token including any suffix letters.
// Hex, binary and octal prefixes suppress fraction and exponent handling
// since their digit sets collide with 'e'. Bad digits and bad suffixes
// are rejected when the literal is evaluated, not here.
func (t *tokenizer) scanNumber() {
	start := t.pos
	float := false
	if t.input[t.pos] == '0' && isBasePrefix(t.at(1)) {
		t.pos += 2
		t.scanDigits()
	} else {
		t.scanDigits()
		if t.at(0) == '.' && isDigit(t.at(1)) {
			float = true
			t.pos++
			t.scanDigits()
		}
		if c := t.at(0); c == 'e' || c == 'E' {
			d := 1
			if t.at(1) == '+' || t.at(1) == '-' {
				d = 2
			}
			if isDigit(t.at(d)) {
				float = true
				t.pos += d + 1
				t.scanDigits()
			}
		}
	}
	for t.pos < len(t.input) && isIdentChar(t.input[t.pos]) {
		t.pos++
	}
	kind := TokenInteger
	if float {
		kind = TokenFloat
	}
	t.add(kind, start)
}

// scanDigits consumes alphanumerics and digit separators: _ everywhere,
// and in C++ a ' with an alphanumeric on both sides.
func (t *tokenizer) scanDigits() {
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		if isAlnum(c) || c == '_' {
			t.pos++
			continue
		}
		if c == '\'' && t.lang == LanguageC && t.pos > 0 &&
			isAlnum(t.input[t.pos-1]) && isAlnum(t.at(1)) {
			t.pos++
			continue
		}
		return
	}
}

func (t *tokenizer) scanQuoted(quote byte, kind TokenKind, what string) error {
	start := t.pos
	t.pos++
	for {
		if t.pos >= len(t.input) {
			return parseErrorf(start, "%s not terminated", what)
		}
		c := t.input[t.pos]
		if c == '\\' {
			t.pos += 2
			continue
		}
		t.pos++
		if c == quote {
			break
		}
	}
	t.add(kind, start)
	return nil
}

func (t *tokenizer) scanSpecial() error {
	start := t.pos
	t.pos++
	if t.pos >= len(t.input) || !isIdentStart(t.input[t.pos]) {
		return parseErrorf(start, "expected a name after '$'")
	}
	for t.pos < len(t.input) && isIdentChar(t.input[t.pos]) {
		t.pos++
	}
	t.add(TokenSpecial, start)
	return nil
}

func (t *tokenizer) scanOperator() error {
	start := t.pos
	rest := t.input[t.pos:]
	two := ""
	if len(rest) >= 2 {
		two = rest[:2]
	}
	three := ""
	if len(rest) >= 3 {
		three = rest[:3]
	}

	var kind TokenKind
	n := 1
	switch three {
	case "<=>":
		kind, n = TokenSpaceship, 3
	case "<<=":
		kind, n = TokenShiftLeftEq, 3
	}
	if kind == TokenInvalid {
		switch two {
		case "++":
			kind, n = TokenPlusPlus, 2
		case "--":
			kind, n = TokenMinusMinus, 2
		case "->":
			kind, n = TokenArrow, 2
		case "+=":
			kind, n = TokenPlusEquals, 2
		case "-=":
			kind, n = TokenMinusEquals, 2
		case "*=":
			kind, n = TokenStarEquals, 2
		case "/=":
			kind, n = TokenSlashEquals, 2
		case "%=":
			kind, n = TokenPercentEquals, 2
		case "^=":
			kind, n = TokenCaretEquals, 2
		case "&=":
			kind, n = TokenAndEquals, 2
		case "|=":
			kind, n = TokenOrEquals, 2
		case "&&":
			kind, n = TokenDoubleAnd, 2
		case "||":
			kind, n = TokenDoubleOr, 2
		case "==":
			kind, n = TokenDoubleEquals, 2
		case "!=":
			kind, n = TokenNotEquals, 2
		case "<<":
			kind, n = TokenShiftLeft, 2
		case "<=":
			kind, n = TokenLessEquals, 2
		case ">=":
			kind, n = TokenGreaterEquals, 2
		case "::":
			kind, n = TokenColonColon, 2
		}
	}
	if kind == TokenInvalid {
		switch rest[0] {
		case '+':
			kind = TokenPlus
		case '-':
			kind = TokenMinus
		case '*':
			kind = TokenStar
		case '/':
			kind = TokenSlash
		case '%':
			kind = TokenPercent
		case '^':
			kind = TokenCaret
		case '&':
			kind = TokenAmpersand
		case '|':
			kind = TokenPipe
		case '~':
			kind = TokenTilde
		case '!':
			kind = TokenBang
		case '=':
			kind = TokenEquals
		case '<':
			kind = TokenLess
		case '>':
			// Never >>: adjacent right angles stay split so nested
			// template argument lists can close.
			kind = TokenGreater
		case '.':
			kind = TokenDot
		case ',':
			kind = TokenComma
		case ';':
			kind = TokenSemicolon
		case ':':
			kind = TokenColon
		case '?':
			kind = TokenQuestion
		case '(':
			kind = TokenLeftParen
		case ')':
			kind = TokenRightParen
		case '[':
			kind = TokenLeftBracket
		case ']':
			kind = TokenRightBracket
		case '{':
			kind = TokenLeftBrace
		case '}':
			kind = TokenRightBrace
		default:
			return parseErrorf(start, "unexpected character %q", rest[0])
		}
	}
	t.pos += n
	t.add(kind, start)
	return nil
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isAlnum(c byte) bool  { return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isBasePrefix(c byte) bool {
	return c == 'x' || c == 'X' || c == 'b' || c == 'B' || c == 'o' || c == 'O'
}
