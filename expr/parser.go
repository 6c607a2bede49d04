// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

// Operator precedence, loosest first. Higher binds tighter. The gaps
// leave room to slot new tiers in without renumbering.
const (
	precNone           = 0
	precComma          = 10
	precAssignment     = 20
	precLogicalOr      = 30
	precLogicalAnd     = 40
	precBitOr          = 50
	precBitXor         = 60
	precBitAnd         = 70
	precEquality       = 80
	precRelational     = 90
	precThreeWay       = 100
	precShift          = 110
	precAdditive       = 120
	precMultiplicative = 130
	precRustCast       = 140
	precUnary          = 150
	precCallAccess     = 160
)

// A NameLookup answers what kind of thing a name is while an expression
// is being parsed. The parser needs it to tell a cast like (Foo*)x from
// a parenthesized expression, and a template name from a less-than
// comparison. It may be nil, in which case only built-in type names are
// recognized in type positions.
type NameLookup interface {
	LookupName(ident ParsedIdentifier) FoundName
}

type (
	prefixFunc func(p *parser, tok Token) (Node, error)
	infixFunc  func(p *parser, left Node, tok Token) (Node, error)
)

// A parseRule gives one token kind its roles: how it starts an
// expression, how it continues one, and how tightly it binds when it
// does. The tables are data; all behavior lives in the handlers.
type parseRule struct {
	prefix prefixFunc
	infix  infixFunc
	prec   int
}

type parser struct {
	toks   []Token
	cur    int
	lang   Language
	rules  *[numTokenKinds]parseRule
	lookup NameLookup
	// Declared evaluator-local variables by slot. Parsing a block saves
	// and restores the length; lookups scan backwards so the newest
	// declaration shadows.
	locals        []string
	loopDepth     int
	typeCommitted bool
	ptrSize       int
}

func newParser(toks []Token, lang Language, lookup NameLookup) *parser {
	rules := &cRules
	if lang == LanguageRust {
		rules = &rustRules
	}
	return &parser{toks: toks, lang: lang, rules: rules, lookup: lookup, ptrSize: 8}
}

// ParseExpression parses one expression or statement in the given
// language. lookup may be nil.
func ParseExpression(input string, lang Language, lookup NameLookup) (Node, error) {
	toks, err := Tokenize(input, lang)
	if err != nil {
		return nil, err
	}
	p := newParser(toks, lang, lookup)
	n, err := p.parseExpr(precNone)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != TokenEnd {
		return nil, parseErrorf(tok.Pos, "unexpected %s after expression", tokenDesc(tok))
	}
	return n, nil
}

func (p *parser) peek() Token { return p.toks[p.cur] }

func (p *parser) peekAt(d int) Token {
	i := p.cur + d
	if i >= len(p.toks) {
		i = len(p.toks) - 1
	}
	return p.toks[i]
}

// next consumes and returns the current token. The trailing TokenEnd is
// sticky so callers can over-read safely.
func (p *parser) next() Token {
	tok := p.toks[p.cur]
	if tok.Kind != TokenEnd {
		p.cur++
	}
	return tok
}

func (p *parser) backup() { p.cur-- }

func tokenDesc(tok Token) string {
	if tok.Kind == TokenEnd {
		return "end of input"
	}
	return "\"" + tok.Text + "\""
}

func (p *parser) expect(kind TokenKind, what string) (Token, error) {
	tok := p.next()
	if tok.Kind != kind {
		return tok, parseErrorf(tok.Pos, "expected %s, got %s", what, tokenDesc(tok))
	}
	return tok, nil
}

func (p *parser) declareLocal(name string) int {
	p.locals = append(p.locals, name)
	return len(p.locals) - 1
}

func (p *parser) lookupLocal(name string) (int, bool) {
	for i := len(p.locals) - 1; i >= 0; i-- {
		if p.locals[i] == name {
			return i, true
		}
	}
	return 0, false
}

// peekBinaryOp returns the token about to be used in operator position.
// Two adjacent > merge into >> here, and > >= into >>=; the tokenizer
// keeps them split for the sake of template argument lists.
func (p *parser) peekBinaryOp() (Token, int) {
	tok := p.peek()
	if tok.Kind == TokenGreater {
		next := p.peekAt(1)
		if adjacent(tok, next) {
			switch next.Kind {
			case TokenGreater:
				return Token{Kind: TokenShiftRight, Text: ">>", Pos: tok.Pos}, 2
			case TokenGreaterEquals:
				return Token{Kind: TokenShiftRightEq, Text: ">>=", Pos: tok.Pos}, 2
			}
		}
	}
	return tok, 1
}

// parseExpr is the Pratt core: a prefix handler for the first token,
// then infix handlers while the next operator binds tighter than
// minPrec.
func (p *parser) parseExpr(minPrec int) (Node, error) {
	tok := p.next()
	rule := p.rules[tok.Kind]
	if rule.prefix == nil {
		if tok.Kind == TokenEnd {
			return nil, parseErrorf(tok.Pos, "expected expression")
		}
		return nil, parseErrorf(tok.Pos, "unexpected token %q", tok.Text)
	}
	left, err := rule.prefix(p, tok)
	if err != nil {
		return nil, err
	}
	for {
		opTok, width := p.peekBinaryOp()
		opRule := p.rules[opTok.Kind]
		if opRule.infix == nil || opRule.prec <= minPrec {
			return left, nil
		}
		p.cur += width
		left, err = opRule.infix(p, left, opTok)
		if err != nil {
			return nil, err
		}
	}
}

func parseLiteral(p *parser, tok Token) (Node, error) {
	return &LiteralNode{Token: tok}, nil
}

func parseUnaryPrefix(p *parser, tok Token) (Node, error) {
	operand, err := p.parseExpr(precUnary)
	if err != nil {
		return nil, err
	}
	return &UnaryNode{Op: tok, Operand: operand}, nil
}

func parseBinaryOp(p *parser, left Node, tok Token) (Node, error) {
	right, err := p.parseExpr(p.rules[tok.Kind].prec)
	if err != nil {
		return nil, err
	}
	return &BinaryNode{Op: tok, Left: left, Right: right}, nil
}

// parseAssignOp is parseBinaryOp with right associativity: a = b = c
// assigns b first.
func parseAssignOp(p *parser, left Node, tok Token) (Node, error) {
	right, err := p.parseExpr(p.rules[tok.Kind].prec - 1)
	if err != nil {
		return nil, err
	}
	return &BinaryNode{Op: tok, Left: left, Right: right}, nil
}

func parseNamePrefix(p *parser, tok Token) (Node, error) {
	p.backup()
	if tok.Kind == TokenIdentifier && p.peekAt(1).Kind != TokenColonColon {
		if slot, ok := p.lookupLocal(tok.Text); ok {
			p.next()
			return &LocalVarNode{Name: tok.Text, Slot: slot, pos: tok.Pos}, nil
		}
	}
	ident, err := p.parseFullIdentifier()
	if err != nil {
		return nil, err
	}
	return &IdentifierNode{Ident: ident, pos: tok.Pos}, nil
}

func parseMemberAccess(p *parser, left Node, tok Token) (Node, error) {
	name, err := p.expect(TokenIdentifier, "a member name")
	if err != nil {
		return nil, err
	}
	return &MemberAccessNode{
		Object: left,
		Op:     tok,
		Member: IdentifierComponent{Name: name.Text},
	}, nil
}

func parseSubscript(p *parser, left Node, tok Token) (Node, error) {
	index, err := p.parseExpr(precNone)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRightBracket, "']'"); err != nil {
		return nil, err
	}
	return &SubscriptNode{Object: left, Index: index, pos: tok.Pos}, nil
}

// parseCParen handles a ( in prefix position for C: either a C-style
// cast or a parenthesized subexpression, depending on whether a type
// follows.
func parseCParen(p *parser, tok Token) (Node, error) {
	ty, ok, err := p.attemptType()
	if err != nil {
		return nil, err
	}
	if ok {
		if _, err := p.expect(TokenRightParen, "')' to close the cast"); err != nil {
			return nil, err
		}
		from, err := p.parseExpr(precUnary)
		if err != nil {
			return nil, err
		}
		return &CastNode{Kind: CastCStyle, To: ty, From: from, pos: tok.Pos}, nil
	}
	inner, err := p.parseExpr(precNone)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	return inner, nil
}

func parseParenGroup(p *parser, tok Token) (Node, error) {
	inner, err := p.parseExpr(precNone)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	return inner, nil
}

// parseNamedCast handles static_cast, reinterpret_cast and const_cast:
// keyword '<' type '>' '(' expr ')'.
func parseNamedCast(p *parser, tok Token) (Node, error) {
	var kind CastKind
	switch tok.Kind {
	case TokenStaticCast:
		kind = CastStatic
	case TokenReinterpretCast:
		kind = CastReinterpret
	default:
		kind = CastConst
	}
	if _, err := p.expect(TokenLess, "'<' after "+tok.Text); err != nil {
		return nil, err
	}
	ty, err := p.parseTypeCommitted()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenGreater, "'>' to close the cast type"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLeftParen, "'('"); err != nil {
		return nil, err
	}
	from, err := p.parseExpr(precNone)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	return &CastNode{Kind: kind, To: ty, From: from, pos: tok.Pos}, nil
}

func parseRustCast(p *parser, left Node, tok Token) (Node, error) {
	ty, err := p.parseTypeCommitted()
	if err != nil {
		return nil, err
	}
	return &CastNode{Kind: CastRust, To: ty, From: left, pos: left.Pos()}, nil
}

func parseSizeof(p *parser, tok Token) (Node, error) {
	if p.peek().Kind == TokenLeftParen {
		p.next()
		ty, ok, err := p.attemptType()
		if err != nil {
			return nil, err
		}
		if ok {
			if _, err := p.expect(TokenRightParen, "')'"); err != nil {
				return nil, err
			}
			return &SizeofNode{Arg: ty, pos: tok.Pos}, nil
		}
		inner, err := p.parseExpr(precNone)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, "')'"); err != nil {
			return nil, err
		}
		return &SizeofNode{Arg: inner, pos: tok.Pos}, nil
	}
	operand, err := p.parseExpr(precUnary)
	if err != nil {
		return nil, err
	}
	return &SizeofNode{Arg: operand, pos: tok.Pos}, nil
}

func parseBlockPrefix(p *parser, tok Token) (Node, error) {
	mark := len(p.locals)
	defer func() { p.locals = p.locals[:mark] }()

	blk := &BlockNode{pos: tok.Pos, TrailingSemi: true}
	for {
		switch p.peek().Kind {
		case TokenRightBrace:
			p.next()
			return blk, nil
		case TokenEnd:
			return nil, parseErrorf(tok.Pos, "block not closed")
		}
		stmt, err := p.parseExpr(precNone)
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, stmt)
		blk.TrailingSemi = false
		for p.peek().Kind == TokenSemicolon {
			p.next()
			blk.TrailingSemi = true
		}
		if !blk.TrailingSemi && p.peek().Kind != TokenRightBrace && !selfDelimited(stmt) {
			return nil, parseErrorf(p.peek().Pos, "expected ';' between statements")
		}
	}
}

// selfDelimited reports statements that need no trailing semicolon.
func selfDelimited(n Node) bool {
	switch n.(type) {
	case *BlockNode, *IfNode, *LoopNode:
		return true
	}
	return false
}

// parseCondBody parses the condition and body of an if or while in the
// current language: C takes (cond) and any statement, Rust takes a bare
// condition and a mandatory braced block.
func (p *parser) parseCondBody(what string) (cond, body Node, err error) {
	if p.lang == LanguageRust {
		cond, err = p.parseExpr(precNone)
		if err != nil {
			return nil, nil, err
		}
		body, err = p.parseRequiredBlock(what)
		return cond, body, err
	}
	if _, err = p.expect(TokenLeftParen, "'(' after "+what); err != nil {
		return nil, nil, err
	}
	cond, err = p.parseExpr(precNone)
	if err != nil {
		return nil, nil, err
	}
	if _, err = p.expect(TokenRightParen, "')'"); err != nil {
		return nil, nil, err
	}
	body, err = p.parseExpr(precNone)
	return cond, body, err
}

func (p *parser) parseRequiredBlock(what string) (Node, error) {
	tok, err := p.expect(TokenLeftBrace, "'{' after "+what)
	if err != nil {
		return nil, err
	}
	return parseBlockPrefix(p, tok)
}

func parseIf(p *parser, tok Token) (Node, error) {
	cond, then, err := p.parseCondBody("if condition")
	if err != nil {
		return nil, err
	}
	n := &IfNode{Cond: cond, Then: then, pos: tok.Pos}
	if p.peek().Kind == TokenElse {
		p.next()
		if p.lang == LanguageRust && p.peek().Kind != TokenIf {
			n.Else, err = p.parseRequiredBlock("else")
		} else {
			n.Else, err = p.parseExpr(precNone)
		}
		if err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (p *parser) parseLoopBody() (Node, error) {
	p.loopDepth++
	defer func() { p.loopDepth-- }()
	if p.lang == LanguageRust {
		return p.parseRequiredBlock("loop")
	}
	return p.parseExpr(precNone)
}

func parseWhile(p *parser, tok Token) (Node, error) {
	var cond, body Node
	var err error
	if p.lang == LanguageRust {
		cond, err = p.parseExpr(precNone)
		if err != nil {
			return nil, err
		}
		body, err = p.parseLoopBody()
	} else {
		if _, err = p.expect(TokenLeftParen, "'(' after while"); err != nil {
			return nil, err
		}
		cond, err = p.parseExpr(precNone)
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(TokenRightParen, "')'"); err != nil {
			return nil, err
		}
		body, err = p.parseLoopBody()
	}
	if err != nil {
		return nil, err
	}
	return &LoopNode{Kind: TokenWhile, Cond: cond, Body: body, pos: tok.Pos}, nil
}

func parseDo(p *parser, tok Token) (Node, error) {
	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenWhile, "'while' after do body"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLeftParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(precNone)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	return &LoopNode{Kind: TokenDo, Cond: cond, Body: body, pos: tok.Pos}, nil
}

func parseFor(p *parser, tok Token) (Node, error) {
	mark := len(p.locals)
	defer func() { p.locals = p.locals[:mark] }()

	if _, err := p.expect(TokenLeftParen, "'(' after for"); err != nil {
		return nil, err
	}
	n := &LoopNode{Kind: TokenFor, pos: tok.Pos}
	var err error
	if p.peek().Kind != TokenSemicolon {
		if n.Init, err = p.parseExpr(precNone); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenSemicolon, "';' after for initializer"); err != nil {
		return nil, err
	}
	if p.peek().Kind != TokenSemicolon {
		if n.Cond, err = p.parseExpr(precNone); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenSemicolon, "';' after for condition"); err != nil {
		return nil, err
	}
	if p.peek().Kind != TokenRightParen {
		if n.Incr, err = p.parseExpr(precNone); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	if n.Body, err = p.parseLoopBody(); err != nil {
		return nil, err
	}
	return n, nil
}

func parseRustLoop(p *parser, tok Token) (Node, error) {
	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	return &LoopNode{Kind: TokenLoop, Body: body, pos: tok.Pos}, nil
}

func parseBreak(p *parser, tok Token) (Node, error) {
	if p.loopDepth == 0 {
		return nil, parseErrorf(tok.Pos, "break outside of a loop")
	}
	return &BreakNode{pos: tok.Pos}, nil
}

// parseLetDecl parses Rust "let [mut] name [: type] = expr".
func parseLetDecl(p *parser, tok Token) (Node, error) {
	if p.peek().Kind == TokenMut {
		p.next()
	}
	name, err := p.expect(TokenIdentifier, "a variable name")
	if err != nil {
		return nil, err
	}
	n := &VariableDeclNode{Name: name.Text, pos: tok.Pos}
	if p.peek().Kind == TokenColon {
		p.next()
		ty, err := p.parseTypeCommitted()
		if err != nil {
			return nil, err
		}
		n.Type = ty.Type
	}
	if _, err := p.expect(TokenEquals, "'=' in let"); err != nil {
		return nil, err
	}
	if n.Init, err = p.parseExpr(precComma); err != nil {
		return nil, err
	}
	// Declared after the initializer parses, so "let x = x" reads the
	// outer x.
	n.Slot = p.declareLocal(n.Name)
	return n, nil
}

// parseAutoDecl parses C++ "auto name = expr".
func parseAutoDecl(p *parser, tok Token) (Node, error) {
	name, err := p.expect(TokenIdentifier, "a variable name")
	if err != nil {
		return nil, err
	}
	n := &VariableDeclNode{Name: name.Text, pos: tok.Pos}
	if _, err := p.expect(TokenEquals, "'=' in declaration"); err != nil {
		return nil, err
	}
	if n.Init, err = p.parseExpr(precComma); err != nil {
		return nil, err
	}
	n.Slot = p.declareLocal(n.Name)
	return n, nil
}

func parseIncDecPrefix(p *parser, tok Token) (Node, error) {
	return nil, parseErrorf(tok.Pos, "%q is not supported", tok.Text)
}

func parseIncDecPostfix(p *parser, left Node, tok Token) (Node, error) {
	return nil, parseErrorf(tok.Pos, "%q is not supported", tok.Text)
}

func parseCallUnsupported(p *parser, left Node, tok Token) (Node, error) {
	return nil, parseErrorf(tok.Pos, "function calls are not supported")
}

func parseTernaryUnsupported(p *parser, left Node, tok Token) (Node, error) {
	return nil, parseErrorf(tok.Pos, "the conditional operator is not supported")
}

func parseArrowUnsupportedRust(p *parser, left Node, tok Token) (Node, error) {
	return nil, parseErrorf(tok.Pos, "use '.' to access members in Rust")
}
