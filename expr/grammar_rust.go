// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

// rustRules is the Rust grammar. Differences from C worth noticing:
// casts are the infix "as", there is no comma operator, no ternary and
// no sizeof, and member access is always ".".
var rustRules = [numTokenKinds]parseRule{
	TokenIdentifier: {prefix: parseNamePrefix},
	TokenColonColon: {prefix: parseNamePrefix},
	TokenSpecial:    {prefix: parseNamePrefix},

	TokenInteger: {prefix: parseLiteral},
	TokenFloat:   {prefix: parseLiteral},
	TokenString:  {prefix: parseLiteral},
	TokenChar:    {prefix: parseLiteral},
	TokenTrue:    {prefix: parseLiteral},
	TokenFalse:   {prefix: parseLiteral},

	TokenLeftParen:   {prefix: parseParenGroup, infix: parseCallUnsupported, prec: precCallAccess},
	TokenLeftBracket: {infix: parseSubscript, prec: precCallAccess},
	TokenDot:         {infix: parseMemberAccess, prec: precCallAccess},
	TokenArrow:       {infix: parseArrowUnsupportedRust, prec: precCallAccess},
	TokenPlusPlus:    {prefix: parseIncDecPrefix, infix: parseIncDecPostfix, prec: precCallAccess},
	TokenMinusMinus:  {prefix: parseIncDecPrefix, infix: parseIncDecPostfix, prec: precCallAccess},

	TokenAs: {infix: parseRustCast, prec: precRustCast},

	TokenStar:       {prefix: parseUnaryPrefix, infix: parseBinaryOp, prec: precMultiplicative},
	TokenSlash:      {infix: parseBinaryOp, prec: precMultiplicative},
	TokenPercent:    {infix: parseBinaryOp, prec: precMultiplicative},
	TokenPlus:       {prefix: parseUnaryPrefix, infix: parseBinaryOp, prec: precAdditive},
	TokenMinus:      {prefix: parseUnaryPrefix, infix: parseBinaryOp, prec: precAdditive},
	TokenShiftLeft:  {infix: parseBinaryOp, prec: precShift},
	TokenShiftRight: {infix: parseBinaryOp, prec: precShift},

	TokenLess:          {infix: parseBinaryOp, prec: precRelational},
	TokenGreater:       {infix: parseBinaryOp, prec: precRelational},
	TokenLessEquals:    {infix: parseBinaryOp, prec: precRelational},
	TokenGreaterEquals: {infix: parseBinaryOp, prec: precRelational},
	TokenDoubleEquals:  {infix: parseBinaryOp, prec: precEquality},
	TokenNotEquals:     {infix: parseBinaryOp, prec: precEquality},

	TokenAmpersand: {prefix: parseUnaryPrefix, infix: parseBinaryOp, prec: precBitAnd},
	TokenCaret:     {infix: parseBinaryOp, prec: precBitXor},
	TokenPipe:      {infix: parseBinaryOp, prec: precBitOr},
	TokenDoubleAnd: {infix: parseBinaryOp, prec: precLogicalAnd},
	TokenDoubleOr:  {infix: parseBinaryOp, prec: precLogicalOr},
	TokenBang:      {prefix: parseUnaryPrefix},

	TokenEquals:        {infix: parseAssignOp, prec: precAssignment},
	TokenPlusEquals:    {infix: parseAssignOp, prec: precAssignment},
	TokenMinusEquals:   {infix: parseAssignOp, prec: precAssignment},
	TokenStarEquals:    {infix: parseAssignOp, prec: precAssignment},
	TokenSlashEquals:   {infix: parseAssignOp, prec: precAssignment},
	TokenPercentEquals: {infix: parseAssignOp, prec: precAssignment},
	TokenCaretEquals:   {infix: parseAssignOp, prec: precAssignment},
	TokenAndEquals:     {infix: parseAssignOp, prec: precAssignment},
	TokenOrEquals:      {infix: parseAssignOp, prec: precAssignment},
	TokenShiftLeftEq:   {infix: parseAssignOp, prec: precAssignment},
	TokenShiftRightEq:  {infix: parseAssignOp, prec: precAssignment},

	TokenLeftBrace: {prefix: parseBlockPrefix},
	TokenLet:       {prefix: parseLetDecl},
	TokenIf:        {prefix: parseIf},
	TokenWhile:     {prefix: parseWhile},
	TokenLoop:      {prefix: parseRustLoop},
	TokenBreak:     {prefix: parseBreak},
}
