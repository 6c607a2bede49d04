// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/peekdbg/peek/arch"
	"github.com/peekdbg/peek/symbol"
)

// A numClass sorts concrete types into the families arithmetic cares
// about.
type numClass int

const (
	numNone numClass = iota
	numSigned
	numUnsigned
	numFloat
	numBool
	numPointer
)

// typeIsSigned reports whether t is a signed integer or enumeration,
// looking through qualifiers and typedefs but not forward declarations.
func typeIsSigned(t symbol.Type) bool {
	switch t := symbol.StripCVT(t).(type) {
	case *symbol.BaseType:
		return t.IsSigned()
	case *symbol.Enumeration:
		return t.Signed
	}
	return false
}

func typeIsFloat(t symbol.Type) bool {
	b, ok := symbol.StripCVT(t).(*symbol.BaseType)
	return ok && b.IsFloat()
}

// classifyType reduces a type to its numeric class and byte size.
func classifyType(fc *FindNameContext, t symbol.Type) (numClass, int) {
	switch ct := GetConcreteType(fc, t).(type) {
	case *symbol.BaseType:
		switch {
		case ct.Encoding == symbol.EncodingBoolean:
			return numBool, int(ct.ByteSize)
		case ct.IsFloat():
			return numFloat, int(ct.ByteSize)
		case ct.IsSigned():
			return numSigned, int(ct.ByteSize)
		case ct.Encoding == symbol.EncodingNone:
			return numNone, 0
		default:
			return numUnsigned, int(ct.ByteSize)
		}
	case *symbol.Enumeration:
		size := int(ct.ByteSize)
		if size == 0 && ct.Underlying != nil {
			size = int(ct.Underlying.Size())
		}
		if ct.Signed {
			return numSigned, size
		}
		return numUnsigned, size
	case *symbol.ModifiedType:
		if ct.IsIndirection() {
			size := int(ct.ByteSize)
			if size == 0 {
				size = 8
			}
			return numPointer, size
		}
	}
	return numNone, 0
}

// An operand is the numeric view of a Value. Integer and pointer bits
// live in u (signed values sign-extended, also in i), floats in f.
type operand struct {
	class numClass
	size  int
	u     uint64
	i     int64
	f     float64
	typ   symbol.Type // the value's declared type
	elem  symbol.Type // pointee for pointers and decayed arrays
}

// classify decodes a value for arithmetic. Arrays decay to a pointer to
// their first element when the value has an address.
func classify(ctx EvalContext, v Value) (operand, error) {
	if v.IsVoid() {
		return operand{}, errors.New("cannot operate on a void value")
	}
	fc := ctx.FindContext()
	a := ctx.Arch()
	ct := GetConcreteType(fc, v.Type)
	if at, ok := ct.(*symbol.ArrayType); ok {
		if v.Source.Kind != SourceMemory || v.Source.BitSize != 0 {
			return operand{}, fmt.Errorf("array %q has no address", typeName(v.Type))
		}
		addr := v.Source.Address
		return operand{class: numPointer, size: a.PointerSize, u: addr, i: int64(addr), typ: v.Type, elem: at.Elem}, nil
	}
	class, size := classifyType(fc, v.Type)
	if class == numNone {
		return operand{}, fmt.Errorf("cannot operate on type %q", typeName(v.Type))
	}
	op := operand{class: class, size: size, typ: v.Type}
	if mod, ok := ct.(*symbol.ModifiedType); ok && mod.IsIndirection() {
		op.elem = mod.Modified
	}
	if class == numFloat {
		switch len(v.Bytes) {
		case 4:
			op.f = float64(math.Float32frombits(uint32(a.UintN(v.Bytes))))
		case 8:
			op.f = math.Float64frombits(a.UintN(v.Bytes))
		default:
			return operand{}, fmt.Errorf("unsupported %d-byte float", len(v.Bytes))
		}
		return op, nil
	}
	u, ok := v.Uint(a)
	if !ok {
		return operand{}, fmt.Errorf("bad %d-byte value of type %q", len(v.Bytes), typeName(v.Type))
	}
	op.u = u
	op.i = int64(u)
	if class == numSigned && len(v.Bytes) < 8 {
		op.i = arch.SignExtend(u, len(v.Bytes)*8)
		op.u = uint64(op.i)
	}
	return op, nil
}

func isIntClass(c numClass) bool {
	switch c {
	case numSigned, numUnsigned, numBool:
		return true
	}
	return false
}

// liftToInt applies integer promotion. C promotes operands smaller than
// int to int; Rust operates at the declared width.
func liftToInt(lang Language, o operand) (numClass, int) {
	class, size := o.class, o.size
	if class == numBool {
		class = numSigned
	}
	if lang != LanguageRust && size < 4 {
		// Every char and short value fits in int.
		class, size = numSigned, 4
	}
	return class, size
}

// promote applies the usual arithmetic conversions to an integer pair:
// integer promotion first, then the wider operand wins, with unsigned
// winning ties.
func promote(lang Language, l, r operand) (numClass, int) {
	lc, ls := liftToInt(lang, l)
	rc, rs := liftToInt(lang, r)
	size := ls
	if rs > size {
		size = rs
	}
	switch {
	case lc == numUnsigned && ls >= rs:
		return numUnsigned, size
	case rc == numUnsigned && rs >= ls:
		return numUnsigned, size
	}
	return numSigned, size
}

func mask(u uint64, bits uint) uint64 {
	if bits >= 64 {
		return u
	}
	return u & (1<<bits - 1)
}

// typeForInt synthesizes a built-in integer type for a computed result
// when neither operand's declared type fits.
func typeForInt(lang Language, class numClass, size int) symbol.Type {
	signed := class != numUnsigned
	if lang == LanguageRust {
		name := fmt.Sprintf("u%d", size*8)
		if signed {
			name = fmt.Sprintf("i%d", size*8)
		}
		if t, ok := rustBuiltinType(name); ok {
			return t
		}
	}
	name := "long"
	if size <= 4 {
		name = "int"
	}
	enc := symbol.EncodingSigned
	if !signed {
		name = "unsigned " + name
		enc = symbol.EncodingUnsigned
	}
	return &symbol.BaseType{
		CommonType: symbol.CommonType{Name: name, ByteSize: int64(size)},
		Encoding:   enc,
	}
}

func typeForFloat(lang Language, size int) symbol.Type {
	if lang == LanguageRust {
		name := "f64"
		if size == 4 {
			name = "f32"
		}
		if t, ok := rustBuiltinType(name); ok {
			return t
		}
	}
	name := "double"
	if size == 4 {
		name = "float"
	}
	return &symbol.BaseType{
		CommonType: symbol.CommonType{Name: name, ByteSize: int64(size)},
		Encoding:   symbol.EncodingFloat,
	}
}

func boolType() symbol.Type {
	return &symbol.BaseType{
		CommonType: symbol.CommonType{Name: "bool", ByteSize: 1},
		Encoding:   symbol.EncodingBoolean,
	}
}

// sizeType is the type of sizeof results.
func sizeType(lang Language) symbol.Type {
	if lang == LanguageRust {
		if t, ok := rustBuiltinType("usize"); ok {
			return t
		}
	}
	return &symbol.BaseType{
		CommonType: symbol.CommonType{Name: "unsigned long", ByteSize: 8},
		Encoding:   symbol.EncodingUnsigned,
	}
}

// ptrdiffType is the type of pointer subtraction results.
func ptrdiffType(lang Language) symbol.Type {
	if lang == LanguageRust {
		if t, ok := rustBuiltinType("isize"); ok {
			return t
		}
	}
	return &symbol.BaseType{
		CommonType: symbol.CommonType{Name: "long", ByteSize: 8},
		Encoding:   symbol.EncodingSigned,
	}
}

func boolValue(ctx EvalContext, b bool) Value {
	var x uint64
	if b {
		x = 1
	}
	return makeUintValue(ctx.Arch(), boolType(), x)
}

func signedValue(ctx EvalContext, x int64) Value {
	return makeUintValue(ctx.Arch(), typeForInt(ctx.Language(), numSigned, 4), uint64(x))
}

func makeFloatValue(a *arch.Architecture, t symbol.Type, size int, f float64) Value {
	b := make([]byte, size)
	if size == 4 {
		a.PutUintN(b, uint64(math.Float32bits(float32(f))))
	} else {
		a.PutUintN(b, math.Float64bits(f))
	}
	return Value{Type: t, Bytes: b}
}

// pickIntType prefers an operand's declared type when it matches the
// computed class and size, so long + long stays long. Enumerations are
// skipped; arithmetic on enums yields their integer type.
func pickIntType(ctx EvalContext, class numClass, size int, ops ...operand) symbol.Type {
	fc := ctx.FindContext()
	for _, o := range ops {
		if o.typ == nil {
			continue
		}
		if _, isEnum := GetConcreteType(fc, o.typ).(*symbol.Enumeration); isEnum {
			continue
		}
		if c, s := classifyType(fc, o.typ); c == class && s == size {
			return o.typ
		}
	}
	return typeForInt(ctx.Language(), class, size)
}

func pickFloatType(ctx EvalContext, size int, ops ...operand) symbol.Type {
	fc := ctx.FindContext()
	for _, o := range ops {
		if o.class != numFloat || o.size != size || o.typ == nil {
			continue
		}
		if c, s := classifyType(fc, o.typ); c == numFloat && s == size {
			return o.typ
		}
	}
	return typeForFloat(ctx.Language(), size)
}

// truthy converts a value to a branch condition. C accepts any number
// or pointer; Rust insists on bool.
func truthy(ctx EvalContext, v Value) (bool, error) {
	o, err := classify(ctx, v)
	if err != nil {
		return false, err
	}
	if ctx.Language() == LanguageRust && o.class != numBool {
		return false, fmt.Errorf("expected a 'bool' condition, got %q", typeName(v.Type))
	}
	if o.class == numFloat {
		return o.f != 0, nil
	}
	return mask(o.u, uint(o.size)*8) != 0, nil
}

// unaryOp applies an arithmetic prefix operator. Dereference and
// address-of are handled by the evaluator, not here.
func unaryOp(ctx EvalContext, op Token, v Value) (Value, error) {
	o, err := classify(ctx, v)
	if err != nil {
		return Value{}, err
	}
	a := ctx.Arch()
	lang := ctx.Language()
	switch op.Kind {
	case TokenMinus, TokenPlus:
		switch o.class {
		case numFloat:
			f := o.f
			if op.Kind == TokenMinus {
				f = -f
			}
			t := o.typ
			if t == nil {
				t = typeForFloat(lang, o.size)
			}
			return makeFloatValue(a, t, o.size, f), nil
		case numSigned, numUnsigned, numBool:
			class, size := liftToInt(lang, o)
			u := o.u
			if op.Kind == TokenMinus {
				u = -u
			}
			t := pickIntType(ctx, class, size, o)
			return makeUintValue(a, t, mask(u, uint(size)*8)), nil
		}
	case TokenBang:
		if lang == LanguageRust && (o.class == numSigned || o.class == numUnsigned) {
			// Rust ! on integers is bitwise complement at the declared
			// width.
			return makeUintValue(a, o.typ, mask(^o.u, uint(o.size)*8)), nil
		}
		b, err := truthy(ctx, v)
		if err != nil {
			return Value{}, err
		}
		return boolValue(ctx, !b), nil
	case TokenTilde:
		switch o.class {
		case numSigned, numUnsigned, numBool:
			class, size := liftToInt(lang, o)
			t := pickIntType(ctx, class, size, o)
			return makeUintValue(a, t, mask(^o.u, uint(size)*8)), nil
		}
	}
	return Value{}, fmt.Errorf("invalid operand to unary %q", op.Text)
}

// binaryOp applies an arithmetic, comparison or bitwise operator to two
// computed values. Assignment, logical short-circuiting and the comma
// operator are handled by the evaluator.
func binaryOp(ctx EvalContext, op Token, lv, rv Value) (Value, error) {
	l, err := classify(ctx, lv)
	if err != nil {
		return Value{}, err
	}
	r, err := classify(ctx, rv)
	if err != nil {
		return Value{}, err
	}
	switch {
	case l.class == numPointer || r.class == numPointer:
		return pointerOp(ctx, op, l, r)
	case l.class == numFloat || r.class == numFloat:
		return floatOp(ctx, op, l, r)
	}
	return intOp(ctx, op, l, r)
}

func pointerOp(ctx EvalContext, op Token, l, r operand) (Value, error) {
	switch op.Kind {
	case TokenPlus:
		switch {
		case l.class == numPointer && isIntClass(r.class):
			return pointerAdd(ctx, l, r.i)
		case r.class == numPointer && isIntClass(l.class):
			return pointerAdd(ctx, r, l.i)
		}
	case TokenMinus:
		switch {
		case l.class == numPointer && r.class == numPointer:
			esize, err := pointeeSize(ctx, l)
			if err != nil {
				return Value{}, err
			}
			d := (int64(l.u) - int64(r.u)) / esize
			return makeUintValue(ctx.Arch(), ptrdiffType(ctx.Language()), uint64(d)), nil
		case l.class == numPointer && isIntClass(r.class):
			return pointerAdd(ctx, l, -r.i)
		}
	case TokenDoubleEquals, TokenNotEquals, TokenLess, TokenLessEquals, TokenGreater, TokenGreaterEquals, TokenSpaceship:
		var c int
		switch {
		case l.u < r.u:
			c = -1
		case l.u > r.u:
			c = 1
		}
		return compareResult(ctx, op, c)
	}
	return Value{}, fmt.Errorf("invalid operands to %q", op.Text)
}

// pointerAdd advances a pointer by delta elements. The sum over a
// decayed array is a pointer to the element type.
func pointerAdd(ctx EvalContext, p operand, delta int64) (Value, error) {
	esize, err := pointeeSize(ctx, p)
	if err != nil {
		return Value{}, err
	}
	addr := uint64(int64(p.u) + delta*esize)
	t := p.typ
	if _, ok := GetConcreteType(ctx.FindContext(), t).(*symbol.ArrayType); ok {
		t = &symbol.ModifiedType{
			CommonType: symbol.CommonType{ByteSize: int64(ctx.Arch().PointerSize)},
			Kind:       symbol.KindPointer,
			Modified:   p.elem,
		}
	}
	return makeUintValue(ctx.Arch(), t, addr), nil
}

func pointeeSize(ctx EvalContext, p operand) (int64, error) {
	size := typeSizeOf(p.elem)
	if size <= 0 {
		size = typeSizeOf(GetConcreteType(ctx.FindContext(), p.elem))
	}
	if size <= 0 {
		return 0, fmt.Errorf("cannot do pointer arithmetic on %q", typeName(p.typ))
	}
	return size, nil
}

func floatOp(ctx EvalContext, op Token, l, r operand) (Value, error) {
	toF := func(o operand) float64 {
		switch o.class {
		case numFloat:
			return o.f
		case numSigned:
			return float64(o.i)
		}
		return float64(mask(o.u, uint(o.size)*8))
	}
	lf, rf := toF(l), toF(r)
	size := 4
	if l.class == numFloat && l.size == 8 || r.class == numFloat && r.size == 8 {
		size = 8
	}
	switch op.Kind {
	case TokenPlus, TokenMinus, TokenStar, TokenSlash:
		var res float64
		switch op.Kind {
		case TokenPlus:
			res = lf + rf
		case TokenMinus:
			res = lf - rf
		case TokenStar:
			res = lf * rf
		case TokenSlash:
			// IEEE division by zero is an infinity, not an error.
			res = lf / rf
		}
		return makeFloatValue(ctx.Arch(), pickFloatType(ctx, size, l, r), size, res), nil
	case TokenDoubleEquals, TokenNotEquals, TokenLess, TokenLessEquals, TokenGreater, TokenGreaterEquals, TokenSpaceship:
		if math.IsNaN(lf) || math.IsNaN(rf) {
			switch op.Kind {
			case TokenNotEquals:
				return boolValue(ctx, true), nil
			case TokenSpaceship:
				return Value{}, errors.New("floating point comparison is unordered")
			}
			return boolValue(ctx, false), nil
		}
		var c int
		switch {
		case lf < rf:
			c = -1
		case lf > rf:
			c = 1
		}
		return compareResult(ctx, op, c)
	}
	return Value{}, fmt.Errorf("invalid operands to %q", op.Text)
}

func intOp(ctx EvalContext, op Token, l, r operand) (Value, error) {
	lang := ctx.Language()
	class, size := promote(lang, l, r)
	if op.Kind == TokenShiftLeft || op.Kind == TokenShiftRight {
		// Shift results take the promoted left operand's type alone.
		class, size = liftToInt(lang, l)
	}
	bits := uint(size) * 8
	lu, ru := mask(l.u, bits), mask(r.u, bits)
	li, ri := arch.SignExtend(lu, int(bits)), arch.SignExtend(ru, int(bits))

	result := func(u uint64) (Value, error) {
		t := pickIntType(ctx, class, size, l, r)
		return makeUintValue(ctx.Arch(), t, mask(u, bits)), nil
	}

	switch op.Kind {
	case TokenPlus:
		return result(lu + ru)
	case TokenMinus:
		return result(lu - ru)
	case TokenStar:
		return result(lu * ru)
	case TokenSlash, TokenPercent:
		if ru == 0 {
			return Value{}, errors.New("division by zero")
		}
		if class == numUnsigned {
			if op.Kind == TokenSlash {
				return result(lu / ru)
			}
			return result(lu % ru)
		}
		if ri == -1 {
			// x / -1 as a negation sidesteps the one case that
			// overflows 64-bit division, INT64_MIN / -1.
			if op.Kind == TokenSlash {
				return result(-lu)
			}
			return result(0)
		}
		if op.Kind == TokenSlash {
			return result(uint64(li / ri))
		}
		return result(uint64(li % ri))
	case TokenAmpersand:
		return result(lu & ru)
	case TokenCaret:
		return result(lu ^ ru)
	case TokenPipe:
		return result(lu | ru)
	case TokenShiftLeft, TokenShiftRight:
		if rc, _ := liftToInt(lang, r); rc == numSigned && r.i < 0 {
			return Value{}, errors.New("negative shift count")
		}
		// Clamp before narrowing so a huge count cannot wrap on
		// 32-bit builds. Shifting by 64 or more gives the defined
		// all-zero (or sign-fill) result.
		c := uint(64)
		if r.u < 64 {
			c = uint(r.u)
		}
		if op.Kind == TokenShiftLeft {
			return result(lu << c)
		}
		if class == numSigned {
			return result(uint64(li >> c))
		}
		return result(lu >> c)
	case TokenDoubleEquals, TokenNotEquals, TokenLess, TokenLessEquals, TokenGreater, TokenGreaterEquals, TokenSpaceship:
		var c int
		switch {
		case lu == ru:
		case class == numUnsigned && lu < ru, class != numUnsigned && li < ri:
			c = -1
		default:
			c = 1
		}
		return compareResult(ctx, op, c)
	}
	return Value{}, fmt.Errorf("invalid operands to %q", op.Text)
}

// compareResult turns a three-way comparison into the result value for
// one comparison operator. The spaceship result is a plain int.
func compareResult(ctx EvalContext, op Token, c int) (Value, error) {
	switch op.Kind {
	case TokenDoubleEquals:
		return boolValue(ctx, c == 0), nil
	case TokenNotEquals:
		return boolValue(ctx, c != 0), nil
	case TokenLess:
		return boolValue(ctx, c < 0), nil
	case TokenLessEquals:
		return boolValue(ctx, c <= 0), nil
	case TokenGreater:
		return boolValue(ctx, c > 0), nil
	case TokenGreaterEquals:
		return boolValue(ctx, c >= 0), nil
	case TokenSpaceship:
		return signedValue(ctx, int64(c)), nil
	}
	return Value{}, fmt.Errorf("invalid operands to %q", op.Text)
}

// baseOp maps a compound assignment operator to its underlying binary
// operator.
func baseOp(op Token) Token {
	kind := TokenInvalid
	switch op.Kind {
	case TokenPlusEquals:
		kind = TokenPlus
	case TokenMinusEquals:
		kind = TokenMinus
	case TokenStarEquals:
		kind = TokenStar
	case TokenSlashEquals:
		kind = TokenSlash
	case TokenPercentEquals:
		kind = TokenPercent
	case TokenCaretEquals:
		kind = TokenCaret
	case TokenAndEquals:
		kind = TokenAmpersand
	case TokenOrEquals:
		kind = TokenPipe
	case TokenShiftLeftEq:
		kind = TokenShiftLeft
	case TokenShiftRightEq:
		kind = TokenShiftRight
	}
	return Token{Kind: kind, Text: strings.TrimSuffix(op.Text, "="), Pos: op.Pos}
}

// castValue converts a value to a named destination type. const_cast
// only relabels the value; the other casts convert numbers, pointers
// and enumerations by value.
func castValue(ctx EvalContext, kind CastKind, to symbol.Type, v Value) (Value, error) {
	if kind == CastConst {
		// Only the qualifiers change; bytes and lvalue-ness survive.
		out := v
		out.Type = to
		return out, nil
	}
	fc := ctx.FindContext()
	a := ctx.Arch()
	destClass, destSize := classifyType(fc, to)
	if destClass == numNone || destSize <= 0 {
		return Value{}, fmt.Errorf("cannot cast %q to %q", typeName(v.Type), typeName(to))
	}
	src, err := classify(ctx, v)
	if err != nil {
		return Value{}, err
	}
	if kind == CastRust && destClass == numBool && src.class != numBool {
		return Value{}, errors.New("cannot cast to 'bool'; compare against zero instead")
	}
	if destClass == numFloat {
		var f float64
		switch src.class {
		case numFloat:
			f = src.f
		case numSigned:
			f = float64(src.i)
		case numUnsigned, numBool:
			f = float64(mask(src.u, uint(src.size)*8))
		default:
			return Value{}, fmt.Errorf("cannot cast %q to %q", typeName(v.Type), typeName(to))
		}
		return makeFloatValue(a, to, destSize, f), nil
	}
	var raw uint64
	switch src.class {
	case numFloat:
		raw = floatToInt(src.f)
	case numBool:
		if src.u != 0 {
			raw = 1
		}
	default:
		raw = src.u
	}
	if destClass == numBool && raw != 0 {
		raw = 1
	}
	b := make([]byte, destSize)
	a.PutUintN(b, raw)
	return Value{Type: to, Bytes: b}, nil
}

// floatToInt truncates toward zero the way a C cast does, clamping
// values outside the 64-bit range.
func floatToInt(f float64) uint64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return 1 << 63 // the INT64_MIN bit pattern
	}
	return uint64(int64(f))
}

func indexValue(ctx EvalContext, v Value) (int64, error) {
	o, err := classify(ctx, v)
	if err != nil {
		return 0, err
	}
	switch o.class {
	case numSigned:
		return o.i, nil
	case numUnsigned, numBool:
		return int64(mask(o.u, uint(o.size)*8)), nil
	}
	return 0, fmt.Errorf("array index must be an integer, not %q", typeName(v.Type))
}
