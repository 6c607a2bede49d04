// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"errors"
	"fmt"

	"github.com/peekdbg/peek/arch"
	"github.com/peekdbg/peek/symbol"
)

// Loops stop with an error after this many iterations rather than
// spinning the debugger forever on while(true).
const maxLoopSteps = 1 << 20

// An evaluator walks a parsed tree in continuation passing style: a
// node whose inputs need a target read suspends and resumes when the
// data arrives. One evaluator serves one expression; it is not safe
// for concurrent use.
type evaluator struct {
	ctx      EvalContext
	locals   []Value
	breaking bool
	steps    int
}

// Eval evaluates an already parsed expression tree.
func Eval(ctx EvalContext, n Node, cb ValueCallback) {
	e := &evaluator{ctx: ctx}
	e.eval(n, guarded(ctx, cb))
}

// EvalExpression parses and evaluates source. A result that points or
// refers to a class with a vtable is promoted to the derived class the
// object actually is.
func EvalExpression(ctx EvalContext, source string, cb ValueCallback) {
	cb = guarded(ctx, cb)
	n, err := ParseExpression(source, ctx.Language(), ctx.FindContext())
	if err != nil {
		cb(Value{}, err)
		return
	}
	e := &evaluator{ctx: ctx}
	e.eval(n, func(v Value, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		PromotePointerToDerived(ctx, v, cb)
	})
}

func (e *evaluator) eval(n Node, cb ValueCallback) {
	switch n := n.(type) {
	case *LiteralNode:
		v, err := literalValue(e.ctx.Arch(), e.ctx.Language(), n.Token)
		cb(v, err)
	case *IdentifierNode:
		e.evalIdentifier(n, cb)
	case *LocalVarNode:
		v, err := e.local(n)
		cb(v, err)
	case *UnaryNode:
		e.evalUnary(n, cb)
	case *BinaryNode:
		e.evalBinary(n, cb)
	case *MemberAccessNode:
		e.evalMemberAccess(n, cb)
	case *SubscriptNode:
		e.evalSubscript(n, cb)
	case *CastNode:
		e.evalCast(n, cb)
	case *SizeofNode:
		e.evalSizeof(n, cb)
	case *TypeNode:
		cb(Value{}, fmt.Errorf("cannot use type %q as a value", typeName(n.Type)))
	case *BlockNode:
		e.evalBlock(n, cb)
	case *VariableDeclNode:
		e.evalDecl(n, cb)
	case *IfNode:
		e.evalIf(n, cb)
	case *LoopNode:
		e.evalLoop(n, cb)
	case *BreakNode:
		e.breaking = true
		cb(Value{}, nil)
	default:
		cb(Value{}, errors.New("cannot evaluate this expression"))
	}
}

// evalValue evaluates n and resolves a reference result to its
// referent, so operators act on the referenced object the way they do
// in source.
func (e *evaluator) evalValue(n Node, cb ValueCallback) {
	e.eval(n, func(v Value, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		e.resolveRefs(v, cb)
	})
}

func (e *evaluator) resolveRefs(v Value, cb ValueCallback) {
	mod, ok := GetConcreteType(e.ctx.FindContext(), v.Type).(*symbol.ModifiedType)
	if !ok || mod.Kind != symbol.KindReference && mod.Kind != symbol.KindRvalueReference {
		cb(v, nil)
		return
	}
	e.readPointee(v, mod.Modified, cb)
}

func (e *evaluator) evalIdentifier(n *IdentifierNode, cb ValueCallback) {
	ident := n.Ident
	if len(ident.Components) == 1 && ident.Components[0].Special != SpecialNone {
		comp := ident.Components[0]
		switch comp.Special {
		case SpecialRegister:
			info, ok := e.ctx.Arch().LookupRegister(comp.Name)
			if !ok {
				cb(Value{}, fmt.Errorf("unknown register %q", comp.Name))
				return
			}
			e.readRegister(info, cb)
		case SpecialPLT:
			e.evalPLT(comp.Name, cb)
		default:
			cb(Value{}, fmt.Errorf("unknown special name %q", comp.FullName()))
		}
		return
	}
	fc := e.ctx.FindContext()
	f := FindName(fc, FindAllOptions(), ident)
	switch f.Kind {
	case FoundVariable:
		e.ctx.GetVariableValue(f.Variable, cb)
	case FoundMemberName:
		// An unqualified member name inside a method reads through the
		// object pointer.
		member := f.Member
		e.ctx.GetVariableValue(f.Object, func(ptr Value, err error) {
			if err != nil {
				cb(Value{}, err)
				return
			}
			ResolveMemberByPointer(e.ctx, ptr, member, cb)
		})
	case FoundFunction:
		if len(f.Function.Ranges) == 0 {
			cb(Value{}, fmt.Errorf("function %q has no address", ident.FullName()))
			return
		}
		t := &symbol.ModifiedType{
			CommonType: symbol.CommonType{ByteSize: int64(e.ctx.Arch().PointerSize)},
			Kind:       symbol.KindPointer,
			Modified:   &symbol.FunctionType{},
		}
		cb(makeUintValue(e.ctx.Arch(), t, f.Function.Ranges[0][0]), nil)
	case FoundType:
		cb(Value{}, fmt.Errorf("cannot use type %q as a value", ident.FullName()))
	case FoundTemplate:
		cb(Value{}, fmt.Errorf("%q needs template arguments", ident.FullName()))
	case FoundNamespace:
		cb(Value{}, fmt.Errorf("cannot use namespace %q as a value", ident.FullName()))
	default:
		// A bare name that resolves to nothing can still be a CPU
		// register: "rax" works without the $reg() escape as long as
		// no symbol shadows it.
		if name, ok := ident.Simple(); ok {
			if info, ok := e.ctx.Arch().LookupRegister(name); ok {
				e.readRegister(info, cb)
				return
			}
		}
		cb(Value{}, fmt.Errorf("no symbol %q in the current context", ident.FullName()))
	}
}

func (e *evaluator) readRegister(info arch.RegisterInfo, cb ValueCallback) {
	finish := func(full []byte, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		v, err := registerValue(e.ctx.Arch(), e.ctx.Language(), info, full)
		cb(v, err)
	}
	if b, ok := e.ctx.Provider().RegisterSync(info.ID); ok {
		finish(b, nil)
		return
	}
	e.ctx.Provider().ReadRegister(info.ID, finish)
}

// registerValue types the bytes of a register read. A partial name
// like eax carves its view out of the canonical register's data and
// remembers the placement so the value can format as its source.
func registerValue(a *arch.Architecture, lang Language, info arch.RegisterInfo, full []byte) (Value, error) {
	data := full
	if info.Partial() {
		if info.Shift%8 != 0 || info.Bits%8 != 0 || info.Bits == 0 {
			return Value{}, fmt.Errorf("register %q has an unusable layout", info.Name)
		}
		lo, n := info.Shift/8, info.Bits/8
		if lo+n > len(full) {
			return Value{}, fmt.Errorf("short read of register %q", info.Name)
		}
		data = full[lo : lo+n]
	} else if n := info.Bits / 8; n > 0 && n < len(full) {
		data = full[:n]
	}
	out := Value{
		Type:   registerType(lang, len(data)*8),
		Bytes:  append([]byte(nil), data...),
		Source: ValueSource{Kind: SourceRegister, Register: info.ID},
	}
	if info.Partial() {
		out.Source.BitSize = uint32(info.Bits)
		out.Source.BitShift = uint32(info.Shift)
	}
	return out, nil
}

func registerType(lang Language, bits int) symbol.Type {
	if lang == LanguageRust {
		if t, ok := rustBuiltinType(fmt.Sprintf("u%d", bits)); ok {
			return t
		}
	}
	return namedBase(fmt.Sprintf("uint%d_t", bits), int64(bits/8), symbol.EncodingUnsigned)
}

func (e *evaluator) evalPLT(name string, cb ValueCallback) {
	want := name + "@plt"
	for _, mod := range searchModules(e.ctx.FindContext()) {
		for _, s := range mod.Symbols {
			if s.Name == want {
				cb(makeUintValue(e.ctx.Arch(), sizeType(e.ctx.Language()), s.Addr), nil)
				return
			}
		}
	}
	cb(Value{}, fmt.Errorf("no PLT entry for %q", name))
}

func (e *evaluator) local(n *LocalVarNode) (Value, error) {
	if n.Slot < 0 || n.Slot >= len(e.locals) {
		return Value{}, fmt.Errorf("variable %q is not initialized", n.Name)
	}
	return e.locals[n.Slot], nil
}

func (e *evaluator) setLocal(slot int, v Value) {
	for len(e.locals) <= slot {
		e.locals = append(e.locals, Value{})
	}
	e.locals[slot] = v
}

func (e *evaluator) evalUnary(n *UnaryNode, cb ValueCallback) {
	e.evalValue(n.Operand, func(v Value, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		switch n.Op.Kind {
		case TokenStar:
			e.deref(v, cb)
		case TokenAmpersand:
			e.addressOf(v, cb)
		default:
			out, err := unaryOp(e.ctx, n.Op, v)
			cb(out, err)
		}
	})
}

func (e *evaluator) deref(v Value, cb ValueCallback) {
	fc := e.ctx.FindContext()
	ct := GetConcreteType(fc, v.Type)
	if at, ok := ct.(*symbol.ArrayType); ok {
		ev, err := arrayElem(e.ctx, v, at, 0)
		cb(ev, err)
		return
	}
	mod, ok := ct.(*symbol.ModifiedType)
	if !ok || mod.Kind != symbol.KindPointer {
		cb(Value{}, fmt.Errorf("cannot dereference type %q", typeName(v.Type)))
		return
	}
	e.readPointee(v, mod.Modified, cb)
}

// readPointee fetches the object a pointer or reference leads to.
func (e *evaluator) readPointee(ptr Value, pointee symbol.Type, cb ValueCallback) {
	addr, ok := ptr.Uint(e.ctx.Arch())
	if !ok {
		cb(Value{}, errors.New("bad pointer value"))
		return
	}
	if addr == 0 {
		cb(Value{}, errors.New("dereferencing a null pointer"))
		return
	}
	size := concreteSize(e.ctx, pointee)
	if size <= 0 {
		cb(Value{}, fmt.Errorf("cannot dereference incomplete type %q", typeName(pointee)))
		return
	}
	e.readObject(addr, pointee, size, cb)
}

func (e *evaluator) readObject(addr uint64, t symbol.Type, size int64, cb ValueCallback) {
	e.ctx.Provider().ReadMemory(addr, int(size), func(data []byte, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		cb(Value{Type: t, Bytes: data, Source: MemorySource(addr)}, nil)
	})
}

// concreteSize is a type's size, following a declaration to its
// definition when the direct answer is zero.
func concreteSize(ctx EvalContext, t symbol.Type) int64 {
	size := typeSizeOf(t)
	if size <= 0 {
		size = typeSizeOf(GetConcreteType(ctx.FindContext(), t))
	}
	return size
}

func (e *evaluator) addressOf(v Value, cb ValueCallback) {
	src := v.Source
	switch {
	case src.Kind == SourceMemory && src.BitSize == 0:
		t := &symbol.ModifiedType{
			CommonType: symbol.CommonType{ByteSize: int64(e.ctx.Arch().PointerSize)},
			Kind:       symbol.KindPointer,
			Modified:   v.Type,
		}
		cb(makeUintValue(e.ctx.Arch(), t, src.Address), nil)
	case src.Kind == SourceMemory:
		cb(Value{}, errors.New("cannot take the address of a bitfield"))
	case src.Kind == SourceRegister:
		cb(Value{}, errors.New("cannot take the address of a register"))
	default:
		cb(Value{}, errors.New("cannot take the address of a temporary"))
	}
}

func (e *evaluator) evalBinary(n *BinaryNode, cb ValueCallback) {
	switch n.Op.Kind {
	case TokenEquals, TokenPlusEquals, TokenMinusEquals, TokenStarEquals,
		TokenSlashEquals, TokenPercentEquals, TokenCaretEquals,
		TokenAndEquals, TokenOrEquals, TokenShiftLeftEq, TokenShiftRightEq:
		e.evalAssign(n, cb)
	case TokenDoubleAnd, TokenDoubleOr:
		e.evalLogical(n, cb)
	case TokenComma:
		e.eval(n.Left, func(_ Value, err error) {
			if err != nil {
				cb(Value{}, err)
				return
			}
			e.evalValue(n.Right, cb)
		})
	default:
		e.evalValue(n.Left, func(lv Value, err error) {
			if err != nil {
				cb(Value{}, err)
				return
			}
			e.evalValue(n.Right, func(rv Value, err error) {
				if err != nil {
					cb(Value{}, err)
					return
				}
				out, err := binaryOp(e.ctx, n.Op, lv, rv)
				cb(out, err)
			})
		})
	}
}

func (e *evaluator) evalLogical(n *BinaryNode, cb ValueCallback) {
	e.evalValue(n.Left, func(lv Value, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		lb, err := truthy(e.ctx, lv)
		if err != nil {
			cb(Value{}, err)
			return
		}
		if n.Op.Kind == TokenDoubleAnd && !lb || n.Op.Kind == TokenDoubleOr && lb {
			// Short circuit; the right side never runs.
			cb(boolValue(e.ctx, lb), nil)
			return
		}
		e.evalValue(n.Right, func(rv Value, err error) {
			if err != nil {
				cb(Value{}, err)
				return
			}
			rb, err := truthy(e.ctx, rv)
			if err != nil {
				cb(Value{}, err)
				return
			}
			cb(boolValue(e.ctx, rb), nil)
		})
	})
}

func (e *evaluator) evalAssign(n *BinaryNode, cb ValueCallback) {
	if lv, ok := n.Left.(*LocalVarNode); ok {
		e.assignLocal(n, lv, cb)
		return
	}
	e.evalValue(n.Left, func(dst Value, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		e.evalValue(n.Right, func(src Value, err error) {
			if err != nil {
				cb(Value{}, err)
				return
			}
			if n.Op.Kind != TokenEquals {
				src, err = binaryOp(e.ctx, baseOp(n.Op), dst, src)
				if err != nil {
					cb(Value{}, err)
					return
				}
			}
			out, err := coerceForAssign(e.ctx, src, dst.Type)
			if err != nil {
				cb(Value{}, err)
				return
			}
			e.writeValueTo(dst.Source, out.Bytes, func(err error) {
				if err != nil {
					cb(Value{}, err)
					return
				}
				out.Source = dst.Source
				cb(out, nil)
			})
		})
	})
}

func (e *evaluator) assignLocal(n *BinaryNode, lv *LocalVarNode, cb ValueCallback) {
	e.evalValue(n.Right, func(src Value, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		if n.Op.Kind != TokenEquals {
			cur, err := e.local(lv)
			if err != nil {
				cb(Value{}, err)
				return
			}
			src, err = binaryOp(e.ctx, baseOp(n.Op), cur, src)
			if err != nil {
				cb(Value{}, err)
				return
			}
		}
		src.Source = ValueSource{}
		e.setLocal(lv.Slot, src)
		cb(src, nil)
	})
}

// writeValueTo stores bytes back to where a value came from. Only
// memory sources, including bitfields, are writable.
func (e *evaluator) writeValueTo(src ValueSource, b []byte, done func(error)) {
	switch src.Kind {
	case SourceMemory:
		if src.BitSize != 0 {
			writeBitfield(e.ctx, src, b, done)
			return
		}
		e.ctx.Provider().WriteMemory(src.Address, append([]byte(nil), b...), done)
	case SourceRegister:
		done(errors.New("cannot write to a register"))
	default:
		done(errors.New("expression is not assignable"))
	}
}

// coerceForAssign converts the right side of an assignment to the
// destination type. Numbers and pointers convert; aggregates only copy
// between identical types.
func coerceForAssign(ctx EvalContext, v Value, to symbol.Type) (Value, error) {
	fc := ctx.FindContext()
	if c, _ := classifyType(fc, to); c != numNone {
		return castValue(ctx, CastStatic, to, v)
	}
	destSize := typeSizeOf(GetConcreteType(fc, to))
	if destSize > 0 && destSize == int64(len(v.Bytes)) &&
		typeName(GetConcreteType(fc, to)) == typeName(GetConcreteType(fc, v.Type)) {
		return Value{Type: to, Bytes: append([]byte(nil), v.Bytes...)}, nil
	}
	return Value{}, fmt.Errorf("cannot assign %q to %q", typeName(v.Type), typeName(to))
}

func (e *evaluator) evalMemberAccess(n *MemberAccessNode, cb ValueCallback) {
	e.evalValue(n.Object, func(obj Value, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		fc := e.ctx.FindContext()
		name := n.Member.Name
		ct := GetConcreteType(fc, obj.Type)
		if coll, ok := ct.(*symbol.Collection); ok {
			if n.Op.Kind == TokenArrow {
				cb(Value{}, fmt.Errorf("%q is not a pointer; use '.' to access its members", typeName(obj.Type)))
				return
			}
			fm, ok := FindMember(fc, coll, name)
			if !ok {
				cb(Value{}, fmt.Errorf("no member %q in %q", name, typeName(obj.Type)))
				return
			}
			v, err := ResolveMember(e.ctx, obj, fm)
			cb(v, err)
			return
		}
		if mod, ok := ct.(*symbol.ModifiedType); ok && mod.Kind == symbol.KindPointer {
			// Rust . follows the pointer; C insists on ->.
			if n.Op.Kind == TokenDot && e.ctx.Language() != LanguageRust {
				cb(Value{}, fmt.Errorf("%q is a pointer; use '->' to access its members", typeName(obj.Type)))
				return
			}
			coll, ok := GetConcreteType(fc, mod.Modified).(*symbol.Collection)
			if !ok {
				cb(Value{}, fmt.Errorf("%q does not point at a struct or class", typeName(obj.Type)))
				return
			}
			fm, ok := FindMember(fc, coll, name)
			if !ok {
				cb(Value{}, fmt.Errorf("no member %q in %q", name, typeName(mod.Modified)))
				return
			}
			ResolveMemberByPointer(e.ctx, obj, fm, cb)
			return
		}
		cb(Value{}, fmt.Errorf("cannot access member %q of type %q", name, typeName(obj.Type)))
	})
}

// arrayElem extracts element i from an array value already in hand.
func arrayElem(ctx EvalContext, v Value, at *symbol.ArrayType, i int64) (Value, error) {
	esize := concreteSize(ctx, at.Elem)
	if esize <= 0 {
		return Value{}, fmt.Errorf("array of incomplete type %q", typeName(at.Elem))
	}
	if i < 0 || at.Count >= 0 && i >= at.Count {
		return Value{}, fmt.Errorf("array index %d out of range for %q", i, typeName(v.Type))
	}
	off := i * esize
	if off+esize > int64(len(v.Bytes)) {
		return Value{}, fmt.Errorf("array index %d outside the value", i)
	}
	b := append([]byte(nil), v.Bytes[off:off+esize]...)
	return Value{Type: at.Elem, Bytes: b, Source: memberSource(v.Source, off, esize)}, nil
}

func (e *evaluator) evalSubscript(n *SubscriptNode, cb ValueCallback) {
	e.evalValue(n.Object, func(obj Value, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		e.evalValue(n.Index, func(idx Value, err error) {
			if err != nil {
				cb(Value{}, err)
				return
			}
			i, err := indexValue(e.ctx, idx)
			if err != nil {
				cb(Value{}, err)
				return
			}
			ct := GetConcreteType(e.ctx.FindContext(), obj.Type)
			if at, ok := ct.(*symbol.ArrayType); ok {
				v, err := arrayElem(e.ctx, obj, at, i)
				cb(v, err)
				return
			}
			if mod, ok := ct.(*symbol.ModifiedType); ok && mod.Kind == symbol.KindPointer {
				esize := concreteSize(e.ctx, mod.Modified)
				if esize <= 0 {
					cb(Value{}, fmt.Errorf("cannot index incomplete type %q", typeName(mod.Modified)))
					return
				}
				addr, ok := obj.Uint(e.ctx.Arch())
				if !ok {
					cb(Value{}, errors.New("bad pointer value"))
					return
				}
				e.readObject(uint64(int64(addr)+i*esize), mod.Modified, esize, cb)
				return
			}
			cb(Value{}, fmt.Errorf("cannot index type %q", typeName(obj.Type)))
		})
	})
}

func (e *evaluator) evalCast(n *CastNode, cb ValueCallback) {
	e.evalValue(n.From, func(v Value, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		out, err := castValue(e.ctx, n.Kind, n.To.Type, v)
		cb(out, err)
	})
}

func (e *evaluator) evalSizeof(n *SizeofNode, cb ValueCallback) {
	deliver := func(size int64, t symbol.Type) {
		if size <= 0 {
			cb(Value{}, fmt.Errorf("cannot take the size of %q", typeName(t)))
			return
		}
		cb(makeUintValue(e.ctx.Arch(), sizeType(e.ctx.Language()), uint64(size)), nil)
	}
	if tn, ok := n.Arg.(*TypeNode); ok {
		deliver(concreteSize(e.ctx, tn.Type), tn.Type)
		return
	}
	e.evalValue(n.Arg, func(v Value, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		size := concreteSize(e.ctx, v.Type)
		if size <= 0 {
			size = int64(len(v.Bytes))
		}
		deliver(size, v.Type)
	})
}

func (e *evaluator) evalBlock(n *BlockNode, cb ValueCallback) {
	var last Value
	var step func(i int)
	step = func(i int) {
		if e.breaking || i >= len(n.Stmts) {
			if e.breaking || n.TrailingSemi {
				last = Value{}
			}
			cb(last, nil)
			return
		}
		e.eval(n.Stmts[i], func(v Value, err error) {
			if err != nil {
				cb(Value{}, err)
				return
			}
			last = v
			step(i + 1)
		})
	}
	step(0)
}

func (e *evaluator) evalDecl(n *VariableDeclNode, cb ValueCallback) {
	e.evalValue(n.Init, func(v Value, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		if n.Type != nil {
			v, err = castValue(e.ctx, CastStatic, n.Type, v)
			if err != nil {
				cb(Value{}, err)
				return
			}
		}
		// Locals hold copies; they never alias target state.
		v.Source = ValueSource{}
		e.setLocal(n.Slot, v)
		cb(Value{}, nil)
	})
}

func (e *evaluator) evalIf(n *IfNode, cb ValueCallback) {
	e.evalValue(n.Cond, func(cv Value, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		b, err := truthy(e.ctx, cv)
		if err != nil {
			cb(Value{}, err)
			return
		}
		switch {
		case b:
			e.eval(n.Then, cb)
		case n.Else != nil:
			e.eval(n.Else, cb)
		default:
			cb(Value{}, nil)
		}
	})
}

// evalLoop drives one loop. Iterations go through ctx.Post rather than
// direct recursion so a long loop cannot grow the Go stack; the value
// of a completed loop is void.
func (e *evaluator) evalLoop(n *LoopNode, cb ValueCallback) {
	var iterate func()
	next := func() {
		e.steps++
		if e.steps > maxLoopSteps {
			cb(Value{}, errors.New("loop iteration limit reached"))
			return
		}
		e.ctx.Post(iterate)
	}
	body := func(after func()) {
		e.eval(n.Body, func(_ Value, err error) {
			if err != nil {
				cb(Value{}, err)
				return
			}
			if e.breaking {
				e.breaking = false
				cb(Value{}, nil)
				return
			}
			after()
		})
	}
	cond := func(yes func()) {
		if n.Cond == nil {
			yes()
			return
		}
		e.evalValue(n.Cond, func(cv Value, err error) {
			if err != nil {
				cb(Value{}, err)
				return
			}
			b, err := truthy(e.ctx, cv)
			if err != nil {
				cb(Value{}, err)
				return
			}
			if b {
				yes()
			} else {
				cb(Value{}, nil)
			}
		})
	}
	incr := func() {
		if n.Incr == nil {
			next()
			return
		}
		e.eval(n.Incr, func(_ Value, err error) {
			if err != nil {
				cb(Value{}, err)
				return
			}
			next()
		})
	}
	if n.Kind == TokenDo {
		iterate = func() {
			if !e.ctx.Alive() {
				return
			}
			body(func() { cond(next) })
		}
	} else {
		iterate = func() {
			if !e.ctx.Alive() {
				return
			}
			cond(func() { body(incr) })
		}
	}
	if n.Init != nil {
		e.eval(n.Init, func(_ Value, err error) {
			if err != nil {
				cb(Value{}, err)
				return
			}
			iterate()
		})
		return
	}
	iterate()
}
