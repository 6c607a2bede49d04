// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"strings"

	"github.com/peekdbg/peek/symbol"
)

const vtableSymbolPrefix = "vtable for "

// PromotePointerToDerived inspects the object a pointer or reference
// points at and, if its vtable says the object is really of a derived
// class, retypes the value as pointer-or-reference to that class. The
// numeric address is left alone; only the type changes, with the cv
// qualifiers rebuilt around the new pointee. Anything that prevents
// promotion, including unreadable memory, returns the value unchanged
// rather than an error.
//
// Costs one asynchronous read: the vtable pointer slot of the object.
func PromotePointerToDerived(ctx EvalContext, v Value, cb ValueCallback) {
	cb = guarded(ctx, cb)
	keep := func() { cb(v, nil) }

	fc := ctx.FindContext()
	mod, ok := GetConcreteType(fc, v.Type).(*symbol.ModifiedType)
	if !ok || !mod.IsIndirection() {
		keep()
		return
	}
	pointee, ok := GetConcreteType(fc, mod.Modified).(*symbol.Collection)
	if !ok || pointee.Declaration || pointee.Name == "" {
		keep()
		return
	}
	vm := vtableMember(pointee)
	if vm == nil {
		keep()
		return
	}
	objAddr, ok := v.Uint(ctx.Arch())
	if !ok || objAddr == 0 {
		keep()
		return
	}

	a := ctx.Arch()
	ctx.Provider().ReadMemory(objAddr+vm.ByteOffset, a.PointerSize, func(data []byte, err error) {
		if err != nil {
			keep()
			return
		}
		className, ok := symbolizeVtable(fc, a.UintN(data))
		if !ok || className == pointee.Name {
			keep()
			return
		}
		derived, ok := findTypeDefinition(fc, className).(*symbol.Collection)
		if !ok || derived == pointee || !inheritsFrom(fc, derived, pointee.Name, 0) {
			keep()
			return
		}
		nt, ok := rebuildIndirection(ctx, v.Type, derived)
		if !ok {
			keep()
			return
		}
		out := v
		out.Type = nt
		cb(out, nil)
	})
}

// vtableMember finds the compiler-generated vtable pointer among a
// collection's direct members. Itanium compilers call it _vptr$Class,
// MSVC __vfptr.
func vtableMember(coll *symbol.Collection) *symbol.DataMember {
	for _, m := range coll.Members {
		if strings.HasPrefix(m.Name, "_vptr$") || m.Name == "__vfptr" {
			return m
		}
	}
	return nil
}

// symbolizeVtable maps an address inside a vtable to the class name via
// the modules' ELF symbols: "vtable for Derived" gives "Derived".
func symbolizeVtable(fc *FindNameContext, addr uint64) (string, bool) {
	if fc == nil {
		return "", false
	}
	for _, mod := range searchModules(fc) {
		sym, ok := mod.Symbolize(addr)
		if ok && strings.HasPrefix(sym.Name, vtableSymbolPrefix) {
			return strings.TrimPrefix(sym.Name, vtableSymbolPrefix), true
		}
	}
	return "", false
}

// inheritsFrom reports whether c has a base class named baseName
// anywhere up its inheritance graph. Promotion only replaces the
// pointee with an actual subclass.
func inheritsFrom(fc *FindNameContext, c *symbol.Collection, baseName string, depth int) bool {
	if depth > maxInheritDepth {
		return false
	}
	for _, inh := range c.Inherits {
		b, ok := GetConcreteType(fc, inh.Base).(*symbol.Collection)
		if !ok {
			continue
		}
		if b.Name == baseName || inheritsFrom(fc, b, baseName, depth+1) {
			return true
		}
	}
	return false
}

// rebuildIndirection rebuilds the modifier chain of t around a new
// pointee: outer cv qualifiers, the pointer or reference itself, inner
// cv qualifiers, then newPointee. Typedefs in the chain are dropped
// since their names would no longer be true.
func rebuildIndirection(ctx EvalContext, t symbol.Type, newPointee symbol.Type) (symbol.Type, bool) {
	var outer, inner []symbol.ModifierKind

	cur := t
	var ind *symbol.ModifiedType
	for i := 0; i < maxTypeResolveSteps && ind == nil; i++ {
		m, ok := cur.(*symbol.ModifiedType)
		if !ok {
			return nil, false
		}
		if m.IsIndirection() {
			ind = m
			break
		}
		switch m.Kind {
		case symbol.KindConst, symbol.KindVolatile, symbol.KindRestrict:
			outer = append(outer, m.Kind)
		case symbol.KindTypedef:
		default:
			return nil, false
		}
		cur = m.Modified
	}
	if ind == nil {
		return nil, false
	}

	cur = ind.Modified
	for i := 0; i < maxTypeResolveSteps; i++ {
		m, ok := cur.(*symbol.ModifiedType)
		if !ok {
			break
		}
		switch m.Kind {
		case symbol.KindConst, symbol.KindVolatile, symbol.KindRestrict:
			inner = append(inner, m.Kind)
		case symbol.KindTypedef:
		default:
			return nil, false
		}
		cur = m.Modified
	}

	nt := newPointee
	for i := len(inner) - 1; i >= 0; i-- {
		nt = qualify(inner[i], nt)
	}
	size := ind.ByteSize
	if size <= 0 {
		size = int64(ctx.Arch().PointerSize)
	}
	nt = &symbol.ModifiedType{
		CommonType: symbol.CommonType{ByteSize: size},
		Kind:       ind.Kind,
		Modified:   nt,
	}
	for i := len(outer) - 1; i >= 0; i-- {
		nt = qualify(outer[i], nt)
	}
	return nt, true
}
