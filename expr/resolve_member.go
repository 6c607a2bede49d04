// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"errors"
	"fmt"

	"github.com/peekdbg/peek/symbol"
)

var errVirtualBase = errors.New("cannot resolve members through virtual inheritance")

const maxInheritDepth = 32

// FindMember searches a collection and its base classes depth first
// for a data member. Anonymous struct and union members are looked
// through. fc resolves declaration-only base types and may be nil.
func FindMember(fc *FindNameContext, coll *symbol.Collection, name string) (FoundMember, bool) {
	return findMemberIn(fc, coll, name, nil, 0, true, 0)
}

func findMemberIn(fc *FindNameContext, coll *symbol.Collection, name string, path []*symbol.InheritedFrom, offset uint64, offsetValid bool, depth int) (FoundMember, bool) {
	if depth > maxInheritDepth {
		return FoundMember{}, false
	}
	for _, m := range coll.Members {
		if m.Name == name {
			return FoundMember{
				Member:      m,
				Path:        append([]*symbol.InheritedFrom(nil), path...),
				Offset:      offset + m.ByteOffset,
				OffsetValid: offsetValid,
			}, true
		}
	}
	// Anonymous members are transparent in C and C++.
	for _, m := range coll.Members {
		if m.Name != "" {
			continue
		}
		inner, ok := GetConcreteType(fc, m.Type).(*symbol.Collection)
		if !ok {
			continue
		}
		if fm, ok := findMemberIn(fc, inner, name, path, offset+m.ByteOffset, offsetValid, depth+1); ok {
			return fm, true
		}
	}
	for _, inh := range coll.Inherits {
		base, ok := GetConcreteType(fc, inh.Base).(*symbol.Collection)
		if !ok {
			continue
		}
		valid := offsetValid && !inh.Virtual
		np := append(append([]*symbol.InheritedFrom(nil), path...), inh)
		if fm, ok := findMemberIn(fc, base, name, np, offset+inh.Offset, valid, depth+1); ok {
			return fm, true
		}
	}
	return FoundMember{}, false
}

// ResolveMember extracts a member's value from an already fetched
// collection value. The member value remembers where it came from, so
// it can be assigned to when the container was in memory.
func ResolveMember(ctx EvalContext, base Value, fm FoundMember) (Value, error) {
	m := fm.Member
	if m == nil {
		return Value{}, errors.New("no member to resolve")
	}
	if !fm.OffsetValid {
		return Value{}, errVirtualBase
	}
	if m.IsBitfield() {
		return extractBitfield(ctx.Arch(), base, fm)
	}
	size := typeSizeOf(m.Type)
	if size <= 0 {
		return Value{}, fmt.Errorf("member %q has no size", m.Name)
	}
	off := int64(fm.Offset)
	if off+size > int64(len(base.Bytes)) {
		return Value{}, fmt.Errorf("member %q extends past the end of the value", m.Name)
	}
	return Value{
		Type:   m.Type,
		Bytes:  append([]byte(nil), base.Bytes[off:off+size]...),
		Source: memberSource(base.Source, off, size),
	}, nil
}

// memberSource derives the storage of a member from its container's:
// memory advances the address, a register advances the bit shift, and
// everything else is a temporary.
func memberSource(src ValueSource, off, size int64) ValueSource {
	switch src.Kind {
	case SourceMemory:
		if src.BitSize != 0 {
			return ValueSource{}
		}
		return MemorySource(src.Address + uint64(off))
	case SourceRegister:
		return ValueSource{
			Kind:     SourceRegister,
			Register: src.Register,
			BitSize:  uint32(size * 8),
			BitShift: src.BitShift + uint32(off*8),
		}
	}
	return ValueSource{}
}

// ResolveMemberByPointer fetches ptr->member without reading the whole
// pointed-at collection: one asynchronous read of just the member's
// bytes (or the bitfield's byte window).
func ResolveMemberByPointer(ctx EvalContext, ptr Value, fm FoundMember, cb ValueCallback) {
	cb = guarded(ctx, cb)
	m := fm.Member
	if m == nil {
		cb(Value{}, errors.New("no member to resolve"))
		return
	}
	if !fm.OffsetValid {
		cb(Value{}, errVirtualBase)
		return
	}
	concrete := GetConcreteType(ctx.FindContext(), ptr.Type)
	mod, ok := concrete.(*symbol.ModifiedType)
	if !ok || !mod.IsIndirection() {
		cb(Value{}, fmt.Errorf("cannot resolve a member through non-pointer type %q", typeName(ptr.Type)))
		return
	}
	addr, ok := ptr.Uint(ctx.Arch())
	if !ok {
		cb(Value{}, errors.New("bad pointer value"))
		return
	}
	if addr == 0 {
		cb(Value{}, errors.New("dereferencing a null pointer"))
		return
	}

	if m.IsBitfield() {
		span := bitfieldWindow(m)
		readAddr := uint64(int64(addr) + int64(fm.Offset) + span.relByte)
		ctx.Provider().ReadMemory(readAddr, span.bytes, func(window []byte, err error) {
			if err != nil {
				cb(Value{}, err)
				return
			}
			v, err := bitfieldFromWindow(ctx.Arch(), m, window, span, readAddr)
			cb(v, err)
		})
		return
	}

	size := typeSizeOf(m.Type)
	if size <= 0 {
		cb(Value{}, fmt.Errorf("member %q has no size", m.Name))
		return
	}
	maddr := addr + fm.Offset
	ctx.Provider().ReadMemory(maddr, int(size), func(data []byte, err error) {
		if err != nil {
			cb(Value{}, err)
			return
		}
		cb(Value{Type: m.Type, Bytes: data, Source: MemorySource(maddr)}, nil)
	})
}

func typeName(t symbol.Type) string {
	if t == nil {
		return "void"
	}
	return t.String()
}
