// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"testing"

	"github.com/peekdbg/peek/arch"
	"github.com/peekdbg/peek/symbol"
	"github.com/peekdbg/peek/target"
)

// classFixture indexes BaseClass, DerivedClass and the standalone Lone,
// with ELF vtable symbols for all three. DerivedClass embeds BaseClass
// at offset 4; the vtable pointer lives at offset 0 of BaseClass, so a
// BaseClass* aimed at the embedded subobject reads the derived vtable.
func classFixture() (*FindNameContext, *symbol.Collection, *symbol.Collection) {
	intT := cBuiltinType([]string{"int"})
	ulongT := cBuiltinType([]string{"unsigned", "long"})
	base := &symbol.Collection{
		CommonType: symbol.CommonType{Name: "BaseClass", ByteSize: 16},
		Kind:       symbol.Class,
		Members: []*symbol.DataMember{
			{Name: "_vptr$BaseClass", Type: ulongT, ByteOffset: 0, Artificial: true},
			{Name: "b", Type: intT, ByteOffset: 8},
		},
	}
	derived := &symbol.Collection{
		CommonType: symbol.CommonType{Name: "DerivedClass", ByteSize: 24},
		Kind:       symbol.Class,
		Members:    []*symbol.DataMember{{Name: "d", Type: intT, ByteOffset: 20}},
		Inherits:   []*symbol.InheritedFrom{{Base: base, Offset: 4}},
	}
	lone := &symbol.Collection{
		CommonType: symbol.CommonType{Name: "Lone", ByteSize: 8},
		Kind:       symbol.Class,
	}

	idx := symbol.NewIndex()
	idx.AddType("BaseClass", base)
	idx.AddType("DerivedClass", derived)
	idx.AddType("Lone", lone)
	mod := &symbol.Module{
		Name:  "app",
		Index: idx,
		Symbols: []symbol.ElfSymbol{
			{Name: "vtable for DerivedClass", Addr: 0x10040, Size: 0x40},
			{Name: "vtable for BaseClass", Addr: 0x10000, Size: 0x40},
			{Name: "vtable for Lone", Addr: 0x10080, Size: 0x40},
			{Name: "poll", Addr: 0x10100, Size: 0x20},
		},
	}
	mod.SortSymbols()
	fc := &FindNameContext{Module: mod, Modules: []*symbol.Module{mod}}
	return fc, base, derived
}

func promoteContext(t *testing.T) (*FrameContext, *target.MockProvider, *target.Loop, *symbol.Collection) {
	t.Helper()
	fc, base, _ := classFixture()
	loop := target.NewLoop()
	p := target.NewMockProvider(loop, arch.AMD64)
	ctx := NewFrameContext(LanguageC, p, loop, fc, 0x1000)
	return ctx, p, loop, base
}

// addObject maps an object at addr whose vtable slot holds vtbl.
func addObject(ctx *FrameContext, p *target.MockProvider, addr, vtbl uint64) {
	slot := make([]byte, 8)
	ctx.Arch().PutUintN(slot, vtbl)
	p.AddMemory(addr, slot)
}

func pointerTo(t symbol.Type) *symbol.ModifiedType {
	return &symbol.ModifiedType{
		CommonType: symbol.CommonType{ByteSize: 8},
		Kind:       symbol.KindPointer,
		Modified:   t,
	}
}

func TestPromotePointerToDerived(t *testing.T) {
	ctx, p, loop, base := promoteContext(t)
	// 0x10050 is inside DerivedClass's vtable.
	addObject(ctx, p, 0x7e00, 0x10050)

	typ := qualify(symbol.KindConst, pointerTo(qualify(symbol.KindConst, base)))
	v := makeUintValue(ctx.Arch(), typ, 0x7e00)
	v.Source = MemorySource(0x4000)

	var got Value
	done := false
	PromotePointerToDerived(ctx, v, func(out Value, err error) {
		if err != nil {
			t.Error(err)
		}
		got = out
		done = true
	})
	if done {
		t.Fatal("promotion completed synchronously")
	}
	loop.Drain()
	if !done {
		t.Fatal("promotion callback never ran")
	}

	// The qualifiers survive around the new pointee.
	if s := got.Type.String(); s != "const DerivedClass* const" {
		t.Errorf("promoted type = %q, want \"const DerivedClass* const\"", s)
	}
	if u, _ := got.Uint(ctx.Arch()); u != 0x7e00 {
		t.Errorf("promoted address = %#x, want unchanged 0x7e00", u)
	}
	if got.Source != v.Source {
		t.Errorf("promoted source = %+v, want unchanged", got.Source)
	}
}

func TestPromoteReference(t *testing.T) {
	ctx, p, loop, base := promoteContext(t)
	addObject(ctx, p, 0x7e40, 0x10050)

	ref := &symbol.ModifiedType{
		CommonType: symbol.CommonType{ByteSize: 8},
		Kind:       symbol.KindReference,
		Modified:   base,
	}
	v := makeUintValue(ctx.Arch(), ref, 0x7e40)

	var got Value
	PromotePointerToDerived(ctx, v, func(out Value, err error) { got = out })
	loop.Drain()
	if s := got.Type.String(); s != "DerivedClass&" {
		t.Errorf("promoted type = %q, want \"DerivedClass&\"", s)
	}
}

func TestPromoteKeepsOriginal(t *testing.T) {
	ctx, p, loop, base := promoteContext(t)
	// One object per scenario, distinguished by what its vtable slot
	// points at.
	addObject(ctx, p, 0x7f00, 0x10010) // BaseClass's own vtable
	addObject(ctx, p, 0x7f40, 0x10090) // Lone's vtable; not a subclass
	addObject(ctx, p, 0x7f80, 0x10110) // a non-vtable symbol
	addObject(ctx, p, 0x7fc0, 0x20000) // outside every symbol

	typ := pointerTo(base)
	objects := []struct {
		name string
		addr uint64
	}{
		{"same class", 0x7f00},
		{"unrelated class", 0x7f40},
		{"non-vtable symbol", 0x7f80},
		{"unsymbolized", 0x7fc0},
		{"unreadable object", 0x9000},
	}
	for _, obj := range objects {
		v := makeUintValue(ctx.Arch(), typ, obj.addr)
		var got Value
		PromotePointerToDerived(ctx, v, func(out Value, err error) { got = out })
		loop.Drain()
		if got.Type != symbol.Type(typ) {
			t.Errorf("%s: type changed to %v", obj.name, got.Type)
		}
	}

	// Null pointers and non-pointers pass through synchronously.
	null := makeUintValue(ctx.Arch(), typ, 0)
	var got Value
	done := false
	PromotePointerToDerived(ctx, null, func(out Value, err error) { got = out; done = true })
	if !done || got.Type != symbol.Type(typ) {
		t.Errorf("null pointer: done=%v type=%v", done, got.Type)
	}

	intV := makeUintValue(ctx.Arch(), cBuiltinType([]string{"int"}), 3)
	done = false
	PromotePointerToDerived(ctx, intV, func(out Value, err error) { got = out; done = true })
	if !done || got.Type != intV.Type {
		t.Errorf("non-pointer: done=%v type=%v", done, got.Type)
	}
}
