// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/peekdbg/peek/arch"
	"github.com/peekdbg/peek/expr"
	"github.com/peekdbg/peek/symbol"
	"github.com/peekdbg/peek/target"
)

var cmdDemo = &cobra.Command{
	Use:   "demo [expr...]",
	Short: "explore the built-in demo target",
	Long: `Demo evaluates expressions against an in-memory process image: a
small game world with typed globals, registers and a vtable, frozen at
a breakpoint. With arguments the expressions are evaluated and printed;
without, a REPL starts.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newDemoSession()
		defer s.Close()
		if len(args) > 0 {
			return s.evalAll(args)
		}
		demoBanner()
		return s.repl()
	},
}

// demoPC is the address the demo pretends to be stopped at.
const demoPC = 0x1000

func newDemoSession() *session {
	loop := target.NewLoop()
	p := target.NewMockProvider(loop, arch.AMD64)
	mod := demoModule(p)
	fc := &expr.FindNameContext{Module: mod, Modules: []*symbol.Module{mod}}
	return newSession(loop, p, fc, demoPC, nil)
}

func demoType(name string, size int64, enc symbol.BaseEncoding) *symbol.BaseType {
	return &symbol.BaseType{CommonType: symbol.CommonType{Name: name, ByteSize: size}, Encoding: enc}
}

func demoPointer(t symbol.Type) *symbol.ModifiedType {
	return &symbol.ModifiedType{CommonType: symbol.CommonType{ByteSize: 8}, Kind: symbol.KindPointer, Modified: t}
}

func demoGlobal(name string, t symbol.Type, addr uint64) *symbol.Variable {
	return &symbol.Variable{
		Name:      name,
		Type:      t,
		Locations: []symbol.Location{{Kind: symbol.LocAddress, Address: addr}},
	}
}

// plant stores a little-endian value of the given byte size at addr.
func plant(p *target.MockProvider, addr uint64, size int, value uint64) {
	b := make([]byte, size)
	p.Arch().PutUintN(b, value)
	p.AddMemory(addr, b)
}

func plantRegister(p *target.MockProvider, name string, value uint64) {
	info, _ := p.Arch().LookupRegister(name)
	b := make([]byte, info.Full/8)
	p.Arch().PutUintN(b, value)
	p.AddRegister(info.ID, b)
}

// demoModule builds the demo world: types and globals in the index,
// their backing bytes and registers in the provider, and ELF symbols
// for the vtables and a PLT entry.
func demoModule(p *target.MockProvider) *symbol.Module {
	intT := demoType("int", 4, symbol.EncodingSigned)
	uintT := demoType("unsigned int", 4, symbol.EncodingUnsigned)
	doubleT := demoType("double", 8, symbol.EncodingFloat)
	charT := demoType("char", 1, symbol.EncodingSignedChar)

	point := &symbol.Collection{
		CommonType: symbol.CommonType{Name: "Point", ByteSize: 8},
		Members: []*symbol.DataMember{
			{Name: "x", Type: intT, ByteOffset: 0},
			{Name: "y", Type: intT, ByteOffset: 4},
		},
	}
	colorT := &symbol.Enumeration{
		CommonType: symbol.CommonType{Name: "Color", ByteSize: 4},
		Underlying: uintT,
		Values: []symbol.EnumValue{
			{Name: "kRed", Value: 0},
			{Name: "kGreen", Value: 1},
			{Name: "kBlue", Value: 2},
		},
	}
	entity := &symbol.Collection{
		CommonType: symbol.CommonType{Name: "Entity", ByteSize: 16},
		Kind:       symbol.Class,
		Members: []*symbol.DataMember{
			{Name: "_vptr$Entity", Type: demoPointer(nil), ByteOffset: 0, Artificial: true},
			{Name: "id", Type: intT, ByteOffset: 8},
			{Name: "hp", Type: intT, ByteOffset: 12},
		},
	}
	boss := &symbol.Collection{
		CommonType: symbol.CommonType{Name: "Boss", ByteSize: 24},
		Kind:       symbol.Class,
		Members:    []*symbol.DataMember{{Name: "phase", Type: intT, ByteOffset: 16}},
		Inherits:   []*symbol.InheritedFrom{{Base: entity, Offset: 0}},
	}
	flags := &symbol.Collection{
		CommonType: symbol.CommonType{Name: "Flags", ByteSize: 1},
		Members: []*symbol.DataMember{
			{Name: "ready", Type: uintT, ByteSize: 1, BitSize: 1, BitOffset: 7},
			{Name: "level", Type: uintT, ByteSize: 1, BitSize: 3, BitOffset: 3},
		},
	}
	levelsT := &symbol.ArrayType{CommonType: symbol.CommonType{ByteSize: 16}, Elem: intT, Count: 4}
	nameT := &symbol.ArrayType{CommonType: symbol.CommonType{ByteSize: 6}, Elem: charT, Count: 6}
	refT := &symbol.ModifiedType{CommonType: symbol.CommonType{ByteSize: 8}, Kind: symbol.KindReference, Modified: intT}

	idx := symbol.NewIndex()
	idx.AddType("Point", point)
	idx.AddType("Color", colorT)
	idx.AddType("Entity", entity)
	idx.AddType("Boss", boss)
	idx.AddType("Flags", flags)
	idx.AddNamespace("game")
	idx.AddFunction("spawn", &symbol.Function{Name: "spawn", Ranges: [][2]uint64{{0x1100, 0x1180}}})

	globals := []*symbol.Variable{
		demoGlobal("g_score", intT, 0x2000),
		demoGlobal("g_speed", doubleT, 0x2008),
		demoGlobal("g_levels", levelsT, 0x2010),
		demoGlobal("g_origin", point, 0x2020),
		demoGlobal("g_pscore", demoPointer(intT), 0x2030),
		demoGlobal("g_flags", flags, 0x2038),
		demoGlobal("g_color", colorT, 0x203c),
		demoGlobal("g_boss", demoPointer(entity), 0x2040),
		demoGlobal("g_name", nameT, 0x2050),
		demoGlobal("g_rscore", refT, 0x2058),
		demoGlobal("game::lives", intT, 0x2060),
	}
	for _, v := range globals {
		idx.AddVariable(v.Name, v)
	}

	// Composite values live in single blocks so that whole-object reads
	// land inside one mapping.
	a := p.Arch()
	put := func(b []byte, off, size int, v uint64) {
		a.PutUintN(b[off:off+size], v)
	}

	plant(p, 0x2000, 4, 42)                       // g_score
	plant(p, 0x2008, 8, math.Float64bits(0.5))    // g_speed
	levels := make([]byte, 16)                    // g_levels
	for i, lvl := range []uint64{10, 20, 30, 40} {
		put(levels, 4*i, 4, lvl)
	}
	p.AddMemory(0x2010, levels)
	origin := make([]byte, 8) // g_origin
	put(origin, 0, 4, 3)
	put(origin, 4, 4, 4)
	p.AddMemory(0x2020, origin)
	plant(p, 0x2030, 8, 0x2000)
	plant(p, 0x2038, 1, 0x1d) // g_flags: ready=1, level=7
	plant(p, 0x203c, 4, 1)    // g_color = kGreen
	plant(p, 0x2040, 8, 0x3000)
	p.AddMemory(0x2050, []byte("hello\x00"))
	plant(p, 0x2058, 8, 0x2000)
	plant(p, 0x2060, 4, 3)

	// The object g_boss points at. Its vtable slot lands inside
	// "vtable for Boss", so the pointer promotes.
	bossObj := make([]byte, 24)
	put(bossObj, 0, 8, 0x10048)
	put(bossObj, 8, 4, 7)    // id
	put(bossObj, 12, 4, 250) // hp
	put(bossObj, 16, 4, 2)   // phase
	p.AddMemory(0x3000, bossObj)

	plantRegister(p, "rax", 42)
	plantRegister(p, "rbx", 0x2000)
	plantRegister(p, "rip", demoPC)

	mod := &symbol.Module{
		Name:  "demo",
		Index: idx,
		Symbols: []symbol.ElfSymbol{
			{Name: "vtable for Entity", Addr: 0x10000, Size: 0x40},
			{Name: "vtable for Boss", Addr: 0x10040, Size: 0x40},
			{Name: "malloc@plt", Addr: 0x1200, Size: 0x10},
		},
	}
	mod.SortSymbols()
	return mod
}

func demoBanner() {
	fmt.Print(`Demo target loaded: a little game world frozen at a breakpoint.

Globals: g_score, g_speed, g_levels[4], g_origin, g_pscore, g_flags,
g_color, g_boss, g_name, g_rscore, game::lives. Registers: rax, rbx, rip.

Things to try:
  g_score * 2
  g_levels[2] + 1
  g_origin.y
  g_boss               (its vtable proves it is really a Boss)
  g_boss->hp
  g_flags.level
  (Color)2
  $reg(rax) == g_score
  g_score = 100
  { auto t = 0; for (auto i = 0; i < 4; i = i + 1) t = t + g_levels[i]; t }

Type help for REPL commands.
`)
}
