// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symbol

import "testing"

func TestIndexLookup(t *testing.T) {
	x := NewIndex()
	ty := &Collection{CommonType: CommonType{8, "ns::Thing"}, Kind: Struct}
	x.AddType("ns::Thing", ty)
	x.AddNamespace("ns")
	v := &Variable{Name: "count", Type: intType()}
	x.AddVariable("ns::count", v)

	es := x.Lookup("ns::Thing")
	if len(es) != 1 || es[0].Kind != EntryType || es[0].Type != ty {
		t.Fatalf("Lookup(ns::Thing) = %+v, want the type entry", es)
	}
	if es := x.Lookup("ns::missing"); es != nil {
		t.Errorf("Lookup(ns::missing) = %+v, want nil", es)
	}
	if es := x.Lookup("ns"); len(es) != 1 || es[0].Kind != EntryNamespace {
		t.Errorf("Lookup(ns) = %+v, want a namespace entry", es)
	}
}

func TestIndexTemplates(t *testing.T) {
	x := NewIndex()
	x.AddType("std::vector<int>", &Collection{CommonType: CommonType{24, "std::vector<int>"}, Kind: Class})
	if !x.HasTemplate("std::vector") {
		t.Error("HasTemplate(std::vector) = false")
	}
	if !x.HasTemplate("vector") {
		t.Error("HasTemplate(vector) = false")
	}
	if x.HasTemplate("int") {
		t.Error("HasTemplate(int) = true")
	}
}

func TestSymbolize(t *testing.T) {
	m := &Module{
		Name: "a.out",
		Symbols: []ElfSymbol{
			{"main", 0x1000, 0x40},
			{"vtable for DerivedClass", 0x2000, 0x30},
			{"_edata", 0x3000, 0},
		},
	}
	m.SortSymbols()

	tests := []struct {
		addr uint64
		want string
		ok   bool
	}{
		{0x1000, "main", true},
		{0x103F, "main", true},
		{0x1040, "", false},
		{0x2010, "vtable for DerivedClass", true},
		{0x3000, "_edata", true},
		{0x3001, "", false},
		{0x500, "", false},
	}
	for _, tt := range tests {
		s, ok := m.Symbolize(tt.addr)
		if ok != tt.ok || (ok && s.Name != tt.want) {
			t.Errorf("Symbolize(%#x) = %q, %v; want %q, %v", tt.addr, s.Name, ok, tt.want, tt.ok)
		}
	}
}

func TestBlocksAndLocations(t *testing.T) {
	inner := &CodeBlock{Ranges: [][2]uint64{{0x10, 0x20}}}
	outer := &CodeBlock{Blocks: []*CodeBlock{inner}}
	inner.Parent = outer

	if got := outer.InnermostAt(0x15); got != inner {
		t.Errorf("InnermostAt(0x15) = %p, want inner block", got)
	}
	if got := outer.InnermostAt(0x25); got != outer {
		t.Errorf("InnermostAt(0x25) = %p, want outer block", got)
	}

	v := &Variable{
		Name: "x",
		Type: intType(),
		Locations: []Location{
			{Begin: 0x10, End: 0x20, Kind: LocAddress, Address: 0x8000},
		},
	}
	if _, ok := v.LocationAt(0x25); ok {
		t.Error("LocationAt(0x25) found a location")
	}
	l, ok := v.LocationAt(0x10)
	if !ok || l.Address != 0x8000 {
		t.Errorf("LocationAt(0x10) = %+v, %v", l, ok)
	}
	everywhere := &Variable{Name: "g", Locations: []Location{{Kind: LocAddress, Address: 0x9000}}}
	if _, ok := everywhere.LocationAt(0xFFFF); !ok {
		t.Error("unbounded location did not cover 0xFFFF")
	}
}

func TestNamespacePath(t *testing.T) {
	outer := &Namespace{Name: "ns"}
	inner := &Namespace{Name: "detail", Parent: outer}
	if got := inner.FullName(); got != "ns::detail" {
		t.Errorf("FullName = %q, want ns::detail", got)
	}
	f := &Function{Name: "run", Namespace: inner}
	if got := f.FullName(); got != "ns::detail::run" {
		t.Errorf("Function.FullName = %q", got)
	}
}
