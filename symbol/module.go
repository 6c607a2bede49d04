// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symbol

import "sort"

// An ElfSymbol is one entry of a module's ELF symbol table. Addresses are
// load addresses, not file offsets.
type ElfSymbol struct {
	Name string
	Addr uint64
	Size uint64
}

// A Module is one binary (the executable or a shared library) loaded into
// the target.
type Module struct {
	Name    string
	Index   *Index
	Symbols []ElfSymbol // sorted by Addr; see SortSymbols
}

// SortSymbols orders the symbol table by address. Symbolize requires it.
func (m *Module) SortSymbols() {
	sort.Slice(m.Symbols, func(i, j int) bool {
		return m.Symbols[i].Addr < m.Symbols[j].Addr
	})
}

// Symbolize maps an address to the ELF symbol containing it. A symbol with
// zero Size matches only its exact address.
func (m *Module) Symbolize(addr uint64) (ElfSymbol, bool) {
	syms := m.Symbols
	// First symbol above addr, then step back one.
	i := sort.Search(len(syms), func(i int) bool { return syms[i].Addr > addr })
	if i == 0 {
		return ElfSymbol{}, false
	}
	s := syms[i-1]
	if s.Addr == addr || addr < s.Addr+s.Size {
		return s, true
	}
	return ElfSymbol{}, false
}
