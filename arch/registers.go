// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arch

import "fmt"

// A RegisterID names a canonical register. Partial register names (eax, ax,
// al) map to the ID of the containing register.
type RegisterID uint16

const RegNone RegisterID = 0

// AMD64 registers.
const (
	AMD64Rax RegisterID = 0x100 + iota
	AMD64Rbx
	AMD64Rcx
	AMD64Rdx
	AMD64Rsi
	AMD64Rdi
	AMD64Rbp
	AMD64Rsp
	AMD64R8
	AMD64R9
	AMD64R10
	AMD64R11
	AMD64R12
	AMD64R13
	AMD64R14
	AMD64R15
	AMD64Rip
	AMD64Rflags
)

// ARM64 registers. X1 through X30 follow X0.
const (
	ARM64X0 RegisterID = 0x200 + iota
)

const (
	ARM64Sp RegisterID = 0x200 + 31 + iota
	ARM64Pc
)

// RegisterInfo describes one register name. A name may be a view of part of
// a canonical register; Shift and Bits select the viewed range, and
// Bits != Full marks the name as partial.
type RegisterInfo struct {
	ID    RegisterID // canonical register holding the value
	Name  string
	Bits  int // width of this view, in bits
	Shift int // bit offset of this view within the canonical register
	Full  int // width of the canonical register, in bits
}

// Partial reports whether the name covers only part of its canonical
// register.
func (r RegisterInfo) Partial() bool {
	return r.Bits != r.Full || r.Shift != 0
}

func amd64Registers() []RegisterInfo {
	gp := []struct {
		id   RegisterID
		name string
		// 32-, 16-, low-8- and high-8-bit views; empty names are skipped.
		e, x, l, h string
	}{
		{AMD64Rax, "rax", "eax", "ax", "al", "ah"},
		{AMD64Rbx, "rbx", "ebx", "bx", "bl", "bh"},
		{AMD64Rcx, "rcx", "ecx", "cx", "cl", "ch"},
		{AMD64Rdx, "rdx", "edx", "dx", "dl", "dh"},
		{AMD64Rsi, "rsi", "esi", "si", "sil", ""},
		{AMD64Rdi, "rdi", "edi", "di", "dil", ""},
		{AMD64Rbp, "rbp", "ebp", "bp", "bpl", ""},
		{AMD64Rsp, "rsp", "esp", "sp", "spl", ""},
	}
	var regs []RegisterInfo
	for _, r := range gp {
		regs = append(regs, RegisterInfo{r.id, r.name, 64, 0, 64})
		regs = append(regs, RegisterInfo{r.id, r.e, 32, 0, 64})
		regs = append(regs, RegisterInfo{r.id, r.x, 16, 0, 64})
		regs = append(regs, RegisterInfo{r.id, r.l, 8, 0, 64})
		if r.h != "" {
			regs = append(regs, RegisterInfo{r.id, r.h, 8, 8, 64})
		}
	}
	for i := 0; i < 8; i++ {
		id := AMD64R8 + RegisterID(i)
		n := 8 + i
		regs = append(regs,
			RegisterInfo{id, fmt.Sprintf("r%d", n), 64, 0, 64},
			RegisterInfo{id, fmt.Sprintf("r%dd", n), 32, 0, 64},
			RegisterInfo{id, fmt.Sprintf("r%dw", n), 16, 0, 64},
			RegisterInfo{id, fmt.Sprintf("r%db", n), 8, 0, 64})
	}
	regs = append(regs,
		RegisterInfo{AMD64Rip, "rip", 64, 0, 64},
		RegisterInfo{AMD64Rflags, "rflags", 64, 0, 64},
		RegisterInfo{AMD64Rflags, "eflags", 32, 0, 64})
	return regs
}

func arm64Registers() []RegisterInfo {
	var regs []RegisterInfo
	for i := 0; i <= 30; i++ {
		id := ARM64X0 + RegisterID(i)
		regs = append(regs,
			RegisterInfo{id, fmt.Sprintf("x%d", i), 64, 0, 64},
			RegisterInfo{id, fmt.Sprintf("w%d", i), 32, 0, 64})
	}
	regs = append(regs,
		RegisterInfo{ARM64X0 + 29, "fp", 64, 0, 64},
		RegisterInfo{ARM64X0 + 30, "lr", 64, 0, 64},
		RegisterInfo{ARM64Sp, "sp", 64, 0, 64},
		RegisterInfo{ARM64Pc, "pc", 64, 0, 64})
	return regs
}
