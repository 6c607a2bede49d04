// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"github.com/peekdbg/peek/arch"
	"github.com/peekdbg/peek/symbol"
)

// A ValueSourceKind says where a Value's bytes came from, which is what
// assignment needs to put new bytes back.
type ValueSourceKind int

const (
	// SourceTemporary values are computation results with no storage.
	SourceTemporary ValueSourceKind = iota
	SourceMemory
	SourceRegister
)

func (k ValueSourceKind) String() string {
	switch k {
	case SourceMemory:
		return "memory"
	case SourceRegister:
		return "register"
	}
	return "temporary"
}

// A ValueSource locates a Value in the target. For bitfields and
// partial registers, BitSize is nonzero and the value occupies BitSize
// bits starting BitShift bits above bit zero of the byte at Address (or
// of the register).
type ValueSource struct {
	Kind     ValueSourceKind
	Address  uint64
	Register arch.RegisterID
	BitSize  uint32
	BitShift uint32
}

// MemorySource locates a plain in-memory value.
func MemorySource(addr uint64) ValueSource {
	return ValueSource{Kind: SourceMemory, Address: addr}
}

// A Value is the result of evaluating an expression: a type, the raw
// bytes in target byte order, and where those bytes live. A nil Type
// means void.
type Value struct {
	Type   symbol.Type
	Bytes  []byte
	Source ValueSource
}

func (v Value) IsVoid() bool { return v.Type == nil }

// Uint decodes the value's bytes as an unsigned integer. It fails for
// empty values and values wider than 8 bytes.
func (v Value) Uint(a *arch.Architecture) (uint64, bool) {
	if len(v.Bytes) == 0 || len(v.Bytes) > 8 {
		return 0, false
	}
	return a.UintN(v.Bytes), true
}

// Int decodes the value's bytes as a signed integer.
func (v Value) Int(a *arch.Architecture) (int64, bool) {
	if len(v.Bytes) == 0 || len(v.Bytes) > 8 {
		return 0, false
	}
	return a.IntN(v.Bytes), true
}

// makeUintValue builds a temporary of type t holding x, truncated to
// the type's size.
func makeUintValue(a *arch.Architecture, t symbol.Type, x uint64) Value {
	size := typeSizeOf(t)
	if size <= 0 || size > 8 {
		size = 8
	}
	b := make([]byte, size)
	a.PutUintN(b, x)
	return Value{Type: t, Bytes: b}
}

func typeSizeOf(t symbol.Type) int64 {
	if t == nil {
		return 0
	}
	return t.Size()
}
