// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arch contains architecture-specific definitions.
package arch

import (
	"encoding/binary"
)

// Architecture defines the architecture-specific details for a given machine.
type Architecture struct {
	// Goarch is the GOARCH name of the architecture.
	Goarch string
	// IntSize is the size of the int type, in bytes.
	IntSize int
	// PointerSize is the size of a pointer, in bytes.
	PointerSize int
	// ByteOrder is the byte order for ints and pointers.
	ByteOrder binary.ByteOrder
	// Registers names every register of the architecture, including
	// partial views such as eax or w0.
	Registers []RegisterInfo

	regsByName map[string]RegisterInfo
}

func (a *Architecture) Int(buf []byte) int64 {
	return int64(a.Uint(buf))
}

func (a *Architecture) Uint(buf []byte) uint64 {
	if len(buf) != a.IntSize {
		panic("bad IntSize")
	}
	switch a.IntSize {
	case 4:
		return uint64(a.ByteOrder.Uint32(buf[:4]))
	case 8:
		return a.ByteOrder.Uint64(buf[:8])
	}
	panic("no IntSize")
}

func (a *Architecture) Int16(buf []byte) int16 {
	return int16(a.Uint16(buf))
}

func (a *Architecture) Int32(buf []byte) int32 {
	return int32(a.Uint32(buf))
}

func (a *Architecture) Int64(buf []byte) int64 {
	return int64(a.Uint64(buf))
}

func (a *Architecture) Uint16(buf []byte) uint16 {
	return a.ByteOrder.Uint16(buf)
}

func (a *Architecture) Uint32(buf []byte) uint32 {
	return a.ByteOrder.Uint32(buf)
}

func (a *Architecture) Uint64(buf []byte) uint64 {
	return a.ByteOrder.Uint64(buf)
}

// IntN decodes buf as a signed integer of len(buf) bytes.
func (a *Architecture) IntN(buf []byte) int64 {
	u := a.UintN(buf)
	return SignExtend(u, len(buf)*8)
}

// UintN decodes buf as an unsigned integer of len(buf) bytes.
func (a *Architecture) UintN(buf []byte) uint64 {
	u := uint64(0)
	if a.ByteOrder == binary.LittleEndian {
		shift := uint(0)
		for _, c := range buf {
			u |= uint64(c) << shift
			shift += 8
		}
	} else {
		for _, c := range buf {
			u <<= 8
			u |= uint64(c)
		}
	}
	return u
}

// PutUintN encodes x into buf, which determines the width.
func (a *Architecture) PutUintN(buf []byte, x uint64) {
	if a.ByteOrder == binary.LittleEndian {
		for i := range buf {
			buf[i] = byte(x)
			x >>= 8
		}
	} else {
		for i := len(buf) - 1; i >= 0; i-- {
			buf[i] = byte(x)
			x >>= 8
		}
	}
}

func (a *Architecture) Uintptr(buf []byte) uint64 {
	if len(buf) != a.PointerSize {
		panic("bad PointerSize")
	}
	switch a.PointerSize {
	case 4:
		return uint64(a.ByteOrder.Uint32(buf[:4]))
	case 8:
		return a.ByteOrder.Uint64(buf[:8])
	}
	panic("no PointerSize")
}

// SignExtend widens the low bits bits of u to a signed 64-bit value.
func SignExtend(u uint64, bits int) int64 {
	if bits <= 0 || bits >= 64 {
		return int64(u)
	}
	shift := uint(64 - bits)
	return int64(u<<shift) >> shift
}

// LookupRegister finds a register of the architecture by name. Names of
// other architectures are not found.
func (a *Architecture) LookupRegister(name string) (RegisterInfo, bool) {
	r, ok := a.regsByName[name]
	return r, ok
}

// ByGoarch returns the architecture for a GOARCH name.
func ByGoarch(goarch string) (*Architecture, bool) {
	switch goarch {
	case "amd64":
		return AMD64, true
	case "arm64":
		return ARM64, true
	}
	return nil, false
}

var AMD64 = &Architecture{
	Goarch:      "amd64",
	IntSize:     8,
	PointerSize: 8,
	ByteOrder:   binary.LittleEndian,
	Registers:   amd64Registers(),
}

var ARM64 = &Architecture{
	Goarch:      "arm64",
	IntSize:     8,
	PointerSize: 8,
	ByteOrder:   binary.LittleEndian,
	Registers:   arm64Registers(),
}

func init() {
	for _, a := range []*Architecture{AMD64, ARM64} {
		a.regsByName = make(map[string]RegisterInfo, len(a.Registers))
		for _, r := range a.Registers {
			a.regsByName[r.Name] = r
		}
	}
}
