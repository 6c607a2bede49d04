// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"fmt"

	"github.com/peekdbg/peek/arch"
	"github.com/peekdbg/peek/symbol"
)

// Bitfield layout follows the DWARF 2 convention: BitOffset counts from
// the most significant bit of a storage unit of StorageUnitSize bytes.
// On a little-endian target the low bit of the field, counted from bit
// zero of the unit, is therefore
//
//	unitBits - BitOffset - BitSize
//
// which may be negative or beyond the unit when the compiler allocated
// the field outside the declared unit; the byte window just extends
// accordingly.

// A bitfieldSpan is the byte window holding a bitfield. relByte is the
// window's first byte relative to the storage unit start, rounded down,
// so it can be negative. shift is the field's low bit within that first
// byte, always 0..7.
type bitfieldSpan struct {
	relByte int64
	shift   uint32
	bytes   int
}

func bitfieldWindow(m *symbol.DataMember) bitfieldSpan {
	unitBits := m.StorageUnitSize() * 8
	low := unitBits - m.BitOffset - int64(m.BitSize)
	relByte := floorDiv(low, 8)
	shift := uint32(low - relByte*8)
	return bitfieldSpan{
		relByte: relByte,
		shift:   shift,
		bytes:   int((int64(shift) + int64(m.BitSize) + 7) / 8),
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// bitfieldFromWindow assembles a bitfield value from its byte window.
// addr is the target address of the window's first byte, recorded so
// assignment can write the field back.
func bitfieldFromWindow(a *arch.Architecture, m *symbol.DataMember, window []byte, span bitfieldSpan, addr uint64) (Value, error) {
	if m.BitSize > 64 {
		return Value{}, fmt.Errorf("bitfield %q is wider than 64 bits", m.Name)
	}
	var raw uint64
	for i := uint32(0); i < m.BitSize; i++ {
		bit := int64(span.shift) + int64(i)
		byteIdx := bit / 8
		if byteIdx >= int64(len(window)) {
			return Value{}, fmt.Errorf("bitfield %q extends past its storage", m.Name)
		}
		if window[byteIdx]>>uint(bit%8)&1 != 0 {
			raw |= 1 << i
		}
	}
	if typeIsSigned(m.Type) {
		raw = uint64(arch.SignExtend(raw, int(m.BitSize)))
	}
	size := typeSizeOf(m.Type)
	if size <= 0 || size > 8 {
		return Value{}, fmt.Errorf("bitfield %q has unusable type size %d", m.Name, size)
	}
	b := make([]byte, size)
	a.PutUintN(b, raw)
	return Value{
		Type:  m.Type,
		Bytes: b,
		Source: ValueSource{
			Kind:     SourceMemory,
			Address:  addr,
			BitSize:  m.BitSize,
			BitShift: span.shift,
		},
	}, nil
}

// extractBitfield resolves a bitfield member from an already fetched
// collection value. fm.Offset must locate the member's storage unit
// within the value.
func extractBitfield(a *arch.Architecture, container Value, fm FoundMember) (Value, error) {
	m := fm.Member
	span := bitfieldWindow(m)
	start := int64(fm.Offset) + span.relByte
	if start < 0 || start+int64(span.bytes) > int64(len(container.Bytes)) {
		return Value{}, fmt.Errorf("bitfield %q extends outside the value", m.Name)
	}
	window := container.Bytes[start : start+int64(span.bytes)]

	v, err := bitfieldFromWindow(a, m, window, span, container.Source.Address+uint64(start))
	if err != nil {
		return Value{}, err
	}
	if container.Source.Kind != SourceMemory || container.Source.BitSize != 0 {
		// No byte-addressable home to write back to.
		v.Source = ValueSource{}
	}
	return v, nil
}

// writeBitfield stores the integer in newBytes into the bitfield
// described by src, read-modify-writing the window so the neighboring
// bits survive. If the read fails the write is skipped entirely.
func writeBitfield(ctx EvalContext, src ValueSource, newBytes []byte, cb func(error)) {
	done := guardedErr(ctx, cb)
	span := int((src.BitShift + src.BitSize + 7) / 8)
	prov := ctx.Provider()
	a := ctx.Arch()
	if len(newBytes) > 8 {
		newBytes = newBytes[:8]
	}
	prov.ReadMemory(src.Address, span, func(window []byte, err error) {
		if err != nil {
			done(err)
			return
		}
		raw := a.UintN(newBytes)
		for i := uint32(0); i < src.BitSize; i++ {
			bit := src.BitShift + i
			mask := byte(1) << (bit % 8)
			if raw>>i&1 != 0 {
				window[bit/8] |= mask
			} else {
				window[bit/8] &^= mask
			}
		}
		prov.WriteMemory(src.Address, window, func(err error) {
			done(err)
		})
	})
}
