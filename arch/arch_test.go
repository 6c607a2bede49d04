// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arch

import "testing"

func TestUintNRoundTrip(t *testing.T) {
	for _, want := range []uint64{0, 1, 0x80, 0xFFFF, 0x1234567890ABCDEF} {
		for _, size := range []int{1, 2, 4, 8} {
			buf := make([]byte, size)
			AMD64.PutUintN(buf, want)
			got := AMD64.UintN(buf)
			mask := ^uint64(0)
			if size < 8 {
				mask = 1<<uint(size*8) - 1
			}
			if got != want&mask {
				t.Errorf("UintN(PutUintN(%#x), size %d) = %#x, want %#x", want, size, got, want&mask)
			}
		}
	}
}

func TestIntN(t *testing.T) {
	tests := []struct {
		buf  []byte
		want int64
	}{
		{[]byte{0xFF}, -1},
		{[]byte{0x7F}, 127},
		{[]byte{0x80}, -128},
		{[]byte{0x00, 0x80}, -32768},
		{[]byte{0xFE, 0xFF, 0xFF, 0xFF}, -2},
	}
	for _, tt := range tests {
		if got := AMD64.IntN(tt.buf); got != tt.want {
			t.Errorf("IntN(% x) = %d, want %d", tt.buf, got, tt.want)
		}
	}
}

func TestSignExtend(t *testing.T) {
	tests := []struct {
		u    uint64
		bits int
		want int64
	}{
		{0b111, 3, -1},
		{0b011, 3, 3},
		{0, 3, 0},
		{0x80, 8, -128},
		{0xFF, 9, 0xFF},
	}
	for _, tt := range tests {
		if got := SignExtend(tt.u, tt.bits); got != tt.want {
			t.Errorf("SignExtend(%#b, %d) = %d, want %d", tt.u, tt.bits, got, tt.want)
		}
	}
}

func TestLookupRegister(t *testing.T) {
	r, ok := AMD64.LookupRegister("eax")
	if !ok {
		t.Fatal("eax not found on amd64")
	}
	if r.ID != AMD64Rax || r.Bits != 32 || r.Shift != 0 || !r.Partial() {
		t.Errorf("eax = %+v, want ID rax, 32 bits at shift 0", r)
	}
	r, ok = AMD64.LookupRegister("ah")
	if !ok || r.ID != AMD64Rax || r.Bits != 8 || r.Shift != 8 {
		t.Errorf("ah = %+v, %v; want 8 bits of rax at shift 8", r, ok)
	}
	if _, ok := ARM64.LookupRegister("rax"); ok {
		t.Error("rax found on arm64")
	}
	r, ok = ARM64.LookupRegister("w3")
	if !ok || r.ID != ARM64X0+3 || r.Bits != 32 {
		t.Errorf("w3 = %+v, %v; want low 32 bits of x3", r, ok)
	}
	if r, ok := ARM64.LookupRegister("lr"); !ok || r.ID != ARM64X0+30 {
		t.Errorf("lr = %+v, %v; want alias of x30", r, ok)
	}
}
