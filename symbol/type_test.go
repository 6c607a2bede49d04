// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symbol

import "testing"

func intType() *BaseType {
	return &BaseType{CommonType{4, "int"}, EncodingSigned}
}

func TestTypeNames(t *testing.T) {
	base := &Collection{CommonType: CommonType{16, "BaseClass"}, Kind: Class}
	constBase := &ModifiedType{Kind: KindConst, Modified: base}
	ptr := &ModifiedType{CommonType: CommonType{ByteSize: 8}, Kind: KindPointer, Modified: constBase}
	constPtr := &ModifiedType{Kind: KindConst, Modified: ptr}

	tests := []struct {
		typ  Type
		want string
	}{
		{intType(), "int"},
		{&ModifiedType{CommonType: CommonType{ByteSize: 8}, Kind: KindPointer, Modified: intType()}, "int*"},
		{&ModifiedType{CommonType: CommonType{ByteSize: 8}, Kind: KindPointer}, "void*"},
		{&ModifiedType{Kind: KindConst, Modified: intType()}, "const int"},
		{&ModifiedType{Kind: KindReference, CommonType: CommonType{ByteSize: 8}, Modified: intType()}, "int&"},
		{&ModifiedType{Kind: KindRvalueReference, CommonType: CommonType{ByteSize: 8}, Modified: intType()}, "int&&"},
		{constBase, "const BaseClass"},
		{ptr, "const BaseClass*"},
		{constPtr, "const BaseClass* const"},
		{&ArrayType{Elem: intType(), Count: 3}, "int[3]"},
		{&ModifiedType{CommonType: CommonType{Name: "size_t"}, Kind: KindTypedef, Modified: intType()}, "size_t"},
		{&FunctionType{Return: intType(), Params: []Type{intType(), intType()}}, "int(int, int)"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTypeSizes(t *testing.T) {
	td := &ModifiedType{CommonType: CommonType{Name: "myint"}, Kind: KindTypedef, Modified: intType()}
	if got := td.Size(); got != 4 {
		t.Errorf("typedef size = %d, want 4", got)
	}
	cv := &ModifiedType{Kind: KindConst, Modified: td}
	if got := cv.Size(); got != 4 {
		t.Errorf("const typedef size = %d, want 4", got)
	}
	arr := &ArrayType{Elem: intType(), Count: 5}
	if got := arr.Size(); got != 20 {
		t.Errorf("array size = %d, want 20", got)
	}
}

func TestStrip(t *testing.T) {
	base := intType()
	td := &ModifiedType{CommonType: CommonType{Name: "myint"}, Kind: KindTypedef, Modified: base}
	cv := &ModifiedType{Kind: KindVolatile, Modified: &ModifiedType{Kind: KindConst, Modified: td}}

	if got := StripCV(cv); got != td {
		t.Errorf("StripCV stopped at %v, want the typedef", got)
	}
	if got := StripCVT(cv); got != base {
		t.Errorf("StripCVT stopped at %v, want int", got)
	}
	ptr := &ModifiedType{CommonType: CommonType{ByteSize: 8}, Kind: KindPointer, Modified: base}
	if got := StripCVT(ptr); got != ptr {
		t.Errorf("StripCVT crossed a pointer: %v", got)
	}

	// A malformed self-referring modifier chain must not hang.
	loop := &ModifiedType{Kind: KindConst}
	loop.Modified = loop
	StripCVT(loop)
}

func TestStorageUnitSize(t *testing.T) {
	m := &DataMember{Name: "b", Type: intType(), BitSize: 3}
	if got := m.StorageUnitSize(); got != 4 {
		t.Errorf("implicit unit size = %d, want 4", got)
	}
	m.ByteSize = 2
	if got := m.StorageUnitSize(); got != 2 {
		t.Errorf("declared unit size = %d, want 2", got)
	}
	if !m.IsBitfield() {
		t.Error("IsBitfield() = false")
	}
}
