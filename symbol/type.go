// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package symbol models the debug information of a target program: its
// types, variables, functions and scopes, plus per-module name indexes.
// The graph is built once by a loader or a test and never mutated, so
// nodes freely share subtrees.
package symbol

import (
	"fmt"
	"strings"
)

// A Type is the runtime type of a value in the target program.
type Type interface {
	Common() *CommonType
	String() string
	Size() int64
}

// CommonType holds fields common to all types. For collections and
// enumerations, Name is the fully qualified name.
type CommonType struct {
	ByteSize int64
	Name     string
}

func (c *CommonType) Common() *CommonType { return c }

func (c *CommonType) Size() int64 { return c.ByteSize }

// A BaseEncoding tells how the bytes of a BaseType are interpreted.
type BaseEncoding int

const (
	EncodingNone BaseEncoding = iota
	EncodingBoolean
	EncodingSigned
	EncodingSignedChar
	EncodingUnsigned
	EncodingUnsignedChar
	EncodingFloat
	EncodingUTF
)

// A BaseType is a language primitive: integer, character, boolean or
// floating point.
type BaseType struct {
	CommonType
	Encoding BaseEncoding
}

func (t *BaseType) String() string {
	if t.Name != "" {
		return t.Name
	}
	return "?"
}

func (t *BaseType) IsSigned() bool {
	switch t.Encoding {
	case EncodingSigned, EncodingSignedChar:
		return true
	}
	return false
}

func (t *BaseType) IsFloat() bool { return t.Encoding == EncodingFloat }

func (t *BaseType) IsCharacter() bool {
	switch t.Encoding {
	case EncodingSignedChar, EncodingUnsignedChar, EncodingUTF:
		return true
	}
	return false
}

// A ModifierKind distinguishes the ways a ModifiedType wraps its
// underlying type.
type ModifierKind int

const (
	KindPointer ModifierKind = iota
	KindReference
	KindRvalueReference
	KindConst
	KindVolatile
	KindRestrict
	KindTypedef
)

func (k ModifierKind) String() string {
	return [...]string{
		"pointer",
		"reference",
		"rvalue reference",
		"const",
		"volatile",
		"restrict",
		"typedef",
	}[k]
}

// A ModifiedType wraps another type: pointers, references, cv-qualifiers
// and typedefs. A nil Modified stands for void, as in void*.
type ModifiedType struct {
	CommonType
	Kind     ModifierKind
	Modified Type
}

func (t *ModifiedType) String() string {
	if t.Name != "" {
		return t.Name
	}
	inner := "void"
	if t.Modified != nil {
		inner = t.Modified.String()
	}
	switch t.Kind {
	case KindPointer:
		return inner + "*"
	case KindReference:
		return inner + "&"
	case KindRvalueReference:
		return inner + "&&"
	case KindConst:
		// const binds right of a pointer or reference, left otherwise:
		// "const int" but "int* const".
		if modifiesIndirection(t.Modified) {
			return inner + " const"
		}
		return "const " + inner
	case KindVolatile:
		if modifiesIndirection(t.Modified) {
			return inner + " volatile"
		}
		return "volatile " + inner
	case KindRestrict:
		return inner + " restrict"
	}
	return inner
}

func (t *ModifiedType) Size() int64 {
	if t.ByteSize != 0 {
		return t.ByteSize
	}
	switch t.Kind {
	case KindConst, KindVolatile, KindRestrict, KindTypedef:
		if t.Modified != nil {
			return t.Modified.Size()
		}
	}
	return 0
}

// IsIndirection reports whether the modifier is a pointer or reference.
func (t *ModifiedType) IsIndirection() bool {
	switch t.Kind {
	case KindPointer, KindReference, KindRvalueReference:
		return true
	}
	return false
}

func modifiesIndirection(t Type) bool {
	m, ok := t.(*ModifiedType)
	return ok && m.IsIndirection()
}

// An ArrayType is a fixed-size array. Count is -1 when the extent is
// unknown.
type ArrayType struct {
	CommonType
	Elem  Type
	Count int64
}

func (t *ArrayType) String() string {
	if t.Name != "" {
		return t.Name
	}
	if t.Count < 0 {
		return t.Elem.String() + "[]"
	}
	return fmt.Sprintf("%s[%d]", t.Elem, t.Count)
}

func (t *ArrayType) Size() int64 {
	if t.ByteSize != 0 {
		return t.ByteSize
	}
	if t.Count > 0 && t.Elem != nil {
		return t.Count * t.Elem.Size()
	}
	return 0
}

// A CollectionKind distinguishes structs, classes and unions.
type CollectionKind int

const (
	Struct CollectionKind = iota
	Class
	Union
)

func (k CollectionKind) String() string {
	return [...]string{"struct", "class", "union"}[k]
}

// A Collection is a struct, class or union. A forward declaration has
// Declaration set and carries no members; the definition must be found
// through a module index.
type Collection struct {
	CommonType
	Kind        CollectionKind
	Members     []*DataMember
	Inherits    []*InheritedFrom
	Declaration bool
}

func (t *Collection) String() string {
	if t.Name != "" {
		return t.Name
	}
	return "(anon " + t.Kind.String() + ")"
}

// MemberNamed finds a direct member by name, ignoring base classes.
func (t *Collection) MemberNamed(name string) *DataMember {
	for _, m := range t.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// A DataMember is one member of a Collection.
//
// A member with nonzero BitSize is a bitfield. Its storage unit starts at
// ByteOffset and is ByteSize bytes long (the size of Type when ByteSize is
// zero), and BitOffset counts from the most significant bit of that unit to
// the first bit of the field. BitOffset may be negative or exceed the unit
// when the compiler described a field that straddles its declared unit.
type DataMember struct {
	Name       string
	Type       Type
	ByteOffset uint64
	ByteSize   uint32
	BitSize    uint32
	BitOffset  int64
	Artificial bool
	External   bool
}

func (m *DataMember) IsBitfield() bool { return m.BitSize > 0 }

// StorageUnitSize returns the declared size in bytes of the bitfield
// storage unit.
func (m *DataMember) StorageUnitSize() int64 {
	if m.ByteSize != 0 {
		return int64(m.ByteSize)
	}
	if m.Type != nil {
		return m.Type.Size()
	}
	return 0
}

// An InheritedFrom records one direct base class of a Collection. Offset is
// the byte offset of the embedded base within the derived class. Virtual
// bases have no constant offset; those carry Virtual and an Offset of zero.
type InheritedFrom struct {
	Base    Type
	Offset  uint64
	Virtual bool
}

// An Enumeration is a C/C++ enum or a fieldless Rust enum.
type Enumeration struct {
	CommonType
	Underlying Type
	Signed     bool
	Values     []EnumValue
}

type EnumValue struct {
	Name  string
	Value int64
}

func (t *Enumeration) String() string {
	if t.Name != "" {
		return t.Name
	}
	return "(anon enum)"
}

// ValueNamed returns the enumerator matching a value, if any.
func (t *Enumeration) ValueNamed(v int64) (EnumValue, bool) {
	for _, ev := range t.Values {
		if ev.Value == v {
			return ev, true
		}
	}
	return EnumValue{}, false
}

// A FunctionType is the type of a function or of a vtable slot.
type FunctionType struct {
	CommonType
	Return Type
	Params []Type
}

func (t *FunctionType) String() string {
	if t.Name != "" {
		return t.Name
	}
	ret := "void"
	if t.Return != nil {
		ret = t.Return.String()
	}
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("%s(%s)", ret, strings.Join(params, ", "))
}

// StripCV removes const, volatile and restrict wrappers, but keeps
// typedefs.
func StripCV(t Type) Type {
	return strip(t, false)
}

// StripCVT removes const, volatile, restrict and typedef wrappers.
func StripCVT(t Type) Type {
	return strip(t, true)
}

func strip(t Type, typedefs bool) Type {
	// Walk with a fast and a slow pointer in case a broken graph forms a
	// modifier cycle.
	slow := t
	for i := 0; ; i++ {
		m, ok := t.(*ModifiedType)
		if !ok {
			return t
		}
		switch m.Kind {
		case KindConst, KindVolatile, KindRestrict:
		case KindTypedef:
			if !typedefs {
				return t
			}
		default:
			return t
		}
		if m.Modified == nil {
			return t
		}
		t = m.Modified
		if i%2 == 1 {
			slow = slow.(*ModifiedType).Modified
			if t == slow {
				return t
			}
		}
	}
}
