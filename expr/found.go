// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import "github.com/peekdbg/peek/symbol"

// A FoundMember names a data member reached from some containing
// collection, possibly through base classes.
type FoundMember struct {
	Member *symbol.DataMember

	// Path lists the inheritance hops from the outer collection to the
	// one that declares Member, outermost first. Empty for a direct
	// member.
	Path []*symbol.InheritedFrom

	// Offset is the byte offset of the member's storage from the start
	// of the outer collection: the sum of the base offsets on Path plus
	// the member's own offset. OffsetValid is false when a hop on Path
	// is virtual, since the offset then lives in the object itself.
	Offset      uint64
	OffsetValid bool
}

// A FoundNameKind says what a name resolved to.
type FoundNameKind int

const (
	FoundNone FoundNameKind = iota
	FoundVariable
	FoundMemberName // member of the implicit object pointer
	FoundType
	FoundTemplate
	FoundNamespace
	FoundFunction
)

func (k FoundNameKind) String() string {
	switch k {
	case FoundVariable:
		return "variable"
	case FoundMemberName:
		return "member"
	case FoundType:
		return "type"
	case FoundTemplate:
		return "template"
	case FoundNamespace:
		return "namespace"
	case FoundFunction:
		return "function"
	}
	return "none"
}

// A FoundName is one match for a name. Which fields are set depends on
// Kind.
type FoundName struct {
	Kind FoundNameKind

	Variable *symbol.Variable // FoundVariable
	Function *symbol.Function // FoundFunction
	Type     symbol.Type      // FoundType

	// For FoundMemberName: the member and the object pointer variable
	// it is reached through.
	Member FoundMember
	Object *symbol.Variable

	// For FoundTemplate and FoundNamespace: the fully qualified name.
	Name string
}

func (f FoundName) Valid() bool { return f.Kind != FoundNone }
