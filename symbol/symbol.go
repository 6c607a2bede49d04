// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symbol

import (
	"strings"

	"github.com/peekdbg/peek/arch"
)

// A LocationKind tells where a variable lives over some code range.
type LocationKind int

const (
	LocAddress LocationKind = iota
	LocRegister
)

// A Location gives the storage of a variable over [Begin, End). Begin and
// End both zero mark a location valid at every address.
type Location struct {
	Begin, End uint64
	Kind       LocationKind
	Address    uint64
	Register   arch.RegisterID
}

func (l Location) covers(pc uint64) bool {
	if l.Begin == 0 && l.End == 0 {
		return true
	}
	return l.Begin <= pc && pc < l.End
}

// A Variable is a named value: a global, a function parameter or a local.
// A variable with no locations was optimized away entirely; a variable
// whose locations don't cover the current address has no value there.
type Variable struct {
	Name       string
	Type       Type
	Locations  []Location
	Artificial bool
}

// LocationAt returns the location covering pc.
func (v *Variable) LocationAt(pc uint64) (Location, bool) {
	for _, l := range v.Locations {
		if l.covers(pc) {
			return l, true
		}
	}
	return Location{}, false
}

// A Namespace is a named scope enclosing other symbols: a C++ namespace, a
// Rust module, or a class interior acting as a scope.
type Namespace struct {
	Name   string
	Parent *Namespace
}

// FullName returns the ::-joined path of the namespace.
func (n *Namespace) FullName() string {
	if n == nil {
		return ""
	}
	parts := n.Path()
	return strings.Join(parts, "::")
}

// Path returns the scope names from the outermost namespace inward.
func (n *Namespace) Path() []string {
	var parts []string
	for ; n != nil; n = n.Parent {
		if n.Name != "" {
			parts = append(parts, n.Name)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return parts
}

// A CodeBlock is a lexical block inside a function. Blocks with no ranges
// cover their whole parent.
type CodeBlock struct {
	Ranges    [][2]uint64
	Variables []*Variable
	Blocks    []*CodeBlock
	Parent    *CodeBlock
}

// Contains reports whether pc falls within the block's ranges.
func (b *CodeBlock) Contains(pc uint64) bool {
	if len(b.Ranges) == 0 {
		return true
	}
	for _, r := range b.Ranges {
		if r[0] <= pc && pc < r[1] {
			return true
		}
	}
	return false
}

// InnermostAt descends into nested blocks to the innermost one containing
// pc.
func (b *CodeBlock) InnermostAt(pc uint64) *CodeBlock {
	if b == nil || !b.Contains(pc) {
		return nil
	}
	for _, inner := range b.Blocks {
		if got := inner.InnermostAt(pc); got != nil {
			return got
		}
	}
	return b
}

// A Function is a function or method with code in the target.
type Function struct {
	Name          string
	Namespace     *Namespace
	Params        []*Variable
	ObjectPointer *Variable // the this/self parameter of a method, if any
	Block         *CodeBlock
	Ranges        [][2]uint64
}

// FullName returns the ::-qualified name of the function.
func (f *Function) FullName() string {
	ns := f.Namespace.FullName()
	if ns == "" {
		return f.Name
	}
	return ns + "::" + f.Name
}
