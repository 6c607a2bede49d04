// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symbol

import "strings"

// An EntryKind tags what an IndexEntry points at.
type EntryKind int

const (
	EntryType EntryKind = iota
	EntryFunction
	EntryVariable
	EntryNamespace
)

func (k EntryKind) String() string {
	return [...]string{"type", "function", "variable", "namespace"}[k]
}

// An IndexEntry points at one symbol reachable under a fully qualified
// name. Exactly one of Type, Function and Variable is set, matching Kind;
// namespace entries carry only the name they were indexed under.
type IndexEntry struct {
	Kind     EntryKind
	Type     Type
	Function *Function
	Variable *Variable
}

// An Index maps fully qualified names (without a leading ::) to the
// symbols of one module.
type Index struct {
	entries   map[string][]IndexEntry
	templates map[string]bool
}

func NewIndex() *Index {
	return &Index{
		entries:   make(map[string][]IndexEntry),
		templates: make(map[string]bool),
	}
}

func (x *Index) add(name string, e IndexEntry) {
	x.entries[name] = append(x.entries[name], e)
}

// AddType indexes a type definition or forward declaration. Template
// instantiations also register their base name, so the parser can tell
// "vector <" from a comparison.
func (x *Index) AddType(name string, t Type) {
	x.add(name, IndexEntry{Kind: EntryType, Type: t})
	if i := strings.IndexByte(name, '<'); i > 0 {
		base := name[:i]
		if j := strings.LastIndex(base, "::"); j >= 0 {
			x.templates[base[j+2:]] = true
		}
		x.templates[base] = true
	}
}

func (x *Index) AddFunction(name string, f *Function) {
	x.add(name, IndexEntry{Kind: EntryFunction, Function: f})
}

func (x *Index) AddVariable(name string, v *Variable) {
	x.add(name, IndexEntry{Kind: EntryVariable, Variable: v})
}

func (x *Index) AddNamespace(name string) {
	x.add(name, IndexEntry{Kind: EntryNamespace})
}

// Lookup returns every entry indexed under the exact qualified name.
func (x *Index) Lookup(name string) []IndexEntry {
	if x == nil {
		return nil
	}
	return x.entries[name]
}

// HasTemplate reports whether base is the name of at least one indexed
// template instantiation, qualified or not.
func (x *Index) HasTemplate(base string) bool {
	return x != nil && x.templates[base]
}
