// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import "github.com/peekdbg/peek/symbol"

// The step cap bounds pathological graphs where a definition lookup
// keeps producing declarations; 32 is far beyond any real nesting.
const maxTypeResolveSteps = 32

// GetConcreteType returns the type to operate on: typedefs and cv
// qualifiers stripped, forward declarations replaced by the real
// definition from the symbol indexes when one exists. Unresolvable
// declarations come back as themselves.
func GetConcreteType(fc *FindNameContext, t symbol.Type) symbol.Type {
	for i := 0; i < maxTypeResolveSteps; i++ {
		t = symbol.StripCVT(t)
		c, ok := t.(*symbol.Collection)
		if !ok || !c.Declaration || c.Name == "" {
			return t
		}
		def := findTypeDefinition(fc, c.Name)
		if def == nil {
			return t
		}
		t = def
	}
	return t
}

// findTypeDefinition looks a fully qualified type name up across the
// modules, preferring the current one, skipping forward declarations.
func findTypeDefinition(fc *FindNameContext, name string) symbol.Type {
	if fc == nil {
		return nil
	}
	for _, mod := range searchModules(fc) {
		for _, e := range mod.Index.Lookup(name) {
			if e.Kind != symbol.EntryType {
				continue
			}
			if c, ok := e.Type.(*symbol.Collection); ok && c.Declaration {
				continue
			}
			return e.Type
		}
	}
	return nil
}
