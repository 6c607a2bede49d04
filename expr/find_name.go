// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import "github.com/peekdbg/peek/symbol"

// A FindNameContext says where a name lookup stands: which modules are
// loaded, which one the program counter is in, and the innermost code
// block and function at that address. Any field may be nil; lookups
// just skip the corresponding sources.
type FindNameContext struct {
	// Module is the module containing the current location. It is
	// searched before the others.
	Module *symbol.Module

	// Modules are all loaded modules, in load order.
	Modules []*symbol.Module

	Block    *symbol.CodeBlock
	Function *symbol.Function
}

// FindNameOptions restricts what kinds of things a lookup may return.
type FindNameOptions struct {
	Types      bool
	Variables  bool
	Members    bool
	Functions  bool
	Namespaces bool
	Templates  bool

	// OnlyTypeDefinitions skips forward declarations, for callers
	// resolving a declaration to the real definition.
	OnlyTypeDefinitions bool

	// MaxResults caps FindNames output; 0 means 1.
	MaxResults int
}

// FindAllOptions matches every kind of name, returning the single best
// result.
func FindAllOptions() FindNameOptions {
	return FindNameOptions{
		Types:      true,
		Variables:  true,
		Members:    true,
		Functions:  true,
		Namespaces: true,
		Templates:  true,
	}
}

// FindName returns the best match for ident, or an invalid FoundName.
// Not finding a name is an ordinary outcome, not an error; callers
// decide what missing means for them.
func FindName(fc *FindNameContext, opts FindNameOptions, ident ParsedIdentifier) FoundName {
	opts.MaxResults = 1
	if rs := FindNames(fc, opts, ident); len(rs) > 0 {
		return rs[0]
	}
	return FoundName{}
}

// FindNames collects matches for ident in precedence order: local
// variables and parameters, then members of the implicit object
// pointer, then the module indexes walking the namespace chain from the
// innermost scope outward. The current module is consulted before the
// rest at every scope.
func FindNames(fc *FindNameContext, opts FindNameOptions, ident ParsedIdentifier) []FoundName {
	max := opts.MaxResults
	if max <= 0 {
		max = 1
	}
	var out []FoundName

	if name, ok := ident.Simple(); ok {
		if opts.Variables {
			if v := findLocalVariable(fc, name); v != nil {
				out = append(out, FoundName{Kind: FoundVariable, Variable: v})
				if len(out) >= max {
					return out
				}
			}
		}
		if opts.Members {
			if f, ok := findThisMember(fc, name); ok {
				out = append(out, f)
				if len(out) >= max {
					return out
				}
			}
		}
	}

	findIndexNames(fc, opts, ident, &out, max)
	return out
}

// LookupName lets a *FindNameContext serve as the parser's NameLookup.
func (fc *FindNameContext) LookupName(ident ParsedIdentifier) FoundName {
	return FindName(fc, FindAllOptions(), ident)
}

func findLocalVariable(fc *FindNameContext, name string) *symbol.Variable {
	for b := fc.Block; b != nil; b = b.Parent {
		for _, v := range b.Variables {
			if v.Name == name {
				return v
			}
		}
	}
	if fc.Function != nil {
		for _, v := range fc.Function.Params {
			if v.Name == name {
				return v
			}
		}
		if op := fc.Function.ObjectPointer; op != nil && op.Name == name {
			return op
		}
	}
	return nil
}

func findThisMember(fc *FindNameContext, name string) (FoundName, bool) {
	if fc.Function == nil || fc.Function.ObjectPointer == nil {
		return FoundName{}, false
	}
	op := fc.Function.ObjectPointer
	ptr, ok := GetConcreteType(fc, op.Type).(*symbol.ModifiedType)
	if !ok || !ptr.IsIndirection() {
		return FoundName{}, false
	}
	coll, ok := GetConcreteType(fc, ptr.Modified).(*symbol.Collection)
	if !ok {
		return FoundName{}, false
	}
	fm, ok := FindMember(fc, coll, name)
	if !ok {
		return FoundName{}, false
	}
	return FoundName{Kind: FoundMemberName, Member: fm, Object: op}, true
}

// searchModules yields the current module first, then the rest in load
// order.
func searchModules(fc *FindNameContext) []*symbol.Module {
	if fc.Module == nil {
		return fc.Modules
	}
	mods := make([]*symbol.Module, 0, len(fc.Modules)+1)
	mods = append(mods, fc.Module)
	for _, m := range fc.Modules {
		if m != fc.Module {
			mods = append(mods, m)
		}
	}
	return mods
}

// scopeChain returns the namespace prefixes to try, innermost first,
// ending with the global scope "".
func scopeChain(fc *FindNameContext) []string {
	var scopes []string
	if fc.Function != nil {
		for ns := fc.Function.Namespace; ns != nil; ns = ns.Parent {
			scopes = append(scopes, ns.FullName())
		}
	}
	return append(scopes, "")
}

func findIndexNames(fc *FindNameContext, opts FindNameOptions, ident ParsedIdentifier, out *[]FoundName, max int) {
	if len(ident.Components) == 0 {
		return
	}
	name := indexName(ident)
	scopes := scopeChain(fc)
	if ident.InGlobalNamespace {
		// A leading :: bypasses the namespace walk.
		scopes = []string{""}
	}
	mods := searchModules(fc)
	seenTemplates := map[string]bool{}
	for _, scope := range scopes {
		qual := name
		if scope != "" {
			qual = scope + "::" + name
		}
		for _, mod := range mods {
			for _, e := range mod.Index.Lookup(qual) {
				f, ok := entryFound(e, opts, qual)
				if !ok {
					continue
				}
				*out = append(*out, f)
				if len(*out) >= max {
					return
				}
			}
			if opts.Templates && !seenTemplates[qual] && mod.Index.HasTemplate(qual) {
				seenTemplates[qual] = true
				*out = append(*out, FoundName{Kind: FoundTemplate, Name: qual})
				if len(*out) >= max {
					return
				}
			}
		}
	}
}

// indexName renders ident the way the symbol index keys names: no
// leading ::, template arguments spelled out.
func indexName(ident ParsedIdentifier) string {
	inner := ident
	inner.InGlobalNamespace = false
	return inner.FullName()
}

func entryFound(e symbol.IndexEntry, opts FindNameOptions, qual string) (FoundName, bool) {
	switch e.Kind {
	case symbol.EntryType:
		if !opts.Types {
			return FoundName{}, false
		}
		if opts.OnlyTypeDefinitions {
			if c, ok := e.Type.(*symbol.Collection); ok && c.Declaration {
				return FoundName{}, false
			}
		}
		return FoundName{Kind: FoundType, Type: e.Type}, true
	case symbol.EntryVariable:
		if !opts.Variables {
			return FoundName{}, false
		}
		return FoundName{Kind: FoundVariable, Variable: e.Variable}, true
	case symbol.EntryFunction:
		if !opts.Functions {
			return FoundName{}, false
		}
		return FoundName{Kind: FoundFunction, Function: e.Function}, true
	case symbol.EntryNamespace:
		if !opts.Namespaces {
			return FoundName{}, false
		}
		return FoundName{Kind: FoundNamespace, Name: qual}, true
	}
	return FoundName{}, false
}
