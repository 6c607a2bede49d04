// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package format pretty-prints evaluated values for the CLI.
package format

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/fatih/color"

	"github.com/peekdbg/peek/expr"
	"github.com/peekdbg/peek/symbol"
)

// Arrays longer than this render a leading slice and an ellipsis.
const maxArrayElems = 100

var (
	typeColor  = color.New(color.FgCyan)
	errorColor = color.New(color.FgRed)
)

// A Printer pretty-prints materialized values. It can be reused across
// printing operations to avoid allocations, but is not safe for
// concurrent use.
type Printer struct {
	err error // sticky; the first problem hit while printing
	ctx expr.EvalContext
	buf bytes.Buffer
}

// NewPrinter returns a printer for values evaluated under ctx. The
// context supplies the architecture for byte decoding and the name
// lookup scope for resolving declaration-only types.
func NewPrinter(ctx expr.EvalContext) *Printer {
	return &Printer{ctx: ctx}
}

func (p *Printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(&p.buf, format, args...)
}

// errorf renders the problem inline in angle brackets and records it as
// the printer's error, if one is not already set.
func (p *Printer) errorf(format string, args ...interface{}) {
	p.buf.WriteString(errorColor.Sprintf("<"+format+">", args...))
	if p.err != nil {
		return
	}
	p.err = fmt.Errorf(format, args...)
}

func (p *Printer) reset() {
	p.err = nil
	p.buf.Reset()
}

// Sprint renders a value. The returned string always holds a best
// effort rendering; the error reports the first part that could not be
// printed.
func (p *Printer) Sprint(v expr.Value) (string, error) {
	p.reset()
	p.printValue(v)
	return p.buf.String(), p.err
}

func (p *Printer) printValue(v expr.Value) {
	if v.IsVoid() {
		p.printf("void")
		return
	}
	switch t := symbol.StripCVT(expr.GetConcreteType(p.ctx.FindContext(), v.Type)).(type) {
	case *symbol.BaseType:
		p.printBase(t, v)
	case *symbol.Enumeration:
		p.printEnum(t, v)
	case *symbol.ModifiedType:
		p.printIndirect(t, v)
	case *symbol.ArrayType:
		p.printArray(t, v)
	case *symbol.Collection:
		p.printCollection(t, v)
	default:
		p.errorf("cannot format type %q", v.Type)
	}
}

func (p *Printer) printBase(t *symbol.BaseType, v expr.Value) {
	a := p.ctx.Arch()
	switch {
	case t.Encoding == symbol.EncodingBoolean:
		if u, ok := v.Uint(a); ok {
			p.printf("%t", u != 0)
		} else {
			p.errorf("bad %d-byte bool", len(v.Bytes))
		}
	case t.IsFloat():
		switch len(v.Bytes) {
		case 4:
			p.printf("%g", math.Float32frombits(uint32(a.UintN(v.Bytes))))
		case 8:
			p.printf("%g", math.Float64frombits(a.UintN(v.Bytes)))
		default:
			p.errorf("bad %d-byte float", len(v.Bytes))
		}
	case t.IsCharacter():
		i, ok := v.Int(a)
		if !ok {
			p.errorf("bad %d-byte character", len(v.Bytes))
			return
		}
		if i >= 0 && i <= 0x10ffff && strconv.IsPrint(rune(i)) {
			p.printf("%q", rune(i))
		} else {
			p.printf("%d", i)
		}
	case t.IsSigned():
		if i, ok := v.Int(a); ok {
			p.printf("%d", i)
		} else {
			p.errorf("bad %d-byte value", len(v.Bytes))
		}
	case t.Encoding == symbol.EncodingNone:
		p.printf("void")
	default:
		if u, ok := v.Uint(a); ok {
			p.printf("%d", u)
		} else {
			p.errorf("bad %d-byte value", len(v.Bytes))
		}
	}
}

func (p *Printer) printEnum(t *symbol.Enumeration, v expr.Value) {
	a := p.ctx.Arch()
	var i int64
	if t.Signed {
		si, ok := v.Int(a)
		if !ok {
			p.errorf("bad %d-byte enum value", len(v.Bytes))
			return
		}
		i = si
	} else {
		u, ok := v.Uint(a)
		if !ok {
			p.errorf("bad %d-byte enum value", len(v.Bytes))
			return
		}
		i = int64(u)
	}
	if ev, ok := t.ValueNamed(i); ok {
		p.printf("%s", ev.Name)
		return
	}
	p.printf("%d", i)
}

// printIndirect renders pointers and references as the type followed by
// the target address. The pointed-at object is not fetched; following
// it would need a target round trip.
func (p *Printer) printIndirect(t *symbol.ModifiedType, v expr.Value) {
	if !t.IsIndirection() {
		p.errorf("cannot format type %q", t)
		return
	}
	addr, ok := v.Uint(p.ctx.Arch())
	if !ok {
		p.errorf("bad %d-byte pointer", len(v.Bytes))
		return
	}
	p.printf("(%s) %#x", typeColor.Sprint(t), addr)
}

func (p *Printer) printArray(t *symbol.ArrayType, v expr.Value) {
	elem := symbol.StripCVT(expr.GetConcreteType(p.ctx.FindContext(), t.Elem))
	esize := int64(0)
	if elem != nil {
		esize = elem.Size()
	}
	if esize <= 0 {
		p.errorf("array of incomplete type %q", t.Elem)
		return
	}
	// Character arrays are strings.
	if bt, ok := elem.(*symbol.BaseType); ok && bt.IsCharacter() && esize == 1 {
		b := v.Bytes
		if i := bytes.IndexByte(b, 0); i >= 0 {
			b = b[:i]
		}
		p.printf("%q", b)
		return
	}
	p.printf("%s{", t)
	n := t.Count
	if max := int64(len(v.Bytes)) / esize; n > max || n < 0 {
		n = max
	}
	shown := n
	if shown > maxArrayElems {
		shown = maxArrayElems
	}
	for i := int64(0); i < shown; i++ {
		if i != 0 {
			p.printf(", ")
		}
		p.printValue(expr.Value{Type: t.Elem, Bytes: v.Bytes[i*esize : (i+1)*esize]})
	}
	if shown < t.Count {
		p.printf(", ...")
	}
	p.printf("}")
}

func (p *Printer) printCollection(t *symbol.Collection, v expr.Value) {
	p.printf("%s {", t)
	first := true
	for _, inh := range t.Inherits {
		base, ok := symbol.StripCVT(expr.GetConcreteType(p.ctx.FindContext(), inh.Base)).(*symbol.Collection)
		if !ok || inh.Virtual {
			continue
		}
		end := int64(inh.Offset) + base.ByteSize
		if end > int64(len(v.Bytes)) {
			p.errorf("base %q extends past the end of the value", base)
			continue
		}
		if !first {
			p.printf(", ")
		}
		first = false
		p.printValue(expr.Value{Type: inh.Base, Bytes: v.Bytes[inh.Offset:end]})
	}
	for _, m := range t.Members {
		if m.Artificial {
			continue
		}
		fm := expr.FoundMember{Member: m, Offset: m.ByteOffset, OffsetValid: true}
		mv, err := expr.ResolveMember(p.ctx, v, fm)
		if err != nil {
			if !first {
				p.printf(", ")
			}
			first = false
			p.errorf("%s", err)
			continue
		}
		if !first {
			p.printf(", ")
		}
		first = false
		p.printf("%s: ", m.Name)
		p.printValue(mv)
	}
	p.printf("}")
}
