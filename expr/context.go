// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"fmt"

	"github.com/peekdbg/peek/arch"
	"github.com/peekdbg/peek/symbol"
	"github.com/peekdbg/peek/target"
)

// A ValueCallback receives the result of an asynchronous evaluation
// step. Exactly one of the value and the error is meaningful.
type ValueCallback func(Value, error)

// An EvalContext gives expression evaluation its surroundings: the
// language, the data provider for target memory and registers, where
// name lookups happen, and a liveness flag. Evaluations can outlive
// their usefulness, so completions are only delivered while the
// context is alive.
type EvalContext interface {
	Language() Language
	Arch() *arch.Architecture
	Provider() target.Provider
	FindContext() *FindNameContext

	// GetVariableValue fetches the current value of a symbol variable
	// from target memory or registers.
	GetVariableValue(v *symbol.Variable, cb ValueCallback)

	// Post schedules f on the evaluation loop. Loop iterations go
	// through it so unbounded loops cannot grow the Go stack.
	Post(f func())

	// Alive reports whether results are still wanted.
	Alive() bool
}

// guarded wraps cb so it is silently dropped once the context dies.
// Every callback that can fire after asynchronous work goes through it.
func guarded(ctx EvalContext, cb ValueCallback) ValueCallback {
	return func(v Value, err error) {
		if ctx.Alive() {
			cb(v, err)
		}
	}
}

func guardedErr(ctx EvalContext, cb func(error)) func(error) {
	return func(err error) {
		if ctx.Alive() {
			cb(err)
		}
	}
}

// A FrameContext is the EvalContext for one stack frame of a stopped
// target. Invalidate it when the target resumes; in-flight completions
// are then dropped instead of delivered against a stale frame.
type FrameContext struct {
	lang     Language
	provider target.Provider
	loop     *target.Loop
	find     *FindNameContext
	pc       uint64
	alive    bool
}

func NewFrameContext(lang Language, provider target.Provider, loop *target.Loop, find *FindNameContext, pc uint64) *FrameContext {
	if find == nil {
		find = &FindNameContext{}
	}
	return &FrameContext{lang: lang, provider: provider, loop: loop, find: find, pc: pc, alive: true}
}

func (c *FrameContext) Language() Language            { return c.lang }
func (c *FrameContext) Arch() *arch.Architecture      { return c.provider.Arch() }
func (c *FrameContext) Provider() target.Provider     { return c.provider }
func (c *FrameContext) FindContext() *FindNameContext { return c.find }
func (c *FrameContext) PC() uint64                    { return c.pc }
func (c *FrameContext) Post(f func())                 { c.loop.Post(f) }
func (c *FrameContext) Alive() bool                   { return c.alive }

// Invalidate marks the frame stale. Callbacks guarding on this context
// stop being delivered.
func (c *FrameContext) Invalidate() { c.alive = false }

func (c *FrameContext) GetVariableValue(v *symbol.Variable, cb ValueCallback) {
	cb = guarded(c, cb)
	if len(v.Locations) == 0 {
		cb(Value{}, ErrOptimizedOut)
		return
	}
	loc, ok := v.LocationAt(c.pc)
	if !ok {
		cb(Value{}, &NotLiveError{PC: c.pc})
		return
	}
	size := typeSizeOf(v.Type)
	if size <= 0 {
		cb(Value{}, fmt.Errorf("variable %q has no size", v.Name))
		return
	}
	switch loc.Kind {
	case symbol.LocAddress:
		addr := loc.Address
		c.provider.ReadMemory(addr, int(size), func(data []byte, err error) {
			if err != nil {
				cb(Value{}, err)
				return
			}
			cb(Value{Type: v.Type, Bytes: data, Source: MemorySource(addr)}, nil)
		})
	case symbol.LocRegister:
		reg := loc.Register
		c.provider.ReadRegister(reg, func(data []byte, err error) {
			if err != nil {
				cb(Value{}, err)
				return
			}
			// Small values sit in the low-order bytes of the register.
			if int64(len(data)) > size {
				data = data[:size]
			}
			cb(Value{
				Type:   v.Type,
				Bytes:  data,
				Source: ValueSource{Kind: SourceRegister, Register: reg},
			}, nil)
		})
	default:
		cb(Value{}, fmt.Errorf("variable %q has an unsupported location", v.Name))
	}
}
