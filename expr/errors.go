// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"errors"
	"fmt"
)

// A ParseError reports a lexical or syntax error. Pos is the byte offset
// in the expression where the problem starts.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

func parseErrorf(pos int, format string, args ...interface{}) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// ErrOptimizedOut is reported for variables the compiler gave no storage
// locations at all.
var ErrOptimizedOut = errors.New("value was optimized away by the compiler")

// A NotLiveError is reported for variables that have storage somewhere,
// just not at the current program counter.
type NotLiveError struct {
	PC uint64
}

func (e *NotLiveError) Error() string {
	return fmt.Sprintf("value is not available at 0x%x", e.PC)
}
