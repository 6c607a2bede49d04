// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package main

import (
	"errors"

	"github.com/peekdbg/peek/target"
)

func attachLocal(loop *target.Loop, pid int) (target.Provider, func(), error) {
	return nil, nil, errors.New("attaching to a local process requires linux")
}

func serveLocal(pid int) error {
	return errors.New("serving a local process requires linux")
}
