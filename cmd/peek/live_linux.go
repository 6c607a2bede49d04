// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/peekdbg/peek/target"
	"github.com/peekdbg/peek/target/socket"
)

func attachLocal(loop *target.Loop, pid int) (target.Provider, func(), error) {
	p, err := target.Attach(loop, pid)
	if err != nil {
		return nil, nil, err
	}
	return p, func() { p.Detach() }, nil
}

// serveLocal attaches to pid and answers target requests on this user's
// socket until interrupted. The socket is named by the serving process's
// own pid; that is the pid remote peeks dial.
func serveLocal(pid int) error {
	loop := target.NewLoop()
	p, err := target.Attach(loop, pid)
	if err != nil {
		return err
	}
	defer p.Detach()

	socket.CollectGarbage()
	l, err := socket.Listen()
	if err != nil {
		return err
	}
	defer l.Close()

	// Closing the listener on a signal makes Serve return, and the
	// deferred detach resumes the process.
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		l.Close()
	}()

	fmt.Fprintf(os.Stderr, "serving pid %d; connect with: peek attach --remote %d\n", pid, os.Getpid())
	if err := target.Serve(l, p); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
