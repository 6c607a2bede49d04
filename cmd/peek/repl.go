// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/peekdbg/peek/expr"
	"github.com/peekdbg/peek/format"
	"github.com/peekdbg/peek/internal/history"
	"github.com/peekdbg/peek/target"
)

// historyPreload is how many stored lines are replayed into the line
// editor on startup.
const historyPreload = 100

// A session is one evaluation context over a target. Expressions
// evaluate on ctx; the loop is pumped until each result arrives.
type session struct {
	loop    *target.Loop
	ctx     *expr.FrameContext
	printer *format.Printer
	cleanup func()
}

func newSession(loop *target.Loop, p target.Provider, fc *expr.FindNameContext, pc uint64, cleanup func()) *session {
	ctx := expr.NewFrameContext(evalLang, p, loop, fc, pc)
	return &session{
		loop:    loop,
		ctx:     ctx,
		printer: format.NewPrinter(ctx),
		cleanup: cleanup,
	}
}

func (s *session) Close() {
	s.ctx.Invalidate()
	if s.cleanup != nil {
		s.cleanup()
	}
}

// eval evaluates one expression to a rendered string.
func (s *session) eval(source string) (string, error) {
	var (
		out  expr.Value
		rerr error
		done bool
	)
	expr.EvalExpression(s.ctx, source, func(v expr.Value, err error) {
		out, rerr = v, err
		done = true
	})
	s.loop.Until(func() bool { return done })
	if rerr != nil {
		return "", rerr
	}
	return s.printer.Sprint(out)
}

// evalAll evaluates each expression in turn, printing results to stdout
// and failures to stderr.
func (s *session) evalAll(sources []string) error {
	failed := 0
	for _, src := range sources {
		out, err := s.eval(src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", src, err)
			failed++
			continue
		}
		fmt.Println(out)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d expressions failed", failed, len(sources))
	}
	return nil
}

// repl reads and evaluates expressions until exit or EOF. History is
// kept in the bolt store and replayed into the line editor on startup.
func (s *session) repl() error {
	var hist *history.Store
	if path := cfg.HistoryFile; path != "none" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err == nil {
			if st, herr := history.Open(path); herr == nil {
				hist = st
				defer st.Close()
			} else {
				fmt.Fprintf(os.Stderr, "history disabled: %v\n", herr)
			}
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 cfg.Prompt,
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	if hist != nil {
		if tail, err := hist.Tail(historyPreload); err == nil {
			for _, e := range tail {
				rl.SaveHistory(e.Text)
			}
		}
	}

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "help":
			replHelp()
			continue
		case "history":
			printHistory(hist)
			continue
		}
		rl.SaveHistory(line)
		if hist != nil {
			hist.Add(line)
		}
		out, err := s.eval(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(out)
	}
}

func replHelp() {
	fmt.Print(`Type an expression to evaluate it against the target.

  g_score * 2          arithmetic on globals
  g_boss->hp           member access through pointers
  $reg(rax) + 1        registers, full or partial views
  *(int*)0x2000        casts and raw memory
  { auto v = 1; v+v }  blocks, locals, if and loops

REPL commands: help, history, exit (or quit, ^D).
`)
}

func printHistory(hist *history.Store) {
	if hist == nil {
		fmt.Println("history is disabled")
		return
	}
	tail, err := hist.Tail(20)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		return
	}
	for _, e := range tail {
		fmt.Printf("%4d  %s\n", e.Seq, e.Text)
	}
}
