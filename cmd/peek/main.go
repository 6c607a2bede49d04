// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Peek is a command-line tool for evaluating C, C++ and Rust debugger
// expressions. It reads the memory and registers of a target process,
// which is a stopped live process when attached and a built-in
// in-memory fixture otherwise.
// Run "peek help" for a list of commands.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/peekdbg/peek/expr"
	"github.com/peekdbg/peek/target"
)

var (
	cfg      *Config
	evalLang expr.Language

	flagConfig   string
	flagLang     string
	flagColor    string
	attachRemote bool
	servePID     int
)

var cmdRoot = &cobra.Command{
	Use:   "peek",
	Short: "evaluate debugger expressions against a live or demo target",
	Long: `Peek evaluates C, C++ and Rust debugger expressions: globals,
registers, member access, casts, even small statement blocks. Without an
attached process, expressions run against a built-in demo target.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var cmdRepl = &cobra.Command{
	Use:   "repl",
	Short: "interactively evaluate expressions against the demo target",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newDemoSession()
		defer s.Close()
		return s.repl()
	},
}

var cmdEval = &cobra.Command{
	Use:   "eval <expr>...",
	Short: "evaluate expressions against the demo target and exit",
	Example: `  peek eval 'g_score * 2' 'g_boss->hp'
  peek --lang rust eval '1u8 << 7'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newDemoSession()
		defer s.Close()
		return s.evalAll(args)
	},
}

var cmdAttach = &cobra.Command{
	Use:   "attach <pid>",
	Short: "stop a process and evaluate expressions against it",
	Long: `Attach stops the process with ptrace and starts a REPL over its
memory and registers. No symbols are loaded from the binary, so
expressions work with registers, addresses and casts.

With --remote, <pid> is instead the pid of a "peek serve" process run by
the same user, and requests travel over its socket.`,
	Args: cobra.ExactArgs(1),
	RunE: runAttach,
}

var cmdServe = &cobra.Command{
	Use:   "serve --attach <pid>",
	Short: "attach to a process and serve it to remote peeks",
	Long: `Serve stops the process with ptrace and answers target requests on a
per-user socket until interrupted. Connect from another terminal with
"peek attach --remote" and the pid serve prints.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveLocal(servePID)
	},
}

func init() {
	cmdRoot.PersistentFlags().StringVar(&flagConfig, "config", "", "settings file (default: config.yaml under the user config dir)")
	cmdRoot.PersistentFlags().StringVar(&flagLang, "lang", "", `expression language: "c", "c++" or "rust"`)
	cmdRoot.PersistentFlags().StringVar(&flagColor, "color", "", `colorize output: "auto", "always" or "never"`)
	cmdAttach.Flags().BoolVar(&attachRemote, "remote", false, "connect to a serving peek instead of ptracing")
	cmdServe.Flags().IntVar(&servePID, "attach", 0, "pid of the process to attach and serve")
	cmdServe.MarkFlagRequired("attach")
	cmdRoot.AddCommand(cmdRepl, cmdEval, cmdAttach, cmdServe, cmdDemo)
}

// setup resolves the effective configuration: file, then flags on top.
func setup(cmd *cobra.Command, args []string) error {
	c, err := loadConfig(flagConfig)
	if err != nil {
		return err
	}
	if flagLang != "" {
		c.Language = flagLang
	}
	if flagColor != "" {
		c.Color = flagColor
	}
	if err := validateConfig(c); err != nil {
		return err
	}
	applyDefaults(c)
	lang, err := parseLanguage(c.Language)
	if err != nil {
		return err
	}
	switch c.Color {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		fd := os.Stdout.Fd()
		color.NoColor = !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
	}
	cfg = c
	evalLang = lang
	return nil
}

func runAttach(cmd *cobra.Command, args []string) error {
	pid, err := strconv.Atoi(args[0])
	if err != nil || pid <= 0 {
		return fmt.Errorf("bad pid %q", args[0])
	}
	loop := target.NewLoop()
	var (
		p       target.Provider
		cleanup func()
	)
	if attachRemote {
		rp, err := target.Dial(loop, pid)
		if err != nil {
			return fmt.Errorf("dial serving process %d: %v", pid, err)
		}
		p, cleanup = rp, func() { rp.Close() }
	} else {
		p, cleanup, err = attachLocal(loop, pid)
		if err != nil {
			return err
		}
	}
	s := newSession(loop, p, &expr.FindNameContext{}, 0, cleanup)
	defer s.Close()
	fmt.Fprintf(os.Stderr, "attached; no symbols are loaded, so use registers, addresses and casts\n")
	return s.repl()
}

func main() {
	if err := cmdRoot.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
