//go:build !windows
// +build !windows

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/nscage/nscage/pkg/proc"
)

// runTTY launches c on a fresh pseudo-terminal and bridges it to the
// caller's terminal until the child exits.
func runTTY(ctx context.Context, c *proc.Command) (proc.ExitStatus, error) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		return proc.ExitStatus{}, err
	}
	defer ptmx.Close()

	c.Stdin(proc.Fd(tty)).Stdout(proc.Fd(tty)).Stderr(proc.Fd(tty)).Setctty()

	if isatty.IsTerminal(os.Stdin.Fd()) {
		_ = pty.InheritSize(os.Stdin, ptmx)

		go watchWindowSize(ptmx)

		oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err == nil {
			defer term.Restore(int(os.Stdin.Fd()), oldState)
		}
	}

	child, err := c.Start(ctx)
	tty.Close()
	if err != nil {
		return proc.ExitStatus{}, err
	}

	go func() { _, _ = io.Copy(ptmx, os.Stdin) }()
	go func() { _, _ = io.Copy(os.Stdout, ptmx) }()

	return child.Wait()
}

func watchWindowSize(ptmx *os.File) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGWINCH)
	defer signal.Stop(sigc)

	for range sigc {
		_ = pty.InheritSize(os.Stdin, ptmx)
	}
}
