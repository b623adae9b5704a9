package proc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"github.com/nscage/nscage/pkg/rootfs"
)

// Child is a running process started from a Command. The pipe ends are
// only set for streams configured with Piped.
type Child struct {
	cmd *exec.Cmd

	Stdin  io.WriteCloser
	Stdout io.ReadCloser
	Stderr io.ReadCloser
}

func (c *Child) Pid() int { return c.cmd.Process.Pid }

// Wait waits for the child to exit. A non-zero exit code or a fatal
// signal is reported through ExitStatus, not through the error.
func (c *Child) Wait() (ExitStatus, error) {
	err := c.cmd.Wait()
	if _, ok := err.(*exec.ExitError); err != nil && !ok {
		return ExitStatus{}, err
	}
	return statusOf(c.cmd.ProcessState), nil
}

func (c *Child) Signal(sig os.Signal) error { return c.cmd.Process.Signal(sig) }

func (c *Child) Kill() error { return c.cmd.Process.Kill() }

// ExitStatus describes how a child exited. Signal is the fatal signal
// or zero if the child exited on its own.
type ExitStatus struct {
	Code   int
	Signal syscall.Signal
}

func (e ExitStatus) Success() bool { return e.Code == 0 && e.Signal == 0 }

func (e ExitStatus) String() string {
	if e.Signal != 0 {
		return fmt.Sprintf("signal: %v", e.Signal)
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func statusOf(ps *os.ProcessState) ExitStatus {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ExitStatus{Signal: ws.Signal()}
	}
	return ExitStatus{Code: ps.ExitCode()}
}

// Output holds the result of a capturing launch.
type Output struct {
	Stdout []byte
	Stderr []byte
	Status ExitStatus
}

func (c *Command) prepare(ctx context.Context) (*exec.Cmd, error) {
	if c.Err != nil {
		return nil, c.Err
	}

	cmd := exec.CommandContext(ctx, c.program)
	cmd.Args = c.Argv()
	cmd.Env = c.Environ()
	cmd.Dir = c.dir
	cmd.SysProcAttr = c.sysProcAttr()

	// Chroot without a workdir override would leave the child's working
	// directory outside the new root. Translate it in, or start at "/".
	if c.chroot != "" && c.dir == "" {
		cmd.Dir = "/"
		if cwd, err := os.Getwd(); err == nil {
			if wd, ok := rootfs.TranslateWorkdir(cwd, c.chroot); ok {
				cmd.Dir = wd
			}
		}
	}

	return cmd, nil
}

// Start launches the child and returns without waiting for it. Streams
// without an override inherit the parent's streams.
func (c *Command) Start(ctx context.Context) (*Child, error) {
	cmd, err := c.prepare(ctx)
	if err != nil {
		return nil, err
	}

	child := &Child{cmd: cmd}

	switch c.stdin.kind {
	case stdioUnset, stdioInherit:
		cmd.Stdin = os.Stdin
	case stdioNull:
		// exec.Cmd connects a nil stream to the null device.
	case stdioPiped:
		if child.Stdin, err = cmd.StdinPipe(); err != nil {
			return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
		}
	case stdioFd:
		cmd.Stdin = c.stdin.file
	}

	switch c.stdout.kind {
	case stdioUnset, stdioInherit:
		cmd.Stdout = os.Stdout
	case stdioNull:
	case stdioPiped:
		if child.Stdout, err = cmd.StdoutPipe(); err != nil {
			return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
		}
	case stdioFd:
		cmd.Stdout = c.stdout.file
	}

	switch c.stderr.kind {
	case stdioUnset, stdioInherit:
		cmd.Stderr = os.Stderr
	case stdioNull:
	case stdioPiped:
		if child.Stderr, err = cmd.StderrPipe(); err != nil {
			return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
		}
	case stdioFd:
		cmd.Stderr = c.stderr.file
	}

	slog.Debug("starting child", "argv", cmd.Args, "dir", cmd.Dir)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return child, nil
}

// Run launches the child and waits for it to exit.
func (c *Command) Run(ctx context.Context) (ExitStatus, error) {
	child, err := c.Start(ctx)
	if err != nil {
		return ExitStatus{}, err
	}
	return child.Wait()
}

// Output launches the child and collects what it writes. Streams without
// an override are captured through pipes, and stdin is a pipe that is
// closed immediately so the child reads EOF. A stream explicitly
// configured with Piped is captured the same way; Inherit, Null and Fd
// overrides are honored and leave the corresponding buffer empty.
func (c *Command) Output(ctx context.Context) (*Output, error) {
	cmd, err := c.prepare(ctx)
	if err != nil {
		return nil, err
	}

	switch c.stdin.kind {
	case stdioUnset, stdioPiped:
		cmd.Stdin = bytes.NewReader(nil)
	case stdioInherit:
		cmd.Stdin = os.Stdin
	case stdioNull:
	case stdioFd:
		cmd.Stdin = c.stdin.file
	}

	var stdout, stderr bytes.Buffer

	switch c.stdout.kind {
	case stdioUnset, stdioPiped:
		cmd.Stdout = &stdout
	case stdioInherit:
		cmd.Stdout = os.Stdout
	case stdioNull:
	case stdioFd:
		cmd.Stdout = c.stdout.file
	}

	switch c.stderr.kind {
	case stdioUnset, stdioPiped:
		cmd.Stderr = &stderr
	case stdioInherit:
		cmd.Stderr = os.Stderr
	case stdioNull:
	case stdioFd:
		cmd.Stderr = c.stderr.file
	}

	slog.Debug("starting child", "argv", cmd.Args, "dir", cmd.Dir)

	err = cmd.Run()
	if _, ok := err.(*exec.ExitError); err != nil && !ok {
		return nil, err
	}

	return &Output{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
		Status: statusOf(cmd.ProcessState),
	}, nil
}
