// Package proc builds and launches child processes.
//
// A Command accumulates configuration for a process that does not exist
// yet: the program path, argv, environment policy, working directory,
// namespace and root options, and per-stream stdio overrides. Nothing is
// touched on the host until one of the spawn methods is called. A Command
// is not safe for concurrent use.
package proc

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"
)

// ConversionError reports a caller-supplied string that cannot be passed
// to the operating system, for example one with an embedded NUL byte.
type ConversionError struct {
	Input string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("string %q is not representable as a native string", e.Input)
}

type Command struct {
	program string
	// args[0] is always the program name passed to NewCommand.
	args []string
	// nil means the child inherits the ambient environment verbatim.
	env map[string]string
	dir string

	stdin  Stdio
	stdout Stdio
	stderr Stdio

	cloneFlags uintptr
	chroot     string
	uid, gid   int
	mapUser    bool
	setsid     bool
	setctty    bool
	pdeathsig  syscall.Signal

	// Err holds the first conversion error encountered by the builder.
	// The call that caused it changes nothing else, and all spawn
	// methods fail while Err is set.
	Err error
}

// NewCommand returns a launch descriptor for program with no arguments,
// the ambient environment, the current working directory and no stdio
// overrides. Stdio defaults are chosen by the spawn method used: Start
// and Run inherit the parent's streams, Output creates pipes.
func NewCommand(program string) *Command {
	c := &Command{}
	if !c.check(program) {
		return c
	}
	c.program = program
	c.args = []string{program}
	return c
}

// check records a ConversionError for the first bad input and reports
// whether s may be used.
func (c *Command) check(s string) bool {
	if strings.IndexByte(s, 0) < 0 {
		return true
	}
	if c.Err == nil {
		c.Err = &ConversionError{Input: s}
	}
	return false
}

// Arg appends a single argument.
func (c *Command) Arg(arg string) *Command {
	if c.check(arg) {
		c.args = append(c.args, arg)
	}
	return c
}

// Args appends each argument in order.
func (c *Command) Args(args ...string) *Command {
	for _, arg := range args {
		c.Arg(arg)
	}
	return c
}

// materialize snapshots the ambient environment into the override map.
// It runs at most once; after EnvClear the map is already present and
// ambient state is never consulted again.
func (c *Command) materialize() {
	if c.env != nil {
		return
	}
	c.env = make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			c.env[k] = v
		}
	}
}

// Env sets an environment variable for the child. The first call to Env
// or EnvRemove copies the ambient environment, so other variables are
// preserved.
func (c *Command) Env(key, value string) *Command {
	if !c.check(key) || !c.check(value) {
		return c
	}
	c.materialize()
	c.env[key] = value
	return c
}

// EnvRemove removes an environment variable. Removing a variable that is
// not set is a no-op.
func (c *Command) EnvRemove(key string) *Command {
	if !c.check(key) {
		return c
	}
	c.materialize()
	delete(c.env, key)
	return c
}

// EnvClear starts the child with an empty environment, discarding the
// ambient variables and anything set earlier. Env may still be called
// afterwards to build on the empty base.
func (c *Command) EnvClear() *Command {
	c.env = make(map[string]string)
	return c
}

// Dir sets the child's working directory. The empty string means no
// override and the child inherits the parent's working directory.
//
// Under Chroot or a pivot-root launch the directory is interpreted
// inside the new root. If no override is set the root-transition code
// keeps the current directory when it still resolves in the new root
// and falls back to "/" otherwise, so Dir(cwd) is not a no-op there.
func (c *Command) Dir(dir string) *Command {
	if c.check(dir) {
		c.dir = dir
	}
	return c
}

// Stdin sets the configuration for the child's standard input.
func (c *Command) Stdin(cfg Stdio) *Command {
	c.stdin = cfg
	return c
}

// Stdout sets the configuration for the child's standard output.
func (c *Command) Stdout(cfg Stdio) *Command {
	c.stdout = cfg
	return c
}

// Stderr sets the configuration for the child's standard error.
func (c *Command) Stderr(cfg Stdio) *Command {
	c.stderr = cfg
	return c
}

// Unshare runs the child in new namespaces. flags is a bitwise or of the
// CLONE_NEW* constants from golang.org/x/sys/unix.
func (c *Command) Unshare(flags uintptr) *Command {
	c.cloneFlags |= flags
	return c
}

// User maps the child to uid and gid inside a new user namespace.
// Implies Unshare(CLONE_NEWUSER).
func (c *Command) User(uid, gid int) *Command {
	c.uid, c.gid = uid, gid
	c.mapUser = true
	return c
}

// Chroot changes the child's root directory before exec. Dir is then
// resolved inside the new root.
func (c *Command) Chroot(dir string) *Command {
	if c.check(dir) {
		c.chroot = dir
	}
	return c
}

// Setsid starts the child in a new session.
func (c *Command) Setsid() *Command {
	c.setsid = true
	return c
}

// Setctty makes the child's standard input its controlling terminal.
// Implies Setsid; stdin must be configured with Fd on a terminal.
func (c *Command) Setctty() *Command {
	c.setsid = true
	c.setctty = true
	return c
}

// Pdeathsig delivers sig to the child when the parent thread dies.
func (c *Command) Pdeathsig(sig syscall.Signal) *Command {
	c.pdeathsig = sig
	return c
}

// Program returns the executable path given to NewCommand.
func (c *Command) Program() string { return c.program }

// Argv returns a copy of the child's argument vector, including argv[0].
func (c *Command) Argv() []string {
	return append([]string(nil), c.args...)
}

// Getdir returns the working directory override, or "" if unset.
func (c *Command) Getdir() string { return c.dir }

// Streams returns the recorded stdio overrides in stdin, stdout, stderr
// order. Unset streams have the zero Stdio.
func (c *Command) Streams() (stdin, stdout, stderr Stdio) {
	return c.stdin, c.stdout, c.stderr
}

// CloneFlags returns the namespace flags requested with Unshare, not
// including the user namespace implied by User.
func (c *Command) CloneFlags() uintptr { return c.cloneFlags }

// UserMapping returns the uid/gid mapping requested with User.
func (c *Command) UserMapping() (uid, gid int, ok bool) {
	return c.uid, c.gid, c.mapUser
}

// Environ returns the child's environment in "key=value" form, sorted by
// key. It returns nil while the descriptor still inherits the ambient
// environment; reading it does not materialize.
func (c *Command) Environ() []string {
	if c.env == nil {
		return nil
	}
	env := make([]string, 0, len(c.env))
	for k, v := range c.env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

func (c *Command) String() string {
	return fmt.Sprintf("argv: %q, env: %d vars, dir: %q, root: %q",
		c.args, len(c.env), c.dir, c.chroot)
}
