// Package config loads launch configuration files and maps them onto
// launch descriptors.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anmitsu/go-shlex"
	"gopkg.in/yaml.v3"

	"github.com/nscage/nscage/pkg/proc"
)

// A config file describing a single process launch.
type Launch struct {
	// The program to execute. Args does not include argv[0].
	Program string   `json:"program,omitempty" yaml:"program,omitempty"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty"`
	// A full command line split with shell rules, as an alternative to
	// Program and Args.
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	// Environment overrides applied on top of the inherited environment,
	// or on top of nothing if EnvClear is set.
	Env      map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	EnvClear bool              `json:"env_clear,omitempty" yaml:"env_clear,omitempty"`
	UnsetEnv []string          `json:"unset_env,omitempty" yaml:"unset_env,omitempty"`

	// Working directory. Resolved inside the new root when Root is set.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Standard stream configuration: "inherit", "pipe", "null", or a
	// file path. Empty leaves the choice to the launch operation.
	Stdin  string `json:"stdin,omitempty" yaml:"stdin,omitempty"`
	Stdout string `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty" yaml:"stderr,omitempty"`

	// Root filesystem transition: chroot by default, pivot_root when
	// Pivot is set. Pivot launches go through the container-init path.
	Root  string `json:"root,omitempty" yaml:"root,omitempty"`
	Pivot bool   `json:"pivot,omitempty" yaml:"pivot,omitempty"`

	// Hostname inside a new UTS namespace. Requires the init path.
	Hostname string `json:"hostname,omitempty" yaml:"hostname,omitempty"`

	// Uid and Gid the child is mapped to inside a new user namespace.
	Uid *int `json:"uid,omitempty" yaml:"uid,omitempty"`
	Gid *int `json:"gid,omitempty" yaml:"gid,omitempty"`

	Setsid bool `json:"setsid,omitempty" yaml:"setsid,omitempty"`
}

// Load reads a Launch from a .json, .yml or .yaml file.
func Load(filename string) (*Launch, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var launch Launch

	if strings.HasSuffix(filename, ".json") {
		dec := json.NewDecoder(f)

		if err := dec.Decode(&launch); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	} else if strings.HasSuffix(filename, ".yml") || strings.HasSuffix(filename, ".yaml") {
		dec := yaml.NewDecoder(f)

		if err := dec.Decode(&launch); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	} else {
		return nil, fmt.Errorf("unknown config file extension: %s", filename)
	}

	return &launch, nil
}

// Argv resolves Program/Args or Command into a full argument vector.
func (l *Launch) Argv() ([]string, error) {
	if l.Command != "" {
		if l.Program != "" {
			return nil, fmt.Errorf("config sets both program and command")
		}
		tokens, err := shlex.Split(l.Command, true)
		if err != nil {
			return nil, fmt.Errorf("failed to split command: %w", err)
		}
		if len(tokens) == 0 {
			return nil, fmt.Errorf("config command is empty")
		}
		return tokens, nil
	}
	if l.Program == "" {
		return nil, fmt.Errorf("config has no program to run")
	}
	return append([]string{l.Program}, l.Args...), nil
}

// Build maps the config onto a launch descriptor. File-path stdio
// streams are opened here; the returned files must be closed by the
// caller once the child has started. Pivot-root and hostname setup are
// not descriptor state and stay with the launcher.
func (l *Launch) Build() (*proc.Command, []*os.File, error) {
	argv, err := l.Argv()
	if err != nil {
		return nil, nil, err
	}

	c := proc.NewCommand(argv[0]).Args(argv[1:]...)

	if l.EnvClear {
		c.EnvClear()
	}
	for k, v := range l.Env {
		c.Env(k, v)
	}
	for _, k := range l.UnsetEnv {
		c.EnvRemove(k)
	}

	c.Dir(l.Dir)

	if l.Root != "" && !l.Pivot {
		c.Chroot(l.Root)
	}
	if l.Uid != nil || l.Gid != nil {
		uid, gid := 0, 0
		if l.Uid != nil {
			uid = *l.Uid
		}
		if l.Gid != nil {
			gid = *l.Gid
		}
		c.User(uid, gid)
	}
	if l.Setsid {
		c.Setsid()
	}

	var files []*os.File

	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, stream := range []struct {
		spec  string
		write bool
		set   func(proc.Stdio) *proc.Command
	}{
		{l.Stdin, false, c.Stdin},
		{l.Stdout, true, c.Stdout},
		{l.Stderr, true, c.Stderr},
	} {
		cfg, f, err := openStdio(stream.spec, stream.write)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		if cfg.IsSet() {
			stream.set(cfg)
		}
		if f != nil {
			files = append(files, f)
		}
	}

	if c.Err != nil {
		closeAll()
		return nil, nil, c.Err
	}

	return c, files, nil
}

func openStdio(spec string, write bool) (proc.Stdio, *os.File, error) {
	switch spec {
	case "":
		return proc.Stdio{}, nil, nil
	case "inherit":
		return proc.Inherit(), nil, nil
	case "pipe":
		return proc.Piped(), nil, nil
	case "null":
		return proc.Null(), nil, nil
	default:
		var f *os.File
		var err error
		if write {
			f, err = os.OpenFile(spec, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		} else {
			f, err = os.Open(spec)
		}
		if err != nil {
			return proc.Stdio{}, nil, fmt.Errorf("failed to open %s: %w", spec, err)
		}
		return proc.Fd(f), f, nil
	}
}
