//go:build linux

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/nscage/nscage/pkg/proc"
	"github.com/nscage/nscage/pkg/rootfs"
)

// initEnv carries the launch parameters to the re-executed init half of
// a pivot-root launch.
const initEnv = "NSCAGE_INIT_PARAMS"

type initParams struct {
	Program string   `json:"program"`
	Args    []string `json:"args"`
	// nil means the init process's own environment is used.
	Env      []string          `json:"env"`
	Dir      string            `json:"dir"`
	Root     rootfs.Transition `json:"root"`
	Hostname string            `json:"hostname"`
}

// runInit launches c through the container-init path: nscage re-executes
// itself inside the new namespaces, the child half applies the root
// transition and hostname, then execs the target program.
func runInit(ctx context.Context, c *proc.Command, t rootfs.Transition, hostname string) (proc.ExitStatus, error) {
	if t.Pivot && t.Root == "" {
		return proc.ExitStatus{}, fmt.Errorf("pivot requested without a root")
	}

	exe, err := os.Executable()
	if err != nil {
		return proc.ExitStatus{}, fmt.Errorf("failed to read executable path: %w", err)
	}

	buf, err := json.Marshal(initParams{
		Program:  c.Program(),
		Args:     c.Argv(),
		Env:      c.Environ(),
		Dir:      c.Getdir(),
		Root:     t,
		Hostname: hostname,
	})
	if err != nil {
		return proc.ExitStatus{}, err
	}

	flags := c.CloneFlags() | uintptr(proc.CloneNewNS)
	if hostname != "" {
		flags |= uintptr(proc.CloneNewUTS)
	}

	init := proc.NewCommand(exe).
		Arg("container-init").
		Env(initEnv, string(buf)).
		Unshare(flags).
		Pdeathsig(syscall.SIGKILL)

	if uid, gid, ok := c.UserMapping(); ok {
		init.User(uid, gid)
	} else if os.Geteuid() != 0 {
		// unprivileged pivot_root needs a user namespace
		init.User(os.Getuid(), os.Getgid())
	}

	stdin, stdout, stderr := c.Streams()
	init.Stdin(stdin).Stdout(stdout).Stderr(stderr)

	return init.Run(ctx)
}

var initCmd = &cobra.Command{
	Use:    "container-init",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := os.Getenv(initEnv)
		if raw == "" {
			return fmt.Errorf("container-init must not be invoked directly")
		}
		os.Unsetenv(initEnv)

		var params initParams
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return fmt.Errorf("failed to decode init params: %w", err)
		}

		if params.Hostname != "" {
			if err := unix.Sethostname([]byte(params.Hostname)); err != nil {
				return fmt.Errorf("failed to set hostname: %w", err)
			}
		}

		if params.Root.Root != "" {
			if err := rootfs.Apply(params.Root, params.Dir); err != nil {
				return err
			}
		} else if params.Dir != "" {
			if err := os.Chdir(params.Dir); err != nil {
				return err
			}
		}

		// make the target environment our own so LookPath honors it
		if params.Env != nil {
			os.Clearenv()
			for _, kv := range params.Env {
				if k, v, ok := strings.Cut(kv, "="); ok {
					os.Setenv(k, v)
				}
			}
		}

		path := params.Program
		if !strings.Contains(path, "/") {
			if path, err := exec.LookPath(params.Program); err == nil {
				return unix.Exec(path, params.Args, os.Environ())
			}
			return fmt.Errorf("failed to find %s in the new root", params.Program)
		}
		return unix.Exec(path, params.Args, os.Environ())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
