package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nscage/nscage/pkg/proc"
	"github.com/nscage/nscage/pkg/rootfs"
)

var (
	execEnv      []string
	execUnsetEnv []string
	execClearEnv bool
	execDir      string
	execRoot     string
	execPivot    bool
	execHostname string
	execUid      int
	execGid      int
	execCapture  bool
	execTTY      bool
)

var execCmd = &cobra.Command{
	Use:   "exec [flags] program [args...]",
	Short: "Launch a program from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := proc.NewCommand(args[0]).Args(args[1:]...)

		if execClearEnv {
			c.EnvClear()
		}
		for _, kv := range execEnv {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("invalid --env value %q, expected key=value", kv)
			}
			c.Env(k, v)
		}
		for _, k := range execUnsetEnv {
			c.EnvRemove(k)
		}

		c.Dir(execDir)

		if execRoot != "" && !execPivot {
			c.Chroot(execRoot)
		}
		if execUid >= 0 || execGid >= 0 {
			uid, gid := max(execUid, 0), max(execGid, 0)
			c.User(uid, gid)
		}

		if c.Err != nil {
			return c.Err
		}

		useInit := execPivot || execHostname != ""

		if execCapture {
			if useInit || execTTY {
				return fmt.Errorf("--capture cannot be combined with --pivot, --hostname or --tty")
			}
			out, err := c.Output(cmd.Context())
			if err != nil {
				return err
			}
			os.Stdout.Write(out.Stdout)
			os.Stderr.Write(out.Stderr)
			if !out.Status.Success() {
				os.Exit(exitCode(out.Status.Code, int(out.Status.Signal)))
			}
			return nil
		}

		var status proc.ExitStatus
		var err error

		if useInit {
			status, err = runInit(cmd.Context(), c,
				rootfs.Transition{Root: execRoot, Pivot: execPivot}, execHostname)
		} else if execTTY {
			status, err = runTTY(cmd.Context(), c)
		} else {
			status, err = c.Run(cmd.Context())
		}
		if err != nil {
			return err
		}

		if !status.Success() {
			os.Exit(exitCode(status.Code, int(status.Signal)))
		}
		return nil
	},
}

func init() {
	execCmd.Flags().SetInterspersed(false)

	execCmd.Flags().StringArrayVarP(&execEnv, "env", "e", nil, "set an environment variable (key=value)")
	execCmd.Flags().StringArrayVar(&execUnsetEnv, "unset-env", nil, "remove an environment variable")
	execCmd.Flags().BoolVar(&execClearEnv, "clear-env", false, "start from an empty environment")
	execCmd.Flags().StringVar(&execDir, "dir", "", "working directory for the child")
	execCmd.Flags().StringVar(&execRoot, "root", "", "new root directory for the child")
	execCmd.Flags().BoolVar(&execPivot, "pivot", false, "use pivot_root instead of chroot (requires --root)")
	execCmd.Flags().StringVar(&execHostname, "hostname", "", "hostname inside a new UTS namespace")
	execCmd.Flags().IntVar(&execUid, "uid", -1, "uid inside a new user namespace")
	execCmd.Flags().IntVar(&execGid, "gid", -1, "gid inside a new user namespace")
	execCmd.Flags().BoolVar(&execCapture, "capture", false, "capture the child's output and print it on exit")
	execCmd.Flags().BoolVarP(&execTTY, "tty", "t", false, "run the child on a new pseudo-terminal")

	rootCmd.AddCommand(execCmd)
}
