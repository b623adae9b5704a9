package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nscage/nscage/pkg/config"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <config>",
	Short: "Resolve a configuration file and print the effective launch descriptor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		launch, err := config.Load(args[0])
		if err != nil {
			return err
		}

		c, files, err := launch.Build()
		if err != nil {
			return err
		}
		for _, f := range files {
			f.Close()
		}

		label := color.New(color.FgCyan, color.Bold).SprintFunc()

		fmt.Printf("%s %s\n", label("program:"), c.Program())
		fmt.Printf("%s %q\n", label("argv:"), c.Argv())

		if env := c.Environ(); env == nil {
			fmt.Printf("%s inherited\n", label("env:"))
		} else {
			fmt.Printf("%s %d variables\n", label("env:"), len(env))
			for _, kv := range env {
				fmt.Printf("  %s\n", kv)
			}
		}

		dir := c.Getdir()
		if dir == "" {
			dir = "inherited"
		}
		fmt.Printf("%s %s\n", label("dir:"), dir)

		stdin, stdout, stderr := c.Streams()
		fmt.Printf("%s stdin=%s stdout=%s stderr=%s\n", label("stdio:"), stdin, stdout, stderr)

		if launch.Root != "" {
			mode := "chroot"
			if launch.Pivot {
				mode = "pivot_root"
			}
			fmt.Printf("%s %s %s\n", label("root:"), mode, launch.Root)
		}
		if launch.Hostname != "" {
			fmt.Printf("%s %s\n", label("hostname:"), launch.Hostname)
		}
		if uid, gid, ok := c.UserMapping(); ok {
			fmt.Printf("%s uid=%d gid=%d\n", label("user:"), uid, gid)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
