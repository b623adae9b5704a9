package main

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nscage/nscage/pkg/config"
	"github.com/nscage/nscage/pkg/proc"
	"github.com/nscage/nscage/pkg/rootfs"
)

var runCmd = &cobra.Command{
	Use:   "run <config>",
	Short: "Launch a process from a configuration file",
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

		runId := uuid.NewString()

		slog.Debug("launching", "id", runId, "config", args[0], "descriptor", c.String())

		var status proc.ExitStatus

		if launch.Pivot || launch.Hostname != "" {
			status, err = runInit(cmd.Context(), c,
				rootfs.Transition{Root: launch.Root, Pivot: launch.Pivot},
				launch.Hostname)
		} else {
			status, err = c.Run(cmd.Context())
		}

		for _, f := range files {
			f.Close()
		}
		if err != nil {
			return err
		}

		slog.Debug("child exited", "id", runId, "status", status.String())

		if !status.Success() {
			os.Exit(exitCode(status.Code, int(status.Signal)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
