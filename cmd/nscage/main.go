package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var rootVerbose bool

var rootCmd = &cobra.Command{
	Use:   "nscage",
	Short: "nscage: launch processes in lightweight cages",
	Long: `nscage builds child process launch descriptors and runs them,
optionally inside new namespaces with a chroot or pivot_root.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if rootVerbose {
			level = slog.LevelDebug
		}

		w := os.Stderr

		slog.SetDefault(slog.New(
			tint.NewHandler(w, &tint.Options{
				Level:      level,
				TimeFormat: time.RFC3339Nano,
				NoColor:    !isatty.IsTerminal(w.Fd()),
			}),
		))
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "enable debug logging")
}

// exitCode converts a child exit status into our own exit code, using
// the shell convention for signals.
func exitCode(code int, sig int) int {
	if sig != 0 {
		return 128 + sig
	}
	return code
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}
