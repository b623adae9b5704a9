//go:build windows

package main

import (
	"context"
	"fmt"

	"github.com/nscage/nscage/pkg/proc"
)

func runTTY(ctx context.Context, c *proc.Command) (proc.ExitStatus, error) {
	return proc.ExitStatus{}, fmt.Errorf("--tty is not supported on windows")
}
