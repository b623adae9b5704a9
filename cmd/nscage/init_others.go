//go:build !linux

package main

import (
	"context"
	"fmt"

	"github.com/nscage/nscage/pkg/proc"
	"github.com/nscage/nscage/pkg/rootfs"
)

func runInit(ctx context.Context, c *proc.Command, t rootfs.Transition, hostname string) (proc.ExitStatus, error) {
	return proc.ExitStatus{}, fmt.Errorf("pivot_root and hostname launches are only supported on linux")
}
