//go:build linux

package proc

import "golang.org/x/sys/unix"

// Namespace flags accepted by Unshare.
const (
	CloneNewNS   = unix.CLONE_NEWNS
	CloneNewUTS  = unix.CLONE_NEWUTS
	CloneNewIPC  = unix.CLONE_NEWIPC
	CloneNewUser = unix.CLONE_NEWUSER
	CloneNewPID  = unix.CLONE_NEWPID
	CloneNewNet  = unix.CLONE_NEWNET
)
