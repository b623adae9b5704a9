//go:build !linux

package proc

// Namespace flags are Linux-only; Unshare is a no-op elsewhere.
const (
	CloneNewNS   = 0
	CloneNewUTS  = 0
	CloneNewIPC  = 0
	CloneNewUser = 0
	CloneNewPID  = 0
	CloneNewNet  = 0
)
