//go:build windows

package proc

import "syscall"

// Namespaces, chroot, setsid and pdeathsig have no Windows equivalent
// here; the descriptor launches with default process attributes.
func (c *Command) sysProcAttr() *syscall.SysProcAttr {
	return nil
}
