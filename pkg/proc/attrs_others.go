//go:build !linux && !windows

package proc

import "syscall"

// Namespaces, chroot and pdeathsig are Linux features. On other Unix
// systems only session and controlling-terminal setup is honored.
func (c *Command) sysProcAttr() *syscall.SysProcAttr {
	if !c.setsid {
		return nil
	}
	attr := &syscall.SysProcAttr{Setsid: true}
	if c.setctty {
		attr.Setctty = true
		attr.Ctty = 0
	}
	return attr
}
