//go:build linux

package proc

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func (c *Command) sysProcAttr() *syscall.SysProcAttr {
	if c.cloneFlags == 0 && !c.mapUser && c.chroot == "" && !c.setsid && c.pdeathsig == 0 {
		return nil
	}

	attr := &syscall.SysProcAttr{
		Cloneflags: c.cloneFlags,
		Chroot:     c.chroot,
		Setsid:     c.setsid,
		Pdeathsig:  c.pdeathsig,
	}

	if c.setctty {
		// stdin is fd 0 in the child
		attr.Setctty = true
		attr.Ctty = 0
	}

	if c.mapUser {
		attr.Cloneflags |= unix.CLONE_NEWUSER
		attr.GidMappingsEnableSetgroups = false
		attr.UidMappings = []syscall.SysProcIDMap{
			{
				ContainerID: c.uid,
				HostID:      syscall.Getuid(),
				Size:        1,
			},
		}
		attr.GidMappings = []syscall.SysProcIDMap{
			{
				ContainerID: c.gid,
				HostID:      syscall.Getgid(),
				Size:        1,
			},
		}
	}

	return attr
}
