//go:build linux

package rootfs

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Apply performs the root transition in the calling process. It must run
// in the child, after namespace entry and before exec. workdir is the
// caller's override as recorded on the launch descriptor, interpreted
// inside the new root; when empty the previous working directory is kept
// if it still resolves in the new root, otherwise the child starts at
// "/".
func Apply(t Transition, workdir string) error {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}

	if t.Pivot {
		if err := pivot(t.Root); err != nil {
			return err
		}
	} else {
		if err := unix.Chroot(t.Root); err != nil {
			return fmt.Errorf("failed to chroot to %s: %w", t.Root, err)
		}
	}

	if workdir == "" {
		if wd, ok := TranslateWorkdir(cwd, t.Root); ok {
			workdir = wd
		} else {
			// reuse the literal path when it still resolves in the
			// new root
			workdir = cwd
		}
	}
	if err := unix.Chdir(workdir); err != nil {
		return unix.Chdir("/")
	}
	return nil
}

// pivot swaps the root mount for root using the stacked
// pivot_root(".", ".") form, then detaches the old root.
func pivot(root string) error {
	// pivot_root requires the new root to be a mount point
	if err := unix.Mount("", "/", "", unix.MS_SLAVE|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("failed to make mounts slave: %w", err)
	}
	if err := unix.Mount(root, root, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("failed to bind new root: %w", err)
	}
	if err := unix.Chdir(root); err != nil {
		return fmt.Errorf("failed to enter new root: %w", err)
	}
	if err := unix.PivotRoot(".", "."); err != nil {
		return fmt.Errorf("failed to pivot into new root: %w", err)
	}
	if err := unix.Unmount(".", unix.MNT_DETACH); err != nil {
		return fmt.Errorf("failed to unmount old root: %w", err)
	}
	if err := unix.Chdir("/"); err != nil {
		return fmt.Errorf("failed to enter root: %w", err)
	}
	return nil
}
