// Package rootfs changes the filesystem root visible to a child process,
// by chroot or by pivot_root, and decides where its working directory
// ends up inside the new root.
package rootfs

import (
	"path"
	"strings"
)

// Transition describes a root change requested for a child process.
type Transition struct {
	// Root is the host path that becomes "/" for the child.
	Root string `json:"root" yaml:"root"`
	// Pivot selects pivot_root instead of chroot. Requires a new mount
	// namespace.
	Pivot bool `json:"pivot,omitempty" yaml:"pivot,omitempty"`
}

// TranslateWorkdir maps the current working directory into the new root.
// It reports false when cwd does not lie within root and therefore has
// no translated form.
func TranslateWorkdir(cwd, root string) (string, bool) {
	cwd, root = path.Clean(cwd), path.Clean(root)
	if root == "/" {
		return cwd, true
	}
	if cwd == root {
		return "/", true
	}
	if strings.HasPrefix(cwd, root+"/") {
		return cwd[len(root):], true
	}
	return "", false
}
