package proc

import "os"

type stdioKind int

const (
	// No override recorded. The spawn method picks the default: Start
	// and Run inherit, Output pipes.
	stdioUnset stdioKind = iota
	stdioInherit
	stdioNull
	stdioPiped
	stdioFd
)

// Stdio describes one of the child's standard streams. The zero value
// records no override.
type Stdio struct {
	kind stdioKind
	file *os.File
}

// Inherit uses the parent's stream.
func Inherit() Stdio { return Stdio{kind: stdioInherit} }

// Null connects the stream to the null device.
func Null() Stdio { return Stdio{kind: stdioNull} }

// Piped creates a new pipe between the parent and the child. The parent
// end is available on the Child returned by Start.
func Piped() Stdio { return Stdio{kind: stdioPiped} }

// Fd connects the stream to an open file. The file is not closed by the
// spawn methods.
func Fd(f *os.File) Stdio { return Stdio{kind: stdioFd, file: f} }

// IsSet reports whether an override was recorded.
func (s Stdio) IsSet() bool { return s.kind != stdioUnset }

func (s Stdio) String() string {
	switch s.kind {
	case stdioInherit:
		return "inherit"
	case stdioNull:
		return "null"
	case stdioPiped:
		return "pipe"
	case stdioFd:
		return "fd " + s.file.Name()
	default:
		return "default"
	}
}
