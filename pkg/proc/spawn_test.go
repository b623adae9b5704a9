//go:build !windows

package proc

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunExitCode(t *testing.T) {
	status, err := NewCommand("sh").Args("-c", "exit 42").
		Stdout(Null()).Stderr(Null()).
		Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if status.Code != 42 {
		t.Fatalf("status = %v, want exit status 42", status)
	}
	if status.Success() {
		t.Fatal("non-zero exit reported as success")
	}
}

func TestOutputCapture(t *testing.T) {
	out, err := NewCommand("sh").Args("-c", "echo hello; echo oops 1>&2").
		Output(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := string(out.Stdout); got != "hello\n" {
		t.Fatalf("stdout = %q, want %q", got, "hello\n")
	}
	if got := string(out.Stderr); got != "oops\n" {
		t.Fatalf("stderr = %q, want %q", got, "oops\n")
	}
	if !out.Status.Success() {
		t.Fatalf("status = %v", out.Status)
	}
}

func TestOutputStdinEOF(t *testing.T) {
	// the default stdin under Output is a pipe at EOF, so cat exits
	out, err := NewCommand("cat").Output(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Stdout) != 0 {
		t.Fatalf("stdout = %q, want empty", out.Stdout)
	}
}

func TestOutputEnv(t *testing.T) {
	out, err := NewCommand("sh").Args("-c", `printf %s "$NSCAGE_TEST_VALUE"`).
		Env("NSCAGE_TEST_VALUE", "from-descriptor").
		Output(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := string(out.Stdout); got != "from-descriptor" {
		t.Fatalf("stdout = %q, want %q", got, "from-descriptor")
	}
}

func TestOutputEnvClear(t *testing.T) {
	out, err := NewCommand("sh").Args("-c", `echo "${HOME:-unset}"`).
		EnvClear().
		Output(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(out.Stdout)); got != "unset" {
		t.Fatalf("stdout = %q, want %q", got, "unset")
	}
}

func TestOutputRespectsNullOverride(t *testing.T) {
	out, err := NewCommand("sh").Args("-c", "echo discarded").
		Stdout(Null()).
		Output(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Stdout) != 0 {
		t.Fatalf("stdout = %q, want empty", out.Stdout)
	}
}

func TestStartPiped(t *testing.T) {
	child, err := NewCommand("cat").
		Stdin(Piped()).Stdout(Piped()).
		Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if child.Pid() <= 0 {
		t.Fatalf("pid = %d", child.Pid())
	}

	if _, err := io.WriteString(child.Stdin, "ping\n"); err != nil {
		t.Fatal(err)
	}
	if err := child.Stdin.Close(); err != nil {
		t.Fatal(err)
	}

	buf, err := io.ReadAll(child.Stdout)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "ping\n" {
		t.Fatalf("stdout = %q, want %q", buf, "ping\n")
	}

	status, err := child.Wait()
	if err != nil {
		t.Fatal(err)
	}
	if !status.Success() {
		t.Fatalf("status = %v", status)
	}
}

func TestRunDir(t *testing.T) {
	dir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}

	out, err := NewCommand("pwd").Dir(dir).Output(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(out.Stdout)); got != resolved {
		t.Fatalf("pwd = %q, want %q", got, resolved)
	}
}

func TestStartMissingProgram(t *testing.T) {
	_, err := NewCommand("/nonexistent/nscage-test-binary").Start(context.Background())
	if err == nil {
		t.Fatal("starting a missing program did not fail")
	}
}

func TestConversionErrorBlocksSpawn(t *testing.T) {
	_, err := NewCommand("prog\x00").Run(context.Background())

	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("err = %v, want a ConversionError", err)
	}
}
