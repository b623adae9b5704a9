package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, name, contents string) string {
	t.Helper()

	filename := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(filename, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestLoadYAML(t *testing.T) {
	launch, err := Load(writeConfig(t, "launch.yml", `
program: echo
args: [hello, world]
env:
  FOO: bar
dir: /tmp
stdout: "null"
root: /var/roots/a
pivot: true
`))
	if err != nil {
		t.Fatal(err)
	}

	if launch.Program != "echo" {
		t.Fatalf("program = %q", launch.Program)
	}
	if !reflect.DeepEqual(launch.Args, []string{"hello", "world"}) {
		t.Fatalf("args = %q", launch.Args)
	}
	if launch.Env["FOO"] != "bar" {
		t.Fatalf("env = %q", launch.Env)
	}
	if launch.Stdout != "null" || launch.Dir != "/tmp" {
		t.Fatalf("stdout = %q, dir = %q", launch.Stdout, launch.Dir)
	}
	if launch.Root != "/var/roots/a" || !launch.Pivot {
		t.Fatalf("root = %q, pivot = %v", launch.Root, launch.Pivot)
	}
}

func TestLoadJSON(t *testing.T) {
	launch, err := Load(writeConfig(t, "launch.json",
		`{"command": "echo 'hello world'", "env_clear": true}`))
	if err != nil {
		t.Fatal(err)
	}

	if launch.Command != "echo 'hello world'" || !launch.EnvClear {
		t.Fatalf("command = %q, env_clear = %v", launch.Command, launch.EnvClear)
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	if _, err := Load(writeConfig(t, "launch.toml", "program = \"echo\"\n")); err == nil {
		t.Fatal("loading a .toml file did not fail")
	}
}

func TestArgvFromCommand(t *testing.T) {
	launch := &Launch{Command: `echo 'hello world' again`}

	argv, err := launch.Argv()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"echo", "hello world", "again"}
	if !reflect.DeepEqual(argv, want) {
		t.Fatalf("argv = %q, want %q", argv, want)
	}
}

func TestArgvConflict(t *testing.T) {
	launch := &Launch{Program: "echo", Command: "echo"}
	if _, err := launch.Argv(); err == nil {
		t.Fatal("program and command together did not fail")
	}
}

func TestArgvEmpty(t *testing.T) {
	if _, err := (&Launch{}).Argv(); err == nil {
		t.Fatal("empty config did not fail")
	}
}

func TestBuild(t *testing.T) {
	uid := 0
	launch := &Launch{
		Program: "echo",
		Args:    []string{"hi"},
		Env:     map[string]string{"FOO": "bar"},
		Dir:     "/tmp",
		Stdout:  "null",
		Uid:     &uid,
	}

	c, files, err := launch.Build()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("files = %d, want none", len(files))
	}

	if want := []string{"echo", "hi"}; !reflect.DeepEqual(c.Argv(), want) {
		t.Fatalf("argv = %q, want %q", c.Argv(), want)
	}
	found := false
	for _, kv := range c.Environ() {
		if kv == "FOO=bar" {
			found = true
		}
	}
	if !found {
		t.Fatal("environ does not contain FOO=bar")
	}
	if c.Getdir() != "/tmp" {
		t.Fatalf("dir = %q", c.Getdir())
	}

	_, stdout, _ := c.Streams()
	if !stdout.IsSet() {
		t.Fatal("stdout override lost")
	}
	if _, _, ok := c.UserMapping(); !ok {
		t.Fatal("uid mapping lost")
	}
}

func TestBuildStdioFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "out.log")
	launch := &Launch{Program: "echo", Stdout: logFile}

	c, files, err := launch.Build()
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	if len(files) != 1 {
		t.Fatalf("files = %d, want 1", len(files))
	}
	if _, err := os.Stat(logFile); err != nil {
		t.Fatal(err)
	}

	_, stdout, _ := c.Streams()
	if !stdout.IsSet() {
		t.Fatal("stdout override lost")
	}
}

func TestBuildEnvClear(t *testing.T) {
	launch := &Launch{Program: "echo", EnvClear: true, Env: map[string]string{"A": "1"}}

	c, _, err := launch.Build()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"A=1"}; !reflect.DeepEqual(c.Environ(), want) {
		t.Fatalf("environ = %q, want %q", c.Environ(), want)
	}
}
