package commands

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/willibrandon/gorestore/lockfile"
)

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, lockfile.FileName), `{
  "locked": false,
  "version": 2,
  "targets": {
    "DNX,Version=v4.5.1": {
      "Legacy/1.0.0": {}
    }
  },
  "libraries": {
    "Legacy/1.0.0": {
      "sha512": "abc",
      "files": [ "lib/win8/Legacy.dll" ]
    }
  },
  "projectFileDependencyGroups": {
    "": [ "Legacy >= 1.0.0" ]
  }
}`)

	env, out, errOut := testEnv()
	cmd := NewCheckCommand(env)
	cmd.SetArgs([]string{dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	combined := out.String() + errOut.String()
	if !strings.Contains(combined, "Legacy 1.0.0 ships assemblies") {
		t.Errorf("issue not reported: %q", combined)
	}

	strict := NewCheckCommand(env)
	strict.SetArgs([]string{dir, "--strict"})
	if err := strict.Execute(); !errors.Is(err, ErrReported) {
		t.Errorf("Execute() error = %v, want ErrReported", err)
	}
}

func TestCheckCommand_NoIssues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, lockfile.FileName), `{
  "locked": false,
  "version": 2,
  "targets": { "DNXCore,Version=v5.0": {} },
  "libraries": {},
  "projectFileDependencyGroups": { "": [] }
}`)

	env, out, _ := testEnv()
	cmd := NewCheckCommand(env)
	cmd.SetArgs([]string{filepath.Join(dir, lockfile.FileName), "--strict"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "No compatibility issues found") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestCheckCommand_MissingLockFile(t *testing.T) {
	env, _, _ := testEnv()
	cmd := NewCheckCommand(env)
	cmd.SetArgs([]string{t.TempDir()})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for missing lock file")
	}
}
