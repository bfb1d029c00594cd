package cli

import (
	"bytes"
	"path/filepath"
	"testing"
)

// fixture returns the path of a shared dump under testdata/dumps.
func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", "dumps", name+".json")
}

// execute runs the root command with args and captures both streams.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}
