package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "crushtxt", cmd.Name())
	assert.Contains(t, cmd.Long, "crush dump")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, cmdName := range []string{"validate", "batch", "test"} {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	outputFlag := cmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestBatchCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	batchCmd, _, err := cmd.Find([]string{"batch"})
	require.NoError(t, err)

	require.NotNil(t, batchCmd.Flags().Lookup("out-dir"))
	dbFlag := batchCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "yaml", fixture("minimal"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConvert_WritesMapToStdout(t *testing.T) {
	stdout, stderr, err := execute(t, fixture("minimal"))
	require.NoError(t, err)

	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "device 0 osd.0\n")
	assert.Contains(t, stdout, "host host1 {\n")
	assert.Contains(t, stdout, "\titem osd.0 weight 1.000\n")
	assert.Contains(t, stdout, "\tstep take host1\n\tstep chooseleaf firstn 0 type osd\n\tstep emit\n")
}

func TestConvert_MatchesCompilerGolden(t *testing.T) {
	stdout, _, err := execute(t, fixture("cluster"))
	require.NoError(t, err)

	golden, err := os.ReadFile(filepath.Join("..", "compiler", "testdata", "golden", "cluster.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(golden), stdout)
}

func TestConvert_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.txt")

	stdout, _, err := execute(t, "-o", path, fixture("minimal"))
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# end crush map\n")
}

func TestConvert_ErrorsProduceNoOutput(t *testing.T) {
	tests := []struct {
		dump string
		kind string
	}{
		{"dangling", "DANGLING_REFERENCE"},
		{"cyclic", "UNRESOLVED_FORWARD_REFERENCE"},
		{"malformed", "MALFORMED_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.dump, func(t *testing.T) {
			stdout, stderr, err := execute(t, fixture(tt.dump))
			require.Error(t, err)

			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Error ["+tt.kind+"]: ")
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.True(t, IsReported(err))
		})
	}
}

func TestConvert_MissingFile(t *testing.T) {
	_, stderr, err := execute(t, "no-such-dump.json")
	require.Error(t, err)
	assert.Contains(t, stderr, "Error [E005]: ")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConvert_RequiresOneArgument(t *testing.T) {
	_, _, err := execute(t)
	require.Error(t, err)
	assert.False(t, IsReported(err))
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestConvert_VerboseLogsToStderr(t *testing.T) {
	stdout, stderr, err := execute(t, "-v", fixture("minimal"))
	require.NoError(t, err)

	assert.Contains(t, stderr, "level=DEBUG")
	assert.NotContains(t, stdout, "level=")
}
