package compiler

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crushtxt/internal/ir"
)

// To regenerate golden files, run:
//
//	go test ./internal/compiler -update
func TestCompileClusterGolden(t *testing.T) {
	out, err := ConvertFile(dumpPath("cluster"))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "cluster", out.Text)
}

func TestCompileMinimalScenario(t *testing.T) {
	out, err := ConvertFile(dumpPath("minimal"))
	require.NoError(t, err)

	text := string(out.Text)
	assert.True(t, strings.HasPrefix(text, "# begin crush map\n"))
	assert.True(t, strings.HasSuffix(text, "# end crush map\n"))
	assert.Contains(t, text, "device 0 osd.0\n")
	assert.Contains(t, text, "host host1 {\n")
	assert.Contains(t, text, "\titem osd.0 weight 1.000\n")
	assert.Contains(t, text, "\tstep take host1\n\tstep chooseleaf firstn 0 type osd\n\tstep emit\n")
}

func TestCompileSectionOrder(t *testing.T) {
	out, err := ConvertFile(dumpPath("cluster"))
	require.NoError(t, err)

	text := string(out.Text)
	markers := []string{"# begin crush map", "tunable ", "# devices", "# types", "# buckets", "# rules", "# end crush map"}
	last := -1
	for _, m := range markers {
		i := strings.Index(text, m)
		require.GreaterOrEqual(t, i, 0, "missing %q", m)
		assert.Greater(t, i, last, "%q out of order", m)
		last = i
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	data := readDump(t, "cluster")

	var first []byte
	for i := 0; i < 5; i++ {
		doc, err := Load(data, "cluster.json")
		require.NoError(t, err)
		out, err := Compile(doc)
		require.NoError(t, err)
		if first == nil {
			first = out.Text
			continue
		}
		assert.Equal(t, string(first), string(out.Text))
	}
}

func TestCompileNamesAreResolvable(t *testing.T) {
	out, err := ConvertFile(dumpPath("cluster"))
	require.NoError(t, err)

	declared := map[string]bool{}
	var referenced []string
	for _, line := range strings.Split(string(out.Text), "\n") {
		fields := strings.Fields(line)
		switch {
		case len(fields) == 3 && fields[0] == "device":
			declared[fields[2]] = true
		case len(fields) == 3 && fields[2] == "{" && fields[0] != "rule":
			declared[fields[1]] = true
		case len(fields) == 4 && fields[0] == "item":
			referenced = append(referenced, fields[1])
		case len(fields) == 3 && fields[0] == "step" && fields[1] == "take":
			referenced = append(referenced, fields[2])
		}
	}

	require.NotEmpty(t, referenced)
	for _, name := range referenced {
		assert.True(t, declared[name], "%q is referenced but never declared", name)
	}
}

func TestCompileNoForwardReferencesInText(t *testing.T) {
	out, err := ConvertFile(dumpPath("cluster"))
	require.NoError(t, err)

	declaredAt := map[string]int{}
	lines := strings.Split(string(out.Text), "\n")
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 3 && fields[2] == "{" && fields[0] != "rule" {
			declaredAt[fields[1]] = i
		}
	}
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 4 && fields[0] == "item" && !strings.HasPrefix(fields[1], "osd.") {
			at, ok := declaredAt[fields[1]]
			require.True(t, ok, "bucket %s never declared", fields[1])
			assert.Less(t, at, i, "bucket %s used before declaration", fields[1])
		}
	}
}

func TestCompileReturnsOrderAndNames(t *testing.T) {
	out, err := ConvertFile(dumpPath("cluster"))
	require.NoError(t, err)

	assert.Equal(t, []string{"host-b", "host-a", "rack2", "rack1", "default"}, bucketNames(out.Order))
	name, ok := out.Names.Lookup(-4)
	assert.True(t, ok)
	assert.Equal(t, "rack1", name)
}

func TestCompileFailuresProduceNoOutput(t *testing.T) {
	tests := []struct {
		dump string
		kind ErrorKind
	}{
		{"dangling", KindDanglingReference},
		{"cyclic", KindForwardReference},
		{"malformed", KindMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.dump, func(t *testing.T) {
			out, err := ConvertFile(dumpPath(tt.dump))
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, tt.kind, KindOf(err), "got %v", err)
		})
	}
}

func TestCompileDuplicateIDFails(t *testing.T) {
	doc := &ir.Document{
		Devices: devices(0),
		Buckets: []ir.Bucket{bucket(0, "host1")},
	}
	out, err := Compile(doc)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, IsKind(err, KindDuplicateID))
}
