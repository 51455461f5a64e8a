package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := New("v1.2.3").Command()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func tree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	for rel, size := range map[string]int64{
		"dirA/x.txt":     1 << 30,
		"dirA/sub/y.txt": 1 << 29,
		"file.txt":       5,
	} {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		require.NoError(t, os.Truncate(path, size))
	}

	require.NoError(t, os.MkdirAll(filepath.Join(root, "dirB"), 0o755))

	return root
}

func TestCommandText(t *testing.T) {
	root := tree(t)

	stdout, stderr, err := run(t, "--top", "2", root)
	require.NoError(t, err)

	assert.Equal(t, "Top 2 Largest Files:\n"+
		filepath.Join(root, "dirA", "x.txt")+" - 1.00 GB\n"+
		filepath.Join(root, "dirA", "sub", "y.txt")+" - 0.50 GB\n"+
		"\n"+
		"Layered Directory Sizes:\n"+
		"dirA = 1.50 GB\n"+
		"sub = 0.50 GB\n"+
		"dirB = 0.00 GB\n", stdout)
	assert.Empty(t, stderr)
}

func TestCommandModesAgree(t *testing.T) {
	root := tree(t)

	want, _, err := run(t, root)
	require.NoError(t, err)

	for _, args := range [][]string{{"--memoize"}, {"--workers", "4"}, {"-w", "2", "--memoize"}} {
		got, _, err := run(t, append(args, root)...)
		require.NoError(t, err)
		assert.Equal(t, want, got, "args=%v", args)
	}
}

func TestCommandPromFile(t *testing.T) {
	root := tree(t)
	prom := filepath.Join(t.TempDir(), "scan.prom")

	stdout, _, err := run(t, "-o", "json", "--prom-file", prom, root)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"top_files"`)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), "diskreport_directory_size_bytes")
}

func TestCommandMissingRoot(t *testing.T) {
	stdout, stderr, err := run(t, filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)

	assert.Equal(t, "Top 20 Largest Files:\n\nLayered Directory Sizes:\n", stdout)
	assert.Contains(t, stderr, "skipping unreadable path")
}

func TestCommandValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "output", args: []string{"-o", "xml", "."}, want: "invalid output format"},
		{name: "workers", args: []string{"-w", "0", "."}, want: "workers must be at least 1"},
		{name: "args", args: []string{"a", "b"}, want: "accepts at most 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCommandVersion(t *testing.T) {
	stdout, _, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3\n", stdout)
}

func TestDefaultRoot(t *testing.T) {
	root := defaultRoot()
	assert.True(t, filepath.IsAbs(root))
	assert.Equal(t, root, filepath.Dir(root))
}
