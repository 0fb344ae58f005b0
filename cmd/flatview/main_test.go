package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/flatview/internal/compress"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestBuildAndLookup(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "c.fb")
	code, _, stderr := runCLI(t, "build", "-o", path, "-name", "demo", "99", "1", "42", "10", "20")
	require.Equal(t, exitOK, code, stderr)

	code, stdout, _ := runCLI(t, "lookup", "-f", path, "20")
	assert.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(stdout, "20\t@"), stdout)

	code, _, stderr = runCLI(t, "lookup", "-f", path, "21")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "not found")
}

func TestLookupAll(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dups.fb")
	code, _, _ := runCLI(t, "build", "-o", path, "5", "5", "5", "7")
	require.Equal(t, exitOK, code)

	code, stdout, _ := runCLI(t, "lookup", "-f", path, "-all", "5")
	assert.Equal(t, exitOK, code)
	assert.Len(t, strings.Split(strings.TrimSpace(stdout), "\n"), 3)

	code, stdout, _ = runCLI(t, "lookup", "-f", path, "-first", "7")
	assert.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(stdout, "7\t"))
}

func TestBuildNamesZstd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "names.fb.zst")
	code, stdout, _ := runCLI(t, "build", "-o", path, "-zstd", "-names", "-cache", filepath.Join(dir, "cache"), "alpha", "beta")
	require.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(stdout, "sha256:"), stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, compress.IsZstd(data))

	code, _, _ = runCLI(t, "lookup", "-f", path, "-names", "beta")
	assert.Equal(t, exitOK, code)
	code, _, _ = runCLI(t, "lookup", "-f", path, "-names", "gamma")
	assert.Equal(t, exitError, code)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.fb")
	bad := filepath.Join(dir, "bad.fb")
	code, _, _ := runCLI(t, "build", "-o", good, "1", "2", "3")
	require.Equal(t, exitOK, code)
	require.NoError(t, os.WriteFile(bad, []byte("not a collection at all"), 0o600))

	code, stdout, _ := runCLI(t, "verify", good)
	assert.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(stdout, "ok\t"+good), stdout)

	code, stdout, _ = runCLI(t, "verify", "-j", "2", good, bad)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stdout, "ok\t"+good)
	assert.Contains(t, stdout, "FAIL\t"+bad)
}

func TestDump(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dump.fb")
	code, _, _ := runCLI(t, "build", "-o", path, "-name", "dumped", "3", "1")
	require.Equal(t, exitOK, code)

	code, stdout, _ := runCLI(t, "dump", path)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "name:        dumped")
	assert.Contains(t, stdout, "referrables: 2")
	assert.Contains(t, stdout, "1\t@")
	assert.Contains(t, stdout, "3\t@")
}

func TestUsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"frobnicate"}},
		{name: "build without output", args: []string{"build", "1"}},
		{name: "bad id", args: []string{"build", "-o", "x", "nope"}},
		{name: "lookup without file", args: []string{"lookup", "1"}},
		{name: "exclusive flags", args: []string{"lookup", "-f", "x", "-first", "-all", "1"}},
		{name: "verify without files", args: []string{"verify"}},
		{name: "unknown flag", args: []string{"dump", "-z", "x"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			code, _, stderr := runCLI(t, tc.args...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, stderr, "usage:")
		})
	}
}
