package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.Execute()
	return out.String(), err
}

func TestYielding_StopsAfterIterations(t *testing.T) {
	out, err := runCLI(t, "yielding", "--iterations", "4")
	require.NoError(t, err)

	assert.Equal(t, 4, strings.Count(out, "looping!\n"))
	assert.GreaterOrEqual(t, strings.Count(out, "recursion!\n"), 1)
	assert.Contains(t, out, "stopping after 4 iterations")
}

func TestDeferring_RunsInOrderAndStops(t *testing.T) {
	out, err := runCLI(t, "deferring", "--ms", "5", "--message", "hello")
	require.NoError(t, err)

	want := []string{
		"still running",
		"waiting...",
		"done waiting.",
		"spawned print task",
		"hello",
		"print task done",
	}
	assert.Equal(t, want, strings.Split(strings.TrimSpace(out), "\n"))
}

func TestSleeping_SpawnsAfterSleep(t *testing.T) {
	out, err := runCLI(t, "sleeping", "--ms", "5")
	require.NoError(t, err)

	want := []string{
		"waiting...",
		"done waiting.",
		"spawned print task",
		"hi",
		"print task done",
	}
	assert.Equal(t, want, strings.Split(strings.TrimSpace(out), "\n"))
}

func TestJoining_ResultsInArgumentOrder(t *testing.T) {
	out, err := runCLI(t, "joining", "--members", "3", "--step-ms", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "joined 3 members\n0: member-0\n1: member-1\n2: member-2\n")
	assert.Equal(t, 3, strings.Count(out, "woke up"))
}

func TestJoining_RejectsNegativeMembers(t *testing.T) {
	_, err := runCLI(t, "joining", "--members", "-1")
	assert.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sched.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \"from-file\"\nidle_backoff = \"2ms\"\n"), 0o644))

	out, err := runCLI(t, "sleeping", "--ms", "1", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "print task done")

	_, err = runCLI(t, "sleeping", "--config", filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}
