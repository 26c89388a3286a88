package runner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "script.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func TestRun_CapturesStdoutAndStderr(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\necho out-$1\necho err-$1 >&2\nexit 3\n")
	stdout, stderr, status := Run(script, "input.cnf", time.Second)
	assert.Contains(t, string(stdout), "out-input.cnf")
	assert.Contains(t, string(stderr), "err-input.cnf")
	assert.Equal(t, 3, status)
}

func TestRun_TimesOutAndKillsProcess(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\nsleep 5\n")
	start := time.Now()
	stdout, stderr, status := Run(script, "x.cnf", 100*time.Millisecond)
	elapsed := time.Since(start)
	assert.Less(t, elapsed, 2*time.Second)
	assert.Empty(t, stdout)
	_ = stderr
	// The SIGTERM'd process group exits within the drain window, so the
	// status is the signal-terminated exit code, not the drain-timeout 0.
	assert.Equal(t, -1, status)
}

func TestRun_NonexistentCommandDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Run("/no/such/binary", "x.cnf", time.Second)
	})
}
