package outdir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PrePopulatesMaxSavedTestsDummies(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fuzzed-tests")
	d, err := New(dir, nil)
	require.NoError(t, err)

	entries, err := os.ReadDir(d.Path())
	require.NoError(t, err)
	assert.Len(t, entries, MaxSavedTests)
}

func TestNew_DeletesPriorContents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fuzzed-tests")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.cnf"), []byte("x"), 0o644))

	d, err := New(dir, nil)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(d.Path(), "stale.cnf"))
	assert.True(t, os.IsNotExist(err))
}

func TestRecordCrash_RemovesOneDummy(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fuzzed-tests")
	d, err := New(dir, nil)
	require.NoError(t, err)

	require.NoError(t, d.RecordCrash(CrashName(1), []byte("p cnf 1 1\n1 0\n")))

	entries, err := os.ReadDir(d.Path())
	require.NoError(t, err)
	// MaxSavedTests dummies - 1 removed + 1 crash file = MaxSavedTests.
	assert.Len(t, entries, MaxSavedTests)
}

func TestCopyProvidedSeed_PreservesOriginalName(t *testing.T) {
	srcDir := t.TempDir()
	seedPath := filepath.Join(srcDir, "a.cnf")
	require.NoError(t, os.WriteFile(seedPath, []byte("p cnf 1 1\n1 0\n"), 0o644))

	dir := filepath.Join(t.TempDir(), "fuzzed-tests")
	d, err := New(dir, nil)
	require.NoError(t, err)

	require.NoError(t, d.CopyProvidedSeed(seedPath))

	got, err := os.ReadFile(filepath.Join(d.Path(), "a.cnf"))
	require.NoError(t, err)
	assert.Equal(t, "p cnf 1 1\n1 0\n", string(got))
}

func TestFinalize_RetainsOnlyNamedFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fuzzed-tests")
	d, err := New(dir, nil)
	require.NoError(t, err)

	require.NoError(t, d.RecordCrash("crashing_test_1.cnf", []byte("data")))
	require.NoError(t, d.RecordCrash("crashing_test_2.cnf", []byte("data")))

	require.NoError(t, d.Finalize([]string{"crashing_test_1.cnf"}))

	entries, err := os.ReadDir(d.Path())
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"crashing_test_1.cnf"}, names)
}
