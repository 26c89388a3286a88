// Package outdir manages the fuzzer's output directory: dummy
// pre-population, crash recording, and shutdown retention/cleanup, per
// spec.md §4.J.
package outdir

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxSavedTests is spec.md §4.I's MAX_SAVED_TESTS constant.
const MaxSavedTests = 20

// Dir manages a single fuzzer run's output directory.
type Dir struct {
	path         string
	dummiesLeft  int
	dummyIndexes []string
}

// New creates the output directory at path, deleting any prior contents
// first (tolerating lock failures — it logs nothing itself, startup
// continues using whatever remains), then pre-populates it with
// MaxSavedTests dummy files built from dummyContents.
func New(path string, dummyContents [][]byte) (*Dir, error) {
	if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
		// Tolerate lock failures: continue using existing contents.
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("outdir: creating %s: %w", path, err)
	}

	d := &Dir{path: path}
	for i := 0; i < MaxSavedTests; i++ {
		name := fmt.Sprintf("dummy_%d.cnf", i)
		content := []byte{}
		if i < len(dummyContents) {
			content = dummyContents[i]
		}
		if err := os.WriteFile(filepath.Join(path, name), content, 0o644); err != nil {
			continue
		}
		d.dummyIndexes = append(d.dummyIndexes, name)
	}
	d.dummiesLeft = len(d.dummyIndexes)
	return d, nil
}

// Path returns the managed directory's filesystem path.
func (d *Dir) Path() string { return d.path }

// CrashName builds the recorded-crash filename for the generate/mutate
// path: crashing_test_<iter>.cnf.
func CrashName(iter int) string {
	return fmt.Sprintf("crashing_test_%d.cnf", iter)
}

// RemoveOneDummy removes one remaining dummy file, if any, tolerating a
// concurrent-unlink/not-found error.
func (d *Dir) RemoveOneDummy() {
	if d.dummiesLeft == 0 {
		return
	}
	name := d.dummyIndexes[len(d.dummyIndexes)-d.dummiesLeft]
	d.dummiesLeft--
	_ = os.Remove(filepath.Join(d.path, name))
}

// RecordCrash copies contents into the output directory under filename
// and removes one dummy placeholder if any remain.
func (d *Dir) RecordCrash(filename string, contents []byte) error {
	dst := filepath.Join(d.path, filename)
	if err := os.WriteFile(dst, contents, 0o644); err != nil {
		return fmt.Errorf("outdir: recording crash %s: %w", filename, err)
	}
	d.RemoveOneDummy()
	return nil
}

// CopyProvidedSeed copies a provided-input seed file into the output
// directory under its original name.
func (d *Dir) CopyProvidedSeed(srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("outdir: opening seed %s: %w", srcPath, err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(d.path, filepath.Base(srcPath)))
	if err != nil {
		return fmt.Errorf("outdir: creating seed copy for %s: %w", srcPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("outdir: copying seed %s: %w", srcPath, err)
	}
	d.RemoveOneDummy()
	return nil
}

// Finalize deletes every file under the managed directory except those
// named in retain and SUMMARY.md, tolerating not-found races.
func (d *Dir) Finalize(retain []string) error {
	keep := make(map[string]bool, len(retain)+1)
	for _, name := range retain {
		keep[name] = true
	}
	keep["SUMMARY.md"] = true

	entries, err := os.ReadDir(d.path)
	if err != nil {
		return fmt.Errorf("outdir: reading %s: %w", d.path, err)
	}
	for _, e := range entries {
		if keep[e.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(d.path, e.Name())); err != nil && !os.IsNotExist(err) {
			// Swallow I/O races on cleanup, per spec.md §7.
			continue
		}
	}
	return nil
}
