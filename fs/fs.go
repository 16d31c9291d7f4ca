// Package fs writes task exports and report bundles to the local file system.
package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/sitelens"
)

// WriteFile writes the output of write to path atomically. Content goes to
// a temporary file in the same directory that replaces path only once it is
// complete, so readers never observe a partial file.
func WriteFile(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err := write(f); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(f.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// WriteExport writes results to path in format f. When path is a directory
// the standard export file name for taskID is used. It returns the path
// written.
func WriteExport(path string, taskID int, f sitelens.ExportFormat, results []sitelens.URLResult) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, sitelens.ExportFilename(taskID, f))
	}
	if err := WriteFile(path, func(w io.Writer) error {
		return sitelens.Export(w, f, results)
	}); err != nil {
		return "", fmt.Errorf("export %s: %w", path, err)
	}
	return path, nil
}
