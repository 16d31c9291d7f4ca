package fs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/sitelens"
)

// Bundle writes a directory holding a task's exports and one markdown
// report per successful URL. Files are written to baseDir/name.tmp and
// moved to baseDir/name on Commit, replacing any previous bundle.
type Bundle struct {
	baseDir string
	name    string
	now     func() time.Time
}

// NewBundle creates a new Bundle.
func NewBundle(baseDir, name string) *Bundle {
	return &Bundle{
		baseDir: baseDir,
		name:    name,
		now:     time.Now,
	}
}

func (b *Bundle) tempDir() string {
	return filepath.Join(b.baseDir, b.name+".tmp")
}

// Dir returns the final bundle directory.
func (b *Bundle) Dir() string {
	return filepath.Join(b.baseDir, b.name)
}

// SaveReport writes the markdown report of one successful result.
func (b *Bundle) SaveReport(res *sitelens.ScrapeResult) error {
	relPath, err := URLToPath(res.URL)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(b.tempDir(), "reports", relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(FormatReport(res, b.now())), 0644)
}

// SaveExport writes results in format f under the standard export name.
func (b *Bundle) SaveExport(taskID int, f sitelens.ExportFormat, results []sitelens.URLResult) error {
	if err := os.MkdirAll(b.tempDir(), 0755); err != nil {
		return err
	}
	path := filepath.Join(b.tempDir(), sitelens.ExportFilename(taskID, f))
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := sitelens.Export(out, f, results); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	return out.Close()
}

// SaveComparison writes the cross-site comparison as JSON.
func (b *Bundle) SaveComparison(comparison *sitelens.Record) error {
	if err := os.MkdirAll(b.tempDir(), 0755); err != nil {
		return err
	}
	data, err := comparison.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(b.tempDir(), "comparison.json"), data, 0644)
}

// Commit replaces the final directory with the written bundle.
func (b *Bundle) Commit() error {
	if err := os.RemoveAll(b.Dir()); err != nil {
		return err
	}
	return os.Rename(b.tempDir(), b.Dir())
}

// Abort discards everything written since the last Commit.
func (b *Bundle) Abort() error {
	return os.RemoveAll(b.tempDir())
}

// WriteBundle writes every export format, the comparison and per-site
// reports of task into baseDir/task_<id> and returns the directory.
func WriteBundle(baseDir string, task *sitelens.Task) (string, error) {
	if len(task.Results) == 0 {
		return "", sitelens.Errorf(sitelens.ENOTFOUND, "No results available")
	}

	b := NewBundle(baseDir, sitelens.JobID(task.ID))
	if err := b.Abort(); err != nil {
		return "", err
	}

	if err := b.write(task); err != nil {
		_ = b.Abort()
		return "", err
	}
	if err := b.Commit(); err != nil {
		return "", err
	}
	return b.Dir(), nil
}

func (b *Bundle) write(task *sitelens.Task) error {
	if err := b.SaveExport(task.ID, sitelens.ExportJSON, task.Results); err != nil {
		return err
	}
	if err := b.SaveExport(task.ID, sitelens.ExportText, task.Results); err != nil {
		return err
	}
	// A task without successful results has no CSV rows.
	if err := b.SaveExport(task.ID, sitelens.ExportCSV, task.Results); err != nil && sitelens.ErrorCode(err) != sitelens.ENOTFOUND {
		return err
	}
	if task.Comparison != nil {
		if err := b.SaveComparison(task.Comparison); err != nil {
			return err
		}
	}
	for _, r := range task.Results {
		if !r.Succeeded() {
			continue
		}
		if err := b.SaveReport(r.Data); err != nil {
			return err
		}
	}
	return nil
}
