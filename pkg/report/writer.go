package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/devicelab-dev/element-resolver/pkg/jobs"
	"github.com/devicelab-dev/element-resolver/pkg/logger"
)

const (
	indexFile  = "report.json"
	resultsDir = "results"
)

// Writer provides thread-safe updates to a report directory.
// Multiple job goroutines can record concurrently.
type Writer struct {
	mu    sync.Mutex
	dir   string
	index *Index
}

// Create prepares dir and writes an empty running index.
func Create(dir, kind string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Join(dir, resultsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}

	now := time.Now()
	w := &Writer{
		dir: dir,
		index: &Index{
			Version:     Version,
			Kind:        kind,
			Status:      jobs.StateRunning,
			StartTime:   now,
			LastUpdated: now,
			Entries:     []Entry{},
		},
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.flushLocked(); err != nil {
		return nil, err
	}
	return w, nil
}

// Dir returns the report directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Record adds or updates the entry of job. A completed job's result is
// written to its own file before the index points at it.
func (w *Writer) Record(source string, job jobs.Job) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := w.entryLocked(job.ID)
	e.Source = source
	e.State = job.State
	e.Progress = job.Progress
	e.Error = job.Error
	e.StartedAt = job.StartedAt
	e.FinishedAt = job.FinishedAt
	e.UpdateSeq++

	if job.State == jobs.StateCompleted && job.Result != nil {
		rel := filepath.Join(resultsDir, job.ID+".json")
		if err := atomicWriteJSON(filepath.Join(w.dir, rel), job.Result); err != nil {
			return fmt.Errorf("write result %s: %w", job.ID, err)
		}
		e.DataFile = filepath.ToSlash(rel)
	}

	return w.flushLocked()
}

// End marks the run as finished and writes the final index.
func (w *Writer) End() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	w.index.EndTime = &now
	w.index.Status = w.computeRunStatus()
	return w.flushLocked()
}

// Index returns a copy of the current index.
func (w *Writer) Index() Index {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := *w.index
	idx.Entries = append([]Entry(nil), w.index.Entries...)
	return idx
}

func (w *Writer) entryLocked(jobID string) *Entry {
	for i := range w.index.Entries {
		if w.index.Entries[i].JobID == jobID {
			return &w.index.Entries[i]
		}
	}
	w.index.Entries = append(w.index.Entries, Entry{JobID: jobID})
	return &w.index.Entries[len(w.index.Entries)-1]
}

// flushLocked writes the index while holding the lock.
func (w *Writer) flushLocked() error {
	w.index.UpdateSeq++
	w.index.LastUpdated = time.Now()
	w.index.Summary = w.computeSummary()

	if err := atomicWriteJSON(filepath.Join(w.dir, indexFile), w.index); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	// The HTML page is a convenience; a failure here does not fail the run.
	if err := GenerateHTML(w.dir, w.index); err != nil {
		logger.Warn("report html: %v", err)
	}
	return nil
}

func (w *Writer) computeSummary() Summary {
	var s Summary
	for _, e := range w.index.Entries {
		s.Total++
		switch e.State {
		case jobs.StateCompleted:
			s.Completed++
		case jobs.StateFailed:
			s.Failed++
		default:
			s.Running++
		}
	}
	return s
}

// computeRunStatus determines the overall status from the entries.
func (w *Writer) computeRunStatus() jobs.State {
	failed := false
	for _, e := range w.index.Entries {
		if !e.State.IsTerminal() {
			return jobs.StateRunning
		}
		if e.State == jobs.StateFailed {
			failed = true
		}
	}
	if failed {
		return jobs.StateFailed
	}
	return jobs.StateCompleted
}

// atomicWriteJSON writes v to a temp file in the same directory, then
// renames it over path so readers never observe a partial file.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
