// Package report writes batch analysis runs to disk.
//
// Layout:
//   - report.json: index of every job in the run, rewritten on each update
//   - results/<job-id>.json: result of each completed job
//   - report.html: static summary regenerated with the index
//
// The index is the single source of truth for job state. Readers poll
// report.json and fetch result files only for completed entries.
package report

import (
	"time"

	"github.com/devicelab-dev/element-resolver/pkg/jobs"
)

// Version is the report schema version.
const Version = "1.0.0"

// Index is the report.json document.
type Index struct {
	Version     string     `json:"version"`
	UpdateSeq   uint64     `json:"updateSeq"`
	Kind        string     `json:"kind"`
	Status      jobs.State `json:"status"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	LastUpdated time.Time  `json:"lastUpdated"`
	Summary     Summary    `json:"summary"`
	Entries     []Entry    `json:"entries"`
}

// Summary counts entries by state.
type Summary struct {
	Total     int `json:"total"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Entry is one job of the run.
type Entry struct {
	JobID      string     `json:"jobId"`
	Source     string     `json:"source"`
	State      jobs.State `json:"state"`
	Progress   float64    `json:"progress"`
	Error      string     `json:"error,omitempty"`
	DataFile   string     `json:"dataFile,omitempty"` // relative to the report dir
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	UpdateSeq  uint64     `json:"updateSeq"`
}
