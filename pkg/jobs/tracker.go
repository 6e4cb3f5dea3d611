// Package jobs tracks asynchronous analysis jobs.
//
// Every event carries its job ID, so concurrent jobs never cross-deliver.
// Completion is stored as well as pushed: a subscriber that arrives after
// a job finished still receives its terminal event. A job finishes at most
// once; repeated Complete or Fail calls are ignored.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/element-resolver/pkg/core"
	"github.com/devicelab-dev/element-resolver/pkg/logger"
)

// DefaultMaxFinished is how many finished jobs a Tracker keeps queryable.
const DefaultMaxFinished = 256

// defaultBuffer is the per-subscriber channel capacity.
const defaultBuffer = 16

// State is the lifecycle state of a job.
type State string

// Job states
const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// IsTerminal returns true for completed and failed jobs.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// EventType identifies an Event.
type EventType string

// Event types
const (
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
)

// Event is a progress or terminal notification for one job.
type Event struct {
	JobID    string      `json:"jobId"`
	Type     EventType   `json:"type"`
	Progress float64     `json:"progress"`
	Message  string      `json:"message,omitempty"`
	Result   interface{} `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`
	Time     time.Time   `json:"time"`
}

// Job is a snapshot of a job's state.
type Job struct {
	ID         string      `json:"id"`
	Kind       string      `json:"kind"`
	State      State       `json:"state"`
	Progress   float64     `json:"progress"`
	Message    string      `json:"message,omitempty"`
	Result     interface{} `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
	Err        error       `json:"-"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
}

// IDGenerator produces unique job identifiers.
type IDGenerator func() string

// UUIDv7 returns time-sortable UUID v7 identifiers.
func UUIDv7() IDGenerator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Options configure a Tracker.
type Options struct {
	// MaxFinished bounds retained finished jobs; the oldest finished job
	// is evicted first. Zero means DefaultMaxFinished.
	MaxFinished int
	// NewID generates job IDs. Nil means UUIDv7.
	NewID IDGenerator
}

type entry struct {
	job  Job
	seq  int
	subs []chan Event
}

// Tracker owns the state of all jobs. It is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	jobs     map[string]*entry
	finished []string
	seq      int

	maxFinished int
	newID       IDGenerator
}

// NewTracker creates a Tracker.
func NewTracker(opts Options) *Tracker {
	t := &Tracker{
		jobs:        make(map[string]*entry),
		maxFinished: opts.MaxFinished,
		newID:       opts.NewID,
	}
	if t.maxFinished <= 0 {
		t.maxFinished = DefaultMaxFinished
	}
	if t.newID == nil {
		t.newID = UUIDv7()
	}
	return t
}

func notFound(id string) error {
	return core.ErrJobNotFound.WithDetails(map[string]interface{}{"jobId": id})
}

// Start registers a running job and returns its ID.
func (t *Tracker) Start(kind string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.newID()
	for t.jobs[id] != nil {
		id = t.newID()
	}
	t.seq++
	t.jobs[id] = &entry{
		seq: t.seq,
		job: Job{ID: id, Kind: kind, State: StateRunning, StartedAt: time.Now()},
	}
	logger.Debug("job %s started (%s)", id, kind)
	return id
}

// Progress records partial progress. Updates to finished jobs are ignored.
func (t *Tracker) Progress(id string, fraction float64, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.jobs[id]
	if !ok {
		return notFound(id)
	}
	if e.job.State.IsTerminal() {
		return nil
	}
	e.job.Progress = min(1, max(0, fraction))
	e.job.Message = message
	t.publishLocked(e, Event{JobID: id, Type: EventProgress, Progress: e.job.Progress, Message: message, Time: time.Now()})
	return nil
}

// Complete marks the job completed with result. It reports whether this
// call finished the job; false means it had already finished.
func (t *Tracker) Complete(id string, result interface{}) (bool, error) {
	return t.finish(id, StateCompleted, result, nil)
}

// Fail marks the job failed. Like Complete, it applies at most once.
func (t *Tracker) Fail(id string, err error) (bool, error) {
	if err == nil {
		err = fmt.Errorf("job failed")
	}
	return t.finish(id, StateFailed, nil, err)
}

func (t *Tracker) finish(id string, state State, result interface{}, err error) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.jobs[id]
	if !ok {
		return false, notFound(id)
	}
	if e.job.State.IsTerminal() {
		logger.Debug("job %s already %s, ignoring %s", id, e.job.State, state)
		return false, nil
	}

	now := time.Now()
	e.job.State = state
	e.job.FinishedAt = &now
	e.job.Result = result
	e.job.Err = err
	if state == StateCompleted {
		e.job.Progress = 1
	}
	if err != nil {
		e.job.Error = err.Error()
	}

	ev := terminalEvent(e.job)
	for _, ch := range e.subs {
		deliverFinal(ch, ev)
	}
	e.subs = nil

	t.finished = append(t.finished, id)
	t.evictLocked()

	if err != nil {
		logger.Warn("job %s failed: %v", id, err)
	} else {
		logger.Debug("job %s completed", id)
	}
	return true, nil
}

func terminalEvent(j Job) Event {
	ev := Event{JobID: j.ID, Progress: j.Progress, Message: j.Message, Result: j.Result, Error: j.Error, Time: *j.FinishedAt}
	if j.State == StateFailed {
		ev.Type = EventFailed
	} else {
		ev.Type = EventCompleted
	}
	return ev
}

// publishLocked fans a progress event out. Slow subscribers miss progress
// events rather than blocking the job.
func (t *Tracker) publishLocked(e *entry, ev Event) {
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// deliverFinal sends the terminal event and closes ch. If the buffer is
// full the oldest pending event is dropped to make room. The tracker is
// the only sender, so the final send cannot block.
func deliverFinal(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- ev
	}
	close(ch)
}

func (t *Tracker) evictLocked() {
	for len(t.finished) > t.maxFinished {
		oldest := t.finished[0]
		t.finished = t.finished[1:]
		delete(t.jobs, oldest)
	}
}

// Status returns the current state of a job, including finished jobs
// that have not been evicted.
func (t *Tracker) Status(id string) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.jobs[id]
	if !ok {
		return Job{}, notFound(id)
	}
	return e.job, nil
}

// Subscribe returns a channel of the job's events, closed after its
// terminal event. Subscribing to a finished job yields the terminal
// event immediately.
func (t *Tracker) Subscribe(id string) (<-chan Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.jobs[id]
	if !ok {
		return nil, notFound(id)
	}

	ch := make(chan Event, defaultBuffer)
	if e.job.State.IsTerminal() {
		ch <- terminalEvent(e.job)
		close(ch)
		return ch, nil
	}
	e.subs = append(e.subs, ch)
	return ch, nil
}

// Wait blocks until the job finishes or ctx is done.
func (t *Tracker) Wait(ctx context.Context, id string) (Job, error) {
	events, err := t.Subscribe(id)
	if err != nil {
		return Job{}, err
	}
	for {
		select {
		case <-ctx.Done():
			return Job{}, ctx.Err()
		case ev, ok := <-events:
			if !ok || ev.Type != EventProgress {
				return t.finalState(id, ev)
			}
		}
	}
}

// finalState re-reads the job; if it was evicted in the meantime the
// terminal event is all that is left.
func (t *Tracker) finalState(id string, ev Event) (Job, error) {
	if job, err := t.Status(id); err == nil {
		return job, nil
	}
	job := Job{ID: id, Progress: ev.Progress, Message: ev.Message, Result: ev.Result, Error: ev.Error}
	if ev.Type == EventFailed {
		job.State = StateFailed
	} else {
		job.State = StateCompleted
	}
	return job, nil
}

// List returns all retained jobs in start order.
func (t *Tracker) List() []Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := make([]*entry, 0, len(t.jobs))
	for _, e := range t.jobs {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	list := make([]Job, len(entries))
	for i, e := range entries {
		list[i] = e.job
	}
	return list
}
