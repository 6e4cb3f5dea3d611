package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/devicelab-dev/element-resolver/pkg/core"
)

// Reporter publishes progress for the running job.
type Reporter func(fraction float64, message string)

// Func is an analysis executed as a job.
type Func func(ctx context.Context, report Reporter) (interface{}, error)

// Run starts fn in its own goroutine and returns the job ID immediately.
// A panic inside fn fails the job with ErrAnalysisPanicked.
func (t *Tracker) Run(ctx context.Context, kind string, fn Func) string {
	id := t.Start(kind)
	go t.execute(ctx, id, fn)
	return id
}

// RunBatch runs fns as separate jobs on a fixed number of workers and
// waits for all of them. Jobs are returned in the order of fns.
func (t *Tracker) RunBatch(ctx context.Context, kind string, fns []Func, workers int) []Job {
	if workers <= 0 {
		workers = 1
	}
	workers = min(workers, len(fns))

	type workItem struct {
		id string
		fn Func
	}

	// Jobs are registered up front so every ID is queryable while queued.
	ids := make([]string, len(fns))
	queue := make(chan workItem, len(fns))
	for i, fn := range fns {
		ids[i] = t.Start(kind)
		queue <- workItem{id: ids[i], fn: fn}
	}
	close(queue)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range queue {
				t.execute(ctx, item.id, item.fn)
			}
		}()
	}
	wg.Wait()

	jobs := make([]Job, len(ids))
	for i, id := range ids {
		job, err := t.Status(id)
		if err != nil {
			// evicted by a later batch member; only the ID is left
			job = Job{ID: id, Kind: kind}
		}
		jobs[i] = job
	}
	return jobs
}

func (t *Tracker) execute(ctx context.Context, id string, fn Func) {
	result, err := t.call(ctx, id, fn)
	if err != nil {
		_, _ = t.Fail(id, err)
		return
	}
	_, _ = t.Complete(id, result)
}

func (t *Tracker) call(ctx context.Context, id string, fn Func) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = core.ErrAnalysisPanicked.WithDetails(map[string]interface{}{
				"jobId": id,
				"panic": fmt.Sprint(r),
			})
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fn(ctx, func(fraction float64, message string) {
		_ = t.Progress(id, fraction, message)
	})
}
