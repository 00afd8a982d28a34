// Package scheduler dispatches a discovered PriorityMap group by group,
// running each group's tasks concurrently through an Executor while
// keeping strict ordering across groups, per the "run"/"continue" verbs.
package scheduler

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/room77/zeus/internal/discovery"
	"github.com/room77/zeus/internal/executor"
	"github.com/room77/zeus/internal/task"
)

// Options configures one scheduler run.
type Options struct {
	// PoolSize bounds concurrent subprocesses within a priority group; 0
	// defaults to the host's CPU count.
	PoolSize int

	// Skip, when non-nil, is consulted once per task before it is
	// dispatched; a task it reports as already done is recorded as
	// already-successful rather than run. This is how "continue" reuses
	// the exact same dispatch loop as "run".
	Skip func(t task.Task) bool

	// OnResult is called synchronously from the dispatcher (never from a
	// worker) as each task's result is folded in, for progress logging.
	OnResult func(executor.Result)
}

// Result is the outcome of one scheduler run: the partitioned task lists,
// whether an abort-fail task was seen, and the per-output-directory worst
// exit class StatusWriter persists.
type Result struct {
	Succeeded []task.Task
	Failed    []task.Task
	Skipped   []task.Task
	Abort     bool

	ByOutDir  map[string]task.ExitClass
	ByTaskDir map[string]task.ExitClass
}

// Scheduler runs a PriorityMap's groups in ascending order through an
// Executor, bounding per-group concurrency with an errgroup.
type Scheduler struct {
	Exec *executor.Executor
}

// New constructs a Scheduler.
func New(exec *executor.Executor) *Scheduler {
	return &Scheduler{Exec: exec}
}

// Run executes every group of pm in ascending priority order. It honors
// ctx cancellation: an interrupt stops dispatching further groups and
// lets in-flight workers observe ctx via the Executor's process.Manager.
func (s *Scheduler) Run(ctx context.Context, pm *discovery.PriorityMap, opts Options) Result {
	poolSize := opts.PoolSize
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}

	res := Result{
		ByOutDir:  map[string]task.ExitClass{},
		ByTaskDir: map[string]task.ExitClass{},
	}

	for _, key := range pm.Keys() {
		select {
		case <-ctx.Done():
			res.Failed = appendAll(res.Failed, pm, key, pm.Keys())
			return res
		default:
		}

		group := pm.Tasks(key)

		if res.Abort {
			for _, t := range group {
				res.Failed = append(res.Failed, t)
			}
			continue
		}

		runnable := make([]task.Task, 0, len(group))
		for _, t := range group {
			if opts.Skip != nil && opts.Skip(t) {
				res.Skipped = append(res.Skipped, t)
				continue
			}
			if t.Options().Has(task.RequireDirSuccessOpt) {
				if worst, ok := res.ByTaskDir[t.Dir()]; ok && worst.Worse(task.Success) {
					res.Failed = append(res.Failed, t)
					continue
				}
			}
			runnable = append(runnable, t)
		}
		if len(runnable) == 0 {
			continue
		}

		results := s.runGroup(ctx, runnable, poolSize)

		for _, r := range results {
			if opts.OnResult != nil {
				opts.OnResult(r)
			}
			dir := r.Task.Dir()
			res.ByTaskDir[dir] = task.WorstClass(res.ByTaskDir[dir], r.Class)

			outDir := r.Task.OutputRelDir()
			res.ByOutDir[outDir] = task.WorstClass(res.ByOutDir[outDir], r.Class)

			if r.Class == task.Success {
				res.Succeeded = append(res.Succeeded, r.Task)
			} else {
				res.Failed = append(res.Failed, r.Task)
			}
			if r.Class == task.AbortFail {
				res.Abort = true
			}
		}
	}

	return res
}

// runGroup dispatches every task in group to the Executor concurrently,
// bounded by poolSize, and collects every result regardless of individual
// task errors (an Executor setup error is folded in as a FAILURE result).
func (s *Scheduler) runGroup(ctx context.Context, group []task.Task, poolSize int) []executor.Result {
	results := make([]executor.Result, len(group))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(poolSize)

	for i, t := range group {
		i, t := i, t
		eg.Go(func() error {
			r, err := s.Exec.Run(egCtx, t)
			if err != nil {
				r = executor.Result{Task: t, Class: task.Failure, Err: err}
			}
			// Each goroutine owns a distinct index; no synchronization needed.
			results[i] = r
			return nil
		})
	}
	// errgroup's Go funcs never return a non-nil error (setup failures
	// are folded into the Result instead), so Wait cannot fail here.
	_ = eg.Wait()

	return results
}

// appendAll flattens every task in every remaining group starting at key
// (inclusive) into a single failed-by-cancellation slice.
func appendAll(into []task.Task, pm *discovery.PriorityMap, fromKey string, keys []string) []task.Task {
	started := false
	for _, k := range keys {
		if k == fromKey {
			started = true
		}
		if !started {
			continue
		}
		into = append(into, pm.Tasks(k)...)
	}
	return into
}
