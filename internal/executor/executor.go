// Package executor runs a single task: builds its environment, resolves
// its timeout, spawns the subprocess, captures or redirects its output,
// and classifies its exit status.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/room77/zeus/internal/pathops"
	"github.com/room77/zeus/internal/process"
	"github.com/room77/zeus/internal/task"
	"github.com/room77/zeus/internal/zeusconfig"
)

// dirTimeoutFile is consulted when a task has no "<task>.timeout"
// sidecar; it lives alongside the tasks in the same directory.
const dirTimeoutFile = "timeout"

// Result is everything the Notifier and Scheduler need about one run.
type Result struct {
	Task     task.Task
	Class    task.ExitClass
	Duration time.Duration
	Err      error
	// Output holds captured combined stdout+stderr when the task has no
	// log file assigned; empty otherwise (the log file holds it instead).
	Output []byte
}

// Executor runs tasks against a fixed Config and process Manager.
type Executor struct {
	Config         *zeusconfig.Config
	Manager        *process.Manager
	DefaultTimeout time.Duration
}

// New constructs an Executor.
func New(cfg *zeusconfig.Config, mgr *process.Manager, defaultTimeout time.Duration) *Executor {
	return &Executor{Config: cfg, Manager: mgr, DefaultTimeout: defaultTimeout}
}

// Run executes t to completion, returning its classified Result. It never
// returns a non-nil error itself except for setup failures (e.g. the
// output directory could not be created); execution/exit failures are
// reflected in Result.Class instead.
func (e *Executor) Run(ctx context.Context, t task.Task) (Result, error) {
	start := time.Now()

	if err := e.ensureOutputDirs(t); err != nil {
		return Result{Task: t}, err
	}

	env, err := e.buildEnv(t)
	if err != nil {
		return Result{Task: t}, err
	}

	timeout := e.resolveTimeout(t)
	logFile := t.LogFile(e.Config.LogDir)

	// Built as a plain exec.Cmd, not exec.CommandContext: ctx cancellation
	// is handled by the Manager's tree-wide kill in ExecWithTimeout, not
	// exec.Cmd's default single-PID Process.Kill() on ctx.Done().
	cmd := exec.Command(t.Abs)
	cmd.Dir = t.Dir()
	cmd.Env = env

	var captured *bytes.Buffer
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return Result{Task: t}, err
		}
		f, err := os.Create(logFile)
		if err != nil {
			return Result{Task: t}, err
		}
		defer f.Close()
		cmd.Stdout = f
		cmd.Stderr = f
	} else {
		captured = &bytes.Buffer{}
		cmd.Stdout = captured
		cmd.Stderr = captured
	}

	runErr := e.Manager.ExecWithTimeout(ctx, cmd, timeout)
	duration := time.Since(start)

	opts := t.Options()
	class := task.ClassifyExit(runErr == nil, opts)

	res := Result{Task: t, Class: class, Duration: duration, Err: runErr}
	if captured != nil {
		res.Output = captured.Bytes()
	}
	return res, nil
}

// ensureOutputDirs creates the dated output subdirectory for t under every
// configured output subdir, per §4.3's "output subdirectory creation".
func (e *Executor) ensureOutputDirs(t task.Task) error {
	for _, base := range e.Config.Subdirs {
		dir := filepath.Join(base, t.OutputRelDir(), e.Config.Date)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("executor: creating output dir %q: %w", dir, err)
		}
	}
	return nil
}

// buildEnv constructs the child's environment: the parent's environment
// plus every PIPELINE_* variable described by §4.3.
func (e *Executor) buildEnv(t task.Task) ([]string, error) {
	env := os.Environ()

	for k, v := range e.Config.EnvVars() {
		env = append(env, k+"="+v)
	}

	for key, base := range e.Config.Subdirs {
		dir := filepath.Join(base, t.OutputRelDir(), e.Config.Date)
		env = append(env, key+"="+dir)

		// The nearest earlier dated sibling that exists on disk (an empty
		// marker matches the sibling directory itself), else dir itself.
		prevDir := dir
		if prev, ok := pathops.PreviousDatedDirContaining(dir, ""); ok {
			prevDir = prev
		}
		env = append(env, key+"_PREV="+prevDir)
	}

	opts := t.Options()
	if opts.Has(task.AbortFailOpt) {
		env = append(env, "PIPELINE_TASK_ABORT_FAIL=1")
	}
	if opts.Has(task.AllowFailOpt) {
		env = append(env, "PIPELINE_TASK_ALLOW_FAIL=1")
	}

	return env, nil
}

// resolveTimeout implements §4.3's lookup order: "<task>.timeout", then
// "<dir(task)>/timeout", else the configured default.
func (e *Executor) resolveTimeout(t task.Task) time.Duration {
	if d, ok := readTimeoutFile(t.Abs + ".timeout"); ok {
		return d
	}
	if d, ok := readTimeoutFile(filepath.Join(t.Dir(), dirTimeoutFile)); ok {
		return d
	}
	return e.DefaultTimeout
}

func readTimeoutFile(path string) (time.Duration, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	d, err := parseTimeout(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	return d, true
}

// parseTimeout parses "<number>[unit]" where unit is one of d, h, m, ms,
// us; an absent unit means seconds.
func parseTimeout(s string) (time.Duration, error) {
	for _, unit := range []struct {
		suffix string
		scale  time.Duration
	}{
		{"ms", time.Millisecond},
		{"us", time.Microsecond},
		{"d", 24 * time.Hour},
		{"h", time.Hour},
		{"m", time.Minute},
	} {
		if strings.HasSuffix(s, unit.suffix) {
			n, err := strconv.ParseFloat(strings.TrimSuffix(s, unit.suffix), 64)
			if err != nil {
				return 0, err
			}
			return time.Duration(n * float64(unit.scale)), nil
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(n * float64(time.Second)), nil
}
