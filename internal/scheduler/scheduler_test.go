package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/room77/zeus/internal/discovery"
	"github.com/room77/zeus/internal/executor"
	"github.com/room77/zeus/internal/process"
	"github.com/room77/zeus/internal/task"
	"github.com/room77/zeus/internal/zeusconfig"
)

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
}

func newScheduler(t *testing.T) (*Scheduler, *zeusconfig.Config) {
	t.Helper()
	root := t.TempDir()
	cfg, err := zeusconfig.Load(zeusconfig.Options{ID: "p", Root: root, NoLogOutput: true})
	require.NoError(t, err)
	mgr := process.NewManager(hclog.NewNullLogger())
	ex := executor.New(cfg, mgr, 5*time.Second)
	return New(ex), cfg
}

func TestScheduler_abortPropagation(t *testing.T) {
	s, cfg := newScheduler(t)

	writeScript(t, filepath.Join(cfg.BaseDir, "01_a", "10_x.sh"), "exit 1\n")
	writeScript(t, filepath.Join(cfg.BaseDir, "02_b", "10_y.sh"), "exit 0\n")

	// Mark x as abort_fail by renaming with the option suffix.
	os.Rename(
		filepath.Join(cfg.BaseDir, "01_a", "10_x.sh"),
		filepath.Join(cfg.BaseDir, "01_a", "10_x.sh.abort_fail"),
	)

	pm, warnings := discovery.Discover(cfg.BaseDir, []string{"..."}, nil)
	assert.Empty(t, warnings)

	res := s.Run(context.Background(), pm, Options{PoolSize: 2})

	assert.True(t, res.Abort)
	assert.Len(t, res.Succeeded, 0)
	assert.Len(t, res.Failed, 2, "y must be failed-by-skip, never run")
	assert.Equal(t, task.AbortFail, res.ByOutDir["a"])
}

func TestScheduler_requireDirSuccessSkipsAfterFailure(t *testing.T) {
	s, cfg := newScheduler(t)

	writeScript(t, filepath.Join(cfg.BaseDir, "01_a", "10_fail.sh"), "exit 1\n")
	writeScript(t, filepath.Join(cfg.BaseDir, "01_a", "20_needs.sh.require_dir_success"), "exit 0\n")

	pm, _ := discovery.Discover(cfg.BaseDir, []string{"..."}, nil)
	res := s.Run(context.Background(), pm, Options{PoolSize: 2})

	assert.Len(t, res.Failed, 2)
	assert.Len(t, res.Succeeded, 0)
}

func TestScheduler_parallelGroupMixedResult(t *testing.T) {
	s, cfg := newScheduler(t)

	writeScript(t, filepath.Join(cfg.BaseDir, "01_a", "10_s.sh"), "exit 0\n")
	writeScript(t, filepath.Join(cfg.BaseDir, "01_a", "10_f1.sh"), "exit 2\n")
	writeScript(t, filepath.Join(cfg.BaseDir, "01_a", "10_f2.sh"), "exit 2\n")

	pm, _ := discovery.Discover(cfg.BaseDir, []string{"..."}, nil)
	res := s.Run(context.Background(), pm, Options{PoolSize: 4})

	assert.Len(t, res.Succeeded, 1)
	assert.Len(t, res.Failed, 2)
}

func TestScheduler_skipPredicateForContinue(t *testing.T) {
	s, cfg := newScheduler(t)
	writeScript(t, filepath.Join(cfg.BaseDir, "01_a", "10_s.sh"), "exit 0\n")

	pm, _ := discovery.Discover(cfg.BaseDir, []string{"..."}, nil)
	res := s.Run(context.Background(), pm, Options{
		PoolSize: 2,
		Skip:     func(t task.Task) bool { return true },
	})

	assert.Len(t, res.Skipped, 1)
	assert.Len(t, res.Succeeded, 0)
	assert.Len(t, res.Failed, 0)
}
