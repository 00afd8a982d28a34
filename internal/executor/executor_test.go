package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/room77/zeus/internal/process"
	"github.com/room77/zeus/internal/task"
	"github.com/room77/zeus/internal/zeusconfig"
)

func newTestConfig(t *testing.T, outDirs []string) *zeusconfig.Config {
	t.Helper()
	root := t.TempDir()
	cfg, err := zeusconfig.Load(zeusconfig.Options{ID: "p", Root: root, OutDirs: outDirs, NoLogOutput: true})
	require.NoError(t, err)
	return cfg
}

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
}

func TestParseTimeout(t *testing.T) {
	cases := map[string]time.Duration{
		"100ms": 100 * time.Millisecond,
		"5":     5 * time.Second,
		"5s":    0, // bare "s" is not a recognized unit; falls through to error
		"2m":    2 * time.Minute,
		"1h":    time.Hour,
		"1d":    24 * time.Hour,
		"250us": 250 * time.Microsecond,
	}
	for in, want := range cases {
		got, err := parseTimeout(in)
		if in == "5s" {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestExecutor_buildEnvIncludesSubdirsAndPrev(t *testing.T) {
	cfg := newTestConfig(t, []string{"data"})
	mgr := process.NewManager(hclog.NewNullLogger())
	ex := New(cfg, mgr, time.Second)

	tk := task.New(cfg.BaseDir, filepath.Join(cfg.BaseDir, "01_a", "10_run.sh"))
	env, err := ex.buildEnv(tk)
	require.NoError(t, err)

	joined := ""
	for _, e := range env {
		joined += e + "\n"
	}
	assert.Contains(t, joined, "PIPELINE_DATA_DIR=")
	assert.Contains(t, joined, "PIPELINE_DATA_DIR_PREV=")
	assert.Contains(t, joined, "PIPELINE_ID=p")
}

func TestExecutor_abortFailEnvVar(t *testing.T) {
	cfg := newTestConfig(t, nil)
	mgr := process.NewManager(hclog.NewNullLogger())
	ex := New(cfg, mgr, time.Second)

	tk := task.New(cfg.BaseDir, filepath.Join(cfg.BaseDir, "01_a", "10_run.sh.abort_fail"))
	env, err := ex.buildEnv(tk)
	require.NoError(t, err)
	assert.Contains(t, env, "PIPELINE_TASK_ABORT_FAIL=1")
}

func TestExecutor_runSuccessAndFailure(t *testing.T) {
	cfg := newTestConfig(t, nil)
	mgr := process.NewManager(hclog.NewNullLogger())
	ex := New(cfg, mgr, 5*time.Second)

	ok := filepath.Join(cfg.BaseDir, "01_a", "10_ok.sh")
	writeScript(t, ok, "exit 0\n")
	bad := filepath.Join(cfg.BaseDir, "01_a", "10_bad.sh")
	writeScript(t, bad, "exit 1\n")

	res, err := ex.Run(context.Background(), task.New(cfg.BaseDir, ok))
	require.NoError(t, err)
	assert.Equal(t, task.Success, res.Class)

	res, err = ex.Run(context.Background(), task.New(cfg.BaseDir, bad))
	require.NoError(t, err)
	assert.Equal(t, task.Failure, res.Class)
}

func TestExecutor_timeoutKillsSlowTask(t *testing.T) {
	cfg := newTestConfig(t, nil)
	mgr := process.NewManager(hclog.NewNullLogger())
	ex := New(cfg, mgr, 100*time.Millisecond)

	slow := filepath.Join(cfg.BaseDir, "01_a", "10_slow.sh")
	writeScript(t, slow, "sleep 5\n")

	start := time.Now()
	res, err := ex.Run(context.Background(), task.New(cfg.BaseDir, slow))
	require.NoError(t, err)
	assert.Equal(t, task.Failure, res.Class)
	assert.Less(t, time.Since(start), 3*time.Second)
}
