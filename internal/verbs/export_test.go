package verbs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/room77/zeus/internal/discovery"
	"github.com/room77/zeus/internal/logger"
	"github.com/room77/zeus/internal/pathops"
	"github.com/room77/zeus/internal/zeusconfig"
)

func newExportFixture(t *testing.T) (*zeusconfig.Config, Context) {
	t.Helper()
	root := t.TempDir()
	publishRoot := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "01_a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "01_a", "10_x.sh"), []byte("#!/bin/sh\nexit 0\n"), 0o755))

	cfg, err := zeusconfig.Load(zeusconfig.Options{
		ID:          "p",
		Root:        root,
		PublishRoot: publishRoot,
		Date:        "20260101",
		OutDirs:     []string{"out"},
	})
	require.NoError(t, err)
	return cfg, Context{Config: cfg, Logger: logger.New()}
}

func TestExport_copiesProducedOutputIntoPublishTree(t *testing.T) {
	cfg, vc := newExportFixture(t)

	outBase := cfg.Subdirs["PIPELINE_OUT_DIR"]
	src := filepath.Join(outBase, "a", cfg.Date)
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "result.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "SUCCESS"), nil, 0o644))

	pm, _ := discovery.Discover(cfg.BaseDir, []string{"..."}, nil)
	successful, failed, err := Export(vc, pm, 0)
	require.NoError(t, err)
	assert.Empty(t, failed)
	require.Len(t, successful, 1)

	target := pathops.RebasePublishPath(src, outBase, cfg.PublishDir)
	got, err := os.ReadFile(filepath.Join(target, "result.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got))
}

func TestExport_refusesWholeRunOnAbort(t *testing.T) {
	cfg, vc := newExportFixture(t)

	outBase := cfg.Subdirs["PIPELINE_OUT_DIR"]
	src := filepath.Join(outBase, "a", cfg.Date)
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "ABORT"), nil, 0o644))

	pm, _ := discovery.Discover(cfg.BaseDir, []string{"..."}, nil)
	successful, failed, err := Export(vc, pm, 0)
	assert.Error(t, err)
	assert.Empty(t, successful)
	assert.Empty(t, failed)
}

func TestExport_noDirsToExport(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "01_a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "01_a", "10_x.sh"), []byte("#!/bin/sh\nexit 0\n"), 0o755))

	cfg, err := zeusconfig.Load(zeusconfig.Options{ID: "p", Root: root, OutDirs: []string{"out"}})
	require.NoError(t, err)
	vc := Context{Config: cfg, Logger: logger.New()}

	pm, _ := discovery.Discover(cfg.BaseDir, []string{"..."}, nil)
	successful, failed, err := Export(vc, pm, 0)
	require.NoError(t, err)
	assert.Empty(t, successful)
	assert.Empty(t, failed)
}
