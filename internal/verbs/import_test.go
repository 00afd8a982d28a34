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

func TestImport_copiesCurrentBackIntoLocalOutput(t *testing.T) {
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
	vc := Context{Config: cfg, Logger: logger.New()}

	outBase := cfg.Subdirs["PIPELINE_OUT_DIR"]
	src := filepath.Join(outBase, "a", cfg.Date)
	target := pathops.RebasePublishPath(src, outBase, cfg.PublishDir)

	current := filepath.Join(filepath.Dir(target), "current")
	require.NoError(t, os.MkdirAll(current, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(current, "published.txt"), []byte("bye"), 0o644))

	pm, _ := discovery.Discover(cfg.BaseDir, []string{"..."}, nil)
	successful, failed, err := Import(vc, pm, 0)
	require.NoError(t, err)
	assert.Empty(t, failed)
	require.Len(t, successful, 1)

	got, err := os.ReadFile(filepath.Join(src, "published.txt"))
	require.NoError(t, err)
	assert.Equal(t, "bye", string(got))
}

func TestImport_missingCurrentIsAFailure(t *testing.T) {
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
	vc := Context{Config: cfg, Logger: logger.New()}

	pm, _ := discovery.Discover(cfg.BaseDir, []string{"..."}, nil)
	successful, failed, err := Import(vc, pm, 0)
	require.NoError(t, err)
	assert.Empty(t, successful)
	require.Len(t, failed, 1)
}
