package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gtassert "gotest.tools/v3/assert"
)

func TestRecursiveCopy_tree(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "b.txt"), []byte("world"), 0o644))

	require.NoError(t, RecursiveCopy(src, dst))

	a, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(a))

	b, err := os.ReadFile(filepath.Join(dst, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world", string(b))
}

func TestRemoveTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x"), nil, 0o644))
	require.NoError(t, RemoveTree(dir))
	assert.NoDirExists(t, dir)

	// Removing an already-gone tree is not an error.
	require.NoError(t, RemoveTree(dir))
}

func TestRecursiveCopy_recreatesSymlinksRatherThanFollowing(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(src, "real.txt"), []byte("src"), 0o644))
	gtassert.NilError(t, os.Symlink(filepath.Join(src, "real.txt"), filepath.Join(src, "link.txt")))

	gtassert.NilError(t, RecursiveCopy(src, dst))

	info, err := os.Lstat(filepath.Join(dst, "link.txt"))
	gtassert.NilError(t, err)
	assert.True(t, info.Mode()&os.ModeSymlink != 0, "copied entry must still be a symlink")

	dest, err := os.Readlink(filepath.Join(dst, "link.txt"))
	gtassert.NilError(t, err)
	assert.Equal(t, filepath.Join(src, "real.txt"), dest)
}

func TestRepointCurrent_atomicSwap(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(parent, "20260101"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(parent, "20260102"), 0o755))

	require.NoError(t, RepointCurrent(parent, "current", "20260101"))
	target, err := os.Readlink(filepath.Join(parent, "current"))
	require.NoError(t, err)
	assert.Equal(t, "20260101", target)

	require.NoError(t, RepointCurrent(parent, "current", "20260102"))
	target, err = os.Readlink(filepath.Join(parent, "current"))
	require.NoError(t, err)
	assert.Equal(t, "20260102", target)
}
