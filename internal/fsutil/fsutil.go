// Package fsutil provides the recursive-copy, remove-tree and atomic
// symlink-repoint primitives "export", "import", "clean" and "publish"
// share.
package fsutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
)

// DirPermissions is the mode new directories are created with.
const DirPermissions = 0o755

// RecursiveCopy copies from (a file or a directory tree) to "to",
// preserving the tree's relative structure. Symlinks are recreated as
// symlinks rather than followed.
func RecursiveCopy(from, to string) error {
	info, err := os.Lstat(from)
	if err != nil {
		return errors.Wrapf(err, "fsutil: stat %q", from)
	}

	if !info.IsDir() {
		return copyOrLinkFile(from, to)
	}

	return Walk(from, func(name string, isDir bool) error {
		rel, err := filepath.Rel(from, name)
		if err != nil {
			return err
		}
		dest := filepath.Join(to, rel)
		if isDir {
			// Walk also reports symlinks to directories as directories;
			// those are recreated as links, not as empty directories.
			if fi, err := os.Lstat(name); err == nil && fi.Mode()&os.ModeSymlink != 0 {
				return copyOrLinkFile(name, dest)
			}
			return os.MkdirAll(dest, DirPermissions)
		}
		return copyOrLinkFile(name, dest)
	})
}

func copyOrLinkFile(from, to string) error {
	info, err := os.Lstat(from)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		dest, err := os.Readlink(from)
		if err != nil {
			return err
		}
		if err := os.Remove(to); err != nil && !os.IsNotExist(err) {
			return err
		}
		return os.Symlink(dest, to)
	}
	return copyFile(from, to, info.Mode())
}

func copyFile(from, to string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(to), DirPermissions); err != nil {
		return err
	}
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// Walk implements a directory walk over godirwalk, reporting each entry's
// path relative behavior left to the caller (name is absolute).
func Walk(rootPath string, callback func(name string, isDir bool) error) error {
	return godirwalk.Walk(rootPath, &godirwalk.Options{
		Callback: func(name string, info *godirwalk.Dirent) error {
			isDir, err := info.IsDirOrSymlinkToDir()
			if err != nil {
				if os.IsNotExist(err) {
					return godirwalk.SkipThis
				}
				return err
			}
			return callback(name, isDir)
		},
		ErrorCallback: func(pathname string, err error) godirwalk.ErrorAction {
			if os.IsNotExist(err) {
				return godirwalk.SkipNode
			}
			return godirwalk.Halt
		},
		Unsorted: true,
	})
}

// RemoveTree removes dir and everything under it; it is not an error if
// dir does not exist.
func RemoveTree(dir string) error {
	err := os.RemoveAll(dir)
	if err != nil {
		return errors.Wrapf(err, "fsutil: removing %q", dir)
	}
	return nil
}

// RepointCurrent atomically repoints the "current" symlink inside parent
// to reference relTarget, creating a new symlink and renaming it over any
// existing one so readers never observe a missing link.
func RepointCurrent(parent, linkName, relTarget string) error {
	if err := os.MkdirAll(parent, DirPermissions); err != nil {
		return err
	}
	tmp := filepath.Join(parent, "."+linkName+".tmp")
	os.Remove(tmp)
	if err := os.Symlink(relTarget, tmp); err != nil {
		return errors.Wrapf(err, "fsutil: creating temp symlink for %q", linkName)
	}
	return os.Rename(tmp, filepath.Join(parent, linkName))
}
