// Package task derives the attributes of a Zeus task from its absolute
// path: relative name, display name, priority, output-relative
// directory, options, and log file. None of these are ever stored
// outside a Task value; they are recomputed whenever needed.
package task

import (
	"path/filepath"

	"github.com/room77/zeus/internal/pathops"
)

// Task is an executable file discovered under a pipeline's base
// directory. All attributes besides Abs and BaseDir are derived.
type Task struct {
	// Abs is the absolute path to the task's executable file.
	Abs string
	// BaseDir is the pipeline source root the task was discovered under.
	BaseDir string
}

// RelName is the task's path relative to BaseDir.
func (t Task) RelName() string {
	rel, err := filepath.Rel(t.BaseDir, t.Abs)
	if err != nil {
		return t.Abs
	}
	return rel
}

// DisplayName is the task's human-facing name: "//" + RelName.
func (t Task) DisplayName() string {
	return "//" + filepath.ToSlash(t.RelName())
}

// Priority is the concatenation of the leading numeric token of every
// path segment of RelName. ok is false if the task is not schedulable.
func (t Task) Priority() (priority string, ok bool) {
	return pathops.Priority(t.RelName())
}

// OutputRelDir is RelName's parent directory with numeric prefixes
// stripped from every segment.
func (t Task) OutputRelDir() string {
	return pathops.OutputRelDir(t.RelName())
}

// Options is the bitset of policies derived from RelName's substrings.
func (t Task) Options() Options {
	return ParseOptions(t.RelName())
}

// LogFile is the task's flattened log file path under logDir, or "" if
// logDir is empty (logging disabled).
func (t Task) LogFile(logDir string) string {
	return pathops.LogFile(logDir, t.RelName())
}

// Dir is the absolute directory the task's executable lives in, the unit
// require_dir_success filters on.
func (t Task) Dir() string {
	return filepath.Dir(t.Abs)
}

// New constructs a Task, validating nothing beyond storing the two paths;
// schedulability is determined lazily via Priority().
func New(baseDir, abs string) Task {
	return Task{Abs: abs, BaseDir: baseDir}
}
