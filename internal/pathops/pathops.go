// Package pathops implements the pure path-string algorithms Zeus derives
// tasks and their output layout from: priority computation, output
// relative directory computation, log file naming, and the
// nearest-previous-dated-sibling walk used for publish and for the
// "_PREV" environment variables.
package pathops

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the on-disk date directory format, e.g. "20260731".
const dateLayout = "20060102"

// maxPreviousDayScan bounds the backward walk in PreviousDatedDirContaining
// so a fresh pipeline id (with no prior dated siblings at all) doesn't
// scan indefinitely.
const maxPreviousDayScan = 365

// segmentPriority splits a single path segment on its first underscore and
// returns the leading numeric token, or "", false if the segment does not
// begin with an all-digit prefix followed by '_'.
func segmentPriority(segment string) (string, bool) {
	idx := strings.IndexByte(segment, '_')
	if idx <= 0 {
		return "", false
	}
	digits := segment[:idx]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return digits, true
}

// Priority computes the concatenation of the leading numeric token of
// every segment of relPath. It returns "", false if any segment lacks a
// "digits_" prefix, meaning the path is not schedulable as a task.
func Priority(relPath string) (string, bool) {
	segments := strings.Split(filepath.ToSlash(relPath), "/")
	var b strings.Builder
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		digits, ok := segmentPriority(seg)
		if !ok {
			return "", false
		}
		b.WriteString(digits)
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

// stripNumericPrefix removes a leading "digits_" prefix from a single path
// segment, if present; segments without one are returned unchanged.
func stripNumericPrefix(segment string) string {
	if _, ok := segmentPriority(segment); !ok {
		return segment
	}
	idx := strings.IndexByte(segment, '_')
	return segment[idx+1:]
}

// OutputRelDir computes a task's output-relative directory: the parent of
// relPath with numeric prefixes stripped from every segment.
func OutputRelDir(relPath string) string {
	dir := filepath.ToSlash(filepath.Dir(relPath))
	if dir == "." {
		return ""
	}
	segments := strings.Split(dir, "/")
	stripped := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		stripped = append(stripped, stripNumericPrefix(seg))
	}
	return filepath.Join(stripped...)
}

// LogFile computes the flattened log file path for a task: relPath with
// every path separator replaced by '.', rooted under logDir, with a
// ".log" suffix. Returns "" if logDir is empty (logging disabled).
func LogFile(logDir, relPath string) string {
	if logDir == "" {
		return ""
	}
	flat := strings.ReplaceAll(filepath.ToSlash(relPath), "/", ".")
	return filepath.Join(logDir, flat+".log")
}

// PrimaryFor resolves which primary priority key each key of sorted folds
// into: a key folds into the current primary when it is longer, starts
// with it, and the remaining suffix parses as the integer 0. Used by
// callers that need to merge the task sets of folded keys into their
// primary's set.
func PrimaryFor(sorted []string) map[string]string {
	foldedInto := map[string]string{}
	current := ""
	for _, key := range sorted {
		if current != "" && len(current) < len(key) && strings.HasPrefix(key, current) {
			suffix := key[len(current):]
			if n, err := strconv.Atoi(suffix); err == nil && n == 0 {
				foldedInto[key] = current
				continue
			}
		}
		current = key
		foldedInto[key] = key
	}
	return foldedInto
}

// PreviousDatedDir returns the dated sibling directory that chronologically
// precedes dir (dir's basename is parsed as dateLayout), without checking
// for its existence or contents.
func PreviousDatedDir(dir string) (string, bool) {
	parent := filepath.Dir(dir)
	base := filepath.Base(dir)
	date, err := time.Parse(dateLayout, base)
	if err != nil {
		return "", false
	}
	prev := date.AddDate(0, 0, -1)
	return filepath.Join(parent, prev.Format(dateLayout)), true
}

// PreviousDatedDirContaining walks backward, one calendar day at a time,
// from dir looking for a previous-dated sibling that contains a file or
// directory named marker. It is bounded to maxPreviousDayScan days so a
// pipeline id with no history doesn't scan forever.
func PreviousDatedDirContaining(dir, marker string) (string, bool) {
	cursor := dir
	for i := 0; i < maxPreviousDayScan; i++ {
		prev, ok := PreviousDatedDir(cursor)
		if !ok {
			return "", false
		}
		if _, err := os.Stat(filepath.Join(prev, marker)); err == nil {
			return prev, true
		}
		cursor = prev
	}
	return "", false
}

// RebasePublishPath rewrites an output-rooted path onto the publish root
// by replacing the output subdir base with the publish directory, a
// plain string substitution rather than a path-segment-aware rebase.
func RebasePublishPath(path, outDirBase, publishDir string) string {
	return strings.Replace(path, outDirBase, publishDir, 1)
}

// CurrentLinkTarget returns the parent directory and link name ("current")
// used to atomically repoint a publish directory's "current" symlink to
// point at targetDir.
func CurrentLinkTarget(targetDir string) (parent, linkName, relTarget string) {
	parent = filepath.Dir(targetDir)
	return parent, "current", filepath.Base(targetDir)
}

// FormatTaskError renders a consistent error description for logging.
func FormatTaskError(task string, err error) string {
	return fmt.Sprintf("%s: %v", task, err)
}
