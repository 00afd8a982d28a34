// Package status writes the per-output-directory SUCCESS/FAILURE/ABORT
// marker files a scheduler run produces, and reads them back for
// "continue", "publish" and "export".
package status

import (
	"os"
	"path/filepath"

	"github.com/room77/zeus/internal/task"
)

// markerNames are every marker StatusWriter ever writes; Write deletes all
// of them before writing the one the current run's class maps to.
var markerNames = []string{"SUCCESS", "FAILURE", "ABORT"}

// Write persists one marker file per entry of byOutDir, replacing any
// pre-existing marker in that directory.
func Write(byOutDir map[string]task.ExitClass) error {
	for dir, class := range byOutDir {
		if err := writeOne(dir, class); err != nil {
			return err
		}
	}
	return nil
}

func writeOne(dir string, class task.ExitClass) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, name := range markerNames {
		os.Remove(filepath.Join(dir, name))
	}
	marker := filepath.Join(dir, class.Marker())
	f, err := os.Create(marker)
	if err != nil {
		return err
	}
	return f.Close()
}

// Read reports the marker currently present in dir, if any: "SUCCESS",
// "FAILURE" or "ABORT". ok is false if no marker file exists.
func Read(dir string) (marker string, ok bool) {
	for _, name := range markerNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return name, true
		}
	}
	return "", false
}

// HasSuccess reports whether dir currently carries a SUCCESS marker, the
// predicate "continue" uses to skip already-completed tasks.
func HasSuccess(dir string) bool {
	marker, ok := Read(dir)
	return ok && marker == "SUCCESS"
}

// HasAbort reports whether dir carries an ABORT marker, the predicate
// "export" uses to refuse exporting an aborted run.
func HasAbort(dir string) bool {
	marker, ok := Read(dir)
	return ok && marker == "ABORT"
}
