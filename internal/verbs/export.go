package verbs

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/room77/zeus/internal/discovery"
	"github.com/room77/zeus/internal/fsutil"
)

// Export mirrors every produced output directory implied by pm to its
// publish-rebased counterpart, refusing the whole run if any of those
// directories carries an ABORT marker.
func Export(vc Context, pm *discovery.PriorityMap, poolSize int) (successful, failed []string, err error) {
	dirs := datedDirs(vc.Config, pm)
	if len(dirs) == 0 {
		vc.Logger.Errorf("did not find any dirs to export")
		return nil, nil, nil
	}

	for _, d := range dirs {
		if _, statErr := os.Stat(filepath.Join(d.Src, "ABORT")); statErr == nil {
			vc.Logger.Abortf("pipeline was aborted for dir: %s", d.Src)
			return nil, nil, abortedDirError(d.Src)
		}
	}

	successful, failed, err = copyDirs(vc, dirs, poolSize)
	return successful, failed, err
}

// abortedDirError is the typed error returned when export refuses to run
// because a source directory carries an ABORT marker.
type abortedDirError string

func (e abortedDirError) Error() string { return "pipeline was aborted for dir: " + string(e) }

// copyDirs runs fsutil.RecursiveCopy(d.Src, d.Target) for every dir,
// bounded to poolSize concurrent copies via errgroup, aggregating every
// failure with go-multierror so one bad directory doesn't hide the rest.
func copyDirs(vc Context, dirs []datedDir, poolSize int) (successful, failed []string, err error) {
	if poolSize <= 0 {
		poolSize = len(dirs)
	}

	type outcome struct {
		dir datedDir
		err error
	}
	results := make([]outcome, len(dirs))

	eg := &errgroup.Group{}
	eg.SetLimit(poolSize)
	for i, d := range dirs {
		i, d := i, d
		eg.Go(func() error {
			copyErr := os.MkdirAll(d.Target, fsutil.DirPermissions)
			if copyErr == nil {
				copyErr = fsutil.RecursiveCopy(d.Src, d.Target)
			}
			results[i] = outcome{dir: d, err: copyErr}
			return nil
		})
	}
	_ = eg.Wait()

	var merr *multierror.Error
	for _, r := range results {
		if r.err != nil {
			merr = multierror.Append(merr, r.err)
			vc.Logger.Failuref("copying %s to %s: %v", r.dir.Src, r.dir.Target, r.err)
			failed = append(failed, r.dir.Src)
			continue
		}
		vc.Logger.Successf("copied %s to %s", r.dir.Src, r.dir.Target)
		successful = append(successful, r.dir.Src)
	}
	return successful, failed, merr.ErrorOrNil()
}
