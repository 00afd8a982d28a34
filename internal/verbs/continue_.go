package verbs

import (
	"context"
	"path/filepath"
	"time"

	"github.com/room77/zeus/internal/discovery"
	"github.com/room77/zeus/internal/scheduler"
	"github.com/room77/zeus/internal/status"
	"github.com/room77/zeus/internal/task"
)

// Continue behaves like Run but first filters out any task whose output
// directories already carry a SUCCESS marker in every configured output
// subdir.
func Continue(ctx context.Context, vc Context, pm *discovery.PriorityMap, poolSize int, defaultTimeout time.Duration) (scheduler.Result, error) {
	skip := func(t task.Task) bool {
		if len(vc.Config.Subdirs) == 0 {
			return false
		}
		for _, base := range vc.Config.Subdirs {
			dir := filepath.Join(base, t.OutputRelDir(), vc.Config.Date)
			if !status.HasSuccess(dir) {
				return false
			}
		}
		return true
	}
	return dispatch(ctx, vc, pm, poolSize, defaultTimeout, skip)
}
