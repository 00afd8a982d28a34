package verbs

import (
	"path/filepath"

	"github.com/room77/zeus/internal/discovery"
	"github.com/room77/zeus/internal/fsutil"
)

// Clean removes output directories. When all is true the entire output
// tree is removed and pm is ignored; otherwise every dated subdirectory
// associated with each discovered task's outputRelDir is removed, across
// every configured output subdir.
func Clean(vc Context, pm *discovery.PriorityMap, all bool) error {
	if all {
		return fsutil.RemoveTree(vc.Config.OutputDir)
	}

	seen := map[string]bool{}
	for _, t := range pm.All() {
		for _, base := range vc.Config.Subdirs {
			dir := filepath.Join(base, t.OutputRelDir())
			if seen[dir] {
				continue
			}
			seen[dir] = true
			if err := fsutil.RemoveTree(dir); err != nil {
				return err
			}
		}
	}
	return nil
}
