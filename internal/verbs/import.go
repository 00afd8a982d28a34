package verbs

import (
	"os"
	"path/filepath"

	"github.com/room77/zeus/internal/discovery"
)

// Import mirrors each discovered task's publish "current" directory back
// into the local dated output directory, the reverse of Export.
func Import(vc Context, pm *discovery.PriorityMap, poolSize int) (successful, failed []string, err error) {
	dirs := datedDirs(vc.Config, pm)
	if len(dirs) == 0 {
		vc.Logger.Errorf("did not find any dirs to import; specify --publish_root")
		return nil, nil, nil
	}

	var reversed []datedDir
	for _, d := range dirs {
		current := filepath.Join(filepath.Dir(d.Target), "current")
		if _, statErr := os.Stat(current); statErr != nil {
			vc.Logger.Failuref("no publish current dir for %s", d.Src)
			failed = append(failed, d.Src)
			continue
		}
		reversed = append(reversed, datedDir{Src: current, Target: d.Src})
	}

	copied, copyFailed, err := copyDirs(vc, reversed, poolSize)
	successful = append(successful, copied...)
	failed = append(failed, copyFailed...)
	return successful, failed, err
}
