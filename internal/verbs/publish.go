package verbs

import (
	"path/filepath"

	"github.com/room77/zeus/internal/discovery"
	"github.com/room77/zeus/internal/fsutil"
	"github.com/room77/zeus/internal/pathops"
	"github.com/room77/zeus/internal/status"
	"github.com/room77/zeus/internal/util"
	"github.com/room77/zeus/internal/zeusconfig"
)

// Publish repoints each discovered task's publish "current" symlink to
// the nearest dated sibling (this run's dated dir, or an earlier one)
// that carries a SUCCESS marker.
func Publish(vc Context, pm *discovery.PriorityMap) (successful, failed []string, err error) {
	hints := datedDirs(vc.Config, pm)
	if len(hints) == 0 {
		vc.Logger.Errorf("did not find any dirs to publish; specify --publish_root")
		return nil, nil, nil
	}

	for _, d := range hints {
		actual, ok := actualPublishDir(d.Target)
		if !ok {
			vc.Logger.Failuref("no publishable sibling for %s", d.Target)
			failed = append(failed, d.Target)
			continue
		}
		parent, linkName, relTarget := pathops.CurrentLinkTarget(actual)
		if err := fsutil.RepointCurrent(parent, linkName, relTarget); err != nil {
			vc.Logger.Failuref("repointing current for %s: %v", actual, err)
			failed = append(failed, actual)
			continue
		}
		vc.Logger.Successf("current -> %s", actual)
		successful = append(successful, actual)
	}
	return successful, failed, nil
}

// actualPublishDir resolves a publish-dir hint to the nearest dated
// sibling (hint itself, or an earlier day) that carries a SUCCESS marker.
func actualPublishDir(hint string) (string, bool) {
	if status.HasSuccess(hint) {
		return hint, true
	}
	return pathops.PreviousDatedDirContaining(hint, "SUCCESS")
}

// datedDir pairs a produced output directory with its publish-rebased
// counterpart, both dated to the current run's Config.Date.
type datedDir struct {
	Src    string
	Target string
}

// datedDirs enumerates every distinct (outDir, publishDir) pair implied
// by pm's tasks across every configured output subdir. Sources are
// deduplicated with util.Set, since several tasks in the same output
// directory resolve to the same pair.
func datedDirs(cfg *zeusconfig.Config, pm *discovery.PriorityMap) []datedDir {
	if cfg.PublishDir == "" {
		return nil
	}
	seen := util.Set{}
	var out []datedDir
	for _, t := range pm.All() {
		for _, base := range cfg.Subdirs {
			src := filepath.Join(base, t.OutputRelDir(), cfg.Date)
			if seen.Includes(src) {
				continue
			}
			seen.Add(src)
			target := pathops.RebasePublishPath(src, base, cfg.PublishDir)
			out = append(out, datedDir{Src: src, Target: target})
		}
	}
	return out
}
