// Package discovery resolves user-supplied CLI targets (files,
// directories, "..." recursive markers) into an ordered PriorityMap, the
// shared core every Zeus verb builds on.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/room77/zeus/internal/pathops"
	"github.com/room77/zeus/internal/task"
)

// alwaysIgnoredSubstring is appended to every caller-supplied ignore list: a
// "timeout" side-file is never itself a task.
const alwaysIgnoredSubstring = "timeout"

// Warning is a non-fatal issue encountered while resolving targets.
type Warning struct {
	Target string
	Reason string
}

// PriorityMap is an ordered mapping from priority string to the tasks
// that share it, iterated in ascending (execution) order.
type PriorityMap struct {
	keys   []string
	groups map[string][]task.Task
}

// Keys returns the priority strings in ascending execution order.
func (m *PriorityMap) Keys() []string {
	return m.keys
}

// Tasks returns the tasks sharing the given priority key.
func (m *PriorityMap) Tasks(key string) []task.Task {
	return m.groups[key]
}

// Len returns the total number of tasks across every priority group.
func (m *PriorityMap) Len() int {
	n := 0
	for _, k := range m.keys {
		n += len(m.groups[k])
	}
	return n
}

// Empty reports whether no tasks were discovered at all.
func (m *PriorityMap) Empty() bool {
	return len(m.keys) == 0
}

// All returns every task across every priority group, in group order.
func (m *PriorityMap) All() []task.Task {
	var all []task.Task
	for _, k := range m.keys {
		all = append(all, m.groups[k]...)
	}
	return all
}

// Discover resolves targets (defaulting to ["..."] when empty, per the
// CLI grammar) into an ordered PriorityMap, relative to baseDir.
func Discover(baseDir string, targets []string, ignoreList []string) (*PriorityMap, []Warning) {
	if len(targets) == 0 {
		targets = []string{"..."}
	}
	ignore := append(append([]string{}, ignoreList...), alwaysIgnoredSubstring)

	raw := map[string][]task.Task{}
	var warnings []Warning

	queue := append([]string{}, targets...)
	for i := 0; i < len(queue); i++ {
		target := queue[i]

		if reason, ignored := ignoredBy(target, ignore); ignored {
			warnings = append(warnings, Warning{Target: target, Reason: "ignored: contains " + reason})
			continue
		}

		recurse := false
		if filepath.Base(target) == "..." {
			target = filepath.Dir(target)
			if target == "." || target == "" {
				cwd, err := os.Getwd()
				if err != nil {
					warnings = append(warnings, Warning{Target: target, Reason: err.Error()})
					continue
				}
				target = cwd
				if !strings.HasPrefix(target, baseDir) {
					target = baseDir
				}
			}
			recurse = true
		}

		abs := target
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(baseDir, target)
		}
		abs = filepath.Clean(abs)

		info, err := os.Stat(abs)
		if err != nil {
			warnings = append(warnings, Warning{Target: target, Reason: "not a valid path"})
			continue
		}

		switch {
		case info.Mode().IsRegular():
			addFile(raw, baseDir, abs, &warnings)
		case info.IsDir():
			entries, err := listDir(abs, recurse, ignore)
			if err != nil {
				warnings = append(warnings, Warning{Target: target, Reason: err.Error()})
				continue
			}
			queue = append(queue, entries...)
		default:
			warnings = append(warnings, Warning{Target: target, Reason: "not supported"})
		}
	}

	return &PriorityMap{groups: raw, keys: mergeKeys(raw)}, warnings
}

func ignoredBy(target string, ignore []string) (string, bool) {
	for _, substr := range ignore {
		if substr != "" && strings.Contains(target, substr) {
			return substr, true
		}
	}
	return "", false
}

func addFile(raw map[string][]task.Task, baseDir, abs string, warnings *[]Warning) {
	tk := task.New(baseDir, abs)
	priority, ok := tk.Priority()
	if !ok {
		*warnings = append(*warnings, Warning{Target: abs, Reason: "no priority info"})
		return
	}
	raw[priority] = append(raw[priority], tk)
}

// listDir returns the entries of dir as target strings: every immediate
// entry when recurse is false, every regular file under the tree when
// recurse is true. Ignored entries are still returned so that Discover
// records a warning for each of them; an ignored directory is not
// descended into.
func listDir(dir string, recurse bool, ignore []string) ([]string, error) {
	var out []string
	if !recurse {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			out = append(out, filepath.Join(dir, e.Name()))
		}
		return out, nil
	}

	err := godirwalk.Walk(dir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path == dir {
				return nil
			}
			if _, ignored := ignoredBy(path, ignore); ignored {
				out = append(out, path)
				if de.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if de.IsDir() {
				return nil
			}
			out = append(out, path)
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mergeKeys sorts the raw priority keys and folds each key into its
// primary per the §4.1 merge rule, returning the ordered list of primary
// keys and merging each folded key's tasks into its primary's slot.
func mergeKeys(raw map[string][]task.Task) []string {
	sorted := make([]string, 0, len(raw))
	for k := range raw {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	primaryOf := pathops.PrimaryFor(sorted)

	var order []string
	seen := map[string]bool{}
	for _, k := range sorted {
		primary := primaryOf[k]
		if primary != k {
			raw[primary] = append(raw[primary], raw[k]...)
			delete(raw, k)
			continue
		}
		if !seen[primary] {
			order = append(order, primary)
			seen[primary] = true
		}
	}
	return order
}
