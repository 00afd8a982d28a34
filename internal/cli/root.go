// Package cli assembles the zeus cobra command tree: one subcommand per
// verb (run, continue, clean, publish, export, import), each a thin
// wrapper around Discovery plus its specific verbs.* workhorse. It also
// owns the process exit code translation.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/room77/zeus/internal/cmdutil"
	"github.com/room77/zeus/internal/signals"
)

// RunWithArgs runs zeus with the specified arguments, which should not
// include the binary name. It returns the process exit code.
func RunWithArgs(args []string) int {
	watcher := signals.NewWatcher()
	helper := cmdutil.NewHelper()
	root := getCmd(helper, watcher)
	root.SetArgs(args)

	doneCh := make(chan struct{})
	var execErr error
	go func() {
		execErr = root.Execute()
		close(doneCh)
	}()

	select {
	case <-doneCh:
		// The command finished on its own; the signal watcher never
		// fired so nobody has run its close handlers yet.
		watcher.Close()
		if execErr != nil {
			if _, ok := execErr.(*exitError); !ok {
				fmt.Fprintln(os.Stderr, execErr)
			}
		}
		return exitCodeOf(execErr)
	case <-watcher.Done():
		// A signal interrupted us. The watcher already ran every
		// registered close handler (e.g. cancelling the run context).
		return ExitInterrupted
	}
}

// getCmd builds the root command and attaches every verb subcommand.
func getCmd(helper *cmdutil.Helper, watcher *signals.Watcher) *cobra.Command {
	root := &cobra.Command{
		Use:           "zeus",
		Short:         "A directory-driven task pipeline engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	helper.AddPersistentFlags(root.PersistentFlags())

	root.AddCommand(newRunCmd(helper, watcher))
	root.AddCommand(newContinueCmd(helper, watcher))
	root.AddCommand(newCleanCmd(helper))
	root.AddCommand(newPublishCmd(helper))
	root.AddCommand(newExportCmd(helper))
	root.AddCommand(newImportCmd(helper))
	return root
}
