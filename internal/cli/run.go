package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/room77/zeus/internal/cmdutil"
	"github.com/room77/zeus/internal/discovery"
	"github.com/room77/zeus/internal/scheduler"
	"github.com/room77/zeus/internal/signals"
	"github.com/room77/zeus/internal/verbs"
)

func newRunCmd(h *cmdutil.Helper, watcher *signals.Watcher) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "run [tasks...]",
		Short:         "Discover and execute tasks in priority order",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrContinue(h, watcher, args, verbs.Run)
		},
	}
	h.AddCommonVerbFlags(cmd.Flags())
	h.AddRunFlags(cmd.Flags())
	return cmd
}

func newContinueCmd(h *cmdutil.Helper, watcher *signals.Watcher) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "continue [tasks...]",
		Short:         "Like run, but skip tasks whose output already carries a SUCCESS marker",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrContinue(h, watcher, args, verbs.Continue)
		},
	}
	h.AddCommonVerbFlags(cmd.Flags())
	h.AddRunFlags(cmd.Flags())
	return cmd
}

// dispatchFunc is the shape both verbs.Run and verbs.Continue share.
type dispatchFunc func(ctx context.Context, vc verbs.Context, pm *discovery.PriorityMap, poolSize int, defaultTimeout time.Duration) (scheduler.Result, error)

// runOrContinue is the shared body of the "run" and "continue" commands:
// build Config, discover tasks, acquire the optional lock, dispatch via
// dispatch, and translate the outcome into the process exit code.
func runOrContinue(h *cmdutil.Helper, watcher *signals.Watcher, args []string, dispatch dispatchFunc) error {
	cfg, pm, vc, err := setup(h, args)
	if err != nil {
		return err
	}

	release, err := h.AcquireLock(cfg)
	if err != nil {
		return err
	}
	defer release()

	if pm.Empty() {
		h.Logger().Warnf("could not find any tasks")
		return newExitError(ExitNoTasks)
	}

	ctx, cancel := context.WithCancel(context.Background())
	watcher.AddOnClose(cancel)

	res, err := dispatch(ctx, vc, pm, h.PoolSize(), h.DefaultTimeout())
	if err != nil {
		return err
	}

	if len(res.Succeeded) > 0 {
		h.Logger().Printf("succeeded: %d", len(res.Succeeded))
	}
	if len(res.Failed) > 0 {
		h.Logger().Failuref("failed: %d", len(res.Failed))
		return newExitError(ExitTaskFailed)
	}
	return nil
}
