package cli

import (
	"github.com/spf13/cobra"

	"github.com/room77/zeus/internal/cmdutil"
	"github.com/room77/zeus/internal/verbs"
)

func newPublishCmd(h *cmdutil.Helper) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "publish [tasks...]",
		Short:         "Repoint each task's publish \"current\" symlink to its nearest publishable dated dir",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(h, args)
		},
	}
	h.AddCommonVerbFlags(cmd.Flags())
	return cmd
}

func runPublish(h *cmdutil.Helper, args []string) error {
	_, pm, vc, err := setup(h, args)
	if err != nil {
		return err
	}
	if pm.Empty() {
		h.Logger().Warnf("could not find any tasks")
		return newExitError(ExitNoTasks)
	}

	successful, failed, err := verbs.Publish(vc, pm)
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		h.Logger().Failuref("failed to publish: %d", len(failed))
		return newExitError(ExitTaskFailed)
	}
	h.Logger().Successf("published: %d", len(successful))
	return nil
}
