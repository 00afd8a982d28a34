package cli

import (
	"github.com/spf13/cobra"

	"github.com/room77/zeus/internal/cmdutil"
	"github.com/room77/zeus/internal/verbs"
)

func newExportCmd(h *cmdutil.Helper) *cobra.Command {
	var poolSize int
	cmd := &cobra.Command{
		Use:           "export [tasks...]",
		Short:         "Mirror produced output directories into the publish tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(h, args, poolSize)
		},
	}
	h.AddCommonVerbFlags(cmd.Flags())
	cmd.Flags().IntVar(&poolSize, "pool_size", 0, "copy concurrency (0 = one per directory)")
	return cmd
}

func runExport(h *cmdutil.Helper, args []string, poolSize int) error {
	_, pm, vc, err := setup(h, args)
	if err != nil {
		return err
	}
	if pm.Empty() {
		h.Logger().Warnf("could not find any tasks")
		return newExitError(ExitNoTasks)
	}

	successful, failed, err := verbs.Export(vc, pm, poolSize)
	if err != nil {
		h.Logger().Errorf("export refused: %v", err)
		return newExitError(ExitTaskFailed)
	}
	if len(failed) > 0 {
		h.Logger().Failuref("failed to export: %d", len(failed))
		return newExitError(ExitTaskFailed)
	}
	h.Logger().Successf("exported: %d", len(successful))
	return nil
}
