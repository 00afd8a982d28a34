package cli

import (
	"github.com/spf13/cobra"

	"github.com/room77/zeus/internal/cmdutil"
	"github.com/room77/zeus/internal/verbs"
)

func newImportCmd(h *cmdutil.Helper) *cobra.Command {
	var poolSize int
	cmd := &cobra.Command{
		Use:           "import [tasks...]",
		Short:         "Copy each task's published \"current\" dir back into the local output tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(h, args, poolSize)
		},
	}
	h.AddCommonVerbFlags(cmd.Flags())
	cmd.Flags().IntVar(&poolSize, "pool_size", 0, "copy concurrency (0 = one per directory)")
	return cmd
}

func runImport(h *cmdutil.Helper, args []string, poolSize int) error {
	_, pm, vc, err := setup(h, args)
	if err != nil {
		return err
	}
	if pm.Empty() {
		h.Logger().Warnf("could not find any tasks")
		return newExitError(ExitNoTasks)
	}

	successful, failed, err := verbs.Import(vc, pm, poolSize)
	if err != nil {
		h.Logger().Errorf("import error: %v", err)
		return newExitError(ExitTaskFailed)
	}
	if len(failed) > 0 {
		h.Logger().Failuref("failed to import: %d", len(failed))
		return newExitError(ExitTaskFailed)
	}
	h.Logger().Successf("imported: %d", len(successful))
	return nil
}
