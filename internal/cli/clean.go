package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/room77/zeus/internal/cmdutil"
	"github.com/room77/zeus/internal/discovery"
	"github.com/room77/zeus/internal/verbs"
)

func newCleanCmd(h *cmdutil.Helper) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:           "clean [tasks...]",
		Short:         "Remove task output directories",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(h, args, all)
		},
	}
	h.AddCommonVerbFlags(cmd.Flags())
	addAllFlag(cmd.Flags(), &all)
	return cmd
}

func addAllFlag(flags *pflag.FlagSet, all *bool) {
	flags.BoolVar(all, "all", false, "clean the entire output tree (dangerous)")
}

func runClean(h *cmdutil.Helper, args []string, all bool) error {
	if all {
		cfg, err := h.BuildConfig()
		if err != nil {
			return err
		}
		h.Logger().Warnf("cleaning entire output tree: %s", cfg.OutputDir)
		if err := verbs.Clean(verbs.Context{Config: cfg, Logger: h.Logger()}, &discovery.PriorityMap{}, true); err != nil {
			return err
		}
		return nil
	}

	cfg, pm, vc, err := setup(h, args)
	if err != nil {
		return err
	}
	if pm.Empty() {
		h.Logger().Warnf("could not find any tasks")
		return newExitError(ExitNoTasks)
	}

	if err := verbs.Clean(vc, pm, false); err != nil {
		return err
	}
	h.Logger().Successf("cleaned output for %d task(s) under %s", pm.Len(), cfg.BaseDir)
	return nil
}
