package cli

import (
	"github.com/room77/zeus/internal/cmdutil"
	"github.com/room77/zeus/internal/discovery"
	"github.com/room77/zeus/internal/notify"
	"github.com/room77/zeus/internal/verbs"
	"github.com/room77/zeus/internal/zeusconfig"
)

// Process exit codes.
const (
	ExitSuccess     = 0
	ExitInterrupted = 1
	ExitNoTasks     = 101
	ExitTaskFailed  = 102
)

// setup resolves the persistent flags into a Config, discovers tasks
// from the positional targets, and builds the verbs.Context every verb
// command shares.
func setup(h *cmdutil.Helper, args []string) (*zeusconfig.Config, *discovery.PriorityMap, verbs.Context, error) {
	cfg, err := h.BuildConfig()
	if err != nil {
		return nil, nil, verbs.Context{}, err
	}

	pm, warnings := discovery.Discover(cfg.BaseDir, cmdutil.Targets(args), h.IgnoreTasks())
	for _, w := range warnings {
		h.Logger().Warnf("%s: %s", w.Target, w.Reason)
	}

	vc := verbs.Context{
		Config:              cfg,
		Logger:              h.Logger(),
		Notifier:            notifier(h),
		SuccessMail:         h.SuccessMail(),
		FailureMail:         h.FailureMail(),
		DetailedSuccessMail: h.DetailedSuccessMail(),
	}
	return cfg, pm, vc, nil
}

// notifier picks the SMTP notifier when mail recipients were configured,
// else the null notifier.
func notifier(h *cmdutil.Helper) notify.Notifier {
	if len(h.SuccessMail()) == 0 && len(h.FailureMail()) == 0 {
		return notify.NullNotifier{}
	}
	return notify.NewSMTPNotifier("localhost:25", h.HCLogger())
}
