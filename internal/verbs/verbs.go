// Package verbs implements the six Zeus CLI verbs (run, continue, clean,
// publish, export, import) as thin specializations sharing Discovery,
// the Scheduler and status marker handling.
package verbs

import (
	"path/filepath"
	"time"

	"github.com/room77/zeus/internal/executor"
	"github.com/room77/zeus/internal/logger"
	"github.com/room77/zeus/internal/notify"
	"github.com/room77/zeus/internal/task"
	"github.com/room77/zeus/internal/zeusconfig"
)

// Context carries the collaborators every verb needs beyond the
// discovered PriorityMap itself.
type Context struct {
	Config   *zeusconfig.Config
	Logger   *logger.Logger
	Notifier notify.Notifier

	SuccessMail         []string
	FailureMail         []string
	DetailedSuccessMail bool
}

// logTaskResult writes one colored line per task result as it completes.
func (vc Context) logTaskResult(r executor.Result) {
	switch r.Class {
	case task.Success:
		vc.Logger.Successf("%s (%s)", r.Task.DisplayName(), r.Duration.Round(time.Millisecond))
	case task.AllowFail:
		vc.Logger.AllowFailf("%s (%s)", r.Task.DisplayName(), r.Duration.Round(time.Millisecond))
	case task.AbortFail:
		vc.Logger.Abortf("%s (%s)", r.Task.DisplayName(), r.Duration.Round(time.Millisecond))
	default:
		vc.Logger.Failuref("%s (%s)", r.Task.DisplayName(), r.Duration.Round(time.Millisecond))
	}
}

// notifyTaskResult mails a per-task report when ShouldNotifyTask says to.
func (vc Context) notifyTaskResult(r executor.Result) {
	vc.logTaskResult(r)

	if !notify.ShouldNotifyTask(r.Class, vc.DetailedSuccessMail) {
		return
	}
	recipients := vc.FailureMail
	if r.Class == task.Success {
		recipients = vc.SuccessMail
	}
	if len(recipients) == 0 {
		return
	}
	vc.Notifier.Send(notify.Message{
		Sender:    notify.DefaultSender(vc.Config.ID, vc.Config.MailDomain),
		Receivers: recipients,
		Subject:   notify.TaskSubject(vc.Config.ID, vc.Config.Date, r.Task, r.Class),
		Body:      notify.TaskBody(r.Task, r.Class, r.Duration, r.Err, r.Output),
	})
}

// expandByOutDir turns the scheduler's relative-outputRelDir-keyed status
// map into one entry per absolute `<subdir>/<outputRelDir>/<date>`
// directory across every configured output subdir, the unit StatusWriter
// actually persists markers in.
func expandByOutDir(cfg *zeusconfig.Config, relByOutDir map[string]task.ExitClass) map[string]task.ExitClass {
	abs := make(map[string]task.ExitClass, len(relByOutDir)*len(cfg.Subdirs))
	for relDir, class := range relByOutDir {
		for _, base := range cfg.Subdirs {
			dir := filepath.Join(base, relDir, cfg.Date)
			abs[dir] = task.WorstClass(abs[dir], class)
		}
	}
	return abs
}

// finalSummaryRecipients merges success and failure recipient lists for
// the one final-summary mail that is sent regardless of outcome.
func finalSummaryRecipients(vc Context) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range [][]string{vc.SuccessMail, vc.FailureMail} {
		for _, r := range list {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}
