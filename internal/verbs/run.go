package verbs

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/room77/zeus/internal/discovery"
	"github.com/room77/zeus/internal/executor"
	"github.com/room77/zeus/internal/notify"
	"github.com/room77/zeus/internal/process"
	"github.com/room77/zeus/internal/scheduler"
	"github.com/room77/zeus/internal/status"
	"github.com/room77/zeus/internal/task"
)

// Run executes every task in pm, in priority order, sending per-task
// notifications as results arrive, then writing status markers and the
// final summary once every group has finished.
func Run(ctx context.Context, vc Context, pm *discovery.PriorityMap, poolSize int, defaultTimeout time.Duration) (scheduler.Result, error) {
	return dispatch(ctx, vc, pm, poolSize, defaultTimeout, nil)
}

// dispatch is the shared run/continue dispatch loop: build an Executor
// and Scheduler, run the group loop with an optional skip predicate, then
// persist status markers and send the final summary mail.
func dispatch(ctx context.Context, vc Context, pm *discovery.PriorityMap, poolSize int, defaultTimeout time.Duration, skip func(task.Task) bool) (scheduler.Result, error) {
	mgr := process.NewManager(hclog.NewNullLogger())
	defer mgr.Close()

	ex := executor.New(vc.Config, mgr, defaultTimeout)
	sched := scheduler.New(ex)

	start := time.Now()
	res := sched.Run(ctx, pm, scheduler.Options{
		PoolSize: poolSize,
		Skip:     skip,
		OnResult: vc.notifyTaskResult,
	})
	total := time.Since(start)

	if err := status.Write(expandByOutDir(vc.Config, res.ByOutDir)); err != nil {
		return res, err
	}

	sendFinalSummary(vc, res, total)
	return res, nil
}

func sendFinalSummary(vc Context, res scheduler.Result, total time.Duration) {
	if len(res.Succeeded) == 0 && len(res.Failed) == 0 {
		return
	}
	recipients := finalSummaryRecipients(vc)
	if len(recipients) == 0 {
		return
	}

	var aborted *task.Task
	if res.Abort {
		for i := range res.Failed {
			if task.ClassifyExit(false, res.Failed[i].Options()) == task.AbortFail {
				aborted = &res.Failed[i]
				break
			}
		}
	}

	vc.Notifier.Send(notify.Message{
		Sender:    notify.DefaultSender(vc.Config.ID, vc.Config.MailDomain),
		Receivers: recipients,
		Subject:   finalSubject(vc, res),
		Body:      notify.FinalSummary(res.Succeeded, res.Failed, total, aborted, vc.Config.String()),
	})
}

func finalSubject(vc Context, res scheduler.Result) string {
	outcome := "SUCCESS"
	switch {
	case res.Abort:
		outcome = "ABORT"
	case len(res.Failed) > 0:
		outcome = "FAILURE"
	}
	return "[zeus:" + vc.Config.ID + " " + vc.Config.Date + "] " + outcome + " summary"
}
