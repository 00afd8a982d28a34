// Package notify sends per-task and final-summary mail notifications.
// The transport is an injectable Notifier so a run's exit status never
// depends on whether mail could actually be sent.
package notify

import (
	"bytes"
	"fmt"
	"net/smtp"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/room77/zeus/internal/task"
)

// Message is one notification, either a per-task report or the final
// run summary.
type Message struct {
	Sender    string
	Receivers []string
	Subject   string
	Body      string
}

// Notifier sends a Message; it must never be the reason a run fails.
type Notifier interface {
	Send(msg Message) error
}

// maxMessageBytes truncates an oversized message body, mirroring the
// ESMTP size-limit truncation the original mailer performed.
const maxMessageBytes = 10 * 1024 * 1024

// SMTPNotifier sends mail through a local SMTP relay, retrying transient
// dial/send failures with bounded exponential backoff.
type SMTPNotifier struct {
	Addr   string
	Logger hclog.Logger
}

// NewSMTPNotifier constructs a notifier talking to the relay at addr
// (e.g. "localhost:25").
func NewSMTPNotifier(addr string, logger hclog.Logger) *SMTPNotifier {
	return &SMTPNotifier{Addr: addr, Logger: logger}
}

// Send delivers msg, retrying a failed send at most 3 times with
// exponential backoff. A send that still fails is logged and its error
// returned.
func (n *SMTPNotifier) Send(msg Message) error {
	body := buildRFC822(msg)
	if len(body) > maxMessageBytes {
		body = append(body[:maxMessageBytes], []byte("...")...)
	}

	op := func() error {
		return smtp.SendMail(n.Addr, nil, msg.Sender, msg.Receivers, body)
	}

	err := backoff.Retry(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3))
	if err != nil && n.Logger != nil {
		n.Logger.Warn("notify: failed to send mail", "subject", msg.Subject, "error", err)
	}
	return err
}

func buildRFC822(msg Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", msg.Sender)
	fmt.Fprintf(&b, "To: %s\r\n", joinComma(msg.Receivers))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "\r\n%s\r\n", msg.Body)
	return b.Bytes()
}

func joinComma(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ","
		}
		out += item
	}
	return out
}

// NullNotifier discards every message; used when no recipients are
// configured, or in tests.
type NullNotifier struct{}

// Send implements Notifier by doing nothing.
func (NullNotifier) Send(Message) error { return nil }

// DefaultSender builds the "zeus+<id>+noreply@<host>.<mailDomain>" sender
// address the original mailer's PrepareMultipartMessage default
// generalizes to Zeus's per-pipeline identity.
func DefaultSender(id, mailDomain string) string {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	if mailDomain != "" {
		return fmt.Sprintf("zeus+%s+noreply@%s.%s", id, host, mailDomain)
	}
	return fmt.Sprintf("zeus+%s+noreply@%s", id, host)
}

// TaskSubject renders the per-task notification subject line.
func TaskSubject(pipelineID, date string, t task.Task, class task.ExitClass) string {
	return fmt.Sprintf("[zeus:%s %s] %s %s", pipelineID, date, class.String(), t.DisplayName())
}

// TaskBody renders the per-task notification body: display name, exit
// description, wall time, and either the captured output or log contents.
func TaskBody(t task.Task, class task.ExitClass, duration time.Duration, execErr error, output []byte) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "task: %s\n", t.DisplayName())
	fmt.Fprintf(&b, "exit class: %s\n", class.String())
	fmt.Fprintf(&b, "wall time: %s\n", duration)
	if execErr != nil {
		fmt.Fprintf(&b, "error: %v\n", execErr)
	}
	if len(output) > 0 {
		fmt.Fprintf(&b, "\noutput:\n%s\n", output)
	}
	return b.String()
}

// ShouldNotifyTask reports whether a per-task notification should be
// sent: always on non-success, only on success when detailedSuccess is
// set (§4.6's "suppressed on success unless a detailed-success flag").
func ShouldNotifyTask(class task.ExitClass, detailedSuccess bool) bool {
	if class != task.Success {
		return true
	}
	return detailedSuccess
}

// FinalSummary renders the final run-summary body: successful tasks,
// failed tasks, total time, the aborting task if any, and a config dump.
func FinalSummary(succeeded, failed []task.Task, total time.Duration, aborted *task.Task, configDump string) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "total time: %s\n\n", total)

	fmt.Fprintf(&b, "succeeded (%d):\n", len(succeeded))
	for _, t := range succeeded {
		fmt.Fprintf(&b, "  %s\n", t.DisplayName())
	}

	fmt.Fprintf(&b, "\nfailed (%d):\n", len(failed))
	for _, t := range failed {
		fmt.Fprintf(&b, "  %s\n", t.DisplayName())
	}

	if aborted != nil {
		fmt.Fprintf(&b, "\naborted by: %s\n", aborted.DisplayName())
	}

	fmt.Fprintf(&b, "\n%s\n", configDump)
	return b.String()
}
