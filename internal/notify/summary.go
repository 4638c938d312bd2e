package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/babar14jan/doctorpod/internal/reminder"
	"github.com/babar14jan/doctorpod/pkg/logging"
)

// SummaryMailer emails run summaries to clinic staff after a reminder
// pass completes.
type SummaryMailer struct {
	email      EmailSender
	recipients []string
	logger     *logging.Logger
}

// NewSummaryMailer creates a summary mailer. A nil email sender or empty
// recipient list disables sending.
func NewSummaryMailer(email EmailSender, recipients []string, logger *logging.Logger) *SummaryMailer {
	if logger == nil {
		logger = logging.Default()
	}
	return &SummaryMailer{
		email:      email,
		recipients: recipients,
		logger:     logger,
	}
}

// SendRunSummary mails one summary per configured recipient. Individual
// recipient failures are collected rather than aborting the loop.
func (m *SummaryMailer) SendRunSummary(ctx context.Context, report *reminder.Report) error {
	if m.email == nil || len(m.recipients) == 0 {
		m.logger.Debug("run summary email disabled")
		return nil
	}
	if report == nil {
		return nil
	}

	subject := fmt.Sprintf("Reminder run %s: %d sent, %d skipped, %d failed",
		report.Channel, report.Sent(), report.Skipped(), report.Failed())
	body := buildSummaryBody(report)

	var errs []error
	for _, recipient := range m.recipients {
		msg := EmailMessage{
			To:      recipient,
			Subject: subject,
			Body:    body,
		}
		if err := m.email.Send(ctx, msg); err != nil {
			m.logger.Error("run summary email failed", "error", err, "to", recipient)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %d summary email(s) failed", len(errs))
	}
	return nil
}

func buildSummaryBody(report *reminder.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reminder run %s (%s channel)\n", report.RunID, report.Channel)
	fmt.Fprintf(&b, "Started: %s\n\n", report.StartedAt.Format("January 2, 2006 at 3:04 PM"))
	fmt.Fprintf(&b, "Sent: %d\nSkipped: %d\nFailed: %d\n\n", report.Sent(), report.Skipped(), report.Failed())

	for i, e := range report.Entries {
		switch e.Outcome {
		case reminder.OutcomeSent:
			fmt.Fprintf(&b, "%d. %s (%s): sent via %s, receipt %s\n", i+1, e.Patient, e.Recipient, e.Provider, e.ReceiptID)
		case reminder.OutcomeSkipped:
			fmt.Fprintf(&b, "%d. %s: skipped (%s)\n", i+1, e.Patient, e.Reason)
		case reminder.OutcomeFailed:
			fmt.Fprintf(&b, "%d. %s (%s): FAILED: %v\n", i+1, e.Patient, e.Recipient, e.Err)
		}
	}
	return b.String()
}
