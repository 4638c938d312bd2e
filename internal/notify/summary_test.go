package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/babar14jan/doctorpod/internal/reminder"
)

type recordingEmailSender struct {
	sent []EmailMessage
	err  error
}

func (r *recordingEmailSender) Send(_ context.Context, msg EmailMessage) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func sampleReport() *reminder.Report {
	report := reminder.NewReport(reminder.ChannelSMS, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	report.Entries = []reminder.Entry{
		{Patient: "Asha", Recipient: "+911", Outcome: reminder.OutcomeSent, Provider: "twilio", ReceiptID: "SM1"},
		{Patient: "Ravi", Outcome: reminder.OutcomeSkipped, Reason: reminder.ReasonMissingRecipient},
		{Patient: "Meera", Recipient: "+913", Outcome: reminder.OutcomeFailed, Err: errors.New("provider timeout")},
	}
	return report
}

func TestSendRunSummary(t *testing.T) {
	email := &recordingEmailSender{}
	m := NewSummaryMailer(email, []string{"ops@clinic.example", "frontdesk@clinic.example"}, nil)

	require.NoError(t, m.SendRunSummary(context.Background(), sampleReport()))
	require.Len(t, email.sent, 2)

	msg := email.sent[0]
	require.Equal(t, "ops@clinic.example", msg.To)
	require.Equal(t, "Reminder run sms: 1 sent, 1 skipped, 1 failed", msg.Subject)
	require.Contains(t, msg.Body, "Asha (+911): sent via twilio, receipt SM1")
	require.Contains(t, msg.Body, "Ravi: skipped (missing-recipient)")
	require.Contains(t, msg.Body, "Meera (+913): FAILED: provider timeout")
}

func TestSendRunSummaryDisabled(t *testing.T) {
	m := NewSummaryMailer(nil, nil, nil)
	require.NoError(t, m.SendRunSummary(context.Background(), sampleReport()))

	email := &recordingEmailSender{}
	m = NewSummaryMailer(email, nil, nil)
	require.NoError(t, m.SendRunSummary(context.Background(), sampleReport()))
	require.Empty(t, email.sent)
}

func TestSendRunSummaryCollectsFailures(t *testing.T) {
	email := &recordingEmailSender{err: errors.New("sendgrid 500")}
	m := NewSummaryMailer(email, []string{"a@x.example", "b@x.example"}, nil)

	err := m.SendRunSummary(context.Background(), sampleReport())
	require.Error(t, err)
	require.Contains(t, err.Error(), "2 summary email(s) failed")
	require.Len(t, email.sent, 2, "all recipients attempted despite failures")
}
