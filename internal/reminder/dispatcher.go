package reminder

import (
	"context"
	"strings"
	"time"

	"github.com/babar14jan/doctorpod/internal/booking"
	"github.com/babar14jan/doctorpod/internal/delivery"
	"github.com/babar14jan/doctorpod/internal/observability/metrics"
	"github.com/babar14jan/doctorpod/pkg/logging"
)

// Dispatcher walks a booking snapshot and sends one reminder per
// eligible booking on its channel. One booking's failure never stops the
// rest of the run.
type Dispatcher struct {
	channel  Channel
	composer *Composer
	window   Window
	sender   delivery.Sender
	ledger   SentLedger
	logger   *logging.Logger
	metrics  *metrics.ReminderMetrics
}

// DispatcherOption customizes a dispatcher.
type DispatcherOption func(*Dispatcher)

// WithSentLedger enables duplicate suppression across repeated runs. The
// ledger fails open: lookup errors are logged and the send proceeds.
func WithSentLedger(ledger SentLedger) DispatcherOption {
	return func(d *Dispatcher) {
		d.ledger = ledger
	}
}

// WithMetrics attaches run metrics.
func WithMetrics(m *metrics.ReminderMetrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher wires a dispatch pass for one channel.
func NewDispatcher(channel Channel, composer *Composer, window Window, sender delivery.Sender, logger *logging.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	d := &Dispatcher{
		channel:  channel,
		composer: composer,
		window:   window,
		sender:   sender,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run processes every booking against the supplied clock reading and
// returns a report with one entry per booking, in input order.
func (d *Dispatcher) Run(ctx context.Context, bookings []booking.Booking, now time.Time) *Report {
	report := NewReport(d.channel, now)

	d.logger.Info("reminder run started",
		"run_id", report.RunID,
		"channel", d.channel.String(),
		"bookings", len(bookings),
	)

	for _, b := range bookings {
		entry := d.process(ctx, b, now)
		report.add(entry)
		d.metrics.ObserveDispatch(d.channel.String(), string(entry.Outcome))
	}

	d.logger.Info("reminder run finished",
		"run_id", report.RunID,
		"channel", d.channel.String(),
		"sent", report.Sent(),
		"skipped", report.Skipped(),
		"failed", report.Failed(),
	)
	return report
}

func (d *Dispatcher) process(ctx context.Context, b booking.Booking, now time.Time) Entry {
	patient := fieldOrDefault(b.PatientName, defaultPatientName)
	recipient := strings.TrimSpace(b.PatientMobile)

	entry := Entry{
		Patient:   patient,
		Recipient: recipient,
	}

	if recipient == "" {
		entry.Outcome = OutcomeSkipped
		entry.Reason = ReasonMissingRecipient
		d.logger.Warn("skipping booking without recipient",
			"channel", d.channel.String(),
			"patient", patient,
		)
		return entry
	}

	if d.channel.Gated() && !d.window.Contains(b, now) {
		entry.Outcome = OutcomeSkipped
		entry.Reason = ReasonNotDue
		d.logger.Debug("booking outside reminder window",
			"channel", d.channel.String(),
			"patient", patient,
			"date", b.Date,
			"time", b.Time,
		)
		return entry
	}

	if d.ledger != nil {
		sent, err := d.ledger.AlreadySent(ctx, d.channel, recipient, b.Date)
		if err != nil {
			d.logger.Warn("sent ledger lookup failed, sending anyway",
				"channel", d.channel.String(),
				"patient", patient,
				"error", err.Error(),
			)
		} else if sent {
			entry.Outcome = OutcomeSkipped
			entry.Reason = ReasonDuplicate
			d.logger.Info("reminder already sent, skipping",
				"channel", d.channel.String(),
				"patient", patient,
				"date", b.Date,
			)
			return entry
		}
	}

	message := d.composer.Compose(ctx, d.channel, b)

	start := time.Now()
	receipt, err := d.sender.Send(ctx, recipient, message)
	if err != nil {
		entry.Outcome = OutcomeFailed
		entry.Err = err
		d.logger.Error("reminder delivery failed",
			"channel", d.channel.String(),
			"patient", patient,
			"error", err.Error(),
		)
		return entry
	}
	d.metrics.ObserveSendLatency(d.channel.String(), receipt.Provider, time.Since(start).Seconds())

	if d.ledger != nil {
		if err := d.ledger.MarkSent(ctx, d.channel, recipient, b.Date); err != nil {
			d.logger.Warn("sent ledger mark failed",
				"channel", d.channel.String(),
				"patient", patient,
				"error", err.Error(),
			)
		}
	}

	entry.Outcome = OutcomeSent
	entry.ReceiptID = receipt.ID
	entry.Provider = receipt.Provider
	d.logger.Info("reminder sent",
		"channel", d.channel.String(),
		"patient", patient,
		"provider", receipt.Provider,
		"receipt_id", receipt.ID,
	)
	return entry
}
