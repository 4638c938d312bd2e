package reminder

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies the result of one booking in a run.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Skip reasons recorded on report entries.
const (
	ReasonMissingRecipient = "missing-recipient"
	ReasonNotDue           = "not-due"
	ReasonDuplicate        = "duplicate"
)

// Entry is the per-booking record of a run. Entries keep the order of the
// bookings they were produced from.
type Entry struct {
	Patient   string
	Recipient string
	Outcome   Outcome
	Reason    string
	ReceiptID string
	Provider  string
	Err       error
}

// Report summarizes one dispatch run over a list of bookings.
type Report struct {
	RunID     string
	Channel   Channel
	StartedAt time.Time
	Entries   []Entry
}

// NewReport starts an empty report for a run.
func NewReport(channel Channel, startedAt time.Time) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Channel:   channel,
		StartedAt: startedAt,
	}
}

func (r *Report) add(e Entry) {
	r.Entries = append(r.Entries, e)
}

// Sent counts entries that were delivered.
func (r *Report) Sent() int { return r.count(OutcomeSent) }

// Skipped counts entries that were intentionally not attempted.
func (r *Report) Skipped() int { return r.count(OutcomeSkipped) }

// Failed counts entries whose delivery attempt errored.
func (r *Report) Failed() int { return r.count(OutcomeFailed) }

func (r *Report) count(o Outcome) int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == o {
			n++
		}
	}
	return n
}
