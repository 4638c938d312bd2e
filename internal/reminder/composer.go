package reminder

import (
	"context"
	"fmt"
	"strings"

	"github.com/babar14jan/doctorpod/internal/booking"
	"github.com/babar14jan/doctorpod/internal/llm"
	"github.com/babar14jan/doctorpod/internal/observability/metrics"
	"github.com/babar14jan/doctorpod/pkg/logging"
)

const (
	defaultPatientName = "Customer"
	missingFieldValue  = "N/A"

	assistantSystemPrompt = "You are a helpful assistant."
	clinicSystemPrompt    = "You are a helpful clinic assistant."
)

// Composer produces the outbound reminder text for a booking. It asks
// the injected text generator first and falls back to a deterministic
// template on any failure, so composition never returns an error and
// never returns empty text.
type Composer struct {
	generator llm.Client
	model     string
	logger    *logging.Logger
	metrics   *metrics.ReminderMetrics
}

// NewComposer creates a composer. A nil generator means every message
// uses the fallback template.
func NewComposer(generator llm.Client, model string, logger *logging.Logger, m *metrics.ReminderMetrics) *Composer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Composer{
		generator: generator,
		model:     model,
		logger:    logger,
		metrics:   m,
	}
}

// Compose returns the reminder text for the booking on the given channel.
func (c *Composer) Compose(ctx context.Context, ch Channel, b booking.Booking) string {
	system, prompt := buildPrompt(ch, b)

	if c.generator != nil {
		resp, err := c.generator.Complete(ctx, llm.Request{
			Model:       c.model,
			System:      system,
			Prompt:      prompt,
			MaxTokens:   512,
			Temperature: 0.7,
		})
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			return strings.TrimSpace(resp.Text)
		}
		if err != nil {
			c.logger.Warn("text generation failed, using fallback template",
				"channel", ch.String(),
				"patient", fieldOrDefault(b.PatientName, defaultPatientName),
				"error", err.Error(),
			)
		} else {
			c.logger.Warn("text generator returned empty message, using fallback template",
				"channel", ch.String(),
				"patient", fieldOrDefault(b.PatientName, defaultPatientName),
			)
		}
		c.metrics.ObserveComposeFallback(ch.String())
	}

	return FallbackMessage(b)
}

// FallbackMessage is the deterministic reminder used when generation is
// unavailable. Missing fields substitute defaults; absence never fails.
func FallbackMessage(b booking.Booking) string {
	return fmt.Sprintf("Reminder: Dear %s, you have an appointment with %s at %s on %s. Please arrive on time.",
		fieldOrDefault(b.PatientName, defaultPatientName),
		fieldOrDefault(b.DoctorName, missingFieldValue),
		fieldOrDefault(b.ClinicName, missingFieldValue),
		fieldOrDefault(b.Date, missingFieldValue),
	)
}

func buildPrompt(ch Channel, b booking.Booking) (system, prompt string) {
	patient := fieldOrDefault(b.PatientName, defaultPatientName)
	date := fieldOrDefault(b.Date, missingFieldValue)
	doctor := fieldOrDefault(b.DoctorName, missingFieldValue)
	clinic := fieldOrDefault(b.ClinicName, missingFieldValue)

	switch ch {
	case ChannelVoice:
		return assistantSystemPrompt, fmt.Sprintf(
			"You are a helpful clinic assistant. Call the following customer to confirm their booking:\n"+
				"- Name: %s\n"+
				"- Mobile: %s\n"+
				"- Booking Date: %s\n"+
				"- Doctor: %s\n"+
				"- Clinic: %s\n"+
				"Generate a friendly, concise call script for this customer.",
			patient, fieldOrDefault(b.PatientMobile, missingFieldValue), date, doctor, clinic)
	case ChannelWhatsApp:
		return clinicSystemPrompt, fmt.Sprintf(
			"Draft a friendly, concise WhatsApp reminder message for a patient appointment. Include:\n"+
				"- Patient name: %s\n"+
				"- Date: %s\n"+
				"- Doctor: %s\n"+
				"- Clinic: %s\n"+
				"The message should politely remind the patient of their appointment, mention the time if available, "+
				"and ask them to arrive on time. Limit to 320 characters. Write in simple, natural language suitable for WhatsApp.",
			patient, date, doctor, clinic)
	default:
		return clinicSystemPrompt, fmt.Sprintf(
			"Draft a friendly SMS reminder for the following appointment:\n"+
				"- Name: %s\n"+
				"- Date: %s\n"+
				"- Doctor: %s\n"+
				"- Clinic: %s\n"+
				"The message should remind the patient of their appointment and include a polite note to arrive on time.",
			patient, date, doctor, clinic)
	}
}

func fieldOrDefault(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
