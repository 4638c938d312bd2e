package reminder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/babar14jan/doctorpod/internal/booking"
	"github.com/babar14jan/doctorpod/internal/llm"
)

type stubGenerator struct {
	resp    llm.Response
	err     error
	lastReq llm.Request
}

func (s *stubGenerator) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	s.lastReq = req
	return s.resp, s.err
}

func sampleBooking() booking.Booking {
	return booking.Booking{
		PatientName:   "Asha",
		PatientMobile: "+911234567890",
		Date:          "2024-05-01",
		Time:          "14:00",
		DoctorName:    "Dr. Rao",
		ClinicName:    "CityCare",
	}
}

func TestComposeUsesGeneratedText(t *testing.T) {
	gen := &stubGenerator{resp: llm.Response{Text: "  Hi Asha, see you at 2pm!  "}}
	c := NewComposer(gen, "test-model", nil, nil)

	got := c.Compose(context.Background(), ChannelSMS, sampleBooking())
	require.Equal(t, "Hi Asha, see you at 2pm!", got)
	require.Equal(t, "test-model", gen.lastReq.Model)
	require.Contains(t, gen.lastReq.Prompt, "Asha")
	require.Contains(t, gen.lastReq.Prompt, "Dr. Rao")
	require.Contains(t, gen.lastReq.Prompt, "CityCare")
	require.Contains(t, gen.lastReq.Prompt, "2024-05-01")
}

func TestComposeFallsBackOnError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	c := NewComposer(gen, "test-model", nil, nil)

	got := c.Compose(context.Background(), ChannelSMS, sampleBooking())
	require.Equal(t, "Reminder: Dear Asha, you have an appointment with Dr. Rao at CityCare on 2024-05-01. Please arrive on time.", got)
}

func TestComposeFallsBackOnEmptyText(t *testing.T) {
	gen := &stubGenerator{resp: llm.Response{Text: "   "}}
	c := NewComposer(gen, "test-model", nil, nil)

	got := c.Compose(context.Background(), ChannelWhatsApp, sampleBooking())
	require.Equal(t, FallbackMessage(sampleBooking()), got)
}

func TestComposeNilGeneratorUsesFallback(t *testing.T) {
	c := NewComposer(nil, "", nil, nil)
	got := c.Compose(context.Background(), ChannelSMS, sampleBooking())
	require.Equal(t, FallbackMessage(sampleBooking()), got)
}

func TestComposeNeverReturnsEmpty(t *testing.T) {
	gen := &stubGenerator{err: errors.New("down")}
	c := NewComposer(gen, "test-model", nil, nil)

	got := c.Compose(context.Background(), ChannelVoice, booking.Booking{})
	require.NotEmpty(t, strings.TrimSpace(got))
}

func TestFallbackMessageDefaults(t *testing.T) {
	got := FallbackMessage(booking.Booking{})
	require.Equal(t, "Reminder: Dear Customer, you have an appointment with N/A at N/A on N/A. Please arrive on time.", got)
}

func TestBuildPromptPerChannel(t *testing.T) {
	b := sampleBooking()

	system, prompt := buildPrompt(ChannelVoice, b)
	require.Equal(t, assistantSystemPrompt, system)
	require.Contains(t, prompt, "call script")
	require.Contains(t, prompt, b.PatientMobile)

	system, prompt = buildPrompt(ChannelWhatsApp, b)
	require.Equal(t, clinicSystemPrompt, system)
	require.Contains(t, prompt, "WhatsApp")
	require.Contains(t, prompt, "320 characters")

	system, prompt = buildPrompt(ChannelSMS, b)
	require.Equal(t, clinicSystemPrompt, system)
	require.Contains(t, prompt, "SMS")
}
