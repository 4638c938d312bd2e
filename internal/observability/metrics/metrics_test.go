package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReminderMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReminderMetrics(reg)

	m.ObserveDispatch("sms", "sent")
	m.ObserveDispatch("sms", "sent")
	m.ObserveDispatch("voice", "failed")
	m.ObserveComposeFallback("whatsapp")
	m.ObserveSendLatency("sms", "twilio", 0.25)

	if got := testutil.ToFloat64(m.dispatchTotal.WithLabelValues("sms", "sent")); got != 2 {
		t.Fatalf("dispatch sms/sent = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.dispatchTotal.WithLabelValues("voice", "failed")); got != 1 {
		t.Fatalf("dispatch voice/failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.composeFallbackTotal.WithLabelValues("whatsapp")); got != 1 {
		t.Fatalf("compose fallback = %v, want 1", got)
	}
}

func TestReminderMetricsNilSafe(t *testing.T) {
	var m *ReminderMetrics
	m.ObserveDispatch("sms", "sent")
	m.ObserveComposeFallback("sms")
	m.ObserveSendLatency("sms", "twilio", 1)
}
