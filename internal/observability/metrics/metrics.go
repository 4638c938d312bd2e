package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReminderMetrics exposes counters/histograms for reminder passes.
type ReminderMetrics struct {
	dispatchTotal        *prometheus.CounterVec
	composeFallbackTotal *prometheus.CounterVec
	sendLatency          *prometheus.HistogramVec
}

func NewReminderMetrics(reg prometheus.Registerer) *ReminderMetrics {
	m := &ReminderMetrics{
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doctorpod",
			Subsystem: "reminder",
			Name:      "dispatch_total",
			Help:      "Total bookings processed per channel and outcome",
		}, []string{"channel", "status"}),
		composeFallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doctorpod",
			Subsystem: "reminder",
			Name:      "compose_fallback_total",
			Help:      "Total compositions that fell back to the deterministic template",
		}, []string{"channel"}),
		sendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "doctorpod",
			Subsystem: "reminder",
			Name:      "send_latency_seconds",
			Help:      "Latency of outbound provider sends",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel", "provider"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.dispatchTotal, m.composeFallbackTotal, m.sendLatency)
	return m
}

func (m *ReminderMetrics) ObserveDispatch(channel, status string) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(channel, status).Inc()
}

func (m *ReminderMetrics) ObserveComposeFallback(channel string) {
	if m == nil {
		return
	}
	m.composeFallbackTotal.WithLabelValues(channel).Inc()
}

func (m *ReminderMetrics) ObserveSendLatency(channel, provider string, seconds float64) {
	if m == nil {
		return
	}
	m.sendLatency.WithLabelValues(channel, provider).Observe(seconds)
}
