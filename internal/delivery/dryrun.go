package delivery

import (
	"context"

	"github.com/google/uuid"

	"github.com/babar14jan/doctorpod/pkg/logging"
)

// DryRunSender logs the would-be delivery instead of calling a provider.
// Live sending is an explicit configuration switch; this is the default.
type DryRunSender struct {
	wrapped string
	logger  *logging.Logger
}

// NewDryRunSender names the provider that would have been used so the
// log lines stay meaningful.
func NewDryRunSender(wouldUseProvider string, logger *logging.Logger) *DryRunSender {
	if logger == nil {
		logger = logging.Default()
	}
	if wouldUseProvider == "" {
		wouldUseProvider = "unknown"
	}
	return &DryRunSender{wrapped: wouldUseProvider, logger: logger}
}

var _ Sender = (*DryRunSender)(nil)

// Send records the message without delivering it.
func (s *DryRunSender) Send(_ context.Context, to, body string) (Receipt, error) {
	s.logger.Info("dry run: would send message",
		"provider", s.wrapped,
		"to", to,
		"body_preview", truncate(body, 80),
	)
	return Receipt{
		ID:       "dry-run-" + uuid.NewString(),
		Provider: s.wrapped,
		Status:   "dry-run",
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
