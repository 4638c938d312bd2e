package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/babar14jan/doctorpod/pkg/logging"
)

const defaultUltraMsgBaseURL = "https://api.ultramsg.com"

// UltraMsgSender sends WhatsApp messages through the UltraMsg chat API.
type UltraMsgSender struct {
	instanceID string
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// UltraMsgOption customizes the sender.
type UltraMsgOption func(*UltraMsgSender)

// WithUltraMsgBaseURL overrides the API base URL (for testing).
func WithUltraMsgBaseURL(baseURL string) UltraMsgOption {
	return func(s *UltraMsgSender) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewUltraMsgSender builds a WhatsApp sender for UltraMsg.
func NewUltraMsgSender(instanceID, token string, logger *logging.Logger, opts ...UltraMsgOption) *UltraMsgSender {
	if logger == nil {
		logger = logging.Default()
	}
	s := &UltraMsgSender{
		instanceID: instanceID,
		token:      token,
		baseURL:    defaultUltraMsgBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Sender = (*UltraMsgSender)(nil)

// Send posts one WhatsApp chat message.
func (s *UltraMsgSender) Send(ctx context.Context, to, body string) (Receipt, error) {
	if s.instanceID == "" || s.token == "" {
		return Receipt{}, errors.New("delivery: ultramsg credentials missing")
	}
	if to == "" {
		return Receipt{}, errors.New("delivery: to required")
	}
	if strings.TrimSpace(body) == "" {
		return Receipt{}, errors.New("delivery: body required")
	}

	payload := url.Values{}
	payload.Set("token", s.token)
	payload.Set("to", to)
	payload.Set("body", body)

	endpoint := fmt.Sprintf("%s/%s/messages/chat", s.baseURL, s.instanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return Receipt{}, fmt.Errorf("delivery: create ultramsg request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("delivery: ultramsg send: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return Receipt{}, fmt.Errorf("ultramsg send failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed struct {
		Sent string `json:"sent"`
		ID   int64  `json:"id"`
	}
	_ = json.Unmarshal(respBody, &parsed)

	s.logger.Info("ultramsg whatsapp sent", "to", to, "message_id", parsed.ID)
	receiptID := ""
	if parsed.ID != 0 {
		receiptID = fmt.Sprintf("%d", parsed.ID)
	}
	return Receipt{
		ID:       receiptID,
		Provider: "ultramsg",
		Status:   "sent",
	}, nil
}
