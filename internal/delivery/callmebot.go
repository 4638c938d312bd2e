package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/babar14jan/doctorpod/pkg/logging"
)

const defaultCallMeBotBaseURL = "https://api.callmebot.com"

// CallMeBotSender sends WhatsApp messages through the CallMeBot API.
// The recipient number must be pre-registered with CallMeBot.
type CallMeBotSender struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// CallMeBotOption customizes the sender.
type CallMeBotOption func(*CallMeBotSender)

// WithCallMeBotBaseURL overrides the API base URL (for testing).
func WithCallMeBotBaseURL(baseURL string) CallMeBotOption {
	return func(s *CallMeBotSender) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewCallMeBotSender builds a WhatsApp sender for CallMeBot.
func NewCallMeBotSender(apiKey string, logger *logging.Logger, opts ...CallMeBotOption) *CallMeBotSender {
	if logger == nil {
		logger = logging.Default()
	}
	s := &CallMeBotSender{
		apiKey:  apiKey,
		baseURL: defaultCallMeBotBaseURL,
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

var _ Sender = (*CallMeBotSender)(nil)

// Send issues one CallMeBot WhatsApp request.
func (s *CallMeBotSender) Send(ctx context.Context, to, body string) (Receipt, error) {
	if s.apiKey == "" {
		return Receipt{}, errors.New("delivery: callmebot api key missing")
	}
	if to == "" {
		return Receipt{}, errors.New("delivery: to required")
	}
	if strings.TrimSpace(body) == "" {
		return Receipt{}, errors.New("delivery: body required")
	}

	params := url.Values{}
	params.Set("phone", to)
	params.Set("text", body)
	params.Set("apikey", s.apiKey)

	endpoint := fmt.Sprintf("%s/whatsapp.php?%s", s.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Receipt{}, fmt.Errorf("delivery: create callmebot request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("delivery: callmebot send: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return Receipt{}, fmt.Errorf("callmebot send failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	s.logger.Info("callmebot whatsapp sent", "to", to)
	return Receipt{
		Provider: "callmebot",
		Status:   "sent",
	}, nil
}
