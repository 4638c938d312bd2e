package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/babar14jan/doctorpod/pkg/logging"
)

var twilioSMSTracer = otel.Tracer("doctorpod.internal.delivery.twilio_sms")

const defaultTwilioBaseURL = "https://api.twilio.com"

// TwilioSMSSender posts SMS messages using Twilio's REST API.
type TwilioSMSSender struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// TwilioSMSOption customizes the sender.
type TwilioSMSOption func(*TwilioSMSSender)

// WithTwilioBaseURL overrides the API base URL (for testing).
func WithTwilioBaseURL(baseURL string) TwilioSMSOption {
	return func(s *TwilioSMSSender) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewTwilioSMSSender builds a sender with sane defaults.
func NewTwilioSMSSender(accountSID, authToken, from string, logger *logging.Logger, opts ...TwilioSMSOption) *TwilioSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	s := &TwilioSMSSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    defaultTwilioBaseURL,
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

var _ Sender = (*TwilioSMSSender)(nil)

// Send dispatches a single SMS, retrying transient failures.
func (s *TwilioSMSSender) Send(ctx context.Context, to, body string) (Receipt, error) {
	if s.accountSID == "" || s.authToken == "" {
		return Receipt{}, errors.New("delivery: twilio credentials missing")
	}
	if to == "" {
		return Receipt{}, errors.New("delivery: to required")
	}
	if s.from == "" {
		return Receipt{}, errors.New("delivery: from required")
	}
	if strings.TrimSpace(body) == "" {
		return Receipt{}, errors.New("delivery: body required")
	}

	ctx, span := twilioSMSTracer.Start(ctx, "delivery.twilio.sms")
	defer span.End()
	span.SetAttributes(
		attribute.String("doctorpod.to", to),
	)

	payload := url.Values{}
	payload.Set("To", to)
	payload.Set("From", s.from)
	payload.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
		if err != nil {
			lastErr = err
			break
		}
		req.SetBasicAuth(s.accountSID, s.authToken)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				var parsed struct {
					SID    string `json:"sid"`
					Status string `json:"status"`
				}
				_ = json.Unmarshal(respBody, &parsed)
				s.logger.Info("twilio sms sent", "to", to, "sid", parsed.SID)
				return Receipt{
					ID:       parsed.SID,
					Provider: "twilio",
					Status:   parsed.Status,
				}, nil
			}
			lastErr = fmt.Errorf("twilio send failed: %s", formatTwilioError(resp.StatusCode, respBody))
			// Don't retry non-rate-limit 4xx errors.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != 429 {
				break
			}
		}

		if attempt < 3 {
			sleep := time.Duration(200+rand.Intn(300)) * time.Millisecond
			time.Sleep(sleep)
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
	}
	return Receipt{}, lastErr
}

type twilioAPIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func formatTwilioError(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fmt.Sprintf("status %d", status)
	}
	var parsed twilioAPIError
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil && parsed.Message != "" {
		if parsed.Code != 0 {
			return fmt.Sprintf("status %d code %d: %s", status, parsed.Code, parsed.Message)
		}
		return fmt.Sprintf("status %d: %s", status, parsed.Message)
	}
	return fmt.Sprintf("status %d: %s", status, trimmed)
}
