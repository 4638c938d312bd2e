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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/babar14jan/doctorpod/pkg/logging"
)

var twilioVoiceTracer = otel.Tracer("doctorpod.internal.delivery.twilio_voice")

const twimletsEchoURL = "https://twimlets.com/echo"

// TwilioVoiceSender places outbound calls via Twilio and reads the
// script to the patient with text-to-speech. The TwiML is served by the
// twimlets echo endpoint, so no public webhook is needed.
type TwilioVoiceSender struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// TwilioVoiceOption customizes the sender.
type TwilioVoiceOption func(*TwilioVoiceSender)

// WithTwilioVoiceBaseURL overrides the API base URL (for testing).
func WithTwilioVoiceBaseURL(baseURL string) TwilioVoiceOption {
	return func(s *TwilioVoiceSender) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewTwilioVoiceSender builds a voice call sender.
func NewTwilioVoiceSender(accountSID, authToken, from string, logger *logging.Logger, opts ...TwilioVoiceOption) *TwilioVoiceSender {
	if logger == nil {
		logger = logging.Default()
	}
	s := &TwilioVoiceSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    defaultTwilioBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Sender = (*TwilioVoiceSender)(nil)

// Send places a call to the recipient that reads out the script.
func (s *TwilioVoiceSender) Send(ctx context.Context, to, script string) (Receipt, error) {
	if s.accountSID == "" || s.authToken == "" {
		return Receipt{}, errors.New("delivery: twilio credentials missing")
	}
	if to == "" {
		return Receipt{}, errors.New("delivery: to required")
	}
	if s.from == "" {
		return Receipt{}, errors.New("delivery: from required")
	}
	if strings.TrimSpace(script) == "" {
		return Receipt{}, errors.New("delivery: script required")
	}

	ctx, span := twilioVoiceTracer.Start(ctx, "delivery.twilio.call")
	defer span.End()
	span.SetAttributes(
		attribute.String("doctorpod.to", to),
	)

	twiml := fmt.Sprintf("<Response><Say>%s</Say></Response>", xmlEscape(script))
	echoParams := url.Values{}
	echoParams.Set("Twiml", twiml)

	payload := url.Values{}
	payload.Set("To", to)
	payload.Set("From", s.from)
	payload.Set("Url", twimletsEchoURL+"?"+echoParams.Encode())

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", s.baseURL, s.accountSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return Receipt{}, fmt.Errorf("delivery: create call request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return Receipt{}, fmt.Errorf("delivery: place call: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("twilio call failed: %s", formatTwilioError(resp.StatusCode, respBody))
		span.RecordError(err)
		return Receipt{}, err
	}

	var parsed struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	_ = json.Unmarshal(respBody, &parsed)

	s.logger.Info("twilio call initiated", "to", to, "sid", parsed.SID)
	return Receipt{
		ID:       parsed.SID,
		Provider: "twilio-voice",
		Status:   parsed.Status,
	}, nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}
