package delivery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTwilioSMSSenderSuccess(t *testing.T) {
	var gotPath, gotTo, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotTo = r.FormValue("To")
		gotBody = r.FormValue("Body")

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "AC123", user)
		require.Equal(t, "secret", pass)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM42","status":"queued"}`))
	}))
	defer srv.Close()

	s := NewTwilioSMSSender("AC123", "secret", "+15550001111", nil, WithTwilioBaseURL(srv.URL))
	receipt, err := s.Send(context.Background(), "+911234567890", "hello")
	require.NoError(t, err)
	require.Equal(t, "SM42", receipt.ID)
	require.Equal(t, "twilio", receipt.Provider)
	require.Equal(t, "queued", receipt.Status)
	require.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", gotPath)
	require.Equal(t, "+911234567890", gotTo)
	require.Equal(t, "hello", gotBody)
}

func TestTwilioSMSSenderClientErrorNoRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","status":400}`))
	}))
	defer srv.Close()

	s := NewTwilioSMSSender("AC123", "secret", "+15550001111", nil, WithTwilioBaseURL(srv.URL))
	_, err := s.Send(context.Background(), "not-a-number", "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "21211")
	require.Equal(t, 1, calls, "4xx errors must not be retried")
}

func TestTwilioSMSSenderRetriesServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"sid":"SM99","status":"queued"}`))
	}))
	defer srv.Close()

	s := NewTwilioSMSSender("AC123", "secret", "+15550001111", nil, WithTwilioBaseURL(srv.URL))
	receipt, err := s.Send(context.Background(), "+911234567890", "hello")
	require.NoError(t, err)
	require.Equal(t, "SM99", receipt.ID)
	require.Equal(t, 3, calls)
}

func TestTwilioSMSSenderValidation(t *testing.T) {
	s := NewTwilioSMSSender("", "", "+15550001111", nil)
	_, err := s.Send(context.Background(), "+911234567890", "hello")
	require.Error(t, err)

	s = NewTwilioSMSSender("AC123", "secret", "", nil)
	_, err = s.Send(context.Background(), "+911234567890", "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "from required")

	s = NewTwilioSMSSender("AC123", "secret", "+15550001111", nil)
	_, err = s.Send(context.Background(), "+911234567890", "   ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "body required")
}

func TestTwilioVoiceSenderPlacesCall(t *testing.T) {
	var gotPath, gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotURL = r.FormValue("Url")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"CA77","status":"queued"}`))
	}))
	defer srv.Close()

	s := NewTwilioVoiceSender("AC123", "secret", "+15550001111", nil, WithTwilioVoiceBaseURL(srv.URL))
	receipt, err := s.Send(context.Background(), "+911234567890", "Hello, this is your clinic & reminder.")
	require.NoError(t, err)
	require.Equal(t, "CA77", receipt.ID)
	require.Equal(t, "twilio-voice", receipt.Provider)
	require.Equal(t, "/2010-04-01/Accounts/AC123/Calls.json", gotPath)
	require.True(t, strings.HasPrefix(gotURL, "https://twimlets.com/echo?"))
	require.Contains(t, gotURL, "Twiml=")
}

func TestTwilioVoiceSenderEscapesScript(t *testing.T) {
	require.Equal(t, "a &amp; b &lt;c&gt;", xmlEscape("a & b <c>"))
}
