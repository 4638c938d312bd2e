package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Env            string
	LogLevel       string
	LogFormat      string
	DatabaseURL    string
	ClinicTimezone string

	// Channel behaviour
	DryRun           bool
	ReminderInterval time.Duration
	MetricsAddr      string

	// Text generation
	LLMProvider    string
	GeminiAPIKey   string
	GeminiModelID  string
	AWSRegion      string
	BedrockModelID string

	// Twilio (SMS + voice)
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// WhatsApp providers
	WhatsAppProvider  string
	UltraMsgInstance  string
	UltraMsgToken     string
	CallMeBotAPIKey   string

	// Duplicate suppression ledger
	RedisAddr     string
	RedisPassword string
	SentLedgerTTL time.Duration

	// Run summary email
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SummaryRecipients []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		ClinicTimezone: getEnv("CLINIC_TIMEZONE", ""),

		DryRun:           getEnvAsBool("DRY_RUN", true),
		ReminderInterval: getEnvAsDuration("REMINDER_INTERVAL", 5*time.Minute),
		MetricsAddr:      getEnv("METRICS_ADDR", ""),

		LLMProvider:    strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "auto"))),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),

		WhatsAppProvider: strings.ToLower(strings.TrimSpace(getEnv("WHATSAPP_PROVIDER", "auto"))),
		UltraMsgInstance: getEnv("ULTRAMSG_INSTANCE_ID", ""),
		UltraMsgToken:    getEnv("ULTRAMSG_TOKEN", ""),
		CallMeBotAPIKey:  getEnv("CALLMEBOT_APIKEY", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SentLedgerTTL: getEnvAsDuration("SENT_LEDGER_TTL", 24*time.Hour),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "DoctorPod Reminders"),
		SummaryRecipients: getEnvAsList("SUMMARY_EMAIL_RECIPIENTS"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
