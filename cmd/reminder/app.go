package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/babar14jan/doctorpod/internal/booking"
	"github.com/babar14jan/doctorpod/internal/config"
	"github.com/babar14jan/doctorpod/internal/delivery"
	"github.com/babar14jan/doctorpod/internal/llm"
	"github.com/babar14jan/doctorpod/internal/notify"
	"github.com/babar14jan/doctorpod/internal/observability/metrics"
	"github.com/babar14jan/doctorpod/internal/reminder"
	"github.com/babar14jan/doctorpod/pkg/logging"
)

// app holds the wired collaborators for one process lifetime.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	source   booking.Source
	composer *reminder.Composer
	window   reminder.Window
	ledger   reminder.SentLedger
	mailer   *notify.SummaryMailer
	metrics  *metrics.ReminderMetrics

	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	a := &app{cfg: cfg, logger: logger}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	a.source = booking.NewRepository(pool)

	loc, err := loadClinicLocation(cfg.ClinicTimezone)
	if err != nil {
		return nil, err
	}
	a.window = reminder.NewWindow(loc)

	a.metrics = metrics.NewReminderMetrics(nil)

	generator, err := buildGenerator(ctx, cfg, logger, a)
	if err != nil {
		return nil, err
	}
	a.composer = reminder.NewComposer(generator, "", logger, a.metrics)

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.ledger = reminder.NewRedisSentLedger(client, cfg.SentLedgerTTL, logger)
	}

	email := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	if email != nil {
		a.mailer = notify.NewSummaryMailer(email, cfg.SummaryRecipients, logger)
	}

	return a, nil
}

func loadClinicLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load clinic timezone %q: %w", tz, err)
	}
	return loc, nil
}

// buildGenerator picks the text generation backend. Gemini is preferred,
// with Bedrock as fallback when both are configured. No backend means
// every message uses the deterministic template.
func buildGenerator(ctx context.Context, cfg *config.Config, logger *logging.Logger, a *app) (llm.Client, error) {
	var gemini llm.Client
	var bedrock llm.Client

	if cfg.LLMProvider != "bedrock" && cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		gemini = llm.WithModel(client, cfg.GeminiModelID)
	}

	if cfg.LLMProvider != "gemini" && cfg.BedrockModelID != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		bedrock = llm.WithModel(llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg)), cfg.BedrockModelID)
	}

	switch cfg.LLMProvider {
	case "gemini":
		if gemini == nil {
			return nil, errors.New("LLM_PROVIDER=gemini but GEMINI_API_KEY is not set")
		}
		return gemini, nil
	case "bedrock":
		if bedrock == nil {
			return nil, errors.New("LLM_PROVIDER=bedrock but BEDROCK_MODEL_ID is not set")
		}
		return bedrock, nil
	case "none":
		return nil, nil
	}

	if gemini != nil && bedrock != nil {
		return llm.NewFallbackClient(gemini, bedrock, logger.Logger), nil
	}
	if gemini != nil {
		return gemini, nil
	}
	if bedrock != nil {
		return bedrock, nil
	}
	logger.Warn("no text generation backend configured, reminders will use the template")
	return nil, nil
}

// buildSender returns the live delivery path for a channel, or the dry
// run stand-in when sending is not enabled.
func (a *app) buildSender(channel reminder.Channel) (delivery.Sender, error) {
	cfg := a.cfg

	var sender delivery.Sender
	var provider string
	switch channel {
	case reminder.ChannelSMS:
		sender = delivery.NewTwilioSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, a.logger)
		provider = "twilio"
	case reminder.ChannelVoice:
		sender = delivery.NewTwilioVoiceSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, a.logger)
		provider = "twilio-voice"
	case reminder.ChannelWhatsApp:
		s, selected, reason := delivery.BuildWhatsAppSender(delivery.WhatsAppSelectionConfig{
			Preference:       cfg.WhatsAppProvider,
			UltraMsgInstance: cfg.UltraMsgInstance,
			UltraMsgToken:    cfg.UltraMsgToken,
			CallMeBotAPIKey:  cfg.CallMeBotAPIKey,
		}, a.logger)
		if s == nil && !cfg.DryRun {
			return nil, fmt.Errorf("no whatsapp provider available: %s", reason)
		}
		sender = s
		provider = selected
		if provider == "" {
			provider = "whatsapp"
		}
	default:
		return nil, fmt.Errorf("unknown channel %q", channel)
	}

	if cfg.DryRun {
		return delivery.NewDryRunSender(provider, a.logger), nil
	}
	return sender, nil
}

func (a *app) newDispatcher(channel reminder.Channel) (*reminder.Dispatcher, error) {
	sender, err := a.buildSender(channel)
	if err != nil {
		return nil, err
	}
	opts := []reminder.DispatcherOption{reminder.WithMetrics(a.metrics)}
	if a.ledger != nil {
		opts = append(opts, reminder.WithSentLedger(a.ledger))
	}
	return reminder.NewDispatcher(channel, a.composer, a.window, sender, a.logger, opts...), nil
}

// runOnce executes one reminder pass over the current booking snapshot.
func (a *app) runOnce(ctx context.Context, channel reminder.Channel) (*reminder.Report, error) {
	dispatcher, err := a.newDispatcher(channel)
	if err != nil {
		return nil, err
	}

	bookings, err := a.source.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	report := dispatcher.Run(ctx, bookings, time.Now())

	if a.mailer != nil {
		if err := a.mailer.SendRunSummary(ctx, report); err != nil {
			a.logger.Error("run summary email failed", "error", err.Error())
		}
	}
	return report, nil
}
