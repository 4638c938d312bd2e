package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/babar14jan/doctorpod/internal/reminder"
)

func newSMSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sms",
		Short: "Send one SMS reminder pass for bookings inside the due window",
		RunE:  runChannelOnce(reminder.ChannelSMS),
	}
}

func newWhatsAppCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whatsapp",
		Short: "Send one WhatsApp reminder pass for bookings inside the due window",
		RunE:  runChannelOnce(reminder.ChannelWhatsApp),
	}
}

func newCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call",
		Short: "Place confirmation calls for every booking in the snapshot",
		RunE:  runChannelOnce(reminder.ChannelVoice),
	}
}

func runChannelOnce(channel reminder.Channel) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.runOnce(ctx, channel)
		if err != nil {
			return err
		}
		fmt.Printf("run %s: %d sent, %d skipped, %d failed\n",
			report.RunID, report.Sent(), report.Skipped(), report.Failed())
		return nil
	}
}

func newWorkerCmd() *cobra.Command {
	var channelName string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run reminder passes on an interval until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			channel := reminder.Channel(channelName)
			switch channel {
			case reminder.ChannelSMS, reminder.ChannelWhatsApp, reminder.ChannelVoice:
			default:
				return fmt.Errorf("unknown channel %q", channelName)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.MetricsAddr != "" {
				go serveMetrics(ctx, a)
			}

			a.logger.Info("reminder worker started",
				"channel", channel.String(),
				"interval", a.cfg.ReminderInterval.String(),
				"dry_run", a.cfg.DryRun,
			)

			ticker := time.NewTicker(a.cfg.ReminderInterval)
			defer ticker.Stop()

			for {
				if _, err := a.runOnce(ctx, channel); err != nil {
					a.logger.Error("reminder pass failed", "error", err.Error())
				}
				select {
				case <-ctx.Done():
					a.logger.Info("reminder worker stopping")
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().StringVar(&channelName, "channel", string(reminder.ChannelSMS), "reminder channel: sms, whatsapp or voice")
	return cmd
}

func serveMetrics(ctx context.Context, a *app) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info("metrics server listening", "addr", a.cfg.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		a.logger.Error("metrics server failed", "error", err.Error())
	}
}
