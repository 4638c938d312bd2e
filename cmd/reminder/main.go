package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env if present; real env vars win.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "reminder",
		Short:        "Sends appointment reminders to booked patients over SMS, WhatsApp and voice",
		SilenceUsage: true,
	}

	root.AddCommand(newSMSCmd())
	root.AddCommand(newWhatsAppCmd())
	root.AddCommand(newCallCmd())
	root.AddCommand(newWorkerCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
