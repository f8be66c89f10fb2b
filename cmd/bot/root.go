package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "recruitbot",
	Short: "Discord bot for recruitment tickets with start-time reminders",
	Long: `recruitbot posts recruitment tickets in Discord channels and reminds
participants shortly before the activity starts.

  recruitbot run       Start the bot (default)
  recruitbot migrate   Apply database migrations and exit`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBot,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.AddCommand(runCmd, migrateCmd)
}
