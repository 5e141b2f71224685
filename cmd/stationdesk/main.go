package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "stationdesk",
	Short: "Stationdesk - station fleet administration with a built-in activity log",
	Long: `Stationdesk is the administrative backend for a fleet of stations:
backup schedules, backup runs, reminders and staff accounts, with every
state change recorded in an append-only activity log.`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
