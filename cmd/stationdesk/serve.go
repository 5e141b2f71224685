package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stationdesk/stationdesk/internal/server"
)

var servePort int

// @title Stationdesk API
// @version 1.0
// @description Station administration backend with activity auditing
// @host localhost:8470
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Stationdesk server",
	Long: `Start the Stationdesk API server.

Examples:
  stationdesk serve               # Run with config defaults
  stationdesk serve --port 8080   # Override port

Environment variables:
  STATIONDESK_SERVER_PORT       Server port (default: 8470)
  STATIONDESK_DATABASE_DRIVER   Database driver: sqlite, postgres
  STATIONDESK_DATABASE_DSN      Database connection string
  STATIONDESK_AUTH_JWT_SECRET   JWT signing secret
  ADMIN_USERNAME                Bootstrap admin username
  ADMIN_PASSWORD                Bootstrap admin password`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := server.Config{
		Port:    servePort,
		Version: Version,
	}

	if err := server.RunWithSignalHandling(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
