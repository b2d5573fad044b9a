// sheets-check verifies the configured Google Sheets export target: it
// authenticates with the service account credentials, opens the spreadsheet
// and reports its title and current row count. Run it once after setting the
// GOOGLE_* environment variables, before trusting the export worker.
package main

import (
	"context"
	"os"
	"time"

	"outlay/internal/cli"
	"outlay/internal/export/google"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.SheetsConfigured() {
		logger.Error("No spreadsheet configured, set GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := google.New(ctx, google.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	title, rows, err := client.Describe(ctx)
	if err != nil {
		logger.Error("Spreadsheet access check failed",
			"error", err,
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
		os.Exit(1)
	}

	logger.Info("Spreadsheet access verified",
		"title", title,
		"sheet", cfg.GoogleSheetName,
		"rows", rows)
}
