// Command sheetpdf serves and runs spreadsheet to JSON/PDF conversions.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/loggers"
	"github.com/spf13/cobra"

	"github.com/soderasen-au/go-sheetpdf/config"
	"github.com/soderasen-au/go-sheetpdf/report"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "sheetpdf",
		Short:         "Convert Excel workbooks to typed JSON records and paginated PDF tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr instead of the log file")

	rootCmd.AddCommand(newServeCmd(), newExtractCmd(), newConvertCmd(), newTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and opens the log and, when configured,
// the audit trail.
func setup() (*config.Config, *zerolog.Logger, *report.AuditLog, error) {
	cfg, res := config.Load(configFile)
	if res != nil {
		return nil, nil, nil, res
	}

	logger := loggers.CoreDebugLogger
	if !verbose {
		l, err := loggers.GetLogger(cfg.System.LogFile())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open log file: %w", err)
		}
		logger = l
	}

	var audit *report.AuditLog
	if cfg.Audit.Enabled() {
		audit, res = report.NewAuditLog(cfg.Audit.File)
		if res != nil {
			return nil, nil, nil, res.LogWith(logger, "NewAuditLog")
		}
	}
	return cfg, logger, audit, nil
}
