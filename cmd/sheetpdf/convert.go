package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/util"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/soderasen-au/go-sheetpdf/config"
	"github.com/soderasen-au/go-sheetpdf/report"
	"github.com/soderasen-au/go-sheetpdf/service"
	"github.com/soderasen-au/go-sheetpdf/sheet"
)

func newExtractCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "extract <workbook>",
		Short: "Print the first sheet of a workbook as JSON row records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, audit, err := setup()
			if err != nil {
				return err
			}
			if audit != nil {
				defer audit.Close()
			}
			table, err := extractFile(args[0], cfg.Server.MaxUploadSize, logger)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(report.NewTablePayload(table))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: stdout)")
	return cmd
}

// extractFile applies the upload checks to a local file and extracts it.
func extractFile(path string, maxSize int64, logger *zerolog.Logger) (*sheet.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	u := service.Upload{FileName: filepath.Base(path), Size: info.Size(), Content: f}
	data, err := u.ReadAll(maxSize)
	if err != nil {
		return nil, err
	}
	return sheet.NewExtractor(logger).ExtractFrom(bytes.NewReader(data))
}

type convertOptions struct {
	Format report.ReportFormat
	Output string
	Jobs   int
}

func newConvertCmd() *cobra.Command {
	var (
		format string
		opts   convertOptions
	)
	cmd := &cobra.Command{
		Use:   "convert <workbook>...",
		Short: "Convert workbooks to pdf, xlsx, csv, tsv or json files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, audit, err := setup()
			if err != nil {
				return err
			}
			if audit != nil {
				defer audit.Close()
			}
			opts.Format = report.ReportFormat(strings.ToLower(format))
			if !opts.Format.IsValid() {
				return fmt.Errorf("unsupported format `%s`", format)
			}
			if opts.Output == "" {
				opts.Output = cfg.System.OutputFolder
			}

			results, err := convertFiles(cmd.Context(), cfg, opts, args, audit, logger)
			for _, rr := range results {
				if rr != nil && rr.Result == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (%d rows)\n", *rr.ReportFile, rr.PrintedRows)
				}
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(report.REPORT_FORMAT_PDF), "Output format: pdf, xlsx, csv, tsv, json")
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "Output folder, overrides system.output_folder")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "Files converted in parallel, defaults to server.max_concurrent")
	return cmd
}

// convertFiles converts every path, opts.Jobs at a time. The first failure
// cancels files not yet started.
func convertFiles(ctx context.Context, cfg *config.Config, opts convertOptions, paths []string, audit *report.AuditLog, logger *zerolog.Logger) ([]*report.ReportResult, error) {
	if opts.Jobs <= 0 {
		opts.Jobs = cfg.Server.MaxConcurrent
	}
	if err := os.MkdirAll(opts.Output, 0o755); err != nil {
		return nil, err
	}

	results := make([]*report.ReportResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rr, err := convertFile(cfg, opts, path, audit, logger)
			results[i] = rr
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	return results, g.Wait()
}

func convertFile(cfg *config.Config, opts convertOptions, path string, audit *report.AuditLog, logger *zerolog.Logger) (*report.ReportResult, error) {
	name := filepath.Base(path)
	fileLogger := logger.With().Str("file", name).Logger()

	rec := report.NewAuditRecord(report.AUDIT_CMD_CONVERT, "", "", name, 0)
	if info, err := os.Stat(path); err == nil {
		rec.FileSize = info.Size()
	}
	defer func() {
		if audit != nil {
			if res := audit.Record(rec); res != nil {
				fileLogger.Warn().Err(res).Msg("audit record")
			}
		}
	}()

	table, err := extractFile(path, cfg.Server.MaxUploadSize, &fileLogger)
	if err != nil {
		rec.Fail(err.Error())
		return nil, err
	}
	rec.TotalRows = len(table.Rows)

	printer, res := report.NewReportPrinter(opts.Format)
	if res != nil {
		rec.Fail(res.Error())
		return nil, res
	}
	base := strings.TrimSuffix(service.DerivePdfFilename(name), ".pdf")
	r := report.Report{
		ID:           util.Ptr(base),
		Name:         util.Ptr(base),
		Title:        service.DeriveTitle(name),
		OutputFolder: util.Ptr(opts.Output),
		Layout:       cfg.Layout,
		Logger:       &fileLogger,
	}
	if res := printer.Print(r, table); res != nil {
		rec.Fail(res.Error())
		return nil, res
	}
	rr, res := printer.GetReportResult(base)
	if res != nil {
		return nil, res
	}
	rec.OutputBytes = int(rr.Bytes)
	return rr, nil
}
