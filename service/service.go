package service

import (
	"bytes"
	"context"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/loggers"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-sheetpdf/report"
	"github.com/soderasen-au/go-sheetpdf/sheet"
)

type Options struct {
	Layout        report.LayoutConfig
	MaxUploadSize int64
	MaxConcurrent int
}

// ParseResult is the outcome of an upload: the extracted table plus
// the message returned to the client.
type ParseResult struct {
	Message string
	Table   *sheet.Table
}

func (r ParseResult) TotalRows() int {
	if r.Table == nil {
		return 0
	}
	return len(r.Table.Rows)
}

type PdfResult struct {
	FileName  string
	Title     string
	Data      []byte
	Pages     int
	TotalRows int
}

// Service runs uploads through extraction and, for PDF requests, layout
// and rendering. Work runs on a bounded Pool.
type Service struct {
	Options
	Logger *zerolog.Logger

	pool      *Pool
	generator *report.PdfGenerator
}

func New(opts Options, logger *zerolog.Logger) (*Service, *util.Result) {
	if logger == nil {
		logger = loggers.NullLogger
	}
	if opts.MaxUploadSize == 0 {
		opts.MaxUploadSize = DEFAULT_MAX_UPLOAD
	}
	g, res := report.NewPdfGenerator(opts.Layout, logger)
	if res != nil {
		return nil, res.With("NewPdfGenerator")
	}
	opts.Layout = g.Config

	return &Service{
		Options:   opts,
		Logger:    logger,
		pool:      NewPool(opts.MaxConcurrent, logger),
		generator: g,
	}, nil
}

func (s *Service) StartUp(ctx context.Context) {
	s.pool.StartUp(ctx)
}

func (s *Service) Shutdown(ctx context.Context) {
	s.pool.Shutdown(ctx)
}

func (s *Service) extract(ctx context.Context, u Upload) (*sheet.Table, error) {
	data, err := u.ReadAll(s.MaxUploadSize)
	if err != nil {
		return nil, err
	}

	var table *sheet.Table
	err = s.pool.Do(ctx, func(ctx context.Context, logger *zerolog.Logger) error {
		var err error
		table, err = sheet.NewExtractor(logger).ExtractFrom(bytes.NewReader(data))
		return err
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// Parse validates the upload and extracts its first sheet.
func (s *Service) Parse(ctx context.Context, u Upload) (*ParseResult, error) {
	logger := LoggerFrom(ctx, s.Logger)
	table, err := s.extract(ctx, u)
	if err != nil {
		logger.Warn().Err(err).Msgf("parse [%s] failed", u.FileName)
		return nil, err
	}
	logger.Info().Msgf("parsed [%s]: %d rows", u.FileName, len(table.Rows))
	return &ParseResult{Message: MSG_PARSED, Table: table}, nil
}

// GeneratePdf extracts the upload and renders it as a paginated PDF
// titled after the file name.
func (s *Service) GeneratePdf(ctx context.Context, u Upload) (*PdfResult, error) {
	logger := LoggerFrom(ctx, s.Logger)
	table, err := s.extract(ctx, u)
	if err != nil {
		logger.Warn().Err(err).Msgf("generate [%s] failed", u.FileName)
		return nil, err
	}

	result := &PdfResult{
		FileName:  DerivePdfFilename(u.FileName),
		Title:     DeriveTitle(u.FileName),
		TotalRows: len(table.Rows),
	}
	err = s.pool.Do(ctx, func(ctx context.Context, logger *zerolog.Logger) error {
		g := *s.generator
		g.Logger = logger
		data, pages, err := g.Generate(result.Title, table)
		if err != nil {
			return err
		}
		result.Data, result.Pages = data, pages
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Msgf("generate [%s] failed", u.FileName)
		return nil, err
	}
	logger.Info().Msgf("generated [%s]: %d rows, %d pages, %d bytes", result.FileName, result.TotalRows, result.Pages, len(result.Data))
	return result, nil
}
