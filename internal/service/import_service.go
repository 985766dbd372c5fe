package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/case-import-api/internal/config"
	"github.com/case-import-api/internal/headers"
	"github.com/case-import-api/internal/mapping"
	"github.com/case-import-api/internal/metrics"
	"github.com/case-import-api/internal/models"
	"github.com/case-import-api/internal/options"
	"github.com/case-import-api/internal/repository"
	"github.com/case-import-api/internal/sheet"
	"github.com/case-import-api/internal/validation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// importService is the concrete implementation of ImportService
type importService struct {
	repos     *repository.Repositories
	decoder   sheet.Decoder
	lookup    options.Lookup
	validator *validation.Validator
	defaults  mapping.Defaults
	sectors   mapping.SectorMap
	now       func() time.Time
	log       zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(repos *repository.Repositories, decoder sheet.Decoder, lookup options.Lookup, sectors mapping.SectorMap, cfg *config.Config, log zerolog.Logger) *importService {
	return &importService{
		repos:     repos,
		decoder:   decoder,
		lookup:    lookup,
		validator: validation.NewValidator(),
		defaults: mapping.Defaults{
			CodePostal: cfg.Import.DefaultCodePostal,
			Ville:      cfg.Import.DefaultVille,
			Pays:       cfg.Import.DefaultPays,
			Etat:       cfg.Import.DefaultEtat,
		},
		sectors: sectors,
		now:     time.Now,
		log:     log.With().Str("service", "import").Logger(),
	}
}

// ImportBatch imports files one after another. Each file is decoded,
// mapped row by row and written with a single bulk insert. A failing row
// or file is counted and the batch moves on. Cancellation is honoured
// between files; a file already started runs to completion.
func (s *importService) ImportBatch(ctx context.Context, tenantID string, files []models.ImportFile, overrides models.ColumnMapping, progress models.ProgressFunc) (*models.ImportRunResult, error) {
	startTime := time.Now()
	result := &models.ImportRunResult{Files: make([]models.FileResult, 0, len(files))}

	s.log.Info().
		Str("tenant_id", tenantID).
		Int("files", len(files)).
		Int("mapping_overrides", len(overrides)).
		Msg("Starting batch import")

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			s.log.Warn().
				Str("tenant_id", tenantID).
				Int("completed_files", i).
				Int("total_files", len(files)).
				Msg("Batch import cancelled")
			return result, err
		}

		if progress != nil {
			progress(models.ImportProgress{Current: i + 1, Total: len(files), FileName: file.Name})
		}

		result.Add(s.importFile(context.WithoutCancel(ctx), tenantID, file, overrides))
	}

	s.log.Info().
		Str("tenant_id", tenantID).
		Int("total_rows", result.TotalRows).
		Int("imported", result.Imported).
		Int("errors", result.Errors).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Msg("Batch import completed")

	return result, nil
}

// importFile processes one file and reports its counters. It never fails
// the batch: every failure is folded into the returned result.
func (s *importService) importFile(ctx context.Context, tenantID string, file models.ImportFile, overrides models.ColumnMapping) (fr models.FileResult) {
	start := time.Now()
	fr.FileName = file.Name
	log := s.log.With().Str("tenant_id", tenantID).Str("file", file.Name).Logger()

	defer func() {
		if p := recover(); p != nil {
			fr.Errors++
			fr.Error = fmt.Sprintf("unexpected failure: %v", p)
			log.Error().Interface("panic", p).Msg("File import aborted")
			metrics.RecordFile(metrics.FileDecodeFailed, time.Since(start))
		}
	}()

	grid, err := s.decoder.Decode(file.Name, file.Data)
	if err != nil {
		fr.Errors = 1
		fr.Error = errors.Wrap(err, "decode").Error()
		log.Error().Err(err).Msg("Failed to decode file")
		metrics.RecordFile(metrics.FileDecodeFailed, time.Since(start))
		return fr
	}

	headerIdx, labels := headers.DetectHeaders(grid.Rows)
	if headerIdx < 0 {
		log.Info().Msg("File has no data")
		metrics.RecordFile(metrics.FileEmpty, time.Since(start))
		return fr
	}

	hm := headers.Resolve(labels, overrides)
	log.Debug().
		Int("header_row", headerIdx+1).
		Int("columns", len(labels)).
		Int("mapped_fields", len(hm)).
		Msg("Headers resolved")

	mapper := mapping.NewMapper(hm, mapping.Env{
		TenantID:  tenantID,
		FileName:  file.Name,
		Lookup:    s.lookup,
		Validator: s.validator,
		Defaults:  s.defaults,
		Sectors:   s.sectors,
		Now:       s.now,
		Log:       log,
	})

	var records []*models.Case
	blank := 0
	for r := headerIdx + 1; r < len(grid.Rows); r++ {
		fr.TotalRows++
		row := headers.BuildRow(r+1, labels, grid.Rows[r], grid.Date1904)

		c, err := mapper.Map(ctx, row)
		switch {
		case err != nil:
			fr.Errors++
			metrics.RecordRow(metrics.OutcomeFailed)
		case c == nil:
			blank++
			metrics.RecordRow(metrics.OutcomeBlank)
		default:
			records = append(records, c)
		}
	}

	kept, rejected, err := s.dropKnownEmails(ctx, tenantID, records, log)
	if err != nil {
		fr.Errors++
		fr.Error = errors.Wrap(err, "check emails").Error()
		log.Error().Err(err).Int("records", len(records)).Msg("Email check failed")
		metrics.RecordFile(metrics.FileEmailCheckFailed, time.Since(start))
		return fr
	}
	records = kept
	fr.Errors += rejected
	metrics.RecordRows(metrics.OutcomeMapped, len(records))

	if len(records) > 0 {
		inserted, err := s.repos.Case.BulkInsert(ctx, tenantID, records)
		if err != nil {
			fr.Errors++
			fr.Error = errors.Wrap(err, "bulk insert").Error()
			log.Error().Err(err).Int("records", len(records)).Msg("Bulk insert failed")
			metrics.RecordFile(metrics.FileInsertFailed, time.Since(start))
			return fr
		}
		fr.Imported = inserted
	}

	log.Info().
		Int("total_rows", fr.TotalRows).
		Int("imported", fr.Imported).
		Int("blank", blank).
		Int("duplicate_emails", rejected).
		Int("errors", fr.Errors).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("File imported")
	metrics.RecordFile(metrics.FileImported, time.Since(start))

	return fr
}

// dropKnownEmails removes records whose e-mail already belongs to a case of
// the tenant or to an earlier record of the file, and counts them.
func (s *importService) dropKnownEmails(ctx context.Context, tenantID string, records []*models.Case, log zerolog.Logger) ([]*models.Case, int, error) {
	emails := make([]string, 0, len(records))
	for _, c := range records {
		if c.Email != "" {
			emails = append(emails, c.Email)
		}
	}
	if len(emails) == 0 {
		return records, 0, nil
	}

	existing, err := s.repos.Case.FindEmails(ctx, tenantID, emails)
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[string]bool, len(existing)+len(emails))
	for _, e := range existing {
		seen[e] = true
	}

	kept := records[:0]
	rejected := 0
	for _, c := range records {
		key := strings.ToLower(strings.TrimSpace(c.Email))
		if key == "" {
			kept = append(kept, c)
			continue
		}
		if seen[key] {
			rejected++
			metrics.RecordRow(metrics.OutcomeDuplicateEmail)
			log.Warn().Int("row", c.SourceRow).Str("email", c.Email).Msg("Row rejected, e-mail already registered")
			continue
		}
		seen[key] = true
		kept = append(kept, c)
	}
	return kept, rejected, nil
}
