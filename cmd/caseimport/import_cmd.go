package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/case-import-api/internal/mapping"
	"github.com/case-import-api/internal/models"
	"github.com/case-import-api/internal/options"
	"github.com/case-import-api/internal/repository"
	"github.com/case-import-api/internal/service"
	"github.com/case-import-api/internal/sheet"
	"github.com/spf13/cobra"
)

type importOutput struct {
	Command     string                  `json:"command"`
	Tenant      string                  `json:"tenant"`
	DurationMS  int64                   `json:"duration_ms"`
	Result      *models.ImportRunResult `json:"result"`
	TenantCases int                     `json:"tenant_cases"`
	Error       string                  `json:"error,omitempty"`
}

func newImportCmd() *cobra.Command {
	var (
		tenantID    string
		mappingPath string
	)

	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import spreadsheets (.xlsx, .xlsm, .csv, .txt) as cases of a tenant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := loadFiles(args)
			if err != nil {
				return err
			}
			overrides, err := loadMapping(mappingPath)
			if err != nil {
				return err
			}

			cfg, db, log, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			sectors, err := mapping.LoadSectorMap(cfg.Import.SectorMapPath)
			if err != nil {
				return err
			}

			repos := repository.New(db)
			lookup, closeLookup := options.FromConfig(cmd.Context(), repos.Option, cfg.Options, log)
			defer closeLookup()

			services := service.NewServices(repos, lookup, sectors, cfg, log)

			stderr := cmd.ErrOrStderr()
			progress := func(p models.ImportProgress) {
				fmt.Fprintf(stderr, "[%d/%d] %s\n", p.Current, p.Total, p.FileName)
			}

			start := time.Now()
			result, runErr := services.Import.ImportBatch(cmd.Context(), tenantID, files, overrides, progress)
			if result == nil {
				return runErr
			}

			out := importOutput{
				Command:    "import",
				Tenant:     tenantID,
				DurationMS: time.Since(start).Milliseconds(),
				Result:     result,
			}
			if runErr != nil {
				out.Error = runErr.Error()
			}
			// the run's context may be cancelled; the count still reports what was stored
			out.TenantCases, err = repos.Case.Count(context.WithoutCancel(cmd.Context()), tenantID)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to count tenant cases")
			}

			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant id (required)")
	cmd.Flags().StringVar(&mappingPath, "mapping", "", "JSON file mapping field names to column labels")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func loadFiles(paths []string) ([]models.ImportFile, error) {
	files := make([]models.ImportFile, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if !sheet.SupportedExtension(name) {
			return nil, fmt.Errorf("%s: unsupported file type, expected .xlsx, .xlsm, .csv or .txt", p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		files = append(files, models.ImportFile{Name: name, Data: data})
	}
	return files, nil
}

func loadMapping(path string) (models.ColumnMapping, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping: %w", err)
	}
	var mapping models.ColumnMapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("invalid mapping %s: %w", path, err)
	}
	return mapping, nil
}
