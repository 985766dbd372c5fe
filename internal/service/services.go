package service

import (
	"context"

	"github.com/case-import-api/internal/config"
	"github.com/case-import-api/internal/mapping"
	"github.com/case-import-api/internal/models"
	"github.com/case-import-api/internal/options"
	"github.com/case-import-api/internal/repository"
	"github.com/case-import-api/internal/sheet"
	"github.com/rs/zerolog"
)

// ImportService defines the interface for batch imports
type ImportService interface {
	ImportBatch(ctx context.Context, tenantID string, files []models.ImportFile, mapping models.ColumnMapping, progress models.ProgressFunc) (*models.ImportRunResult, error)
}

// DuplicateService defines the interface for duplicate detection and
// duplicate-only deletion
type DuplicateService interface {
	FindDuplicates(ctx context.Context, tenantID, nom, prenom, dateNaissance string) ([]models.DuplicateCandidate, error)
	AuthorizeBulkDelete(ctx context.Context, caller models.Caller, ids []string) error
	BulkDelete(ctx context.Context, caller models.Caller, ids []string) (int, error)
}

// OptionService defines the interface for dropdown option maintenance
type OptionService interface {
	Refresh(ctx context.Context, caller models.Caller) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Import    ImportService
	Duplicate DuplicateService
	Option    OptionService
}

// NewServices creates all services. sectors may be nil.
func NewServices(repos *repository.Repositories, lookup options.Lookup, sectors mapping.SectorMap, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Import:    newImportService(repos, sheet.NewDecoder(), lookup, sectors, cfg, log),
		Duplicate: newDuplicateService(repos, log),
		Option:    newOptionService(lookup, log),
	}
}
