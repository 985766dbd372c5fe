package repository

import (
	"context"

	"github.com/case-import-api/internal/database"
	"github.com/case-import-api/internal/models"
)

// CaseRepository defines the interface for case data operations
type CaseRepository interface {
	BulkInsert(ctx context.Context, tenantID string, cases []*models.Case) (int, error)
	FindByNames(ctx context.Context, tenantID, nom, prenom string, limit int) ([]*models.Case, error)
	FindByExactName(ctx context.Context, tenantID, nom, prenom string) ([]*models.Case, error)
	FindByIDs(ctx context.Context, tenantID string, ids []string) ([]*models.Case, error)
	DeleteByIDs(ctx context.Context, tenantID string, ids []string) (int, error)
	FindEmails(ctx context.Context, tenantID string, emails []string) ([]string, error)
	Count(ctx context.Context, tenantID string) (int, error)
}

// OptionRepository defines the interface for dropdown option lookups
type OptionRepository interface {
	ListByCategory(ctx context.Context, tenantID, category string) ([]models.DropdownOption, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Case   CaseRepository
	Option OptionRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Case:   NewCaseRepo(db),
		Option: NewOptionRepo(db),
	}
}
