package repository

import (
	"context"

	"github.com/case-import-api/internal/database"
	"github.com/case-import-api/internal/models"
)

// optionRepo is the concrete implementation of OptionRepository
type optionRepo struct {
	db *database.DB
}

// NewOptionRepo creates a new dropdown option repository
func NewOptionRepo(db *database.DB) OptionRepository {
	return &optionRepo{db: db}
}

// ListByCategory returns the options of one category in display order
func (r *optionRepo) ListByCategory(ctx context.Context, tenantID, category string) ([]models.DropdownOption, error) {
	query := `SELECT id, category, value, sort_order FROM dropdown_options
		WHERE tenant_id = $1 AND category = $2
		ORDER BY sort_order, value`
	rows, err := r.db.QueryContext(ctx, query, tenantID, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DropdownOption
	for rows.Next() {
		var o models.DropdownOption
		if err := rows.Scan(&o.ID, &o.Category, &o.Value, &o.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
