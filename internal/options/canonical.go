package options

import (
	"context"
	"strings"

	"github.com/case-import-api/internal/textnorm"
)

// Categories of case fields backed by dropdown options.
const (
	CategoryGenre          = "genre"
	CategoryEtat           = "etat"
	CategoryNationalite    = "nationalite"
	CategoryStatutSejour   = "statutSejour"
	CategoryLangue         = "langue"
	CategoryAntenne        = "antenne"
	CategoryPremierContact = "premierContact"
)

// Categories lists every option-backed category.
var Categories = []string{
	CategoryGenre, CategoryEtat, CategoryNationalite, CategoryStatutSejour,
	CategoryLangue, CategoryAntenne, CategoryPremierContact,
}

// Canonical returns the configured spelling of raw within category, or raw
// itself when no option matches or the options cannot be read.
func Canonical(ctx context.Context, lookup Lookup, tenantID, category, raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || lookup == nil {
		return value
	}
	opts, err := lookup.Options(ctx, tenantID, category)
	if err != nil {
		return value
	}
	folded := textnorm.Fold(value)
	for _, o := range opts {
		if textnorm.Fold(o.Value) == folded {
			return o.Value
		}
	}
	return value
}
