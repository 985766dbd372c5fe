package service

import (
	"context"

	"github.com/case-import-api/internal/models"
	"github.com/case-import-api/internal/options"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrNotPrivileged is returned when an operation needs an administrator.
var ErrNotPrivileged = errors.New("administrator role required")

type optionService struct {
	lookup options.Lookup
	log    zerolog.Logger
}

func newOptionService(lookup options.Lookup, log zerolog.Logger) *optionService {
	return &optionService{
		lookup: lookup,
		log:    log.With().Str("service", "options").Logger(),
	}
}

// Refresh drops the caller tenant's cached option lists so the next import
// reads them from the store. It returns the number of categories dropped,
// zero when the lookup keeps no cache.
func (s *optionService) Refresh(ctx context.Context, caller models.Caller) (int, error) {
	if !caller.Privileged() {
		return 0, ErrNotPrivileged
	}

	inv, ok := s.lookup.(options.Invalidator)
	if !ok {
		return 0, nil
	}

	for i, category := range options.Categories {
		if err := inv.Invalidate(ctx, caller.TenantID, category); err != nil {
			return i, errors.Wrapf(err, "invalidate %s", category)
		}
	}

	s.log.Info().
		Str("tenant_id", caller.TenantID).
		Str("user_id", caller.UserID).
		Msg("Dropdown options refreshed")
	return len(options.Categories), nil
}
