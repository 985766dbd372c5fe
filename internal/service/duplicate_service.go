package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/case-import-api/internal/dates"
	"github.com/case-import-api/internal/metrics"
	"github.com/case-import-api/internal/models"
	"github.com/case-import-api/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// discoveryLimit caps the candidates returned by a duplicate lookup
const discoveryLimit = 50

// AuthorizationError rejects a bulk delete request as a whole
type AuthorizationError struct {
	Reason string
	CaseID string
}

func (e *AuthorizationError) Error() string {
	if e.CaseID != "" {
		return fmt.Sprintf("bulk delete not authorized: %s (%s)", e.Reason, e.CaseID)
	}
	return "bulk delete not authorized: " + e.Reason
}

// duplicateService is the concrete implementation of DuplicateService
type duplicateService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newDuplicateService creates a new DuplicateService
func newDuplicateService(repos *repository.Repositories, log zerolog.Logger) *duplicateService {
	return &duplicateService{
		repos: repos,
		log:   log.With().Str("service", "duplicate").Logger(),
	}
}

// FindDuplicates returns the tenant's cases whose names contain both
// query names, each flagged for exact name equality and, when both sides
// carry one, birth date agreement.
func (s *duplicateService) FindDuplicates(ctx context.Context, tenantID, nom, prenom, dateNaissance string) ([]models.DuplicateCandidate, error) {
	nom, prenom = strings.TrimSpace(nom), strings.TrimSpace(prenom)
	if nom == "" || prenom == "" {
		return []models.DuplicateCandidate{}, nil
	}

	found, err := s.repos.Case.FindByNames(ctx, tenantID, nom, prenom, discoveryLimit)
	if err != nil {
		return nil, errors.Wrap(err, "find duplicate candidates")
	}

	birth := dates.Normalize(dateNaissance, dates.Text)
	out := make([]models.DuplicateCandidate, 0, len(found))
	exact := false
	for _, c := range found {
		cand := models.DuplicateCandidate{
			ID:            c.ID,
			Nom:           c.Nom,
			Prenom:        c.Prenom,
			DateNaissance: c.DateNaissance,
			Antenne:       c.Antenne,
			Gestionnaire:  c.Gestionnaire,
			ExactName:     sameName(c.Nom, nom) && sameName(c.Prenom, prenom),
		}
		if birth != "" && c.DateNaissance != "" {
			match := dates.Normalize(c.DateNaissance, dates.Text) == birth
			cand.BirthDateMatch = &match
		}
		exact = exact || cand.ExactName
		out = append(out, cand)
	}

	metrics.RecordDuplicateCheck(exact)
	s.log.Debug().
		Str("tenant_id", tenantID).
		Int("candidates", len(out)).
		Bool("exact", exact).
		Msg("Duplicate lookup")

	return out, nil
}

// AuthorizeBulkDelete allows privileged callers outright. Anyone else may
// only delete cases that are strict duplicates of some other case of the
// tenant: same names ignoring case and surrounding spaces, and the same
// birth date when both carry one. A single failing
// case rejects the whole request.
func (s *duplicateService) AuthorizeBulkDelete(ctx context.Context, caller models.Caller, ids []string) error {
	if caller.Privileged() {
		metrics.RecordDeleteAuthorization("privileged")
		return nil
	}

	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return s.deny(caller, &AuthorizationError{Reason: "no case selected"})
	}

	targets, err := s.repos.Case.FindByIDs(ctx, caller.TenantID, ids)
	if err != nil {
		return errors.Wrap(err, "load cases to delete")
	}
	if len(targets) != len(ids) {
		return s.deny(caller, &AuthorizationError{Reason: "some cases do not exist"})
	}

	for _, target := range targets {
		twins, err := s.repos.Case.FindByExactName(ctx, caller.TenantID, target.Nom, target.Prenom)
		if err != nil {
			return errors.Wrapf(err, "look up duplicates of %s", target.ID)
		}
		if !hasTwin(target, twins) {
			return s.deny(caller, &AuthorizationError{Reason: "case is not a duplicate of another record", CaseID: target.ID})
		}
	}

	metrics.RecordDeleteAuthorization("allowed")
	return nil
}

// BulkDelete authorizes then deletes the cases in one statement
func (s *duplicateService) BulkDelete(ctx context.Context, caller models.Caller, ids []string) (int, error) {
	if err := s.AuthorizeBulkDelete(ctx, caller, ids); err != nil {
		return 0, err
	}

	deleted, err := s.repos.Case.DeleteByIDs(ctx, caller.TenantID, uniqueIDs(ids))
	if err != nil {
		return 0, errors.Wrap(err, "delete cases")
	}

	s.log.Info().
		Str("tenant_id", caller.TenantID).
		Str("user_id", caller.UserID).
		Str("role", caller.Role).
		Int("deleted", deleted).
		Msg("Cases deleted")

	return deleted, nil
}

func (s *duplicateService) deny(caller models.Caller, err *AuthorizationError) error {
	metrics.RecordDeleteAuthorization("denied")
	s.log.Warn().
		Str("tenant_id", caller.TenantID).
		Str("user_id", caller.UserID).
		Str("case_id", err.CaseID).
		Str("reason", err.Reason).
		Msg("Bulk delete rejected")
	return err
}

func hasTwin(target *models.Case, twins []*models.Case) bool {
	for _, twin := range twins {
		if twin.ID == target.ID {
			continue
		}
		if !sameName(twin.Nom, target.Nom) || !sameName(twin.Prenom, target.Prenom) {
			continue
		}
		if target.DateNaissance != "" && twin.DateNaissance != "" &&
			dates.Normalize(target.DateNaissance, dates.Text) != dates.Normalize(twin.DateNaissance, dates.Text) {
			continue
		}
		return true
	}
	return false
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
