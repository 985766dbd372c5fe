package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/case-import-api/internal/database"
	"github.com/case-import-api/internal/models"
	"github.com/lib/pq"
)

// caseColumns is the COPY column order used by BulkInsert
var caseColumns = []string{
	"id", "tenant_id", "reference", "nom", "prenom", "email", "telephone",
	"date_naissance", "genre", "nationalite", "tranche_age", "statut_sejour",
	"langue", "etat", "date_ouverture", "date_cloture", "gestionnaire", "antenne",
	"premier_contact", "remarques", "notes_generales", "information_importante",
	"situation_professionnelle", "revenus",
	"adresse_rue", "adresse_numero", "adresse_boite", "adresse_code_postal",
	"adresse_ville", "adresse_pays", "secteur",
	"source_file", "source_row", "created_at",
}

// summaryColumns are read back for duplicate checks
const summaryColumns = `id, tenant_id, reference, nom, prenom, date_naissance, antenne, gestionnaire, created_at`

// caseRepo is the concrete implementation of CaseRepository
type caseRepo struct {
	db *database.DB
}

// NewCaseRepo creates a new case repository
func NewCaseRepo(db *database.DB) CaseRepository {
	return &caseRepo{db: db}
}

// BulkInsert writes all cases in one COPY inside one transaction. Either
// every case is stored or none is.
func (r *caseRepo) BulkInsert(ctx context.Context, tenantID string, cases []*models.Case) (int, error) {
	if len(cases) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("cases", caseColumns...))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare copy: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, c := range cases {
		created := c.CreatedAt
		if created.IsZero() {
			created = now
		}
		_, err := stmt.ExecContext(ctx,
			c.ID, tenantID, c.Reference, c.Nom, c.Prenom, c.Email, c.Telephone,
			c.DateNaissance, c.Genre, c.Nationalite, c.TrancheAge, c.StatutSejour,
			c.Langue, c.Etat, c.DateOuverture, c.DateCloture, c.Gestionnaire, c.Antenne,
			c.PremierContact, c.Remarques, c.NotesGenerales, c.InformationImportante,
			c.SituationProfessionnelle, c.Revenus,
			c.Adresse.Rue, c.Adresse.Numero, c.Adresse.Boite, c.Adresse.CodePostal,
			c.Adresse.Ville, c.Adresse.Pays, c.Secteur,
			c.SourceFile, c.SourceRow, created,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to copy row %d of %s: %w", c.SourceRow, c.SourceFile, err)
		}
	}

	// Flush the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to flush copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit bulk insert: %w", err)
	}

	return len(cases), nil
}

// FindByNames returns cases whose names contain both fragments, ignoring case
func (r *caseRepo) FindByNames(ctx context.Context, tenantID, nom, prenom string, limit int) ([]*models.Case, error) {
	query := `SELECT ` + summaryColumns + ` FROM cases
		WHERE tenant_id = $1
		  AND POSITION(LOWER($2) IN LOWER(nom)) > 0
		  AND POSITION(LOWER($3) IN LOWER(prenom)) > 0
		ORDER BY nom, prenom, id
		LIMIT $4`
	return r.query(ctx, query, tenantID, strings.TrimSpace(nom), strings.TrimSpace(prenom), limit)
}

// FindByExactName returns cases whose trimmed names equal the given ones, ignoring case
func (r *caseRepo) FindByExactName(ctx context.Context, tenantID, nom, prenom string) ([]*models.Case, error) {
	query := `SELECT ` + summaryColumns + ` FROM cases
		WHERE tenant_id = $1
		  AND LOWER(TRIM(nom)) = LOWER(TRIM($2))
		  AND LOWER(TRIM(prenom)) = LOWER(TRIM($3))
		ORDER BY id`
	return r.query(ctx, query, tenantID, nom, prenom)
}

// FindByIDs returns the tenant's cases among ids
func (r *caseRepo) FindByIDs(ctx context.Context, tenantID string, ids []string) ([]*models.Case, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + summaryColumns + ` FROM cases WHERE tenant_id = $1 AND id = ANY($2) ORDER BY id`
	return r.query(ctx, query, tenantID, pq.Array(ids))
}

// DeleteByIDs removes the tenant's cases among ids
func (r *caseRepo) DeleteByIDs(ctx context.Context, tenantID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM cases WHERE tenant_id = $1 AND id = ANY($2)`, tenantID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to delete cases: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// FindEmails returns which of emails already belong to a case of the
// tenant. Matching ignores case; the result is lower-cased.
func (r *caseRepo) FindEmails(ctx context.Context, tenantID string, emails []string) ([]string, error) {
	lowered := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			lowered = append(lowered, e)
		}
	}
	if len(lowered) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT LOWER(email) FROM cases WHERE tenant_id = $1 AND email <> '' AND LOWER(email) = ANY($2)`,
		tenantID, pq.Array(lowered))
	if err != nil {
		return nil, fmt.Errorf("failed to query emails: %w", err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		found = append(found, e)
	}
	return found, rows.Err()
}

// Count returns the number of cases of a tenant
func (r *caseRepo) Count(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cases WHERE tenant_id = $1", tenantID).Scan(&count)
	return count, err
}

func (r *caseRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.Case, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cases: %w", err)
	}
	defer rows.Close()

	var out []*models.Case
	for rows.Next() {
		var c models.Case
		if err := rows.Scan(
			&c.ID, &c.TenantID, &c.Reference, &c.Nom, &c.Prenom,
			&c.DateNaissance, &c.Antenne, &c.Gestionnaire, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
