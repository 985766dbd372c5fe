// Package mapping coerces one named spreadsheet row into a case record.
package mapping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/case-import-api/internal/dates"
	"github.com/case-import-api/internal/headers"
	"github.com/case-import-api/internal/models"
	"github.com/case-import-api/internal/options"
	"github.com/case-import-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NotSpecified marks a categorical value the sheet did not provide.
const NotSpecified = "Non spécifié"

// Unnamed replaces a missing surname or given name.
const Unnamed = "Non précisé"

// Defaults fills address and status fields a row leaves empty.
type Defaults struct {
	CodePostal string
	Ville      string
	Pays       string
	Etat       string
}

// Env carries what a Mapper needs besides the header map.
type Env struct {
	TenantID  string
	FileName  string
	Lookup    options.Lookup
	Validator *validation.Validator
	Defaults  Defaults
	Sectors   SectorMap
	Now       func() time.Time
	NewID     func() string
	Log       zerolog.Logger
}

// Mapper maps the rows of one file.
type Mapper struct {
	headers headers.HeaderMap
	env     Env
}

// NewMapper binds a mapper to a file's resolved headers.
func NewMapper(hm headers.HeaderMap, env Env) *Mapper {
	if env.Now == nil {
		env.Now = time.Now
	}
	if env.NewID == nil {
		env.NewID = func() string { return uuid.New().String() }
	}
	if env.Validator == nil {
		env.Validator = validation.NewValidator()
	}
	return &Mapper{headers: hm, env: env}
}

// RowError reports a row that could not be coerced into a valid case.
type RowError struct {
	File   string
	Row    int
	Fields []validation.ValidationError
	Cause  error
}

func (e *RowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s row %d: %v", e.File, e.Row, e.Cause)
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%s row %d: %s", e.File, e.Row, strings.Join(parts, "; "))
}

func (e *RowError) Unwrap() error {
	return e.Cause
}

// Map coerces row into a case. A row with no value in any mapped field
// yields (nil, nil) and must be skipped. A row that fails coercion yields
// a *RowError.
func (m *Mapper) Map(ctx context.Context, r headers.Row) (*models.Case, error) {
	c, err := m.mapRow(ctx, r)
	switch {
	case err != nil:
		m.env.Log.Warn().Err(err).Int("row", r.Index).Msg("Row could not be mapped")
	case c == nil:
		m.env.Log.Debug().Int("row", r.Index).Msg("Blank row skipped")
	}
	return c, err
}

func (m *Mapper) mapRow(ctx context.Context, r headers.Row) (c *models.Case, err error) {
	defer func() {
		if p := recover(); p != nil {
			c = nil
			err = &RowError{File: m.env.FileName, Row: r.Index, Cause: fmt.Errorf("panic while mapping: %v", p)}
		}
	}()

	values := m.extract(r)
	if values.blank() {
		return nil, nil
	}

	c = m.build(ctx, values, r.Index)
	if errs := m.env.Validator.ValidateCase(c); len(errs) > 0 {
		return nil, &RowError{File: m.env.FileName, Row: r.Index, Fields: errs}
	}
	return c, nil
}

type fieldValues map[headers.Field]string

func (v fieldValues) blank() bool {
	for _, s := range v {
		if s != "" {
			return false
		}
	}
	return true
}

// extract reads every mapped field, decoding dates and completing the
// address from keyword-matched columns.
func (m *Mapper) extract(r headers.Row) fieldValues {
	values := make(fieldValues, len(m.headers)+4)
	for field, label := range m.headers {
		values[field] = r.Value(label)
	}
	for _, field := range headers.DateFields {
		label, ok := m.headers[field]
		if !ok || values[field] == "" {
			continue
		}
		values[field] = dates.Normalize(values[field], r.Encoding(label))
	}

	fallback := headers.ExtractAddressColumns(r)
	fill := func(f headers.Field, v string) {
		if values[f] == "" && v != "" {
			values[f] = v
		}
	}
	fill(headers.FieldRue, fallback.Rue)
	fill(headers.FieldNumero, fallback.Numero)
	fill(headers.FieldCodePostal, fallback.CodePostal)
	fill(headers.FieldVille, fallback.Ville)
	return values
}

func (m *Mapper) build(ctx context.Context, v fieldValues, index int) *models.Case {
	now := m.env.Now()
	canon := func(category, raw string) string {
		return options.Canonical(ctx, m.env.Lookup, m.env.TenantID, category, raw)
	}

	numero, boite := SplitNumber(v[headers.FieldNumero])
	if b := v[headers.FieldBoite]; b != "" {
		boite = b
	}

	c := &models.Case{
		ID:                       m.env.NewID(),
		TenantID:                 m.env.TenantID,
		Nom:                      orDefault(v[headers.FieldNom], Unnamed),
		Prenom:                   orDefault(v[headers.FieldPrenom], Unnamed),
		Email:                    cleanEmail(v[headers.FieldEmail]),
		Telephone:                v[headers.FieldTelephone],
		DateNaissance:            v[headers.FieldDateNaissance],
		Genre:                    canon(options.CategoryGenre, MapGenre(v[headers.FieldGenre])),
		Nationalite:              canon(options.CategoryNationalite, MapNationality(v[headers.FieldNationalite])),
		TrancheAge:               AgeGroup(v[headers.FieldDateNaissance], v[headers.FieldTrancheAge], now),
		StatutSejour:             canon(options.CategoryStatutSejour, v[headers.FieldStatutSejour]),
		Langue:                   canon(options.CategoryLangue, v[headers.FieldLangue]),
		Etat:                     canon(options.CategoryEtat, orDefault(v[headers.FieldEtat], m.env.Defaults.Etat)),
		DateOuverture:            orDefault(v[headers.FieldDateOuverture], now.Format(dates.ISOLayout)),
		DateCloture:              v[headers.FieldDateCloture],
		Gestionnaire:             v[headers.FieldGestionnaire],
		Antenne:                  canon(options.CategoryAntenne, orDefault(v[headers.FieldAntenne], NotSpecified)),
		PremierContact:           canon(options.CategoryPremierContact, v[headers.FieldPremierContact]),
		Remarques:                v[headers.FieldRemarques],
		NotesGenerales:           v[headers.FieldNotesGenerales],
		InformationImportante:    v[headers.FieldInformationImportante],
		SituationProfessionnelle: v[headers.FieldSituationProfessionnelle],
		Revenus:                  v[headers.FieldRevenus],
		Adresse: models.Adresse{
			Rue:        v[headers.FieldRue],
			Numero:     numero,
			Boite:      boite,
			CodePostal: orDefault(v[headers.FieldCodePostal], m.env.Defaults.CodePostal),
			Ville:      orDefault(v[headers.FieldVille], m.env.Defaults.Ville),
			Pays:       orDefault(v[headers.FieldPays], m.env.Defaults.Pays),
		},
		Secteur:    orDefault(v[headers.FieldSecteur], m.env.Sectors.Sector(v[headers.FieldRue])),
		SourceFile: m.env.FileName,
		SourceRow:  index,
		CreatedAt:  now.UTC(),
	}

	prefixSource := v[headers.FieldAntenne]
	if prefixSource == "" {
		prefixSource = m.env.Defaults.Ville
	}
	c.Reference = Reference(prefixSource, c.ID)
	return c
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
