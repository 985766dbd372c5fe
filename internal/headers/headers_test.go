package headers

import (
	"reflect"
	"testing"

	"github.com/case-import-api/internal/models"
	"github.com/case-import-api/internal/sheet"
)

func textRow(values ...string) []sheet.Cell {
	cells := make([]sheet.Cell, len(values))
	for i, v := range values {
		if v != "" {
			cells[i] = sheet.Cell{Value: v, Kind: sheet.Text}
		}
	}
	return cells
}

func TestDetectHeaders(t *testing.T) {
	rows := [][]sheet.Cell{
		textRow("", ""),
		nil,
		textRow("Nom", "", "Nom", "Prénom", ""),
		textRow("Dupont", "x", "y", "Jean"),
	}

	idx, labels := DetectHeaders(rows)
	if idx != 2 {
		t.Fatalf("Expected header row 2, got %d", idx)
	}
	want := []string{"Nom", "Colonne 2", "Nom (2)", "Prénom"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("labels = %v, want %v", labels, want)
	}
}

func TestDetectHeaders_EmptySheet(t *testing.T) {
	idx, labels := DetectHeaders([][]sheet.Cell{textRow("", " "), nil})
	if idx != -1 || labels != nil {
		t.Errorf("Expected no header, got %d %v", idx, labels)
	}
}

func TestResolve_Aliases(t *testing.T) {
	labels := []string{
		"NOM", "Prénom", "Date de naissance", "Adresse mail", "GSM", "Sexe",
		"Nationalité", "Rue", "N°", "Bte", "Code Postal", "Commune", "Statut séjour",
		"Situation", "Tranche d'âge", "Date d'ouverture", "Antenne", "Remarques",
	}

	m := Resolve(labels, nil)

	want := HeaderMap{
		FieldNom:           "NOM",
		FieldPrenom:        "Prénom",
		FieldDateNaissance: "Date de naissance",
		FieldEmail:         "Adresse mail",
		FieldTelephone:     "GSM",
		FieldGenre:         "Sexe",
		FieldNationalite:   "Nationalité",
		FieldRue:           "Rue",
		FieldNumero:        "N°",
		FieldBoite:         "Bte",
		FieldCodePostal:    "Code Postal",
		FieldVille:         "Commune",
		FieldStatutSejour:  "Statut séjour",
		FieldEtat:          "Situation",
		FieldTrancheAge:    "Tranche d'âge",
		FieldDateOuverture: "Date d'ouverture",
		FieldAntenne:       "Antenne",
		FieldRemarques:     "Remarques",
	}
	for field, label := range want {
		if got := m[field]; got != label {
			t.Errorf("field %s -> %q, want %q", field, got, label)
		}
	}
	if len(m) != len(want) {
		t.Errorf("Expected %d mapped fields, got %d: %v", len(want), len(m), m)
	}
}

func TestResolve_OneColumnPerField(t *testing.T) {
	m := Resolve([]string{"Nom", "Nom de famille", "Prénom"}, nil)

	if m[FieldNom] != "Nom" {
		t.Errorf("Expected exact label to win, got %q", m[FieldNom])
	}
	used := map[string]bool{}
	for _, label := range m {
		if used[label] {
			t.Errorf("label %q mapped twice", label)
		}
		used[label] = true
	}
}

func TestResolve_TypoTolerance(t *testing.T) {
	m := Resolve([]string{"Prenon", "Natonalite"}, nil)

	if m[FieldPrenom] != "Prenon" {
		t.Errorf("Expected typo match for prenom, got %q", m[FieldPrenom])
	}
	if m[FieldNationalite] != "Natonalite" {
		t.Errorf("Expected match for nationalite, got %q", m[FieldNationalite])
	}
}

func TestResolve_OrderIndependent(t *testing.T) {
	labels := []string{"Nom", "Prénom", "Adresse", "Numéro", "Code postal", "Ville", "Notes", "Notes générales", "Statut", "Statut séjour"}
	base := Resolve(labels, nil)

	permutations := [][]string{
		{"Statut séjour", "Statut", "Notes générales", "Notes", "Ville", "Code postal", "Numéro", "Adresse", "Prénom", "Nom"},
		{"Notes", "Nom", "Statut", "Ville", "Prénom", "Statut séjour", "Adresse", "Notes générales", "Code postal", "Numéro"},
	}
	for _, p := range permutations {
		if got := Resolve(p, nil); !reflect.DeepEqual(got, base) {
			t.Errorf("Resolve(%v) = %v, want %v", p, got, base)
		}
	}
}

func TestResolve_Overrides(t *testing.T) {
	labels := []string{"Nom", "Surnom", "Lieu", "Born"}
	overrides := models.ColumnMapping{
		"nom":           "Surnom",
		"adresse":       "Lieu",
		"dateNaissance": "born",
		"prenom":        "Missing column",
		"unknownField":  "Nom",
	}

	m := Resolve(labels, overrides)

	if m[FieldNom] != "Surnom" {
		t.Errorf("override for nom ignored: %q", m[FieldNom])
	}
	if m[FieldRue] != "Lieu" {
		t.Errorf("flat adresse override ignored: %q", m[FieldRue])
	}
	if m[FieldDateNaissance] != "Born" {
		t.Errorf("folded override label not matched: %q", m[FieldDateNaissance])
	}
	if _, ok := m[FieldPrenom]; ok {
		t.Errorf("missing override column should leave prenom unmapped, got %q", m[FieldPrenom])
	}
}

func TestBuildRow_DecodesSerialsUnderDateColumns(t *testing.T) {
	labels := []string{"Nom", "Date de naissance", "Code postal"}
	cells := []sheet.Cell{
		{Value: "Dupont", Kind: sheet.Text},
		{Value: "45000", Kind: sheet.Number},
		{Value: "1070", Kind: sheet.Number},
	}

	row := BuildRow(2, labels, cells, false)

	if got := row.Value("Date de naissance"); got != "2023-03-15" {
		t.Errorf("date cell = %q, want 2023-03-15", got)
	}
	if got := row.Value("Code postal"); got != "1070" {
		t.Errorf("plain number changed: %q", got)
	}
	if row.IsBlank() {
		t.Error("row should not be blank")
	}
	if !BuildRow(3, labels, nil, false).IsBlank() {
		t.Error("row with no cells should be blank")
	}
}

func TestExtractAddressColumns(t *testing.T) {
	labels := []string{"Email", "Adresse mail", "Numéro", "Adresse", "Rue bis", "CP", "Localité"}
	cells := textRow("a@b.be", "c@d.be", "12 bte 3", "Rue de la Gare", "Other", "1070", "Anderlecht")

	got := ExtractAddressColumns(BuildRow(2, labels, cells, false))

	want := AddressColumns{Rue: "Rue de la Gare", Numero: "12 bte 3", CodePostal: "1070", Ville: "Anderlecht"}
	if got != want {
		t.Errorf("ExtractAddressColumns = %+v, want %+v", got, want)
	}
}

func TestExtractAddressColumns_SkipsEmptyCells(t *testing.T) {
	labels := []string{"Adresse", "Rue"}
	got := ExtractAddressColumns(BuildRow(2, labels, textRow("", "Chaussée de Mons"), false))

	if got.Rue != "Chaussée de Mons" {
		t.Errorf("Expected first non-empty street, got %q", got.Rue)
	}
}

func TestResolve_BirthplaceColumns(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   map[Field]string
	}{
		{
			name:   "no birth date column",
			labels: []string{"Nom", "Prénom", "Ville de naissance", "Adresse", "Ville"},
			want:   map[Field]string{FieldDateNaissance: "", FieldVille: "Ville"},
		},
		{
			name:   "birth date column present",
			labels: []string{"Nom", "Prénom", "Date de naissance", "Ville de naissance", "Adresse"},
			want:   map[Field]string{FieldDateNaissance: "Date de naissance", FieldVille: ""},
		},
		{
			name:   "lieu de naissance",
			labels: []string{"Nom", "Lieu de naissance", "Commune"},
			want:   map[Field]string{FieldDateNaissance: "", FieldVille: "Commune"},
		},
		{
			name:   "pays de naissance stays nationality",
			labels: []string{"Nom", "Pays de naissance", "Pays"},
			want:   map[Field]string{FieldNationalite: "Pays de naissance", FieldPays: "Pays", FieldDateNaissance: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Resolve(tt.labels, nil)
			for field, label := range tt.want {
				if m[field] != label {
					t.Errorf("%s = %q, want %q (map %v)", field, m[field], label, m)
				}
			}
		})
	}
}

func TestExtractAddressColumns_IgnoresBirthplace(t *testing.T) {
	labels := []string{"Ville de naissance", "Localité"}
	got := ExtractAddressColumns(BuildRow(2, labels, textRow("Casablanca", "Anderlecht"), false))

	if got.Ville != "Anderlecht" {
		t.Errorf("Expected residential city, got %q", got.Ville)
	}
}
