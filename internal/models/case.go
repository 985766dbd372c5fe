package models

import (
	"time"
)

// Case represents a beneficiary case record
type Case struct {
	ID                       string    `json:"id" db:"id"`
	TenantID                 string    `json:"tenantId" db:"tenant_id"`
	Reference                string    `json:"reference" db:"reference" validate:"max=32"`
	Nom                      string    `json:"nom" db:"nom" validate:"required,max=200"`
	Prenom                   string    `json:"prenom" db:"prenom" validate:"required,max=200"`
	Email                    string    `json:"email,omitempty" db:"email" validate:"omitempty,email,max=255"`
	Telephone                string    `json:"telephone,omitempty" db:"telephone" validate:"max=50"`
	DateNaissance            string    `json:"dateNaissance,omitempty" db:"date_naissance" validate:"max=64"`
	Genre                    string    `json:"genre" db:"genre" validate:"max=50"`
	Nationalite              string    `json:"nationalite,omitempty" db:"nationalite" validate:"max=100"`
	TrancheAge               string    `json:"trancheAge,omitempty" db:"tranche_age" validate:"max=50"`
	StatutSejour             string    `json:"statutSejour,omitempty" db:"statut_sejour" validate:"max=100"`
	Langue                   string    `json:"langue,omitempty" db:"langue" validate:"max=100"`
	Etat                     string    `json:"etat" db:"etat" validate:"max=50"`
	DateOuverture            string    `json:"dateOuverture,omitempty" db:"date_ouverture" validate:"max=64"`
	DateCloture              string    `json:"dateCloture,omitempty" db:"date_cloture" validate:"max=64"`
	Gestionnaire             string    `json:"gestionnaire,omitempty" db:"gestionnaire" validate:"max=200"`
	Antenne                  string    `json:"antenne,omitempty" db:"antenne" validate:"max=200"`
	PremierContact           string    `json:"premierContact,omitempty" db:"premier_contact" validate:"max=200"`
	Remarques                string    `json:"remarques,omitempty" db:"remarques"`
	NotesGenerales           string    `json:"notesGenerales,omitempty" db:"notes_generales"`
	InformationImportante    string    `json:"informationImportante,omitempty" db:"information_importante"`
	SituationProfessionnelle string    `json:"situationProfessionnelle,omitempty" db:"situation_professionnelle" validate:"max=200"`
	Revenus                  string    `json:"revenus,omitempty" db:"revenus" validate:"max=200"`
	Adresse                  Adresse   `json:"adresse"`
	Secteur                  string    `json:"secteur,omitempty" db:"secteur" validate:"max=100"`
	SourceFile               string    `json:"-" db:"source_file"`
	SourceRow                int       `json:"-" db:"source_row"`
	CreatedAt                time.Time `json:"createdAt" db:"created_at"`
}

// Adresse is the postal address nested in a case
type Adresse struct {
	Rue        string `json:"rue,omitempty" db:"adresse_rue" validate:"max=255"`
	Numero     string `json:"numero,omitempty" db:"adresse_numero" validate:"max=20"`
	Boite      string `json:"boite,omitempty" db:"adresse_boite" validate:"max=20"`
	CodePostal string `json:"codePostal,omitempty" db:"adresse_code_postal" validate:"max=20"`
	Ville      string `json:"ville,omitempty" db:"adresse_ville" validate:"max=100"`
	Pays       string `json:"pays,omitempty" db:"adresse_pays" validate:"max=100"`
}

// DuplicateCandidate is an existing case that resembles an incoming identity
type DuplicateCandidate struct {
	ID             string `json:"id"`
	Nom            string `json:"nom"`
	Prenom         string `json:"prenom"`
	DateNaissance  string `json:"dateNaissance,omitempty"`
	Antenne        string `json:"antenne,omitempty"`
	Gestionnaire   string `json:"gestionnaire,omitempty"`
	ExactName      bool   `json:"exactName"`
	BirthDateMatch *bool  `json:"birthDateMatch,omitempty"`
}

// DropdownOption is one configured value of a categorical field
type DropdownOption struct {
	ID        string `json:"id" db:"id"`
	Category  string `json:"category" db:"category"`
	Value     string `json:"value" db:"value"`
	SortOrder int    `json:"sortOrder" db:"sort_order"`
}
