package headers

import (
	"strings"

	"github.com/case-import-api/internal/textnorm"
)

// AddressColumns holds the address parts found by scanning row labels.
type AddressColumns struct {
	Rue        string
	Numero     string
	CodePostal string
	Ville      string
}

var (
	streetKeys = []string{"rue", "street", "adresse", "address"}
	postalKeys = []string{"cp", "code postal", "codepostal", "postal code", "zip"}
	cityKeys   = []string{"ville", "city", "commune", "localite"}
	numberKeys = []string{"n°", "numero", "number", "num"}
)

// ExtractAddressColumns scans the non-empty cells of row for address parts
// by label keyword. The first matching column wins per part, and a column
// recognised as a house number is never taken as the street.
func ExtractAddressColumns(row Row) AddressColumns {
	var out AddressColumns
	for i, label := range row.Labels {
		value := strings.TrimSpace(row.Cells[i].Value)
		if value == "" {
			continue
		}
		folded := textnorm.Fold(label)

		if matchesAny(label, numberKeys) && !containsAny(folded, phoneFragments) {
			if out.Numero == "" {
				out.Numero = value
			}
			continue
		}
		if out.Rue == "" && matchesAny(label, streetKeys) && !strings.Contains(folded, "mail") {
			out.Rue = value
		}
		if out.CodePostal == "" && matchesAny(label, postalKeys) {
			out.CodePostal = value
		}
		if out.Ville == "" && matchesAny(label, cityKeys) && !containsAny(folded, birthFragments) {
			out.Ville = value
		}
	}
	return out
}

func matchesAny(label string, keys []string) bool {
	for _, k := range keys {
		if textnorm.MatchKeyword(label, k) {
			return true
		}
	}
	return false
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
