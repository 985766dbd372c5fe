package mapping

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/case-import-api/internal/dates"
	"github.com/case-import-api/internal/textnorm"
)

var (
	maleValues   = []string{"m", "h", "homme", "male", "masculin", "mr", "monsieur", "1(m)", "1"}
	femaleValues = []string{"f", "femme", "female", "feminin", "mme", "madame", "mlle", "mademoiselle", "2(f)", "2"}
	otherValues  = []string{"autre", "other", "non binaire", "nb", "x"}
)

// MapGenre folds the many spellings of gender found in sheets into
// Homme, Femme or Autre. Empty input is NotSpecified; anything else
// unrecognised is kept as given.
func MapGenre(raw string) string {
	v := textnorm.Fold(raw)
	switch {
	case v == "":
		return NotSpecified
	case contains(maleValues, v):
		return "Homme"
	case contains(femaleValues, v):
		return "Femme"
	case contains(otherValues, v):
		return "Autre"
	}
	return strings.TrimSpace(raw)
}

var nationalityToCountry = map[string]string{
	"francais": "France", "francaise": "France", "fr": "France", "france": "France",
	"belge": "Belgique", "belgique": "Belgique", "be": "Belgique",
	"suisse": "Suisse", "ch": "Suisse",
	"italien": "Italie", "italienne": "Italie", "italie": "Italie", "it": "Italie",
	"allemand": "Allemagne", "allemande": "Allemagne", "allemagne": "Allemagne", "de": "Allemagne",
	"espagnol": "Espagne", "espagnole": "Espagne", "espagne": "Espagne", "es": "Espagne",
	"portugais": "Portugal", "portugaise": "Portugal", "portugal": "Portugal", "pt": "Portugal",
	"marocain": "Maroc", "marocaine": "Maroc", "maroc": "Maroc", "ma": "Maroc",
	"algerien": "Algérie", "algerienne": "Algérie", "algerie": "Algérie", "dz": "Algérie",
	"tunisien": "Tunisie", "tunisienne": "Tunisie", "tunisie": "Tunisie", "tn": "Tunisie",
}

// MapNationality turns a nationality adjective or code into a country
// name. Unknown values are kept as given.
func MapNationality(raw string) string {
	if country, ok := nationalityToCountry[textnorm.Fold(raw)]; ok {
		return country
	}
	return strings.TrimSpace(raw)
}

type ageBracket struct {
	key   string
	label string
	max   int
}

var ageBrackets = []ageBracket{
	{"0-17", "Mineur", 17},
	{"18-25", "Jeune adulte", 25},
	{"26-40", "Adulte", 40},
	{"41-65", "Adulte mûr", 65},
	{"65+", "Senior", 1 << 30},
}

// AgeGroup derives the age bracket from a birth date when it is a real
// calendar date, else from an explicit bracket value. An explicit value
// that names no bracket is kept as given.
func AgeGroup(birthDate, explicit string, now time.Time) string {
	if dates.IsValidCalendarDate(birthDate) {
		born, _ := time.Parse(dates.ISOLayout, birthDate)
		age := now.Year() - born.Year()
		if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
			age--
		}
		if age >= 0 {
			for _, b := range ageBrackets {
				if age <= b.max {
					return b.label
				}
			}
		}
	}

	v := strings.TrimSpace(explicit)
	if v == "" {
		return NotSpecified
	}
	for _, b := range ageBrackets {
		if v == b.key || strings.EqualFold(textnorm.Fold(v), textnorm.Fold(b.label)) {
			return b.label
		}
	}
	return v
}

var boxPattern = regexp.MustCompile(`(?i)^\s*(\S*?)\s*(?:/|\bbte\b\.?|\bbo[iî]te\b|\bbox\b|\bbt\b\.?)\s*(\S+)\s*$`)

// SplitNumber separates a house number from its mailbox:
// "12 bte 3", "12/3" and "bte 3" all carry a box.
func SplitNumber(raw string) (numero, boite string) {
	s := strings.TrimSpace(raw)
	if m := boxPattern.FindStringSubmatch(s); m != nil {
		return m[1], m[2]
	}
	return s, ""
}

var emailPlaceholders = []string{"/", "n/a", "na", "neant", "aucun", "aucune", "pas de mail", "none", "x"}

// cleanEmail drops placeholder values typed in place of a missing address.
func cleanEmail(raw string) string {
	v := strings.TrimSpace(raw)
	folded := textnorm.Fold(v)
	if folded == "" || contains(emailPlaceholders, folded) {
		return ""
	}
	return v
}

var genericAntennaWords = map[string]bool{
	"ANTENNE": true, "PERMANENCE": true, "CENTRE": true, "SITE": true,
	"STRUCTURE": true, "ETABLISSEMENT": true, "POLE": true,
}

// Reference builds a readable case reference such as "CUR-1A2B3C" from the
// branch name and the case id.
func Reference(branch, id string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return branchPrefix(branch) + "-" + suffix
}

func branchPrefix(branch string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, textnorm.StripDiacritics(branch))

	word := ""
	for _, w := range strings.Fields(cleaned) {
		if !genericAntennaWords[w] {
			word = w
			break
		}
	}
	runes := []rune(word)
	switch len(runes) {
	case 0:
		return "GEN"
	case 1:
		return word + "AN"
	case 2:
		return word + "A"
	default:
		return string(runes[:3])
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
