package mapping

import (
	"encoding/json"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/case-import-api/internal/textnorm"
	"github.com/pkg/errors"
)

// SectorMap assigns a sector to a street, keyed by normalised street name.
type SectorMap map[string]string

// trailingNumbers drops house number ranges such as "1-153/2-154".
var trailingNumbers = regexp.MustCompile(`\s+\d+.*$`)

func streetKey(rue string) string {
	rue = trailingNumbers.ReplaceAllString(strings.TrimSpace(rue), "")
	return strings.Join(textnorm.Tokens(rue), " ")
}

// ParseSectorMap reads a JSON object of sector name to street list. A street
// listed under several sectors belongs to the last of them in name order.
func ParseSectorMap(r io.Reader) (SectorMap, error) {
	var raw map[string][]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode sector map")
	}

	sectors := make([]string, 0, len(raw))
	for sector := range raw {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)

	m := make(SectorMap)
	for _, sector := range sectors {
		for _, street := range raw[sector] {
			if key := streetKey(street); key != "" {
				m[key] = sector
			}
		}
	}
	return m, nil
}

// LoadSectorMap reads the sector map at path. An empty path yields an
// empty map.
func LoadSectorMap(path string) (SectorMap, error) {
	if path == "" {
		return SectorMap{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open sector map")
	}
	defer f.Close()
	return ParseSectorMap(f)
}

// Sector returns the sector of rue, or NotSpecified.
func (m SectorMap) Sector(rue string) string {
	if s, ok := m[streetKey(rue)]; ok && rue != "" {
		return s
	}
	return NotSpecified
}
