// Package headers locates the header row of a sheet and maps its labels to
// canonical case fields.
package headers

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/case-import-api/internal/dates"
	"github.com/case-import-api/internal/models"
	"github.com/case-import-api/internal/sheet"
	"github.com/case-import-api/internal/textnorm"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// HeaderMap maps each resolved field to the label of its source column.
type HeaderMap map[Field]string

// Row is a data row keyed by header label.
type Row struct {
	// Index is the 1-based row number in the sheet.
	Index    int
	Labels   []string
	Cells    []sheet.Cell
	Date1904 bool
	byLabel  map[string]int
}

// DetectHeaders returns the index of the first row holding at least one
// non-empty cell, and its labels. Blank label cells are named "Colonne N"
// and repeated labels are suffixed " (2)", " (3)". It returns -1 when the
// sheet has no such row.
func DetectHeaders(rows [][]sheet.Cell) (int, []string) {
	for i, row := range rows {
		last := -1
		for c, cell := range row {
			if !cell.IsEmpty() {
				last = c
			}
		}
		if last < 0 {
			continue
		}

		labels := make([]string, last+1)
		seen := make(map[string]int, len(labels))
		for c := 0; c <= last; c++ {
			label := strings.TrimSpace(row[c].Value)
			if label == "" {
				label = fmt.Sprintf("Colonne %d", c+1)
			}
			seen[label]++
			if n := seen[label]; n > 1 {
				label = label + " (" + strconv.Itoa(n) + ")"
			}
			labels[c] = label
		}
		return i, labels
	}
	return -1, nil
}

// BuildRow names the cells of one data row. Numeric cells under a
// date-bearing label are decoded to ISO dates here.
func BuildRow(index int, labels []string, cells []sheet.Cell, date1904 bool) Row {
	r := Row{
		Index:    index,
		Labels:   labels,
		Cells:    make([]sheet.Cell, len(labels)),
		Date1904: date1904,
		byLabel:  make(map[string]int, len(labels)),
	}
	for i, label := range labels {
		r.byLabel[label] = i
		if i >= len(cells) {
			continue
		}
		cell := cells[i]
		if cell.Kind == sheet.Number && dates.IsDateColumn(label) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(cell.Value), 64); err == nil {
				if iso, ok := dates.FromSerial(v, date1904); ok {
					cell = sheet.Cell{Value: iso, Kind: sheet.Text}
				}
			}
		}
		r.Cells[i] = cell
	}
	return r
}

// Cell returns the cell under label.
func (r Row) Cell(label string) (sheet.Cell, bool) {
	i, ok := r.byLabel[label]
	if !ok {
		return sheet.Cell{}, false
	}
	return r.Cells[i], true
}

// Value returns the trimmed value under label.
func (r Row) Value(label string) string {
	c, _ := r.Cell(label)
	return strings.TrimSpace(c.Value)
}

// Encoding returns the date encoding hint of the cell under label.
func (r Row) Encoding(label string) dates.Encoding {
	c, ok := r.Cell(label)
	if !ok || c.Kind != sheet.Number {
		return dates.Text
	}
	if r.Date1904 {
		return dates.Serial1904
	}
	return dates.Serial1900
}

// IsBlank reports whether every cell of the row is empty.
func (r Row) IsBlank() bool {
	for _, c := range r.Cells {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

const (
	tierFuzzy = iota + 1
	tierContains
	tierExact
)

type candidate struct {
	field       Field
	priority    int
	label       string
	tier        int
	specificity int
}

// Resolve maps labels to canonical fields. Overrides are applied first and
// win for their field; a label named by an override but absent from labels
// leaves that field to the heuristics. Each field takes at most one column
// and each column feeds at most one field. The result does not depend on
// the order of labels.
func Resolve(labels []string, overrides models.ColumnMapping) HeaderMap {
	result := make(HeaderMap)
	claimed := make(map[string]bool, len(labels))

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		field, ok := FieldForKey(key)
		if !ok {
			continue
		}
		if _, done := result[field]; done {
			continue
		}
		label, ok := findLabel(labels, overrides[key])
		if !ok || claimed[label] {
			continue
		}
		result[field] = label
		claimed[label] = true
	}

	var candidates []candidate
	for priority, entry := range aliasTable {
		if _, done := result[entry.field]; done {
			continue
		}
		for _, label := range labels {
			if claimed[label] {
				continue
			}
			if tier, rank := score(entry, label); tier > 0 {
				candidates = append(candidates, candidate{
					field:       entry.field,
					priority:    priority,
					label:       label,
					tier:        tier,
					specificity: rank,
				})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.tier != b.tier {
			return a.tier > b.tier
		}
		if a.specificity != b.specificity {
			return a.specificity > b.specificity
		}
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		return a.label < b.label
	})

	for _, c := range candidates {
		if _, done := result[c.field]; done || claimed[c.label] {
			continue
		}
		result[c.field] = c.label
		claimed[c.label] = true
	}
	return result
}

// findLabel matches an override label exactly, then by folded form.
func findLabel(labels []string, want string) (string, bool) {
	want = strings.TrimSpace(want)
	if want == "" {
		return "", false
	}
	for _, l := range labels {
		if l == want {
			return l, true
		}
	}
	folded := textnorm.Fold(want)
	for _, l := range labels {
		if textnorm.Fold(l) == folded {
			return l, true
		}
	}
	return "", false
}

// score rates how well label matches entry, returning the best tier and a
// specificity used to order matches of the same tier.
func score(entry aliasEntry, label string) (int, int) {
	folded := textnorm.Fold(label)
	if folded == "" {
		return 0, 0
	}
	for _, ex := range entry.exclude {
		if strings.Contains(folded, ex) {
			return 0, 0
		}
	}

	bestTier, bestRank := 0, 0
	for i, alias := range entry.aliases {
		fa := textnorm.Fold(alias)
		n := len([]rune(fa))

		tier, rank := 0, 0
		switch {
		case folded == fa:
			// Earlier aliases are the more canonical spellings.
			tier, rank = tierExact, -i
		case textnorm.MatchKeyword(label, alias):
			tier, rank = tierContains, n
		case n >= 6:
			limit := 1
			if n >= 10 {
				limit = 2
			}
			if d := fuzzy.LevenshteinDistance(folded, fa); d <= limit {
				tier, rank = tierFuzzy, -d
			}
		}

		if tier == 0 {
			continue
		}
		if bestTier == 0 || tier > bestTier || (tier == bestTier && rank > bestRank) {
			bestTier, bestRank = tier, rank
		}
	}
	return bestTier, bestRank
}
