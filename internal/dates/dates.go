// Package dates turns the date tokens found in imported spreadsheets into
// canonical YYYY-MM-DD strings.
package dates

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/case-import-api/internal/textnorm"
	"github.com/xuri/excelize/v2"
)

// Encoding tells Normalize how the source cell stored its value.
type Encoding int

const (
	// Text is a literal string cell.
	Text Encoding = iota
	// Serial1900 is a numeric cell of a workbook using the 1900 date system.
	Serial1900
	// Serial1904 is a numeric cell of a workbook using the 1904 date system.
	Serial1904
)

// ISOLayout is the canonical output layout.
const ISOLayout = "2006-01-02"

// maxSerial is the first serial past 9999-12-31.
const maxSerial = 2958466

var (
	isoPattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoStampPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[T ]\d{2}:\d{2}`)
	ymdPattern      = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})$`)
	dmyPattern      = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})$`)
	dmyShortPattern = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{2})$`)
	compactPattern  = regexp.MustCompile(`^\d{8}$`)
)

// dateKeywords flag a column header as date-bearing.
var dateKeywords = []string{
	"date", "naissance", "inscription", "debut", "fin", "rendez-vous",
	"ouverture", "cloture", "ddn", "dn", "d.n.",
}

// placeKeywords mark birthplace headers such as "Lieu de naissance".
var placeKeywords = []string{"lieu", "ville", "pays", "commune", "city"}

// twoDigitPivot splits two-digit years between 19xx and 20xx.
const twoDigitPivot = 70

// Normalize converts token to YYYY-MM-DD. Day-first ordering is assumed for
// ambiguous text forms. Tokens that cannot be read as a date are returned
// unchanged.
func Normalize(token string, enc Encoding) string {
	s := strings.TrimSpace(token)
	if s == "" {
		return ""
	}

	if enc == Serial1900 || enc == Serial1904 {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			if iso, ok := FromSerial(v, enc == Serial1904); ok {
				return iso
			}
			return token
		}
	}

	if isoPattern.MatchString(s) {
		return s
	}
	if m := isoStampPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := ymdPattern.FindStringSubmatch(s); m != nil {
		if iso, ok := compose(m[1], m[2], m[3]); ok {
			return iso
		}
		return token
	}
	if m := dmyPattern.FindStringSubmatch(s); m != nil {
		if iso, ok := compose(m[3], m[2], m[1]); ok {
			return iso
		}
		return token
	}
	if m := dmyShortPattern.FindStringSubmatch(s); m != nil {
		yy, _ := strconv.Atoi(m[3])
		year := 1900 + yy
		if yy < twoDigitPivot {
			year = 2000 + yy
		}
		if iso, ok := compose(strconv.Itoa(year), m[2], m[1]); ok {
			return iso
		}
		return token
	}
	if compactPattern.MatchString(s) {
		if iso, ok := compact(s); ok {
			return iso
		}
	}
	return token
}

// FromSerial decodes a spreadsheet date serial. The fractional part is the
// time of day and is dropped. Serials outside (0, 2958466) are not dates.
func FromSerial(v float64, date1904 bool) (string, bool) {
	if math.IsNaN(v) || v <= 0 || v >= maxSerial {
		return "", false
	}
	days := math.Floor(v)

	// excelize reads small serials through a Julian calendar path; the
	// first two months are resolved here instead.
	if days <= 61 {
		if date1904 {
			return time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(days)).Format(ISOLayout), true
		}
		switch {
		case days < 60:
			return time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(days)).Format(ISOLayout), true
		case days == 60:
			// 1900-02-29 does not exist; spreadsheets still count it.
			return "1900-02-28", true
		default:
			return time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(days)).Format(ISOLayout), true
		}
	}

	t, err := excelize.ExcelDateToTime(days, date1904)
	if err != nil {
		return "", false
	}
	return t.Format(ISOLayout), true
}

// IsValidCalendarDate reports whether iso is a YYYY-MM-DD string naming a
// real calendar day.
func IsValidCalendarDate(iso string) bool {
	if !isoPattern.MatchString(iso) {
		return false
	}
	t, err := time.Parse(ISOLayout, iso)
	if err != nil {
		return false
	}
	return t.Format(ISOLayout) == iso
}

// IsDateColumn reports whether a header label names a date-bearing column.
func IsDateColumn(label string) bool {
	for _, kw := range placeKeywords {
		if textnorm.MatchKeyword(label, kw) {
			return false
		}
	}
	for _, kw := range dateKeywords {
		if textnorm.MatchKeyword(label, kw) {
			return true
		}
	}
	return false
}

func compact(s string) (string, bool) {
	if iso, ok := composeStrict(s[4:8], s[2:4], s[0:2]); ok {
		return iso, true
	}
	return composeStrict(s[0:4], s[4:6], s[6:8])
}

func compose(year, month, day string) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
}

// composeStrict additionally bounds the year, for digit runs with no separators.
func composeStrict(year, month, day string) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil || y < 1800 || y > 2200 {
		return "", false
	}
	return compose(year, month, day)
}
