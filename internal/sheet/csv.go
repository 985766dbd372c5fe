package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var candidateDelimiters = []rune{';', ',', '\t'}

func decodeCSV(data []byte) (*Grid, error) {
	text, err := toUTF8(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	grid := &Grid{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		cells := make([]Cell, len(record))
		for i, v := range record {
			if v != "" {
				cells[i] = Cell{Value: v, Kind: Text}
			}
		}
		grid.Rows = append(grid.Rows, cells)
	}
	return grid, nil
}

// toUTF8 honours a byte order mark and falls back to Windows-1252 for
// input that is not valid UTF-8, the usual output of European spreadsheet
// exports.
func toUTF8(data []byte) ([]byte, error) {
	hasBOM := bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF})

	if !hasBOM && !utf8.Valid(data) {
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode windows-1252 text: %w", err)
		}
		return out, nil
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode text: %w", err)
	}
	return out, nil
}

// sniffDelimiter counts candidate separators outside quotes on the first
// non-empty line.
func sniffDelimiter(text []byte) rune {
	line := text
	for len(line) > 0 {
		end := bytes.IndexByte(line, '\n')
		if end < 0 {
			break
		}
		if len(bytes.TrimSpace(line[:end])) > 0 {
			line = line[:end]
			break
		}
		line = line[end+1:]
	}

	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		count, quoted := 0, false
		for _, r := range string(line) {
			switch {
			case r == '"':
				quoted = !quoted
			case r == d && !quoted:
				count++
			}
		}
		if count > bestCount {
			best, bestCount = d, count
		}
	}
	return best
}
