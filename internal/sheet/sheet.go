// Package sheet decodes uploaded spreadsheet bytes into a grid of typed cells.
package sheet

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/case-import-api/internal/dates"
)

// Kind is the storage type of a decoded cell.
type Kind int

const (
	Empty Kind = iota
	Text
	Number
)

// Cell is one decoded value with its storage type.
type Cell struct {
	Value string
	Kind  Kind
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == Empty || strings.TrimSpace(c.Value) == ""
}

// Grid is the decoded first sheet of a workbook.
type Grid struct {
	Rows     [][]Cell
	Date1904 bool
}

// Encoding returns the date encoding hint for a cell of g.
func (g *Grid) Encoding(c Cell) dates.Encoding {
	if c.Kind != Number {
		return dates.Text
	}
	if g.Date1904 {
		return dates.Serial1904
	}
	return dates.Serial1900
}

// Format identifies a supported file layout.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ErrUnsupportedFormat is returned for files that are neither workbooks nor delimited text.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Decoder turns raw file bytes into a grid.
type Decoder interface {
	Decode(name string, data []byte) (*Grid, error)
}

// FileDecoder dispatches on file extension, sniffing content when the
// extension is unknown.
type FileDecoder struct{}

// NewDecoder creates a FileDecoder.
func NewDecoder() *FileDecoder {
	return &FileDecoder{}
}

var zipMagic = []byte("PK\x03\x04")

// Decode implements Decoder.
func (d *FileDecoder) Decode(name string, data []byte) (*Grid, error) {
	switch DetectFormat(name, data) {
	case FormatXLSX:
		return decodeXLSX(data)
	case FormatCSV:
		return decodeCSV(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// DetectFormat picks a format from the file extension, then from content.
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv", ".txt":
		return FormatCSV
	case ".xls":
		return ""
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// SupportedExtension reports whether name carries an extension the decoder accepts.
func SupportedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".csv", ".txt":
		return true
	}
	return false
}
