package models

// ImportFile is one uploaded spreadsheet of a batch
type ImportFile struct {
	Name string
	Data []byte
}

// ColumnMapping maps a canonical field name to a source column label
type ColumnMapping map[string]string

// ImportProgress is reported before each file of a batch is processed
type ImportProgress struct {
	Current  int    `json:"current"`
	Total    int    `json:"total"`
	FileName string `json:"fileName"`
}

// ProgressFunc receives batch progress notifications
type ProgressFunc func(ImportProgress)

// FileResult is the per-file account of a batch import
type FileResult struct {
	FileName  string `json:"fileName"`
	TotalRows int    `json:"totalRows"`
	Imported  int    `json:"imported"`
	Errors    int    `json:"errors"`
	Error     string `json:"error,omitempty"`
}

// ImportRunResult is the aggregate account of a batch import
type ImportRunResult struct {
	TotalRows int          `json:"totalRows"`
	Imported  int          `json:"imported"`
	Errors    int          `json:"errors"`
	Files     []FileResult `json:"files"`
}

// Add folds a file result into the aggregate counters
func (r *ImportRunResult) Add(f FileResult) {
	r.TotalRows += f.TotalRows
	r.Imported += f.Imported
	r.Errors += f.Errors
	r.Files = append(r.Files, f)
}
