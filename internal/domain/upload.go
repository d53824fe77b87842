package domain

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// CSV upload
// ============================================================

// SkippedRow is a CSV line the backend could not import.
// Errors is kept raw: the backend sends either a string or a list of validation errors.
type SkippedRow struct {
	Row    int             `json:"row"`
	Errors json.RawMessage `json:"errors,omitempty"`
}

// UploadResult is the POST /upload/ response.
type UploadResult struct {
	Message       string       `json:"message,omitempty"`
	ImportedCount int          `json:"imported_count"`
	SkippedRows   []SkippedRow `json:"skipped_rows"`
}

// SkippedCount is the number of rows the backend rejected.
func (r UploadResult) SkippedCount() int {
	return len(r.SkippedRows)
}

// Summary is the user-facing outcome line for an upload.
func (r UploadResult) Summary() string {
	return fmt.Sprintf("File processed! Imported: %d, Skipped: %d", r.ImportedCount, r.SkippedCount())
}
