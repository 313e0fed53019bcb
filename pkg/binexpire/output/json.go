package output

import (
	"bytes"
	"encoding/json"
)

// jsonScan adds the formatted elapsed time to a scan report.
type jsonScan struct {
	ScanReport
	Elapsed string `json:"elapsed"`
}

// JSONFormatter formats each report as a single indented JSON document.
type JSONFormatter struct{}

// FormatScan writes the scan report.
func (f *JSONFormatter) FormatScan(w *bytes.Buffer, r *ScanReport) error {
	return encodeJSON(w, jsonScan{ScanReport: *r, Elapsed: r.Elapsed.String()})
}

// FormatArchive writes the archive report.
func (f *JSONFormatter) FormatArchive(w *bytes.Buffer, r *ArchiveReport) error {
	return encodeJSON(w, r)
}

// FormatHistory writes the history report.
func (f *JSONFormatter) FormatHistory(w *bytes.Buffer, r *HistoryReport) error {
	return encodeJSON(w, r)
}

func encodeJSON(w *bytes.Buffer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

var _ Formatter = (*JSONFormatter)(nil)
