package output

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

type yamlScan struct {
	ScanReport `yaml:",inline"`
	Elapsed    string `yaml:"elapsed"`
}

// YAMLFormatter formats each report as a YAML document.
type YAMLFormatter struct{}

// FormatScan writes the scan report.
func (f *YAMLFormatter) FormatScan(w *bytes.Buffer, r *ScanReport) error {
	return encodeYAML(w, yamlScan{ScanReport: *r, Elapsed: r.Elapsed.String()})
}

// FormatArchive writes the archive report.
func (f *YAMLFormatter) FormatArchive(w *bytes.Buffer, r *ArchiveReport) error {
	return encodeYAML(w, r)
}

// FormatHistory writes the history report.
func (f *YAMLFormatter) FormatHistory(w *bytes.Buffer, r *HistoryReport) error {
	return encodeYAML(w, r)
}

func encodeYAML(w *bytes.Buffer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

var _ Formatter = (*YAMLFormatter)(nil)
