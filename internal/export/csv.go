// Package export writes analysis tables and series as CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"stockCorrelation/internal/analysis"
)

// WriteTable writes t with a Date column followed by one column per symbol.
// Missing cells are written empty.
func WriteTable(w io.Writer, t *analysis.Table) error {
	cw := csv.NewWriter(w)
	header := append([]string{"Date"}, t.Symbols...)
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for i, d := range t.Dates {
		rec[0] = d.Format(analysis.DateLayout)
		for j, v := range t.Rows[i] {
			rec[j+1] = formatFloat(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSeries writes s as a two column Date,<name> file.
func WriteSeries(w io.Writer, s *analysis.Series) error {
	if len(s.Dates) != len(s.Values) {
		return fmt.Errorf("series %q: %d dates for %d values", s.Name, len(s.Dates), len(s.Values))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", s.Name}); err != nil {
		return err
	}
	for i, d := range s.Dates {
		if err := cw.Write([]string{d.Format(analysis.DateLayout), formatFloat(s.Values[i])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func TableBytes(t *analysis.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func SeriesBytes(s *analysis.Series) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSeries(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveTable writes t to path, creating parent directories.
func SaveTable(path string, t *analysis.Table) error {
	b, err := TableBytes(t)
	if err != nil {
		return err
	}
	return WriteFile(path, b)
}

// SaveSeries writes s to path, creating parent directories.
func SaveSeries(path string, s *analysis.Series) error {
	b, err := SeriesBytes(s)
	if err != nil {
		return err
	}
	return WriteFile(path, b)
}

// WriteFile stores raw bytes under path, creating parent directories.
func WriteFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
