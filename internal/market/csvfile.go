package market

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"stockCorrelation/internal/analysis"
)

// CSVFile serves prices from a file in the export layout:
// a Date column followed by one close column per symbol.
type CSVFile struct {
	Path string
}

// NewCSVFile creates a file backed source.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{Path: path}
}

// Fetch reads the file and selects the requested tickers within [start, end).
func (c *CSVFile) Fetch(_ context.Context, tickers []string, start, end time.Time) (*analysis.Table, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("open prices: %w", err)
	}
	defer f.Close()

	full, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.Path, err)
	}

	all := make([]series, 0, len(tickers))
	for _, symbol := range tickers {
		j := full.Index(symbol)
		if j < 0 {
			return nil, fmt.Errorf("%s: %w in %s", symbol, ErrNoData, c.Path)
		}
		s := series{Symbol: symbol}
		for i, d := range full.Dates {
			v := full.Rows[i][j]
			if d.Before(start) || !d.Before(end) || math.IsNaN(v) || v <= 0 {
				continue
			}
			s.Observations = append(s.Observations, observation{Date: d, Close: v})
		}
		if len(s.Observations) == 0 {
			return nil, fmt.Errorf("%s: %w between %s and %s", symbol, ErrNoData, start.Format(analysis.DateLayout), end.Format(analysis.DateLayout))
		}
		all = append(all, s)
	}
	return alignSeries(all)
}

// ReadTable decodes a price table written by the export package. Empty cells
// are missing observations.
func ReadTable(r io.Reader) (*analysis.Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("header needs a date column and at least one symbol, got %d columns", len(header))
	}
	symbols := make([]string, len(header)-1)
	for j, h := range header[1:] {
		symbols[j] = strings.TrimSpace(h)
	}

	t := &analysis.Table{Symbols: symbols}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		d, err := time.Parse(analysis.DateLayout, strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", line, rec[0])
		}
		row := make([]float64, len(symbols))
		for j, cell := range rec[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				row[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, symbols[j], err)
			}
			row[j] = v
		}
		t.Dates = append(t.Dates, d)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
