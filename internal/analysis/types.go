package analysis

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// DateLayout is the layout used for every date that enters or leaves the pipeline.
const DateLayout = "2006-01-02"

// Table is a date-indexed grid with one column per instrument.
// Rows[i][j] is the value for Dates[i] and Symbols[j]; NaN marks a missing observation.
type Table struct {
	Dates   []time.Time
	Symbols []string
	Rows    [][]float64
}

// NewTable allocates a table with every cell missing.
func NewTable(dates []time.Time, symbols []string) *Table {
	rows := make([][]float64, len(dates))
	for i := range rows {
		row := make([]float64, len(symbols))
		for j := range row {
			row[j] = math.NaN()
		}
		rows[i] = row
	}
	return &Table{Dates: dates, Symbols: symbols, Rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Dates) }

// Column copies the values of column j.
func (t *Table) Column(j int) []float64 {
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[j]
	}
	return out
}

// Index returns the column of symbol, or -1.
func (t *Table) Index(symbol string) int {
	for j, s := range t.Symbols {
		if s == symbol {
			return j
		}
	}
	return -1
}

// Tail returns a view of the last n rows.
func (t *Table) Tail(n int) *Table {
	if n >= t.Len() {
		return t
	}
	start := t.Len() - n
	return &Table{Dates: t.Dates[start:], Symbols: t.Symbols, Rows: t.Rows[start:]}
}

// Series is a single date-indexed value column.
type Series struct {
	Name   string
	Dates  []time.Time
	Values []float64
}

// Last returns the final value of the series.
func (s *Series) Last() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[len(s.Values)-1]
}

// CorrelationMatrix holds pairwise correlations of instrument returns.
type CorrelationMatrix struct {
	Symbols []string
	Values  *mat.SymDense
}

// At returns corr(i, j).
func (m *CorrelationMatrix) At(i, j int) float64 { return m.Values.At(i, j) }

// Rows returns the matrix as nested slices, row i being instrument i.
func (m *CorrelationMatrix) Rows() [][]float64 {
	n := len(m.Symbols)
	if m.Values == nil {
		return nil
	}
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			out[i][j] = m.Values.At(i, j)
		}
	}
	return out
}

// Weights holds one portfolio weight per instrument, aligned by position.
type Weights []float64

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// Source provides closing prices for a set of instruments.
// Dates are trading days in [start, end).
type Source interface {
	Fetch(ctx context.Context, tickers []string, start, end time.Time) (*Table, error)
}

// Params are the inputs of one analysis run.
type Params struct {
	Tickers []string
	Start   time.Time
	End     time.Time
	Weights Weights
	Initial float64
}

// Summary holds the headline statistics shown next to the charts.
type Summary struct {
	MeanDailyReturn float64 // across all instruments and days
	TotalGrowthPct  float64 // portfolio growth over the full series, in percent
	FinalValue      float64
	ReturnDays      int
	FirstDate       time.Time
	LastDate        time.Time
}

// Result bundles every entity derived by one run.
type Result struct {
	Params      Params
	Prices      *Table
	Returns     *Table
	Cumulative  *Table
	Correlation *CorrelationMatrix
	Portfolio   *Series
	Summary     Summary
}
