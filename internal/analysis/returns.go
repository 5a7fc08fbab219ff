package analysis

import (
	"fmt"
	"math"
	"time"
)

// DailyReturns converts prices into day-over-day fractional changes.
// The first date has no baseline and never appears in the output. Any row with a
// missing value, in either day of the pair, is dropped rather than filled.
func DailyReturns(prices *Table) (*Table, error) {
	if prices == nil || prices.Len() < 2 {
		n := 0
		if prices != nil {
			n = prices.Len()
		}
		return nil, fmt.Errorf("daily returns from %d rows: %w", n, ErrInsufficientHistory)
	}

	out := &Table{Symbols: prices.Symbols}
	for i := 1; i < prices.Len(); i++ {
		prev, cur := prices.Rows[i-1], prices.Rows[i]
		row := make([]float64, len(prices.Symbols))
		complete := true
		for j := range row {
			r := cur[j]/prev[j] - 1
			if math.IsNaN(r) || math.IsInf(r, 0) {
				complete = false
				break
			}
			row[j] = r
		}
		if !complete {
			continue
		}
		out.Dates = append(out.Dates, prices.Dates[i])
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// CumulativeReturns compounds each return column independently.
// The first value is 1+r of the first return row, so growth is measured from the
// first price day rather than normalised to 1.0 on the first return day.
func CumulativeReturns(returns *Table) *Table {
	out := &Table{
		Dates:   append([]time.Time(nil), returns.Dates...),
		Symbols: returns.Symbols,
		Rows:    make([][]float64, returns.Len()),
	}
	growth := make([]float64, len(returns.Symbols))
	for j := range growth {
		growth[j] = 1
	}
	for i, row := range returns.Rows {
		cum := make([]float64, len(row))
		for j, r := range row {
			growth[j] *= 1 + r
			cum[j] = growth[j]
		}
		out.Rows[i] = cum
	}
	return out
}
