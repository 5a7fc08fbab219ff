package market

import (
	"fmt"
	"sort"
	"time"

	"stockCorrelation/internal/analysis"
)

// alignSeries merges per-symbol histories onto the union of their trading dates.
// A date one symbol did not trade on stays missing (NaN) in that column; the
// return engine decides what to do with incomplete rows.
func alignSeries(all []series) (*analysis.Table, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("no assets provided")
	}

	seen := make(map[time.Time]struct{})
	for _, s := range all {
		for _, o := range s.Observations {
			seen[o.Date] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rowOf := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		rowOf[d] = i
	}

	symbols := make([]string, len(all))
	for j, s := range all {
		symbols[j] = s.Symbol
	}

	table := analysis.NewTable(dates, symbols)
	for j, s := range all {
		for _, o := range s.Observations {
			table.Rows[rowOf[o.Date]][j] = o.Close
		}
	}
	return table, nil
}
