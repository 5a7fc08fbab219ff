package market

import (
	"math"
	"sort"
	"time"
)

// exchangeLocation resolves the exchange time zone, falling back to the fixed
// offset when tzdata is missing.
func exchangeLocation(name string, gmtOffset int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.FixedZone("exchange", gmtOffset)
}

// tradingDate truncates a bar timestamp to its calendar date on the exchange.
func tradingDate(ts int64, loc *time.Location) time.Time {
	y, m, d := time.Unix(ts, 0).In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// filterPositive keeps bars whose close is present and positive, keeping
// timestamps and values aligned. Bars are sorted by date and a later bar for the
// same date replaces an earlier one.
func filterPositive(ts []int64, cl []*float64, loc *time.Location) []observation {
	n := len(ts)
	if len(cl) < n {
		n = len(cl)
	}
	byDate := make(map[time.Time]float64, n)
	for i := 0; i < n; i++ {
		if cl[i] == nil {
			continue
		}
		v := *cl[i]
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		byDate[tradingDate(ts[i], loc)] = v
	}
	out := make([]observation, 0, len(byDate))
	for d, v := range byDate {
		out = append(out, observation{Date: d, Close: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
