package analysis

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// weightSumTolerance bounds |sum(weights) - 1| for a valid allocation.
const weightSumTolerance = 1e-6

// Validate checks that w holds one weight per instrument and is fully allocated.
func (w Weights) Validate(n int) error {
	if len(w) != n {
		return fmt.Errorf("%w: got %d weights for %d tickers", ErrWeightCount, len(w), n)
	}
	for i, x := range w {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: weight %d is %v", ErrMalformedWeights, i+1, x)
		}
	}
	// written so that a NaN sum fails
	if sum := w.Sum(); !(math.Abs(sum-1) <= weightSumTolerance) {
		return fmt.Errorf("%w: sum is %.6f", ErrWeightSum, sum)
	}
	return nil
}

// PortfolioValue simulates a buy-and-rebalance-daily portfolio.
// Weights are matched to return columns by position, not by symbol. Only the weight
// count is checked here; callers that need a fully allocated portfolio use Validate.
func PortfolioValue(returns *Table, w Weights, initial float64) (*Series, error) {
	if len(w) != len(returns.Symbols) {
		return nil, fmt.Errorf("%w: got %d weights for %d tickers", ErrWeightCount, len(w), len(returns.Symbols))
	}

	values := make([]float64, returns.Len())
	growth := 1.0
	for i, row := range returns.Rows {
		weighted := 0.0
		for j, r := range row {
			weighted += w[j] * r
		}
		growth *= 1 + weighted
		values[i] = growth * initial
	}

	return &Series{
		Name:   "Portfolio Value",
		Dates:  append([]time.Time(nil), returns.Dates...),
		Values: values,
	}, nil
}

// Summarize computes the headline statistics of a run.
func Summarize(returns *Table, portfolio *Series, initial float64) Summary {
	all := make([]float64, 0, returns.Len()*len(returns.Symbols))
	for _, row := range returns.Rows {
		all = append(all, row...)
	}

	s := Summary{
		MeanDailyReturn: math.NaN(),
		TotalGrowthPct:  math.NaN(),
		FinalValue:      portfolio.Last(),
		ReturnDays:      returns.Len(),
	}
	if len(all) > 0 {
		s.MeanDailyReturn = stat.Mean(all, nil)
	}
	if len(portfolio.Values) > 0 && initial > 0 {
		s.TotalGrowthPct = (portfolio.Last()/initial - 1) * 100
	}
	if returns.Len() > 0 {
		s.FirstDate = returns.Dates[0]
		s.LastDate = returns.Dates[returns.Len()-1]
	}
	return s
}
