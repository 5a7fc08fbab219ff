package analysis

import (
	"context"
	"fmt"
)

// Run executes one full analysis pass: validate, fetch, transform.
// Nothing is kept between calls; every invocation starts from the raw prices.
func Run(ctx context.Context, src Source, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	prices, err := src.Fetch(ctx, p.Tickers, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	returns, err := DailyReturns(prices)
	if err != nil {
		return nil, err
	}
	if returns.Len() == 0 {
		return nil, ErrNoOverlap
	}

	portfolio, err := PortfolioValue(returns, p.Weights, p.Initial)
	if err != nil {
		return nil, fmt.Errorf("portfolio value: %w", err)
	}

	return &Result{
		Params:      p,
		Prices:      prices,
		Returns:     returns,
		Cumulative:  CumulativeReturns(returns),
		Correlation: Correlation(returns),
		Portfolio:   portfolio,
		Summary:     Summarize(returns, portfolio, p.Initial),
	}, nil
}
