package analysis

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	table *Table
	err   error
	calls int
}

func (f *fakeSource) Fetch(_ context.Context, _ []string, _, _ time.Time) (*Table, error) {
	f.calls++
	return f.table, f.err
}

func samplePrices() *Table {
	return priceTable([]string{"AAPL", "MSFT", "GOOG"},
		[]float64{125.07, 126.36, 125.02, 129.62, 130.15, 130.73, 133.49},
		[]float64{239.58, 229.10, 222.31, 224.93, 227.12, 225.51, 235.20},
		[]float64{89.70, 88.71, 87.44, 88.16, 88.80, 89.24, 92.26},
	)
}

func TestRun_ComputesEveryEntity(t *testing.T) {
	src := &fakeSource{table: samplePrices()}
	p := DefaultParams()

	res, err := Run(context.Background(), src, p)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 6, res.Returns.Len())
	assert.Equal(t, 6, res.Cumulative.Len())
	assert.Len(t, res.Portfolio.Values, 6)
	assert.Equal(t, res.Returns.Symbols, res.Correlation.Symbols)
	assert.Equal(t, 6, res.Summary.ReturnDays)
	assert.InDelta(t, (res.Portfolio.Last()/p.Initial-1)*100, res.Summary.TotalGrowthPct, 1e-12)
}

func TestRun_Idempotent(t *testing.T) {
	src := &fakeSource{table: samplePrices()}

	first, err := Run(context.Background(), src, DefaultParams())
	require.NoError(t, err)
	second, err := Run(context.Background(), src, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, first.Returns, second.Returns)
	assert.Equal(t, first.Cumulative, second.Cumulative)
	assert.Equal(t, first.Portfolio, second.Portfolio)
	assert.Equal(t, first.Correlation.Rows(), second.Correlation.Rows())
	assert.Equal(t, first.Summary, second.Summary)
}

func TestRun_InvalidInputSkipsFetch(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr error
	}{
		{name: "end before start", mutate: func(p *Params) { p.End = p.Start }, wantErr: ErrDateRange},
		{name: "weight count", mutate: func(p *Params) { p.Weights = Weights{0.5, 0.5} }, wantErr: ErrWeightCount},
		{name: "weight sum", mutate: func(p *Params) { p.Weights = Weights{0.4, 0.4, 0.4} }, wantErr: ErrWeightSum},
		{name: "no tickers", mutate: func(p *Params) { p.Tickers = nil }, wantErr: ErrNoTickers},
		{name: "duplicate ticker", mutate: func(p *Params) { p.Tickers = []string{"AAPL", "AAPL", "GOOG"} }, wantErr: ErrDuplicateTicker},
		{name: "zero investment", mutate: func(p *Params) { p.Initial = 0 }, wantErr: ErrInitialInvestment},
		{name: "nan investment", mutate: func(p *Params) { p.Initial = math.NaN() }, wantErr: ErrInitialInvestment},
		{name: "infinite investment", mutate: func(p *Params) { p.Initial = math.Inf(1) }, wantErr: ErrInitialInvestment},
		{name: "nan weight", mutate: func(p *Params) { p.Weights = Weights{math.NaN(), 0.5, 0.5} }, wantErr: ErrMalformedWeights},
		{name: "infinite weights", mutate: func(p *Params) { p.Weights = Weights{math.Inf(1), math.Inf(-1), 1} }, wantErr: ErrMalformedWeights},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{table: samplePrices()}
			p := DefaultParams()
			tt.mutate(&p)

			_, err := Run(context.Background(), src, p)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsInputError(err))
			assert.Zero(t, src.calls)
		})
	}
}

func TestRun_FetchError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(context.Background(), &fakeSource{err: boom}, DefaultParams())

	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrFetch)
	assert.True(t, IsDataError(err))
	assert.False(t, IsInputError(err))
}

func TestRun_NoOverlap(t *testing.T) {
	nan := math.NaN()
	prices := priceTable([]string{"AAPL", "MSFT", "GOOG"},
		[]float64{100, nan, 102},
		[]float64{nan, 200, nan},
		[]float64{50, 51, 52},
	)

	_, err := Run(context.Background(), &fakeSource{table: prices}, DefaultParams())
	assert.ErrorIs(t, err, ErrNoOverlap)
	assert.True(t, IsDataError(err))
}

func TestRun_SingleDay(t *testing.T) {
	prices := priceTable([]string{"AAPL", "MSFT", "GOOG"}, []float64{1}, []float64{2}, []float64{3})

	_, err := Run(context.Background(), &fakeSource{table: prices}, DefaultParams())
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}
