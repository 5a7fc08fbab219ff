package charts

import (
	"bytes"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"stockCorrelation/internal/analysis"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func dates(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
	}
	return out
}

func TestCumulative(t *testing.T) {
	table := &analysis.Table{
		Dates:   dates(4),
		Symbols: []string{"AAPL", "MSFT"},
		Rows:    [][]float64{{1.01, 0.99}, {1.03, 0.98}, {1.02, 1.01}, {1.05, 1.04}},
	}
	img, err := Cumulative(table, Options{Width: 600, Height: 400})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = Cumulative(&analysis.Table{}, Options{})
	assert.Error(t, err)
}

func TestPortfolio(t *testing.T) {
	s := &analysis.Series{Name: "Portfolio Value", Dates: dates(3), Values: []float64{10100, 9950, 10400}}
	img, err := Portfolio(s, 10000, Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
	assert.Equal(t, "Total growth: 4.00% (final value 10400.00)", portfolioSubtitle(s, 10000))

	_, err = Portfolio(&analysis.Series{}, 10000, Options{})
	assert.Error(t, err)
}

func TestHeatmap(t *testing.T) {
	m := &analysis.CorrelationMatrix{
		Symbols: []string{"AAPL", "MSFT", "GOOG"},
		Values:  mat.NewSymDense(3, []float64{1, 0.8, -0.2, 0.8, 1, math.NaN(), -0.2, math.NaN(), 1}),
	}
	img, err := Heatmap(m, Options{Width: 500})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = Heatmap(&analysis.CorrelationMatrix{}, Options{})
	assert.Error(t, err)
}

func TestHeatmap_FollowsHeight(t *testing.T) {
	m := &analysis.CorrelationMatrix{
		Symbols: []string{"AAPL", "MSFT"},
		Values:  mat.NewSymDense(2, []float64{1, 0.5, 0.5, 1}),
	}
	height := func(h int) int {
		img, err := Heatmap(m, Options{Width: 400, Height: h})
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(bytes.NewReader(img))
		require.NoError(t, err)
		return cfg.Height
	}
	assert.Greater(t, height(900), height(300))
}

func TestCellPadding(t *testing.T) {
	assert.Equal(t, 94, cellPadding(600, 3))
	assert.Equal(t, minCellPadding, cellPadding(60, 3))
}

func TestCoolWarm(t *testing.T) {
	assert.Equal(t, coolColor, coolWarm(-1))
	assert.Equal(t, neutralColor, coolWarm(0))
	assert.Equal(t, warmColor, coolWarm(1))
	assert.Equal(t, warmColor, coolWarm(3))
}

func TestPaddedRange(t *testing.T) {
	lo, hi := paddedRange([]float64{100, 200})
	assert.InDelta(t, 95, lo, 1e-9)
	assert.InDelta(t, 205, hi, 1e-9)

	lo, hi = paddedRange([]float64{50, 50})
	assert.InDelta(t, 47.5, lo, 1e-9)
	assert.InDelta(t, 52.5, hi, 1e-9)
}
