// Package report produces the fixed-path artifacts of a batch run.
package report

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"stockCorrelation/internal/analysis"
	"stockCorrelation/internal/charts"
	"stockCorrelation/internal/export"
)

// Artifact file names, relative to the data and plots directories.
const (
	PricesFile     = "multi_stock_prices.csv"
	PortfolioFile  = "portfolio_value.csv"
	CumulativePlot = "multi_cumulative_returns.png"
	HeatmapPlot    = "correlation_matrix.png"
	PortfolioPlot  = "portfolio_growth.png"
)

// Batch runs the pipeline once and writes every artifact.
type Batch struct {
	Source   analysis.Source
	DataDir  string
	PlotsDir string
	Charts   charts.Options
	Log      zerolog.Logger
}

// Output lists the files written by a run.
type Output struct {
	Result *analysis.Result
	Files  []string
}

// Run computes the analysis for p and writes CSV and PNG files.
func (b *Batch) Run(ctx context.Context, p analysis.Params) (*Output, error) {
	log := b.Log.With().Str("component", "batch").Logger()
	log.Info().
		Strs("tickers", p.Tickers).
		Str("start", p.Start.Format(analysis.DateLayout)).
		Str("end", p.End.Format(analysis.DateLayout)).
		Msg("analysis started")

	res, err := analysis.Run(ctx, b.Source, p)
	if err != nil {
		return nil, err
	}
	out := &Output{Result: res}

	pricesPath := filepath.Join(b.DataDir, PricesFile)
	if err := export.SaveTable(pricesPath, res.Prices); err != nil {
		return nil, err
	}
	out.Files = append(out.Files, pricesPath)

	portfolioPath := filepath.Join(b.DataDir, PortfolioFile)
	if err := export.SaveSeries(portfolioPath, res.Portfolio); err != nil {
		return nil, err
	}
	out.Files = append(out.Files, portfolioPath)

	plots := []struct {
		name   string
		render func() ([]byte, error)
	}{
		{CumulativePlot, func() ([]byte, error) { return charts.Cumulative(res.Cumulative, b.Charts) }},
		{HeatmapPlot, func() ([]byte, error) { return charts.Heatmap(res.Correlation, b.Charts) }},
		{PortfolioPlot, func() ([]byte, error) { return charts.Portfolio(res.Portfolio, res.Params.Initial, b.Charts) }},
	}
	for _, plot := range plots {
		img, err := plot.render()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", plot.name, err)
		}
		path := filepath.Join(b.PlotsDir, plot.name)
		if err := export.WriteFile(path, img); err != nil {
			return nil, err
		}
		out.Files = append(out.Files, path)
	}

	s := res.Summary
	log.Info().
		Float64("mean_daily_return", s.MeanDailyReturn).
		Float64("total_growth_pct", s.TotalGrowthPct).
		Float64("final_value", s.FinalValue).
		Int("return_days", s.ReturnDays).
		Msg("analysis finished")
	for _, f := range out.Files {
		log.Info().Str("path", f).Msg("wrote artifact")
	}
	return out, nil
}
