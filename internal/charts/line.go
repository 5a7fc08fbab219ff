// Package charts renders analysis results as PNG images.
package charts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vicanso/go-charts/v2"

	"stockCorrelation/internal/analysis"
)

// Options sizes rendered images. Zero values fall back to the defaults.
type Options struct {
	Width  int
	Height int
}

const (
	defaultWidth  = 1000
	defaultHeight = 500
)

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// Cumulative draws one line per instrument of cumulative return factors.
func Cumulative(t *analysis.Table, o Options) ([]byte, error) {
	if t == nil || t.Len() == 0 || len(t.Symbols) == 0 {
		return nil, errors.New("no cumulative returns to plot")
	}
	values := make([][]float64, len(t.Symbols))
	for j := range t.Symbols {
		values[j] = t.Column(j)
	}
	yMin, yMax := paddedRange(values...)
	xLabels := dateLabels(t.Dates)
	w, h := o.size()

	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = t.Symbols[i]
	}
	painter, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc("Cumulative Returns", strings.Join(t.Symbols, ", ")),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: xLabels, BoundaryGap: charts.FalseFlag(), SplitNumber: splitNumber(len(xLabels))}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: t.Symbols}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(w),
		charts.HeightOptionFunc(h),
		charts.PNGTypeOption(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return painter.Bytes()
}

// Portfolio draws the portfolio value line with the total growth over the
// initial investment as subtitle.
func Portfolio(s *analysis.Series, initial float64, o Options) ([]byte, error) {
	if s == nil || len(s.Values) == 0 {
		return nil, errors.New("no portfolio values to plot")
	}
	yMin, yMax := paddedRange(s.Values)
	xLabels := dateLabels(s.Dates)
	w, h := o.size()

	subtitle := portfolioSubtitle(s, initial)
	p, err := charts.LineRender(
		[][]float64{s.Values},
		charts.TitleTextOptionFunc("Portfolio Growth", subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: splitNumber(len(xLabels)),
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(w),
		charts.HeightOptionFunc(h),
		charts.PNGTypeOption(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return p.Bytes()
}

func portfolioSubtitle(s *analysis.Series, initial float64) string {
	last := s.Last()
	return fmt.Sprintf("Total growth: %.2f%% (final value %.2f)", (last/initial-1)*100, last)
}

// paddedRange returns the y axis bounds with 5% padding on both sides.
func paddedRange(values ...[]float64) (float64, float64) {
	first := true
	var minVal, maxVal float64
	for _, vs := range values {
		for _, v := range vs {
			if first {
				minVal, maxVal = v, v
				first = false
				continue
			}
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
	}
	padding := (maxVal - minVal) * 0.05
	if padding == 0 {
		padding = maxVal * 0.05
	}
	if padding == 0 {
		padding = 1
	}
	return minVal - padding, maxVal + padding
}

func dateLabels(dates []time.Time) []string {
	layout := "Jan 02"
	if len(dates) > 0 && dates[len(dates)-1].Sub(dates[0]) > 180*24*time.Hour {
		layout = "Jan '06"
	}
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(layout)
	}
	return out
}

func splitNumber(n int) int {
	if n > 30 {
		return 6
	}
	split := n / 3
	if split < 3 {
		split = 3
	}
	return split
}
