package charts

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/vicanso/go-charts/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"stockCorrelation/internal/analysis"
)

// Heatmap draws the correlation matrix as an annotated grid, each cell coloured
// on a cool to warm scale over [-1, 1].
func Heatmap(m *analysis.CorrelationMatrix, o Options) ([]byte, error) {
	rows := m.Rows()
	if len(rows) == 0 {
		return nil, errors.New("empty correlation matrix")
	}
	header := append([]string{""}, m.Symbols...)
	data := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row)+1)
		cells[0] = m.Symbols[i]
		for j, v := range row {
			cells[j+1] = formatCorrelation(v)
		}
		data[i] = cells
	}
	w, h := o.size()
	// the table has no height of its own; rows are padded to approximate h
	pad := cellPadding(h, len(data)+1)

	p, err := charts.TableOptionRender(charts.TableChartOption{
		Type:     charts.ChartOutputPNG,
		Width:    w,
		Header:   header,
		Data:     data,
		FontSize: heatmapFontSize,
		Padding:  charts.Box{Top: pad, Bottom: pad, Left: 10, Right: 10},
		CellStyle: func(cell charts.TableCell) *charts.Style {
			if cell.Column == 0 {
				return nil
			}
			v, err := strconv.ParseFloat(cell.Text, 64)
			if err != nil {
				return nil
			}
			return &charts.Style{FillColor: coolWarm(v)}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render heatmap: %w", err)
	}
	return p.Bytes()
}

const (
	heatmapFontSize = 12
	minCellPadding  = 10
)

// cellPadding returns the vertical padding that spreads rows over height.
func cellPadding(height, rows int) int {
	pad := (height/rows - heatmapFontSize) / 2
	if pad < minCellPadding {
		return minCellPadding
	}
	return pad
}

func formatCorrelation(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var (
	coolColor    = drawing.Color{R: 59, G: 76, B: 192, A: 255}
	neutralColor = drawing.Color{R: 221, G: 221, B: 221, A: 255}
	warmColor    = drawing.Color{R: 180, G: 4, B: 38, A: 255}
)

// coolWarm maps -1 to blue, 0 to grey and 1 to red.
func coolWarm(v float64) drawing.Color {
	v = math.Max(-1, math.Min(1, v))
	if v < 0 {
		return blend(neutralColor, coolColor, -v)
	}
	return blend(neutralColor, warmColor, v)
}

func blend(from, to drawing.Color, t float64) drawing.Color {
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return drawing.Color{R: mix(from.R, to.R), G: mix(from.G, to.G), B: mix(from.B, to.B), A: 255}
}
