package server

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"math"
	"net/http"

	"stockCorrelation/internal/analysis"
	"stockCorrelation/internal/charts"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").
	Funcs(template.FuncMap{"pct": func(v float64) float64 { return v * 100 }}).
	ParseFS(templateFS, "templates/index.html"))

const previewRows = 5

type pageData struct {
	Form   analysis.RawParams
	Error  string
	Result *resultView
}

type resultView struct {
	Summary     analysis.Summary
	Header      []string
	LastPrices  [][]string
	Cumulative  template.URL
	Correlation template.URL
	Portfolio   template.URL
	PricesCSV   template.URL
	ValueCSV    template.URL
}

func newResultView(res *analysis.Result, form analysis.RawParams, o charts.Options) (*resultView, error) {
	v := &resultView{
		Summary: res.Summary,
		Header:  append([]string{"Date"}, res.Prices.Symbols...),
	}
	q := formQuery(form)
	v.PricesCSV = template.URL("/download/stock_prices.csv?" + q)
	v.ValueCSV = template.URL("/download/portfolio_value.csv?" + q)
	tail := res.Prices.Tail(previewRows)
	for i, d := range tail.Dates {
		row := []string{d.Format(analysis.DateLayout)}
		for _, p := range tail.Rows[i] {
			if math.IsNaN(p) {
				row = append(row, "")
				continue
			}
			row = append(row, fmt.Sprintf("%.2f", p))
		}
		v.LastPrices = append(v.LastPrices, row)
	}

	for name, dst := range map[string]*template.URL{
		"cumulative":  &v.Cumulative,
		"correlation": &v.Correlation,
		"portfolio":   &v.Portfolio,
	} {
		img, err := chartRenderers[name](res, o)
		if err != nil {
			return nil, fmt.Errorf("%s chart: %w", name, err)
		}
		*dst = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(img))
	}
	return v, nil
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.log.Error().Err(err).Msg("render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
