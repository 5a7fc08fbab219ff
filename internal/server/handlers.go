package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"stockCorrelation/internal/analysis"
	"stockCorrelation/internal/charts"
	"stockCorrelation/internal/export"
)

const portfolioFailure = "could not compute portfolio with the given weights"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, pageData{Form: s.defaults.Raw()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	form := s.formFromRequest(r)
	res, status, msg := s.analyze(r, form)
	if res == nil {
		s.render(w, status, pageData{Form: form, Error: msg})
		return
	}
	view, err := newResultView(res, form, s.charts)
	if err != nil {
		s.log.Error().Err(err).Msg("render charts")
		s.render(w, http.StatusInternalServerError, pageData{Form: form, Error: "could not render charts"})
		return
	}
	s.render(w, http.StatusOK, pageData{Form: form, Result: view})
}

func (s *Server) handleDownloadPrices(w http.ResponseWriter, r *http.Request) {
	res, status, msg := s.analyze(r, s.formFromRequest(r))
	if res == nil {
		http.Error(w, msg, status)
		return
	}
	b, err := export.TableBytes(res.Prices)
	s.attachment(w, "stock_prices.csv", b, err)
}

func (s *Server) handleDownloadPortfolio(w http.ResponseWriter, r *http.Request) {
	res, status, msg := s.analyze(r, s.formFromRequest(r))
	if res == nil {
		http.Error(w, msg, status)
		return
	}
	b, err := export.SeriesBytes(res.Portfolio)
	s.attachment(w, "portfolio_value.csv", b, err)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".png")
	if !ok {
		http.NotFound(w, r)
		return
	}
	render, ok := chartRenderers[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	res, status, msg := s.analyze(r, s.formFromRequest(r))
	if res == nil {
		http.Error(w, msg, status)
		return
	}
	img, err := render(res, s.charts)
	if err != nil {
		s.log.Error().Err(err).Str("chart", name).Msg("render chart")
		http.Error(w, "could not render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	res, status, msg := s.analyze(r, s.formFromRequest(r))
	if res == nil {
		s.writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	s.writeJSON(w, http.StatusOK, newAnalysisResponse(res))
}

// analyze runs the pipeline for the submitted form. On failure it returns the
// HTTP status and the message to show.
func (s *Server) analyze(r *http.Request, form analysis.RawParams) (*analysis.Result, int, string) {
	p, err := analysis.ParseParams(form)
	if err == nil {
		var res *analysis.Result
		res, err = analysis.Run(r.Context(), s.source, p)
		if err == nil {
			return res, http.StatusOK, ""
		}
	}
	switch {
	case analysis.IsInputError(err):
		return nil, http.StatusBadRequest, err.Error()
	case analysis.IsDataError(err):
		s.log.Warn().Err(err).Msg("analysis failed")
		return nil, http.StatusBadGateway, err.Error()
	default:
		s.log.Error().Err(err).Msg("analysis failed")
		return nil, http.StatusInternalServerError, portfolioFailure
	}
}

func (s *Server) attachment(w http.ResponseWriter, name string, b []byte, err error) {
	if err != nil {
		s.log.Error().Err(err).Str("file", name).Msg("encode csv")
		http.Error(w, "could not encode "+name, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

var chartRenderers = map[string]func(*analysis.Result, charts.Options) ([]byte, error){
	"cumulative": func(res *analysis.Result, o charts.Options) ([]byte, error) {
		return charts.Cumulative(res.Cumulative, o)
	},
	"correlation": func(res *analysis.Result, o charts.Options) ([]byte, error) {
		return charts.Heatmap(res.Correlation, o)
	},
	"portfolio": func(res *analysis.Result, o charts.Options) ([]byte, error) {
		return charts.Portfolio(res.Portfolio, res.Params.Initial, o)
	},
}

type summaryResponse struct {
	MeanDailyReturn float64 `json:"mean_daily_return"`
	TotalGrowthPct  float64 `json:"total_growth_pct"`
	FinalValue      float64 `json:"final_value"`
	ReturnDays      int     `json:"return_days"`
	FirstDate       string  `json:"first_date"`
	LastDate        string  `json:"last_date"`
}

type correlationResponse struct {
	Symbols []string     `json:"symbols"`
	Values  [][]*float64 `json:"values"` // null where undefined
}

type pointResponse struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type analysisResponse struct {
	Tickers     []string            `json:"tickers"`
	Start       string              `json:"start"`
	End         string              `json:"end"`
	Weights     []float64           `json:"weights"`
	Initial     float64             `json:"initial"`
	Summary     summaryResponse     `json:"summary"`
	Correlation correlationResponse `json:"correlation"`
	Portfolio   []pointResponse     `json:"portfolio"`
}

func newAnalysisResponse(res *analysis.Result) analysisResponse {
	p, sum := res.Params, res.Summary
	out := analysisResponse{
		Tickers: p.Tickers,
		Start:   p.Start.Format(analysis.DateLayout),
		End:     p.End.Format(analysis.DateLayout),
		Weights: p.Weights,
		Initial: p.Initial,
		Summary: summaryResponse{
			MeanDailyReturn: sum.MeanDailyReturn,
			TotalGrowthPct:  sum.TotalGrowthPct,
			FinalValue:      sum.FinalValue,
			ReturnDays:      sum.ReturnDays,
			FirstDate:       sum.FirstDate.Format(analysis.DateLayout),
			LastDate:        sum.LastDate.Format(analysis.DateLayout),
		},
		Correlation: correlationResponse{Symbols: res.Correlation.Symbols},
	}
	for _, row := range res.Correlation.Rows() {
		cells := make([]*float64, len(row))
		for j, v := range row {
			if !math.IsNaN(v) {
				v := v
				cells[j] = &v
			}
		}
		out.Correlation.Values = append(out.Correlation.Values, cells)
	}
	for i, d := range res.Portfolio.Dates {
		out.Portfolio = append(out.Portfolio, pointResponse{Date: d.Format(analysis.DateLayout), Value: res.Portfolio.Values[i]})
	}
	return out
}

// writeJSON encodes v before writing the status, so an unencodable value
// (NaN, Inf) turns into a 500 with an error body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Msg("encode json response")
		status = http.StatusInternalServerError
		b, _ = json.Marshal(map[string]string{"error": "could not encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}
