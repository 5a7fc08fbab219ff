package server

import (
	"net/http"
	"net/url"

	"stockCorrelation/internal/analysis"
)

// formFromRequest reads the query, falling back to the defaults for fields
// that are absent.
func (s *Server) formFromRequest(r *http.Request) analysis.RawParams {
	f := s.defaults.Raw()
	q := r.URL.Query()
	pick := func(key string, dst *string) {
		if vs, ok := q[key]; ok && len(vs) > 0 {
			*dst = vs[0]
		}
	}
	pick("tickers", &f.Tickers)
	pick("start", &f.Start)
	pick("end", &f.End)
	pick("weights", &f.Weights)
	pick("initial", &f.Initial)
	return f
}

// formQuery encodes the form for download and chart links.
func formQuery(f analysis.RawParams) string {
	v := url.Values{}
	v.Set("tickers", f.Tickers)
	v.Set("start", f.Start)
	v.Set("end", f.End)
	v.Set("weights", f.Weights)
	v.Set("initial", f.Initial)
	return v.Encode()
}
