package market

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockCorrelation/internal/analysis"
)

// New York close is 16:00 EST = 21:00 UTC.
func nyClose(y int, m time.Month, d int) int64 {
	return time.Date(y, m, d, 21, 0, 0, 0, time.UTC).Unix()
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func chartBody(ts []int64, closes, adj string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = fmt.Sprint(t)
	}
	adjBlock := ""
	if adj != "" {
		adjBlock = fmt.Sprintf(`,"adjclose":[{"adjclose":[%s]}]`, adj)
	}
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"symbol":"X","gmtoffset":-18000,"exchangeTimezoneName":"America/New_York"},
		"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]%s}}],"error":null}}`,
		strings.Join(parts, ","), closes, adjBlock)
}

func quietLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func TestYahooFetch_AlignsSymbols(t *testing.T) {
	ts := []int64{nyClose(2023, 1, 3), nyClose(2023, 1, 4), nyClose(2023, 1, 5)}
	bodies := map[string]string{
		"AAPL": chartBody(ts, "125.0,126.3,125.0", "124.5,125.8,124.5"),
		"MSFT": chartBody(ts[1:], "229.1,222.3", ""),
	}

	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		gotQuery.Store(r.URL.RawQuery)
		_, _ = w.Write([]byte(bodies[symbol]))
	}))
	defer srv.Close()

	y := NewYahoo(YahooOptions{Hosts: []string{srv.URL}}, quietLogger())
	start, end := date(2023, 1, 1), date(2024, 1, 1)

	table, err := y.Fetch(context.Background(), []string{"AAPL", "MSFT"}, start, end)
	require.NoError(t, err)

	query, _ := gotQuery.Load().(string)
	assert.Contains(t, query, fmt.Sprintf("period1=%d", start.Unix()))
	assert.Contains(t, query, fmt.Sprintf("period2=%d", end.Unix()))
	assert.Contains(t, query, "interval=1d")

	assert.Equal(t, []string{"AAPL", "MSFT"}, table.Symbols)
	assert.Equal(t, []time.Time{date(2023, 1, 3), date(2023, 1, 4), date(2023, 1, 5)}, table.Dates)
	// adjusted close preferred when present
	assert.Equal(t, 124.5, table.Rows[0][0])
	assert.True(t, math.IsNaN(table.Rows[0][1]))
	assert.Equal(t, 229.1, table.Rows[1][1])
}

func TestYahooFetch_SkipsNullAndNonPositive(t *testing.T) {
	ts := []int64{nyClose(2023, 1, 3), nyClose(2023, 1, 4), nyClose(2023, 1, 5), nyClose(2023, 1, 6)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartBody(ts, "10,null,0,11", "")))
	}))
	defer srv.Close()

	y := NewYahoo(YahooOptions{Hosts: []string{srv.URL}}, quietLogger())
	table, err := y.Fetch(context.Background(), []string{"X"}, date(2023, 1, 1), date(2023, 2, 1))
	require.NoError(t, err)

	assert.Equal(t, []time.Time{date(2023, 1, 3), date(2023, 1, 6)}, table.Dates)
	assert.Equal(t, [][]float64{{10}, {11}}, table.Rows)
}

func TestYahooFetch_FailsOverHosts(t *testing.T) {
	var limited int32
	busy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&limited, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("Edge: Too Many Requests"))
	}))
	defer busy.Close()
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartBody([]int64{nyClose(2023, 1, 3), nyClose(2023, 1, 4)}, "1,2", "")))
	}))
	defer ok.Close()

	y := NewYahoo(YahooOptions{Hosts: []string{busy.URL, ok.URL}}, quietLogger())
	table, err := y.Fetch(context.Background(), []string{"X"}, date(2023, 1, 1), date(2023, 2, 1))
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&limited))
	assert.Equal(t, 2, table.Len())
}

func TestYahooFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown symbol",
			status:  http.StatusNotFound,
			body:    `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`,
			wantErr: ErrNoData,
		},
		{
			name:    "empty range",
			status:  http.StatusOK,
			body:    chartBody(nil, "", ""),
			wantErr: ErrNoData,
		},
		{name: "rate limited", status: http.StatusTooManyRequests, body: "Edge: Too Many Requests", wantMsg: "429"},
		{name: "html page", status: http.StatusOK, body: "<html>consent</html>", wantMsg: "non-json"},
		{name: "server error", status: http.StatusBadGateway, body: `{"chart":{}}`, wantMsg: "502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			y := NewYahoo(YahooOptions{Hosts: []string{srv.URL}}, quietLogger())
			_, err := y.Fetch(context.Background(), []string{"ZZZZ"}, date(2023, 1, 1), date(2024, 1, 1))

			require.Error(t, err)
			assert.Contains(t, err.Error(), "ZZZZ")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestYahooFetch_FeedsPipeline(t *testing.T) {
	ts := []int64{nyClose(2023, 1, 3), nyClose(2023, 1, 4), nyClose(2023, 1, 5)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/") {
		case "A":
			_, _ = w.Write([]byte(chartBody(ts, "100,110,121", "")))
		default:
			_, _ = w.Write([]byte(chartBody(ts, "50,49,51", "")))
		}
	}))
	defer srv.Close()

	y := NewYahoo(YahooOptions{Hosts: []string{srv.URL}}, quietLogger())
	p := analysis.Params{
		Tickers: []string{"A", "B"},
		Start:   date(2023, 1, 1),
		End:     date(2023, 2, 1),
		Weights: analysis.Weights{0.5, 0.5},
		Initial: 1000,
	}

	res, err := analysis.Run(context.Background(), y, p)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Returns.Len())
	assert.InDelta(t, 1.21, res.Cumulative.Rows[1][0], 1e-12)
}

func TestNewYahoo_WarnsOnBadProxy(t *testing.T) {
	var buf bytes.Buffer
	NewYahoo(YahooOptions{Proxy: "http://proxy.local:3128"}, zerolog.New(&buf))
	assert.Empty(t, buf.String())

	NewYahoo(YahooOptions{Proxy: "::not a url"}, zerolog.New(&buf))
	assert.Contains(t, buf.String(), "ignoring unparsable proxy")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
