package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stockCorrelation/internal/analysis"
)

// DefaultYahooHosts are tried in order for every symbol.
var DefaultYahooHosts = []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"

// YahooOptions configures the Yahoo Finance client.
type YahooOptions struct {
	Hosts     []string
	UserAgent string
	Timeout   time.Duration
	Proxy     string
	Pause     time.Duration // wait between symbols to stay under the rate limit
}

// Yahoo fetches split and dividend adjusted daily closes from the v8 chart API.
type Yahoo struct {
	client    *http.Client
	hosts     []string
	userAgent string
	pause     time.Duration
	log       zerolog.Logger
}

// NewYahoo creates a Yahoo source.
func NewYahoo(opts YahooOptions, log zerolog.Logger) *Yahoo {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil && u.Host != "" {
			transport.Proxy = http.ProxyURL(u)
		} else {
			log.Warn().Str("component", "yahoo").Str("proxy", opts.Proxy).
				Msg("ignoring unparsable proxy, using environment proxy settings")
		}
	}
	hosts := opts.Hosts
	if len(hosts) == 0 {
		hosts = DefaultYahooHosts
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Yahoo{
		client:    &http.Client{Timeout: opts.Timeout, Transport: transport},
		hosts:     hosts,
		userAgent: ua,
		pause:     opts.Pause,
		log:       log.With().Str("component", "yahoo").Logger(),
	}
}

// Fetch downloads every ticker and aligns them on a common date index.
// The whole range must resolve; a symbol without any price fails the fetch.
func (y *Yahoo) Fetch(ctx context.Context, tickers []string, start, end time.Time) (*analysis.Table, error) {
	all := make([]series, 0, len(tickers))
	for i, symbol := range tickers {
		if i > 0 && y.pause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(y.pause):
			}
		}
		obs, err := y.fetchDaily(ctx, symbol, start, end)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", symbol, err)
		}
		if len(obs) == 0 {
			return nil, fmt.Errorf("%s: %w between %s and %s", symbol, ErrNoData, start.Format(analysis.DateLayout), end.Format(analysis.DateLayout))
		}
		y.log.Debug().Str("symbol", symbol).Int("bars", len(obs)).Msg("fetched daily closes")
		all = append(all, series{Symbol: symbol, Observations: obs})
	}
	return alignSeries(all)
}

// fetchDaily fetches daily closes for one symbol in [start, end), failing over
// across hosts.
func (y *Yahoo) fetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]observation, error) {
	var lastErr error
	for _, host := range y.hosts {
		u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div,splits&includeAdjustedClose=true",
			strings.TrimRight(host, "/"), url.PathEscape(symbol), start.Unix(), end.Unix())
		yc, err := y.get(ctx, u, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, ErrNoData) {
				return nil, err
			}
			y.log.Warn().Err(err).Str("symbol", symbol).Str("host", host).Msg("yahoo request failed")
			lastErr = err
			continue
		}
		return decodeChart(yc)
	}
	return nil, lastErr
}

func (y *Yahoo) get(ctx context.Context, u, symbol string) (*yahooChartResp, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", y.userAgent)
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s/history", strings.ToUpper(symbol)))

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("failed to read yahoo response: %w", readErr)
	}

	if resp.StatusCode == http.StatusTooManyRequests || strings.HasPrefix(string(body), "Edge: Too Many Requests") {
		return nil, fmt.Errorf("yahoo %s returned 429: Too Many Requests", req.URL.Host)
	}
	if strings.HasPrefix(string(body), "<") || strings.HasPrefix(string(body), "Edge:") {
		return nil, fmt.Errorf("yahoo returned non-json body: %s", preview(body))
	}

	var yc yahooChartResp
	if err := json.Unmarshal(body, &yc); err != nil {
		return nil, fmt.Errorf("failed to parse yahoo json: %v; body: %s", err, preview(body))
	}
	if yc.Chart.Error != nil {
		// Yahoo answers unknown symbols with 404 and a structured error.
		return nil, fmt.Errorf("%w: %s", ErrNoData, yc.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo %s returned %d: %s", req.URL.Host, resp.StatusCode, preview(body))
	}
	return &yc, nil
}

// decodeChart extracts adjusted closes, or raw closes when the adjusted series is absent.
func decodeChart(yc *yahooChartResp) ([]observation, error) {
	if len(yc.Chart.Result) == 0 {
		return nil, ErrNoData
	}
	r := yc.Chart.Result[0]
	loc := exchangeLocation(r.Meta.ExchangeTimezoneName, r.Meta.GmtOffset)

	var closes []*float64
	switch {
	case len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) > 0:
		closes = r.Indicators.AdjClose[0].AdjClose
	case len(r.Indicators.Quote) > 0:
		closes = r.Indicators.Quote[0].Close
	default:
		return nil, errors.New("empty bars")
	}
	return filterPositive(r.Timestamp, closes, loc), nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
