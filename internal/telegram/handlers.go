package telegram

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"stockCorrelation/internal/analysis"
	"stockCorrelation/internal/charts"
	"stockCorrelation/internal/export"
)

var (
	// /analyze [TICKERS [START [END [WEIGHTS [INITIAL]]]]]
	reAnalyze = regexp.MustCompile(`^/analyze(?:@[\w_]+)?(?:\s+(.*))?$`)
	// /help
	reHelp = regexp.MustCompile(`^/(help|start)(?:@[\w_]+)?$`)
)

var errTooManyArgs = errors.New("too many arguments")

// HandlerOptions wires the analysis dependencies into the chat handlers.
type HandlerOptions struct {
	Source   analysis.Source
	Defaults analysis.Params
	Charts   charts.Options
	Timeout  time.Duration // per analysis, 60s when zero
	Log      zerolog.Logger
}

type Handlers struct {
	api      Sender
	source   analysis.Source
	defaults analysis.Params
	charts   charts.Options
	timeout  time.Duration
	log      zerolog.Logger
}

func NewHandlers(api Sender, opts HandlerOptions) *Handlers {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Handlers{
		api:      api,
		source:   opts.Source,
		defaults: opts.Defaults,
		charts:   opts.Charts,
		timeout:  timeout,
		log:      opts.Log,
	}
}

func (h *Handlers) HandleMessage(m *tgbotapi.Message) {
	if m == nil || m.Chat == nil {
		return
	}
	txt := strings.TrimSpace(m.Text)
	switch {
	case reHelp.MatchString(txt):
		h.handleHelp(m.Chat.ID)

	case reAnalyze.MatchString(txt):
		g := reAnalyze.FindStringSubmatch(txt)
		raw, err := parseAnalyzeArgs(g[1], h.defaults)
		if err != nil {
			h.reply(m.Chat.ID, "Analysis failed: "+err.Error()+"\nSee /help for the argument order.")
			return
		}
		h.handleAnalyze(m.Chat.ID, raw)
	}
}

// parseAnalyzeArgs maps positional words onto the run parameters; missing
// trailing words keep their default.
func parseAnalyzeArgs(args string, defaults analysis.Params) (analysis.RawParams, error) {
	raw := defaults.Raw()
	fields := strings.Fields(args)
	dst := []*string{&raw.Tickers, &raw.Start, &raw.End, &raw.Weights, &raw.Initial}
	if len(fields) > len(dst) {
		return raw, fmt.Errorf("%w: got %d, want at most %d", errTooManyArgs, len(fields), len(dst))
	}
	for i, f := range fields {
		*dst[i] = f
	}
	return raw, nil
}

func (h *Handlers) handleAnalyze(chatID int64, raw analysis.RawParams) {
	p, err := analysis.ParseParams(raw)
	if err != nil {
		h.reply(chatID, "Analysis failed: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	res, err := analysis.Run(ctx, h.source, p)
	if err != nil {
		h.reply(chatID, "Analysis failed: "+failureMessage(err))
		if !analysis.IsInputError(err) {
			h.log.Warn().Err(err).Int64("chat_id", chatID).Msg("analysis failed")
		}
		return
	}

	h.reply(chatID, summaryText(res))

	name := strings.Join(p.Tickers, "_")
	plots := []struct {
		file    string
		caption string
		render  func() ([]byte, error)
	}{
		{name + "_cumulative.png", "Cumulative returns", func() ([]byte, error) { return charts.Cumulative(res.Cumulative, h.charts) }},
		{name + "_correlation.png", "Correlation matrix", func() ([]byte, error) { return charts.Heatmap(res.Correlation, h.charts) }},
		{name + "_portfolio.png", "Portfolio growth", func() ([]byte, error) { return charts.Portfolio(res.Portfolio, res.Params.Initial, h.charts) }},
	}
	for _, plot := range plots {
		img, err := plot.render()
		if err != nil {
			h.reply(chatID, plot.caption+" chart failed: "+err.Error())
			continue
		}
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: plot.file, Bytes: img})
		photo.Caption = plot.caption + " • " + strings.Join(p.Tickers, ", ")
		h.send(photo)
	}

	if b, err := export.TableBytes(res.Prices); err == nil {
		h.send(tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "stock_prices.csv", Bytes: b}))
	}
	if b, err := export.SeriesBytes(res.Portfolio); err == nil {
		h.send(tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "portfolio_value.csv", Bytes: b}))
	}
}

func failureMessage(err error) string {
	if analysis.IsInputError(err) || analysis.IsDataError(err) {
		return err.Error()
	}
	return "could not compute portfolio with the given weights"
}

func summaryText(res *analysis.Result) string {
	s := res.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "Portfolio: %s\n", strings.Join(res.Params.Tickers, ", "))
	fmt.Fprintf(&b, "Period: %s to %s (%d return days)\n",
		s.FirstDate.Format(analysis.DateLayout), s.LastDate.Format(analysis.DateLayout), s.ReturnDays)
	fmt.Fprintf(&b, "Mean daily return: %.4f%%\n", s.MeanDailyReturn*100)
	fmt.Fprintf(&b, "Total growth: %.2f%%\n", s.TotalGrowthPct)
	fmt.Fprintf(&b, "Final value: %.2f", s.FinalValue)
	return b.String()
}

func (h *Handlers) handleHelp(chatID int64) {
	def := h.defaults.Raw()
	help := "Commands\n\n" +
		"- /analyze TICKERS START END WEIGHTS [INITIAL] - Correlation and portfolio analysis\n" +
		"  e.g. /analyze AAPL,MSFT 2023-01-01 2024-01-01 0.5,0.5 10000\n" +
		"- /help - This message\n" +
		"\nTrailing arguments may be omitted. Defaults: " +
		def.Tickers + " " + def.Start + " " + def.End + " " + def.Weights + " " + def.Initial + "\n" +
		"Dates are YYYY-MM-DD, the end date is exclusive. Weights must sum to 1."
	h.reply(chatID, help)
}

func (h *Handlers) reply(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handlers) send(c tgbotapi.Chattable) {
	if _, err := h.api.Send(c); err != nil {
		h.log.Error().Err(err).Msg("telegram send failed")
	}
}
