package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultParams returns the stock example: three large caps over 2023.
func DefaultParams() Params {
	return Params{
		Tickers: []string{"AAPL", "MSFT", "GOOG"},
		Start:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Weights: Weights{0.4, 0.3, 0.3},
		Initial: 10000,
	}
}

// ParseTickers splits a comma separated symbol list.
// Symbols are trimmed and upper-cased; empty entries are skipped.
func ParseTickers(input string) ([]string, error) {
	var symbols []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(input, ",") {
		symbol := strings.ToUpper(strings.TrimSpace(part))
		if symbol == "" {
			continue
		}
		if seen[symbol] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTicker, symbol)
		}
		seen[symbol] = true
		symbols = append(symbols, symbol)
	}
	if len(symbols) == 0 {
		return nil, ErrNoTickers
	}
	return symbols, nil
}

// ParseWeights parses a comma separated list of floats, e.g. "0.4, 0.3, 0.3".
func ParseWeights(input string) (Weights, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedWeights)
	}
	parts := strings.Split(input, ",")
	weights := make(Weights, 0, len(parts))
	for i, part := range parts {
		s := strings.TrimSpace(part)
		w, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: invalid weight %q at position %d", ErrMalformedWeights, s, i+1)
		}
		weights = append(weights, w)
	}
	return weights, nil
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(input string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(input))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q (use YYYY-MM-DD)", ErrInvalidDate, input)
	}
	return d, nil
}

// ParseAmount parses the initial investment.
func ParseAmount(input string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", ErrInitialInvestment, input)
	}
	return v, nil
}

// RawParams is the user supplied text of one run, as typed into a form or chat.
type RawParams struct {
	Tickers string
	Start   string
	End     string
	Weights string
	Initial string
}

// ParseParams parses every field of in. It does not validate the combination.
func ParseParams(in RawParams) (Params, error) {
	tickers, err := ParseTickers(in.Tickers)
	if err != nil {
		return Params{}, err
	}
	start, err := ParseDate(in.Start)
	if err != nil {
		return Params{}, err
	}
	end, err := ParseDate(in.End)
	if err != nil {
		return Params{}, err
	}
	weights, err := ParseWeights(in.Weights)
	if err != nil {
		return Params{}, err
	}
	initial, err := ParseAmount(in.Initial)
	if err != nil {
		return Params{}, err
	}
	return Params{Tickers: tickers, Start: start, End: end, Weights: weights, Initial: initial}, nil
}

// Raw formats p back into its text form.
func (p Params) Raw() RawParams {
	weights := make([]string, len(p.Weights))
	for i, w := range p.Weights {
		weights[i] = strconv.FormatFloat(w, 'f', -1, 64)
	}
	return RawParams{
		Tickers: strings.Join(p.Tickers, ","),
		Start:   p.Start.Format(DateLayout),
		End:     p.End.Format(DateLayout),
		Weights: strings.Join(weights, ","),
		Initial: strconv.FormatFloat(p.Initial, 'f', -1, 64),
	}
}

// Validate checks the parameters before anything is fetched.
func (p Params) Validate() error {
	if len(p.Tickers) == 0 {
		return ErrNoTickers
	}
	seen := make(map[string]bool, len(p.Tickers))
	for _, t := range p.Tickers {
		if seen[t] {
			return fmt.Errorf("%w: %s", ErrDuplicateTicker, t)
		}
		seen[t] = true
	}
	if !p.Start.Before(p.End) {
		return fmt.Errorf("%w: %s is not before %s", ErrDateRange, p.Start.Format(DateLayout), p.End.Format(DateLayout))
	}
	if !(p.Initial > 0) || math.IsInf(p.Initial, 0) {
		return fmt.Errorf("%w: got %v", ErrInitialInvestment, p.Initial)
	}
	return p.Weights.Validate(len(p.Tickers))
}
