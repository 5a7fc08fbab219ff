package market

import (
	"errors"
	"time"
)

// ErrNoData is returned when a symbol has no usable closing price in range.
var ErrNoData = errors.New("no price data")

// yahooChartResp mirrors Yahoo v8 chart response (trimmed to needed fields).
// Closes are pointers because Yahoo emits null for sessions without a print.
type yahooChartResp struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				GmtOffset            int    `json:"gmtoffset"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// observation is one daily close of one symbol.
type observation struct {
	Date  time.Time // trading date at UTC midnight
	Close float64
}

// series is the cleaned daily history of one symbol.
type series struct {
	Symbol       string
	Observations []observation
}
