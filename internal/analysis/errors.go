package analysis

import "errors"

// Input errors. The run is aborted before any data is fetched.
var (
	ErrNoTickers         = errors.New("no ticker symbols provided")
	ErrDuplicateTicker   = errors.New("duplicate ticker symbol")
	ErrInvalidDate       = errors.New("invalid date")
	ErrDateRange         = errors.New("end date must be after start date")
	ErrMalformedWeights  = errors.New("malformed weights")
	ErrWeightCount       = errors.New("number of weights must match number of tickers")
	ErrWeightSum         = errors.New("weights must sum to 1")
	ErrInitialInvestment = errors.New("initial investment must be positive")
)

// Data errors raised while computing.
var (
	ErrInsufficientHistory = errors.New("need at least 2 trading days of prices")
	ErrNoOverlap           = errors.New("no trading day has prices for every ticker")
	ErrFetch               = errors.New("fetch prices")
)

// IsDataError reports whether err came from fetching or aligning prices.
func IsDataError(err error) bool {
	return errors.Is(err, ErrFetch) || errors.Is(err, ErrInsufficientHistory) || errors.Is(err, ErrNoOverlap)
}

// IsInputError reports whether err was caused by user supplied parameters.
func IsInputError(err error) bool {
	for _, target := range []error{
		ErrNoTickers, ErrDuplicateTicker, ErrInvalidDate, ErrDateRange, ErrMalformedWeights,
		ErrWeightCount, ErrWeightSum, ErrInitialInvestment,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
