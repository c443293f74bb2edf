// Package provider defines the interface for fetching stock quotes from
// external market-data sources.
package provider

import (
	"context"
	"fmt"
	"time"
)

// Stock identifies a holding to quote. Market is the portfolio partition
// ("india" or "europe"); it selects the exchange suffix when the symbol
// does not carry one.
type Stock struct {
	Symbol string
	Market string
}

// Quote represents a successfully fetched price for a stock.
type Quote struct {
	Symbol     string
	Market     string
	Price      float64
	RecordedAt time.Time
}

// FetchError represents a failed quote fetch for a specific stock.
type FetchError struct {
	Symbol string
	Market string
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch quote for %s (%s): %v", e.Symbol, e.Market, e.Err)
}

// Provider fetches current market prices for a set of stocks.
type Provider interface {
	// Name returns the provider's display name (e.g., "Yahoo Finance").
	Name() string

	// FetchQuotes fetches current prices for the given stocks. Returns
	// successful quotes and any per-stock errors. A provider should
	// return as many quotes as possible, even if some fail.
	FetchQuotes(ctx context.Context, stocks []Stock) ([]Quote, []FetchError)
}
