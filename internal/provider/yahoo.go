package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	yahooBaseURL  = "https://query1.finance.yahoo.com/v7/finance/quote"
	yahooBatchMax = 50
	yahooUA       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
)

// marketSuffixes maps portfolio markets to the default Yahoo Finance
// ticker suffix. India defaults to the NSE. European symbols usually
// carry their own exchange suffix (e.g. "AIR.PA", "SAP.DE"), so europe
// maps to no suffix.
var marketSuffixes = map[string]string{
	"india":  ".NS",
	"europe": "",
}

// yahooQuoteResponse is the top-level Yahoo Finance API response.
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuoteResult `json:"result"`
		Error  *json.RawMessage   `json:"error"`
	} `json:"quoteResponse"`
}

// yahooQuoteResult is a single quote result from Yahoo Finance.
type yahooQuoteResult struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

// YahooProvider fetches stock quotes from Yahoo Finance.
type YahooProvider struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewYahooProvider creates a new Yahoo Finance quote provider. An empty
// baseURL selects the public endpoint.
func NewYahooProvider(httpClient *http.Client, baseURL string) *YahooProvider {
	if baseURL == "" {
		baseURL = yahooBaseURL
	}
	return &YahooProvider{httpClient: httpClient, baseURL: baseURL}
}

// Name returns the provider's display name.
func (p *YahooProvider) Name() string { return "Yahoo Finance" }

// buildTicker converts a stock to a Yahoo-compatible ticker. Symbols that
// already carry an exchange suffix are used as-is; otherwise the market's
// default suffix is appended.
func buildTicker(stock Stock) string {
	if strings.Contains(stock.Symbol, ".") {
		return stock.Symbol
	}
	return stock.Symbol + marketSuffixes[stock.Market]
}

// FetchQuotes fetches current prices from Yahoo Finance in batches.
func (p *YahooProvider) FetchQuotes(ctx context.Context, stocks []Stock) ([]Quote, []FetchError) {
	if len(stocks) == 0 {
		return nil, nil
	}

	// Build Yahoo tickers and maintain mapping back to stocks.
	tickerToStock := make(map[string]Stock, len(stocks))
	tickers := make([]string, 0, len(stocks))
	for _, stock := range stocks {
		ticker := buildTicker(stock)
		tickerToStock[ticker] = stock
		tickers = append(tickers, ticker)
	}

	var allQuotes []Quote
	var allErrors []FetchError
	now := time.Now().UTC()

	for i := 0; i < len(tickers); i += yahooBatchMax {
		end := min(i+yahooBatchMax, len(tickers))
		batch := tickers[i:end]

		quotes, fetchErrors := p.fetchBatch(ctx, batch, tickerToStock, now)
		allQuotes = append(allQuotes, quotes...)
		allErrors = append(allErrors, fetchErrors...)
	}

	return allQuotes, allErrors
}

// fetchBatch fetches quotes for a single batch of tickers.
func (p *YahooProvider) fetchBatch(ctx context.Context, tickers []string, tickerToStock map[string]Stock, now time.Time) ([]Quote, []FetchError) {
	url := p.baseURL + "?symbols=" + strings.Join(tickers, ",")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, batchErrors(tickers, tickerToStock, fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("User-Agent", yahooUA)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, batchErrors(tickers, tickerToStock, fmt.Errorf("http request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, batchErrors(tickers, tickerToStock, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var quoteResp yahooQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
		return nil, batchErrors(tickers, tickerToStock, fmt.Errorf("decoding response: %w", err))
	}

	// Index results by ticker for lookup.
	resultMap := make(map[string]float64, len(quoteResp.QuoteResponse.Result))
	for _, r := range quoteResp.QuoteResponse.Result {
		resultMap[r.Symbol] = r.RegularMarketPrice
	}

	var quotes []Quote
	var fetchErrors []FetchError
	for _, ticker := range tickers {
		stock := tickerToStock[ticker]
		price, ok := resultMap[ticker]
		if !ok || price <= 0 {
			fetchErrors = append(fetchErrors, FetchError{
				Symbol: stock.Symbol,
				Market: stock.Market,
				Err:    fmt.Errorf("no quote returned for ticker %s", ticker),
			})
			continue
		}
		quotes = append(quotes, Quote{
			Symbol:     stock.Symbol,
			Market:     stock.Market,
			Price:      price,
			RecordedAt: now,
		})
	}

	return quotes, fetchErrors
}

// batchErrors expands a batch-level failure into one FetchError per ticker.
func batchErrors(tickers []string, tickerToStock map[string]Stock, err error) []FetchError {
	fetchErrors := make([]FetchError, 0, len(tickers))
	for _, ticker := range tickers {
		stock := tickerToStock[ticker]
		fetchErrors = append(fetchErrors, FetchError{Symbol: stock.Symbol, Market: stock.Market, Err: err})
	}
	return fetchErrors
}
