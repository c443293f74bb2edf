package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	apperrors "nestegg/internal/errors"
	"nestegg/internal/logger"
	"nestegg/internal/models"
	"nestegg/internal/provider"
)

// priceService refreshes stock prices from a market-data provider and
// records fresh net worth snapshots for the affected portfolios.
type priceService struct {
	db       *gorm.DB
	provider provider.Provider
	netWorth NetWorthServicer
}

// NewPriceService creates a new PriceServicer.
func NewPriceService(db *gorm.DB, p provider.Provider, netWorth NetWorthServicer) PriceServicer {
	return &priceService{db: db, provider: p, netWorth: netWorth}
}

// RefreshAllPrices refreshes every user's active stock holdings.
func (s *priceService) RefreshAllPrices(ctx context.Context) (*PriceRefreshResult, error) {
	return s.refresh(ctx, "")
}

// RefreshUserPrices refreshes one user's active stock holdings.
func (s *priceService) RefreshUserPrices(ctx context.Context, userID string) (*PriceRefreshResult, error) {
	return s.refresh(ctx, userID)
}

// quoteKey identifies a quoted instrument within the refresh pass.
type quoteKey struct {
	symbol string
	market models.Market
}

// refresh is best-effort: each failed symbol is logged and skipped, and
// the holding keeps its previous price until the next pass. A wholesale
// fetch failure is reported as ErrRefreshFailed instead.
func (s *priceService) refresh(ctx context.Context, userID string) (*PriceRefreshResult, error) {
	query := s.db.Where("type = ? AND is_active = ? AND stock_symbol <> ''", models.AssetTypeStock, true)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var holdings []models.Asset
	if err := query.Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &PriceRefreshResult{StocksMatched: len(holdings)}
	if len(holdings) == 0 {
		return result, nil
	}

	// Distinct (symbol, market) pairs; one quote covers every holding of
	// the same stock.
	seen := make(map[quoteKey]struct{})
	var requests []provider.Stock
	for i := range holdings {
		key := quoteKey{symbol: holdings[i].StockSymbol, market: holdings[i].Market}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		requests = append(requests, provider.Stock{Symbol: key.symbol, Market: string(key.market)})
	}

	quotes, fetchErrors := s.provider.FetchQuotes(ctx, requests)
	for i := range fetchErrors {
		logger.Get().Warnw("price fetch failed",
			"provider", s.provider.Name(),
			"symbol", fetchErrors[i].Symbol,
			"market", fetchErrors[i].Market,
			"error", fetchErrors[i].Err.Error(),
		)
		result.Failed = append(result.Failed, fetchErrors[i].Symbol)
	}

	// Every symbol failing means the provider itself is unreachable, not
	// a bad listing. Holdings keep their last prices and no snapshots are
	// recorded until a pass succeeds.
	if len(quotes) == 0 && len(fetchErrors) > 0 {
		return nil, apperrors.Wrap(apperrors.ErrRefreshFailed, fetchErrors[0].Err)
	}

	prices := make(map[quoteKey]float64, len(quotes))
	for _, q := range quotes {
		prices[quoteKey{symbol: q.Symbol, market: models.Market(q.Market)}] = q.Price
	}

	// affected collects the portfolios whose collections changed.
	affected := make(map[string]struct{})
	for i := range holdings {
		h := &holdings[i]
		price, ok := prices[quoteKey{symbol: h.StockSymbol, market: h.Market}]
		if !ok {
			continue
		}
		if err := s.db.Model(h).Updates(map[string]interface{}{
			"current_price": price,
			"current_value": price * h.Quantity,
		}).Error; err != nil {
			logger.Get().Warnw("price update failed",
				"asset_id", h.ID,
				"symbol", h.StockSymbol,
				"error", err.Error(),
			)
			result.Failed = append(result.Failed, h.StockSymbol)
			continue
		}
		result.PricesApplied++
		affected[h.UserID] = struct{}{}
	}

	// Refreshing prices moves net worth, so recompute both markets of
	// every touched portfolio.
	now := time.Now().UTC().Truncate(time.Minute)
	for uid := range affected {
		for _, market := range []models.Market{models.MarketIndia, models.MarketEurope} {
			if _, err := s.netWorth.RecordSnapshot(uid, market, now); err != nil {
				logger.Get().Warnw("snapshot record failed",
					"user_id", uid,
					"market", market,
					"error", err.Error(),
				)
				continue
			}
			result.SnapshotsRecorded++
		}
	}

	return result, nil
}
