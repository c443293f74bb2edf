package services

import (
	"time"

	"github.com/montanaflynn/stats"
	"gorm.io/gorm"

	apperrors "nestegg/internal/errors"
	"nestegg/internal/finance"
	"nestegg/internal/models"
	"nestegg/internal/pagination"
)

// netWorthService handles net worth aggregation and snapshots.
type netWorthService struct {
	db *gorm.DB
}

// NewNetWorthService creates a new NetWorthServicer.
func NewNetWorthService(db *gorm.DB) NetWorthServicer {
	return &netWorthService{db: db}
}

// Compute re-derives a market's net worth from the asset table: current
// stock worth + bank balances + fund worth + deposit principal +
// commodity value. Insurance policies are excluded. Always a full
// re-scan so the figure can never drift from the collections.
func (s *netWorthService) Compute(userID string, market models.Market) (*NetWorthSummary, error) {
	if !market.Valid() {
		return nil, apperrors.ErrInvalidMarket
	}

	var b finance.Breakdown
	components := []struct {
		assetType models.AssetType
		column    string
		dest      *float64
	}{
		{models.AssetTypeStock, "current_value", &b.StockValue},
		{models.AssetTypeBankAccount, "balance", &b.BankBalance},
		{models.AssetTypeMutualFund, "current_value", &b.FundValue},
		// Deposits count at principal, not maturity amount.
		{models.AssetTypeFixedDeposit, "principal_amount", &b.DepositPrincipal},
		{models.AssetTypeCommodity, "current_value", &b.CommodityValue},
	}

	for _, comp := range components {
		if err := s.db.Model(&models.Asset{}).
			Where("user_id = ? AND market = ? AND type = ? AND is_active = ?", userID, market, comp.assetType, true).
			Select("COALESCE(SUM(" + comp.column + "), 0)").
			Scan(comp.dest).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return &NetWorthSummary{
		Market:    market,
		Currency:  market.Currency(),
		Breakdown: b,
		Total:     b.Total(),
	}, nil
}

// RecordSnapshot computes and stores a net worth snapshot for one market.
// A snapshot at the same user/market/time is updated in place.
func (s *netWorthService) RecordSnapshot(userID string, market models.Market, recordedAt time.Time) (*models.NetWorthSnapshot, error) {
	summary, err := s.Compute(userID, market)
	if err != nil {
		return nil, err
	}

	snapshot := &models.NetWorthSnapshot{
		UserID:           userID,
		Market:           market,
		RecordedAt:       recordedAt,
		StockValue:       summary.StockValue,
		BankBalance:      summary.BankBalance,
		FundValue:        summary.FundValue,
		DepositPrincipal: summary.DepositPrincipal,
		CommodityValue:   summary.CommodityValue,
		TotalNetWorth:    summary.Total,
	}

	var existing models.NetWorthSnapshot
	result := s.db.Where("user_id = ? AND market = ? AND recorded_at = ?", userID, market, recordedAt).First(&existing)
	if result.Error == nil {
		if err := s.db.Model(&existing).Updates(map[string]interface{}{
			"stock_value":       snapshot.StockValue,
			"bank_balance":      snapshot.BankBalance,
			"fund_value":        snapshot.FundValue,
			"deposit_principal": snapshot.DepositPrincipal,
			"commodity_value":   snapshot.CommodityValue,
			"total_net_worth":   snapshot.TotalNetWorth,
		}).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		existing.StockValue = snapshot.StockValue
		existing.BankBalance = snapshot.BankBalance
		existing.FundValue = snapshot.FundValue
		existing.DepositPrincipal = snapshot.DepositPrincipal
		existing.CommodityValue = snapshot.CommodityValue
		existing.TotalNetWorth = snapshot.TotalNetWorth
		return &existing, nil
	}

	if err := s.db.Create(snapshot).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return snapshot, nil
}

// GetSnapshots returns paginated snapshots for a user's market within a
// date range, along with min/max/mean statistics over the whole range.
func (s *netWorthService) GetSnapshots(
	userID string,
	market models.Market,
	from, to time.Time,
	page pagination.PageRequest,
) (*pagination.PageResponse[models.NetWorthSnapshot], *SnapshotStats, error) {
	if !market.Valid() {
		return nil, nil, apperrors.ErrInvalidMarket
	}

	page.Defaults()

	base := s.db.Model(&models.NetWorthSnapshot{}).
		Where("user_id = ? AND market = ? AND recorded_at >= ? AND recorded_at <= ?", userID, market, from, to)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var snapshots []models.NetWorthSnapshot
	if err := base.Order("recorded_at DESC").Scopes(pagination.Paginate(page)).Find(&snapshots).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Statistics cover the full filtered range, not just the current page.
	var totals []float64
	if err := s.db.Model(&models.NetWorthSnapshot{}).
		Where("user_id = ? AND market = ? AND recorded_at >= ? AND recorded_at <= ?", userID, market, from, to).
		Pluck("total_net_worth", &totals).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	snapStats := &SnapshotStats{Count: len(totals)}
	if len(totals) > 0 {
		// stats errors only on empty input, which is guarded above.
		snapStats.Min, _ = stats.Min(totals)
		snapStats.Max, _ = stats.Max(totals)
		snapStats.Mean, _ = stats.Mean(totals)
	}

	result := pagination.NewPageResponse(snapshots, page.Page, page.PageSize, totalItems)
	return &result, snapStats, nil
}
