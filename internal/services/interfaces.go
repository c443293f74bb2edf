package services

import (
	"context"
	"time"

	"nestegg/internal/finance"
	"nestegg/internal/models"
	"nestegg/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID string, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// AssetFilter holds optional filter parameters for listing assets.
type AssetFilter struct {
	Market *models.Market
	Type   *models.AssetType
}

// AssetUpdateFields holds optional fields for updating an asset. Nil
// pointers leave the stored value untouched. Only fields relevant to the
// asset's kind are applied.
type AssetUpdateFields struct {
	Name     *string
	IsActive *bool

	// Stock
	StockSymbol   *string
	PurchasePrice *float64
	Quantity      *float64
	PurchaseDate  *time.Time
	CurrentPrice  *float64
	CurrentValue  *float64

	// Bank account
	AccountNumber *string
	Balance       *float64

	// Mutual fund
	NAV   *float64
	Units *float64

	// Fixed deposit
	PrincipalAmount *float64
	FDInterestRate  *float64
	DurationMonths  *int
	StartDate       *time.Time

	// Insurance
	PolicyNumber       *string
	AmountInsured      *float64
	IssueDate          *time.Time
	MaturityDate       *time.Time
	Premium            *float64
	PremiumPaymentDate *time.Time
	Nominee            *string

	// Commodity
	CommodityForm     *string
	CommodityQuantity *float64
	CommodityUnit     *string
}

// AssetServicer defines the contract for asset-related business logic.
type AssetServicer interface {
	// CreateAsset persists a new holding. For stocks whose name matches an
	// existing active holding in the same market (case-insensitively), the
	// purchase is merged into the existing row instead; the returned bool
	// reports whether a merge happened.
	CreateAsset(userID string, asset *models.Asset) (*models.Asset, bool, error)
	GetUserAssets(userID string, filter AssetFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error)
	GetAssetByID(userID, assetID string) (*models.Asset, error)
	UpdateAsset(userID, assetID string, fields AssetUpdateFields) (*models.Asset, error)
	// DeleteAsset removes a holding. The delete is transactional: on
	// failure nothing changes and the error is reported to the caller.
	// The removed asset is returned so callers know which market changed.
	DeleteAsset(userID, assetID string) (*models.Asset, error)
}

// NetWorthSummary contains one market's freshly computed net worth.
type NetWorthSummary struct {
	Market   models.Market `json:"market"`
	Currency string        `json:"currency"`
	finance.Breakdown
	Total float64 `json:"total"`
}

// SnapshotStats summarizes a net worth snapshot series.
type SnapshotStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// NetWorthServicer defines the contract for net worth aggregation.
type NetWorthServicer interface {
	// Compute re-derives the market's net worth from the underlying asset
	// collections. It is a full re-scan, never an incremental patch.
	Compute(userID string, market models.Market) (*NetWorthSummary, error)
	RecordSnapshot(userID string, market models.Market, recordedAt time.Time) (*models.NetWorthSnapshot, error)
	GetSnapshots(userID string, market models.Market, from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.NetWorthSnapshot], *SnapshotStats, error)
}

// PriceRefreshResult contains the outcome of one price refresh pass.
type PriceRefreshResult struct {
	StocksMatched     int      `json:"stocks_matched"`
	PricesApplied     int      `json:"prices_applied"`
	SnapshotsRecorded int      `json:"snapshots_recorded"`
	Failed            []string `json:"failed,omitempty"`
}

// PriceServicer defines the contract for refreshing stock prices.
type PriceServicer interface {
	RefreshUserPrices(ctx context.Context, userID string) (*PriceRefreshResult, error)
	RefreshAllPrices(ctx context.Context) (*PriceRefreshResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
