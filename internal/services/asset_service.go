package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "nestegg/internal/errors"
	"nestegg/internal/finance"
	"nestegg/internal/models"
	"nestegg/internal/pagination"
)

// assetService handles asset-related business logic.
type assetService struct {
	db *gorm.DB
}

// NewAssetService creates a new AssetServicer.
func NewAssetService(db *gorm.DB) AssetServicer {
	return &assetService{db: db}
}

// validateNewAsset applies kind-specific required-field checks.
func validateNewAsset(asset *models.Asset) error {
	if strings.TrimSpace(asset.Name) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "asset name is required")
	}
	if !asset.Market.Valid() {
		return apperrors.ErrInvalidMarket
	}

	switch asset.Type {
	case models.AssetTypeStock:
		if asset.Quantity <= 0 || asset.PurchasePrice <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "stock quantity and purchase price must be positive")
		}
	case models.AssetTypeBankAccount:
		if asset.Balance < 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "bank balance cannot be negative")
		}
	case models.AssetTypeMutualFund:
		if asset.NAV <= 0 || asset.Units <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "fund NAV and units must be positive")
		}
	case models.AssetTypeFixedDeposit:
		if asset.PrincipalAmount <= 0 || asset.FDInterestRate <= 0 || asset.DurationMonths <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "deposit principal, interest rate, and duration must be positive")
		}
	case models.AssetTypeInsurance:
		if asset.AmountInsured <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount insured must be positive")
		}
	case models.AssetTypeCommodity:
		if asset.CommodityQuantity <= 0 || asset.PurchasePrice <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "commodity quantity and purchase price must be positive")
		}
	default:
		return apperrors.ErrInvalidAssetType
	}

	return nil
}

// CreateAsset persists a new holding for a user. Stocks are merged into
// an existing same-named holding in the same market instead of creating
// a duplicate row.
func (s *assetService) CreateAsset(userID string, asset *models.Asset) (*models.Asset, bool, error) {
	if err := validateNewAsset(asset); err != nil {
		return nil, false, err
	}

	asset.UserID = userID
	asset.IsActive = true

	if asset.Type == models.AssetTypeStock {
		merged, err := s.mergeStock(userID, asset)
		if err != nil {
			return nil, false, err
		}
		if merged != nil {
			return merged, true, nil
		}
	}

	if err := s.db.Create(asset).Error; err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return asset, false, nil
}

// mergeStock folds a new stock purchase into an existing holding with the
// same name (case-insensitive) in the same market. Quantity and invested
// amounts add, the average price is quantity-weighted, and the current
// value is reset to the new total invested until the next price refresh
// corrects it. Returns nil when there is nothing to merge into.
func (s *assetService) mergeStock(userID string, asset *models.Asset) (*models.Asset, error) {
	var existing models.Asset
	err := s.db.Where(
		"user_id = ? AND market = ? AND type = ? AND is_active = ? AND LOWER(name) = LOWER(?)",
		userID, asset.Market, models.AssetTypeStock, true, asset.Name,
	).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	lot := finance.MergeStockLots(existing.PurchasePrice, existing.Quantity, asset.PurchasePrice, asset.Quantity)

	updates := map[string]interface{}{
		"purchase_price": lot.AveragePrice,
		"quantity":       lot.Quantity,
		"current_value":  lot.TotalInvested,
	}
	if asset.StockSymbol != "" && existing.StockSymbol == "" {
		updates["stock_symbol"] = asset.StockSymbol
	}

	if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("id = ?", existing.ID).First(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &existing, nil
}

// GetUserAssets retrieves a paginated list of active assets for a user,
// optionally filtered by market and kind.
func (s *assetService) GetUserAssets(userID string, filter AssetFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error) {
	page.Defaults()

	base := s.db.Model(&models.Asset{}).Where("user_id = ? AND is_active = ?", userID, true)
	if filter.Market != nil {
		base = base.Where("market = ?", *filter.Market)
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var assets []models.Asset
	if err := base.Order("created_at ASC").Scopes(pagination.Paginate(page)).Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(assets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAssetByID retrieves an asset by ID for a specific user
func (s *assetService) GetAssetByID(userID, assetID string) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.Where("id = ? AND user_id = ? AND is_active = ?", assetID, userID, true).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &asset, nil
}

// UpdateAsset updates an existing asset. Only fields relevant to the
// asset's kind are applied; derived columns (fixed-deposit maturity,
// currency) are recomputed afterwards.
func (s *assetService) UpdateAsset(userID, assetID string, fields AssetUpdateFields) (*models.Asset, error) {
	asset, err := s.GetAssetByID(userID, assetID)
	if err != nil {
		return nil, err
	}

	// Common fields (all kinds)
	if fields.Name != nil && *fields.Name != "" {
		asset.Name = *fields.Name
	}
	if fields.IsActive != nil {
		asset.IsActive = *fields.IsActive
	}

	switch asset.Type {
	case models.AssetTypeStock:
		if fields.StockSymbol != nil {
			asset.StockSymbol = *fields.StockSymbol
		}
		if fields.PurchasePrice != nil {
			asset.PurchasePrice = *fields.PurchasePrice
		}
		if fields.Quantity != nil {
			asset.Quantity = *fields.Quantity
		}
		if fields.PurchaseDate != nil {
			asset.PurchaseDate = fields.PurchaseDate
		}
		if fields.CurrentPrice != nil {
			asset.CurrentPrice = *fields.CurrentPrice
		}
		if fields.CurrentValue != nil {
			asset.CurrentValue = *fields.CurrentValue
		}
	case models.AssetTypeBankAccount:
		if fields.AccountNumber != nil {
			asset.AccountNumber = *fields.AccountNumber
		}
		if fields.Balance != nil {
			asset.Balance = *fields.Balance
		}
	case models.AssetTypeMutualFund:
		if fields.NAV != nil {
			asset.NAV = *fields.NAV
		}
		if fields.Units != nil {
			asset.Units = *fields.Units
		}
		if fields.PurchaseDate != nil {
			asset.PurchaseDate = fields.PurchaseDate
		}
		if fields.CurrentValue != nil {
			asset.CurrentValue = *fields.CurrentValue
		}
	case models.AssetTypeFixedDeposit:
		if fields.PrincipalAmount != nil {
			asset.PrincipalAmount = *fields.PrincipalAmount
		}
		if fields.FDInterestRate != nil {
			asset.FDInterestRate = *fields.FDInterestRate
		}
		if fields.DurationMonths != nil {
			asset.DurationMonths = *fields.DurationMonths
		}
		if fields.StartDate != nil {
			asset.StartDate = fields.StartDate
		}
	case models.AssetTypeInsurance:
		if fields.PolicyNumber != nil {
			asset.PolicyNumber = *fields.PolicyNumber
		}
		if fields.AmountInsured != nil {
			asset.AmountInsured = *fields.AmountInsured
		}
		if fields.IssueDate != nil {
			asset.IssueDate = fields.IssueDate
		}
		if fields.MaturityDate != nil {
			asset.MaturityDate = fields.MaturityDate
		}
		if fields.Premium != nil {
			asset.Premium = *fields.Premium
		}
		if fields.PremiumPaymentDate != nil {
			asset.PremiumPaymentDate = fields.PremiumPaymentDate
		}
		if fields.Nominee != nil {
			asset.Nominee = *fields.Nominee
		}
	case models.AssetTypeCommodity:
		if fields.CommodityForm != nil {
			asset.CommodityForm = *fields.CommodityForm
		}
		if fields.CommodityQuantity != nil {
			asset.CommodityQuantity = *fields.CommodityQuantity
		}
		if fields.CommodityUnit != nil {
			asset.CommodityUnit = *fields.CommodityUnit
		}
		if fields.PurchasePrice != nil {
			asset.PurchasePrice = *fields.PurchasePrice
		}
		if fields.PurchaseDate != nil {
			asset.PurchaseDate = fields.PurchaseDate
		}
		if fields.CurrentValue != nil {
			asset.CurrentValue = *fields.CurrentValue
		}
	}

	asset.ApplyDerived()

	if err := s.db.Save(asset).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return asset, nil
}

// DeleteAsset removes a holding. The deactivation and soft delete happen
// in one transaction so a failure leaves the collections, and therefore
// the net worth derived from them, unchanged.
func (s *assetService) DeleteAsset(userID, assetID string) (*models.Asset, error) {
	asset, err := s.GetAssetByID(userID, assetID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Model(asset).Update("is_active", false).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Delete(asset).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}
