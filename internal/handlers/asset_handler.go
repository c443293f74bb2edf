package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "nestegg/internal/errors"
	"nestegg/internal/finance"
	"nestegg/internal/models"
	"nestegg/internal/pagination"
	"nestegg/internal/services"
)

// AssetHandler handles asset-related requests.
type AssetHandler struct {
	assetService    services.AssetServicer
	netWorthService services.NetWorthServicer
	auditService    services.AuditServicer
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetService services.AssetServicer, netWorthService services.NetWorthServicer, auditService services.AuditServicer) *AssetHandler {
	return &AssetHandler{assetService: assetService, netWorthService: netWorthService, auditService: auditService}
}

// CreateAssetRequest represents the request payload for creating an asset.
// Common fields are required; the rest depend on the asset type and are
// validated by the service layer.
type CreateAssetRequest struct {
	Type   string `json:"type" binding:"required,asset_type"`
	Market string `json:"market" binding:"required,market"`
	Name   string `json:"name" binding:"required,min=1,max=100"`

	// Stock
	StockSymbol   string  `json:"stock_symbol" binding:"max=20"`
	PurchasePrice float64 `json:"purchase_price" binding:"gte=0"`
	Quantity      float64 `json:"quantity" binding:"gte=0"`
	PurchaseDate  *string `json:"purchase_date"`
	CurrentValue  float64 `json:"current_value" binding:"gte=0"`

	// Bank account
	AccountNumber string  `json:"account_number" binding:"max=50"`
	Balance       float64 `json:"balance" binding:"gte=0"`

	// Mutual fund
	NAV   float64 `json:"nav" binding:"gte=0"`
	Units float64 `json:"units" binding:"gte=0"`

	// Fixed deposit. DurationMonths may be omitted when both start_date
	// and maturity_date are given; it is then derived in whole calendar
	// months.
	PrincipalAmount float64 `json:"principal_amount" binding:"gte=0"`
	FDInterestRate  float64 `json:"fd_interest_rate" binding:"gte=0,lte=100"`
	DurationMonths  int     `json:"duration_months" binding:"gte=0"`
	StartDate       *string `json:"start_date"`

	// Insurance
	PolicyNumber       string  `json:"policy_number" binding:"max=50"`
	AmountInsured      float64 `json:"amount_insured" binding:"gte=0"`
	IssueDate          *string `json:"issue_date"`
	MaturityDate       *string `json:"maturity_date"`
	Premium            float64 `json:"premium" binding:"gte=0"`
	PremiumPaymentDate *string `json:"premium_payment_date"`
	Nominee            string  `json:"nominee" binding:"max=100"`

	// Commodity
	CommodityForm     string  `json:"commodity_form" binding:"max=50"`
	CommodityQuantity float64 `json:"commodity_quantity" binding:"gte=0"`
	CommodityUnit     string  `json:"commodity_unit" binding:"max=20"`
}

// UpdateAssetRequest represents the request payload for updating an asset.
// All fields are optional; nil fields leave the stored value untouched. The
// asset's type and market cannot be changed.
type UpdateAssetRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"is_active"`

	StockSymbol   *string  `json:"stock_symbol" binding:"omitempty,max=20"`
	PurchasePrice *float64 `json:"purchase_price" binding:"omitempty,gte=0"`
	Quantity      *float64 `json:"quantity" binding:"omitempty,gte=0"`
	PurchaseDate  *string  `json:"purchase_date"`
	CurrentPrice  *float64 `json:"current_price" binding:"omitempty,gte=0"`
	// A zero CurrentValue counts as unset: stocks, funds, and commodities
	// are then re-valued from quantity and price.
	CurrentValue *float64 `json:"current_value" binding:"omitempty,gte=0"`

	AccountNumber *string  `json:"account_number" binding:"omitempty,max=50"`
	Balance       *float64 `json:"balance" binding:"omitempty,gte=0"`

	NAV   *float64 `json:"nav" binding:"omitempty,gte=0"`
	Units *float64 `json:"units" binding:"omitempty,gte=0"`

	PrincipalAmount *float64 `json:"principal_amount" binding:"omitempty,gte=0"`
	FDInterestRate  *float64 `json:"fd_interest_rate" binding:"omitempty,gte=0,lte=100"`
	DurationMonths  *int     `json:"duration_months" binding:"omitempty,gte=0"`
	StartDate       *string  `json:"start_date"`

	PolicyNumber       *string  `json:"policy_number" binding:"omitempty,max=50"`
	AmountInsured      *float64 `json:"amount_insured" binding:"omitempty,gte=0"`
	IssueDate          *string  `json:"issue_date"`
	MaturityDate       *string  `json:"maturity_date"`
	Premium            *float64 `json:"premium" binding:"omitempty,gte=0"`
	PremiumPaymentDate *string  `json:"premium_payment_date"`
	Nominee            *string  `json:"nominee" binding:"omitempty,max=100"`

	CommodityForm     *string  `json:"commodity_form" binding:"omitempty,max=50"`
	CommodityQuantity *float64 `json:"commodity_quantity" binding:"omitempty,gte=0"`
	CommodityUnit     *string  `json:"commodity_unit" binding:"omitempty,max=20"`
}

// AssetResponse represents an asset in the response.
type AssetResponse struct {
	ID       string           `json:"id"`
	UserID   string           `json:"user_id"`
	Type     models.AssetType `json:"type"`
	Market   models.Market    `json:"market"`
	Currency string           `json:"currency"`
	Name     string           `json:"name"`
	IsActive bool             `json:"is_active"`
}

func parseDateField(c *gin.Context, value *string, field string) (*time.Time, bool) {
	if value == nil || *value == "" {
		return nil, true
	}
	parsed, err := parseDate(*value)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+field+" format"))
		return nil, false
	}
	return &parsed, true
}

// netWorthAfter recomputes the market's net worth after a mutation. The
// aggregate is always re-derived from the stored assets, never patched.
func (h *AssetHandler) netWorthAfter(userID string, market models.Market) gin.H {
	summary, err := h.netWorthService.Compute(userID, market)
	if err != nil {
		// The mutation itself succeeded; report it without the aggregate.
		return nil
	}
	return gin.H{
		"summary":         summary,
		"formatted_total": formatAmount(summary.Total, summary.Currency),
	}
}

// CreateAsset handles the creation of a new asset
// @Summary     Create an asset
// @Description Create a new asset for the authenticated user. Stock purchases matching an existing holding by name (case-insensitively, within the same market) are merged into it at a quantity-weighted average price.
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAssetRequest true "Asset details"
// @Success     201 {object} AssetResponse "Asset created or merged"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets [post]
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	purchaseDate, ok := parseDateField(c, req.PurchaseDate, "purchase_date")
	if !ok {
		return
	}
	startDate, ok := parseDateField(c, req.StartDate, "start_date")
	if !ok {
		return
	}
	issueDate, ok := parseDateField(c, req.IssueDate, "issue_date")
	if !ok {
		return
	}
	maturityDate, ok := parseDateField(c, req.MaturityDate, "maturity_date")
	if !ok {
		return
	}
	premiumPaymentDate, ok := parseDateField(c, req.PremiumPaymentDate, "premium_payment_date")
	if !ok {
		return
	}

	// A deposit may be described by its start and maturity dates instead
	// of an explicit duration. Whole calendar months bridge the two forms.
	if models.AssetType(req.Type) == models.AssetTypeFixedDeposit && req.DurationMonths == 0 &&
		startDate != nil && maturityDate != nil {
		req.DurationMonths = finance.MonthsBetween(*startDate, *maturityDate)
	}

	asset := &models.Asset{
		Type:   models.AssetType(req.Type),
		Market: models.Market(req.Market),
		Name:   req.Name,

		StockSymbol:   req.StockSymbol,
		PurchasePrice: req.PurchasePrice,
		Quantity:      req.Quantity,
		PurchaseDate:  purchaseDate,
		CurrentValue:  req.CurrentValue,

		AccountNumber: req.AccountNumber,
		Balance:       req.Balance,

		NAV:   req.NAV,
		Units: req.Units,

		PrincipalAmount: req.PrincipalAmount,
		FDInterestRate:  req.FDInterestRate,
		DurationMonths:  req.DurationMonths,
		StartDate:       startDate,

		PolicyNumber:       req.PolicyNumber,
		AmountInsured:      req.AmountInsured,
		IssueDate:          issueDate,
		MaturityDate:       maturityDate,
		Premium:            req.Premium,
		PremiumPaymentDate: premiumPaymentDate,
		Nominee:            req.Nominee,

		CommodityForm:     req.CommodityForm,
		CommodityQuantity: req.CommodityQuantity,
		CommodityUnit:     req.CommodityUnit,
	}

	created, merged, err := h.assetService.CreateAsset(userID, asset)
	if err != nil {
		respondWithError(c, err)
		return
	}

	action := "CREATE_ASSET"
	if merged {
		action = "MERGE_ASSET"
	}
	h.auditService.Log(userID, action, "asset", created.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "type": req.Type, "market": req.Market})

	c.JSON(http.StatusCreated, gin.H{
		"asset":     created,
		"merged":    merged,
		"net_worth": h.netWorthAfter(userID, created.Market),
	})
}

// GetUserAssets handles the retrieval of assets for a user
// @Summary     Get user assets
// @Description Get a paginated list of assets for the authenticated user, optionally filtered by market and type
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       market    query string false "Filter by market (india or europe)"
// @Param       type      query string false "Filter by asset type"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Asset] "Paginated assets"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets [get]
func (h *AssetHandler) GetUserAssets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.AssetFilter
	if raw := c.Query("market"); raw != "" {
		market := models.Market(raw)
		if !market.Valid() {
			respondWithError(c, apperrors.ErrInvalidMarket)
			return
		}
		filter.Market = &market
	}
	if raw := c.Query("type"); raw != "" {
		assetType := models.AssetType(raw)
		if !assetType.Valid() {
			respondWithError(c, apperrors.ErrInvalidAssetType)
			return
		}
		filter.Type = &assetType
	}

	result, err := h.assetService.GetUserAssets(userID, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAssetByID handles the retrieval of a specific asset for a user
// @Summary     Get asset by ID
// @Description Get a specific asset by ID for the authenticated user
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Asset ID"
// @Success     200 {object} AssetResponse "Asset details"
// @Failure     400 {object} ErrorResponse "Invalid asset ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id} [get]
func (h *AssetHandler) GetAssetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	asset, err := h.assetService.GetAssetByID(userID, assetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// UpdateAsset handles updating an asset of any type.
// @Summary     Update asset
// @Description Update an existing asset for the authenticated user. Only fields relevant to the asset's type are applied; derived fields like fixed deposit maturity are recomputed.
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Asset ID"
// @Param       request body UpdateAssetRequest true "Updated asset details"
// @Success     200 {object} AssetResponse "Updated asset"
// @Failure     400 {object} ErrorResponse "Invalid input or asset ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id} [put]
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	purchaseDate, ok := parseDateField(c, req.PurchaseDate, "purchase_date")
	if !ok {
		return
	}
	startDate, ok := parseDateField(c, req.StartDate, "start_date")
	if !ok {
		return
	}
	issueDate, ok := parseDateField(c, req.IssueDate, "issue_date")
	if !ok {
		return
	}
	maturityDate, ok := parseDateField(c, req.MaturityDate, "maturity_date")
	if !ok {
		return
	}
	premiumPaymentDate, ok := parseDateField(c, req.PremiumPaymentDate, "premium_payment_date")
	if !ok {
		return
	}

	fields := services.AssetUpdateFields{
		Name:     req.Name,
		IsActive: req.IsActive,

		StockSymbol:   req.StockSymbol,
		PurchasePrice: req.PurchasePrice,
		Quantity:      req.Quantity,
		PurchaseDate:  purchaseDate,
		CurrentPrice:  req.CurrentPrice,
		CurrentValue:  req.CurrentValue,

		AccountNumber: req.AccountNumber,
		Balance:       req.Balance,

		NAV:   req.NAV,
		Units: req.Units,

		PrincipalAmount: req.PrincipalAmount,
		FDInterestRate:  req.FDInterestRate,
		DurationMonths:  req.DurationMonths,
		StartDate:       startDate,

		PolicyNumber:       req.PolicyNumber,
		AmountInsured:      req.AmountInsured,
		IssueDate:          issueDate,
		MaturityDate:       maturityDate,
		Premium:            req.Premium,
		PremiumPaymentDate: premiumPaymentDate,
		Nominee:            req.Nominee,

		CommodityForm:     req.CommodityForm,
		CommodityQuantity: req.CommodityQuantity,
		CommodityUnit:     req.CommodityUnit,
	}

	updated, err := h.assetService.UpdateAsset(userID, assetID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_ASSET", "asset", updated.ID, c.ClientIP(),
		map[string]interface{}{"name": updated.Name, "type": updated.Type})

	c.JSON(http.StatusOK, gin.H{
		"asset":     updated,
		"net_worth": h.netWorthAfter(userID, updated.Market),
	})
}

// DeleteAsset handles deleting an asset.
// @Summary     Delete asset
// @Description Delete an asset owned by the authenticated user. On failure the asset remains unchanged and stays in the market's net worth.
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Asset ID"
// @Success     200 {object} map[string]interface{} "Asset deleted"
// @Failure     400 {object} ErrorResponse "Invalid asset ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id} [delete]
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	deleted, err := h.assetService.DeleteAsset(userID, assetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_ASSET", "asset", deleted.ID, c.ClientIP(),
		map[string]interface{}{"name": deleted.Name, "type": deleted.Type})

	c.JSON(http.StatusOK, gin.H{
		"message":   "Asset deleted",
		"net_worth": h.netWorthAfter(userID, deleted.Market),
	})
}
