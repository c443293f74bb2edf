package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "nestegg/internal/errors"
	"nestegg/internal/models"
	"nestegg/internal/pagination"
	"nestegg/internal/services"
)

// NetWorthHandler handles net worth aggregation requests.
type NetWorthHandler struct {
	netWorthService services.NetWorthServicer
}

// NewNetWorthHandler creates a new NetWorthHandler.
func NewNetWorthHandler(netWorthService services.NetWorthServicer) *NetWorthHandler {
	return &NetWorthHandler{netWorthService: netWorthService}
}

// NetWorthResponse represents one market's net worth in the response.
type NetWorthResponse struct {
	Market           models.Market `json:"market"`
	Currency         string        `json:"currency"`
	StockValue       float64       `json:"stock_value"`
	BankBalance      float64       `json:"bank_balance"`
	FundValue        float64       `json:"fund_value"`
	DepositPrincipal float64       `json:"deposit_principal"`
	CommodityValue   float64       `json:"commodity_value"`
	Total            float64       `json:"total"`
	FormattedTotal   string        `json:"formatted_total"`
}

func marketFromQuery(c *gin.Context) (models.Market, error) {
	market := models.Market(c.Query("market"))
	if !market.Valid() {
		return "", apperrors.ErrInvalidMarket
	}
	return market, nil
}

// GetNetWorth returns a market's current net worth
// @Summary     Get net worth
// @Description Compute the authenticated user's net worth for one market. The figure is re-derived from the stored assets on every call.
// @Tags        networth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       market query string true "Market (india or europe)"
// @Success     200 {object} NetWorthResponse "Net worth breakdown"
// @Failure     400 {object} ErrorResponse "Invalid market"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /networth [get]
func (h *NetWorthHandler) GetNetWorth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	market, err := marketFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.netWorthService.Compute(userID, market)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"net_worth":       summary,
		"formatted_total": formatAmount(summary.Total, summary.Currency),
	})
}

// GetSnapshots returns a market's net worth history
// @Summary     Get net worth snapshots
// @Description Get a paginated history of net worth snapshots for one market, with summary statistics over the requested range. Defaults to the last year.
// @Tags        networth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       market    query string true  "Market (india or europe)"
// @Param       from      query string false "Range start (RFC3339 or YYYY-MM-DD)"
// @Param       to        query string false "Range end (RFC3339 or YYYY-MM-DD)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.NetWorthSnapshot] "Paginated snapshots with stats"
// @Failure     400 {object} ErrorResponse "Invalid market or range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /networth/snapshots [get]
func (h *NetWorthHandler) GetSnapshots(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	market, err := marketFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	to := time.Now().UTC()
	from := to.AddDate(-1, 0, 0)
	if raw := c.Query("from"); raw != "" {
		parsed, parseErr := parseDate(raw)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from format"))
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, parseErr := parseDate(raw)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to format"))
			return
		}
		to = parsed
	}
	if to.Before(from) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must not precede from"))
		return
	}

	result, stats, err := h.netWorthService.GetSnapshots(userID, market, from, to, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshots": result,
		"stats":     stats,
	})
}
