package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nestegg/internal/services"
)

// PriceHandler handles on-demand stock price refresh requests.
type PriceHandler struct {
	priceService services.PriceServicer
}

// NewPriceHandler creates a new PriceHandler.
func NewPriceHandler(priceService services.PriceServicer) *PriceHandler {
	return &PriceHandler{priceService: priceService}
}

// RefreshPrices refreshes the user's stock prices
// @Summary     Refresh stock prices
// @Description Fetch current quotes for the authenticated user's stock holdings, update their current values, and record fresh net worth snapshots for both markets. Symbols that fail to resolve keep their last known price.
// @Tags        prices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.PriceRefreshResult "Refresh outcome"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Quote provider unavailable"
// @Router      /prices/refresh [post]
func (h *PriceHandler) RefreshPrices(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.priceService.RefreshUserPrices(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"refresh": result})
}
