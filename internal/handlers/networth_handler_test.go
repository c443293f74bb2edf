package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"nestegg/internal/finance"
	"nestegg/internal/models"
	"nestegg/internal/pagination"
	"nestegg/internal/services"
)

func setupNetWorthRouter(handler *NetWorthHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/networth", handler.GetNetWorth)
	auth.GET("/networth/snapshots", handler.GetSnapshots)
	return r
}

func TestNetWorthHandler_GetNetWorth(t *testing.T) {
	t.Run("returns 200 with formatted total", func(t *testing.T) {
		netWorthSvc := &mockNetWorthService{
			computeFn: func(_ string, market models.Market) (*services.NetWorthSummary, error) {
				return &services.NetWorthSummary{
					Market:   market,
					Currency: market.Currency(),
					Breakdown: finance.Breakdown{
						StockValue:  1000,
						BankBalance: 5000,
					},
					Total: 6000,
				}, nil
			},
		}
		handler := NewNetWorthHandler(netWorthSvc)
		r := setupNetWorthRouter(handler)

		rec := doRequest(r, "GET", "/networth?market=india", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		netWorth := result["net_worth"].(map[string]interface{})
		if netWorth["total"] != 6000.0 {
			t.Errorf("expected total 6000, got %v", netWorth["total"])
		}
		if netWorth["stock_value"] != 1000.0 {
			t.Errorf("expected stock value 1000, got %v", netWorth["stock_value"])
		}
		formatted, _ := result["formatted_total"].(string)
		if formatted == "" {
			t.Error("expected a formatted total")
		}
	})

	t.Run("returns 400 without market", func(t *testing.T) {
		handler := NewNetWorthHandler(&mockNetWorthService{})
		r := setupNetWorthRouter(handler)

		rec := doRequest(r, "GET", "/networth", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_MARKET")
	})

	t.Run("returns 400 on unknown market", func(t *testing.T) {
		handler := NewNetWorthHandler(&mockNetWorthService{})
		r := setupNetWorthRouter(handler)

		rec := doRequest(r, "GET", "/networth?market=us", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestNetWorthHandler_GetSnapshots(t *testing.T) {
	t.Run("returns 200 with stats", func(t *testing.T) {
		netWorthSvc := &mockNetWorthService{
			getSnapshotsFn: func(_ string, market models.Market, from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.NetWorthSnapshot], *services.SnapshotStats, error) {
				resp := pagination.NewPageResponse([]models.NetWorthSnapshot{
					{Market: market, TotalNetWorth: 2000},
					{Market: market, TotalNetWorth: 1000},
				}, 1, 20, 2)
				return &resp, &services.SnapshotStats{Count: 2, Min: 1000, Max: 2000, Mean: 1500}, nil
			},
		}
		handler := NewNetWorthHandler(netWorthSvc)
		r := setupNetWorthRouter(handler)

		rec := doRequest(r, "GET", "/networth/snapshots?market=india", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		stats := result["stats"].(map[string]interface{})
		if stats["mean"] != 1500.0 {
			t.Errorf("expected mean 1500, got %v", stats["mean"])
		}
	})

	t.Run("passes explicit range through", func(t *testing.T) {
		var gotFrom, gotTo time.Time
		netWorthSvc := &mockNetWorthService{
			getSnapshotsFn: func(_ string, _ models.Market, from, to time.Time, _ pagination.PageRequest) (*pagination.PageResponse[models.NetWorthSnapshot], *services.SnapshotStats, error) {
				gotFrom, gotTo = from, to
				resp := pagination.NewPageResponse([]models.NetWorthSnapshot{}, 1, 20, 0)
				return &resp, &services.SnapshotStats{}, nil
			},
		}
		handler := NewNetWorthHandler(netWorthSvc)
		r := setupNetWorthRouter(handler)

		rec := doRequest(r, "GET", "/networth/snapshots?market=india&from=2026-01-01&to=2026-02-01", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFrom.Month() != time.January || gotTo.Month() != time.February {
			t.Errorf("expected Jan-Feb range, got %v to %v", gotFrom, gotTo)
		}
	})

	t.Run("returns 400 on inverted range", func(t *testing.T) {
		handler := NewNetWorthHandler(&mockNetWorthService{})
		r := setupNetWorthRouter(handler)

		rec := doRequest(r, "GET", "/networth/snapshots?market=india&from=2026-02-01&to=2026-01-01", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		handler := NewNetWorthHandler(&mockNetWorthService{})
		r := setupNetWorthRouter(handler)

		rec := doRequest(r, "GET", "/networth/snapshots?market=india&from=01-01-2026", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
