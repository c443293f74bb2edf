package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "nestegg/internal/errors"
	"nestegg/internal/finance"
	"nestegg/internal/models"
	"nestegg/internal/pagination"
	"nestegg/internal/services"
)

// --- mock asset service ---

type mockAssetService struct {
	createAssetFn   func(userID string, asset *models.Asset) (*models.Asset, bool, error)
	getUserAssetsFn func(userID string, filter services.AssetFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error)
	getAssetByIDFn  func(userID, assetID string) (*models.Asset, error)
	updateAssetFn   func(userID, assetID string, fields services.AssetUpdateFields) (*models.Asset, error)
	deleteAssetFn   func(userID, assetID string) (*models.Asset, error)
}

func (m *mockAssetService) CreateAsset(userID string, asset *models.Asset) (*models.Asset, bool, error) {
	if m.createAssetFn != nil {
		return m.createAssetFn(userID, asset)
	}
	return asset, false, nil
}

func (m *mockAssetService) GetUserAssets(userID string, filter services.AssetFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error) {
	if m.getUserAssetsFn != nil {
		return m.getUserAssetsFn(userID, filter, page)
	}
	resp := pagination.NewPageResponse([]models.Asset{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAssetService) GetAssetByID(userID, assetID string) (*models.Asset, error) {
	if m.getAssetByIDFn != nil {
		return m.getAssetByIDFn(userID, assetID)
	}
	return &models.Asset{}, nil
}

func (m *mockAssetService) UpdateAsset(userID, assetID string, fields services.AssetUpdateFields) (*models.Asset, error) {
	if m.updateAssetFn != nil {
		return m.updateAssetFn(userID, assetID, fields)
	}
	return &models.Asset{}, nil
}

func (m *mockAssetService) DeleteAsset(userID, assetID string) (*models.Asset, error) {
	if m.deleteAssetFn != nil {
		return m.deleteAssetFn(userID, assetID)
	}
	return &models.Asset{}, nil
}

var _ services.AssetServicer = (*mockAssetService)(nil)

// --- mock net worth service ---

type mockNetWorthService struct {
	computeFn        func(userID string, market models.Market) (*services.NetWorthSummary, error)
	recordSnapshotFn func(userID string, market models.Market, recordedAt time.Time) (*models.NetWorthSnapshot, error)
	getSnapshotsFn   func(userID string, market models.Market, from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.NetWorthSnapshot], *services.SnapshotStats, error)
}

func (m *mockNetWorthService) Compute(userID string, market models.Market) (*services.NetWorthSummary, error) {
	if m.computeFn != nil {
		return m.computeFn(userID, market)
	}
	return &services.NetWorthSummary{Market: market, Currency: market.Currency()}, nil
}

func (m *mockNetWorthService) RecordSnapshot(userID string, market models.Market, recordedAt time.Time) (*models.NetWorthSnapshot, error) {
	if m.recordSnapshotFn != nil {
		return m.recordSnapshotFn(userID, market, recordedAt)
	}
	return &models.NetWorthSnapshot{}, nil
}

func (m *mockNetWorthService) GetSnapshots(userID string, market models.Market, from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.NetWorthSnapshot], *services.SnapshotStats, error) {
	if m.getSnapshotsFn != nil {
		return m.getSnapshotsFn(userID, market, from, to, page)
	}
	resp := pagination.NewPageResponse([]models.NetWorthSnapshot{}, 1, 20, 0)
	return &resp, &services.SnapshotStats{}, nil
}

var _ services.NetWorthServicer = (*mockNetWorthService)(nil)

// --- router ---

const testAssetID = "0198c5e6-2222-7000-8000-000000000002"

func setupAssetRouter(handler *AssetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/assets", handler.CreateAsset)
	auth.GET("/assets", handler.GetUserAssets)
	auth.GET("/assets/:id", handler.GetAssetByID)
	auth.PUT("/assets/:id", handler.UpdateAsset)
	auth.DELETE("/assets/:id", handler.DeleteAsset)
	return r
}

// --- tests ---

func TestAssetHandler_CreateAsset(t *testing.T) {
	t.Run("returns 201 with net worth", func(t *testing.T) {
		assetSvc := &mockAssetService{
			createAssetFn: func(userID string, asset *models.Asset) (*models.Asset, bool, error) {
				asset.ID = testAssetID
				asset.UserID = userID
				asset.Currency = asset.Market.Currency()
				return asset, false, nil
			},
		}
		netWorthSvc := &mockNetWorthService{
			computeFn: func(_ string, market models.Market) (*services.NetWorthSummary, error) {
				return &services.NetWorthSummary{
					Market:    market,
					Currency:  market.Currency(),
					Breakdown: finance.Breakdown{StockValue: 1000},
					Total:     1000,
				}, nil
			},
		}
		handler := NewAssetHandler(assetSvc, netWorthSvc, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "POST", "/assets",
			`{"type":"stock","market":"india","name":"Reliance","purchase_price":100,"quantity":10}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["merged"] != false {
			t.Errorf("expected merged=false, got %v", result["merged"])
		}
		netWorth := result["net_worth"].(map[string]interface{})
		summary := netWorth["summary"].(map[string]interface{})
		if summary["total"] != 1000.0 {
			t.Errorf("expected total 1000, got %v", summary["total"])
		}
		if netWorth["formatted_total"] == nil {
			t.Error("expected formatted total")
		}
	})

	t.Run("reports merge", func(t *testing.T) {
		assetSvc := &mockAssetService{
			createAssetFn: func(_ string, asset *models.Asset) (*models.Asset, bool, error) {
				asset.ID = testAssetID
				asset.Quantity = 20
				asset.PurchasePrice = 110
				return asset, true, nil
			},
		}
		handler := NewAssetHandler(assetSvc, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "POST", "/assets",
			`{"type":"stock","market":"india","name":"Reliance","purchase_price":120,"quantity":10}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["merged"] != true {
			t.Errorf("expected merged=true, got %v", result["merged"])
		}
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		handler := NewAssetHandler(&mockAssetService{}, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "POST", "/assets",
			`{"type":"bond","market":"india","name":"Gilt"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on unknown market", func(t *testing.T) {
		handler := NewAssetHandler(&mockAssetService{}, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "POST", "/assets",
			`{"type":"stock","market":"us","name":"Apple","purchase_price":100,"quantity":1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		handler := NewAssetHandler(&mockAssetService{}, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "POST", "/assets",
			`{"type":"fixed_deposit","market":"india","name":"SBI FD","principal_amount":100000,"fd_interest_rate":7,"duration_months":12,"start_date":"15-01-2024"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("accepts plain date format", func(t *testing.T) {
		var gotStart *time.Time
		assetSvc := &mockAssetService{
			createAssetFn: func(_ string, asset *models.Asset) (*models.Asset, bool, error) {
				gotStart = asset.StartDate
				asset.ID = testAssetID
				return asset, false, nil
			},
		}
		handler := NewAssetHandler(assetSvc, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "POST", "/assets",
			`{"type":"fixed_deposit","market":"india","name":"SBI FD","principal_amount":100000,"fd_interest_rate":7,"duration_months":12,"start_date":"2024-01-15"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotStart == nil || gotStart.Day() != 15 {
			t.Errorf("expected parsed start date, got %v", gotStart)
		}
	})

	t.Run("derives deposit duration from dates", func(t *testing.T) {
		var gotDuration int
		assetSvc := &mockAssetService{
			createAssetFn: func(_ string, asset *models.Asset) (*models.Asset, bool, error) {
				gotDuration = asset.DurationMonths
				asset.ID = testAssetID
				return asset, false, nil
			},
		}
		handler := NewAssetHandler(assetSvc, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "POST", "/assets",
			`{"type":"fixed_deposit","market":"india","name":"SBI FD","principal_amount":100000,"fd_interest_rate":7,"start_date":"2024-01-15","maturity_date":"2025-07-15"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotDuration != 18 {
			t.Errorf("expected derived duration of 18 months, got %d", gotDuration)
		}
	})
}

func TestAssetHandler_GetUserAssets(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		var gotFilter services.AssetFilter
		assetSvc := &mockAssetService{
			getUserAssetsFn: func(_ string, filter services.AssetFilter, _ pagination.PageRequest) (*pagination.PageResponse[models.Asset], error) {
				gotFilter = filter
				resp := pagination.NewPageResponse([]models.Asset{{Name: "Reliance"}}, 1, 20, 1)
				return &resp, nil
			},
		}
		handler := NewAssetHandler(assetSvc, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "GET", "/assets?market=india&type=stock", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.Market == nil || *gotFilter.Market != models.MarketIndia {
			t.Error("expected india market filter")
		}
		if gotFilter.Type == nil || *gotFilter.Type != models.AssetTypeStock {
			t.Error("expected stock type filter")
		}
	})

	t.Run("returns 400 on bad market filter", func(t *testing.T) {
		handler := NewAssetHandler(&mockAssetService{}, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "GET", "/assets?market=us", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_MARKET")
	})

	t.Run("returns 400 on bad type filter", func(t *testing.T) {
		handler := NewAssetHandler(&mockAssetService{}, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "GET", "/assets?type=bond", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_ASSET_TYPE")
	})
}

func TestAssetHandler_GetAssetByID(t *testing.T) {
	t.Run("returns 200", func(t *testing.T) {
		assetSvc := &mockAssetService{
			getAssetByIDFn: func(_, assetID string) (*models.Asset, error) {
				return &models.Asset{Base: models.Base{ID: assetID}, Name: "Reliance"}, nil
			},
		}
		handler := NewAssetHandler(assetSvc, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "GET", "/assets/"+testAssetID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		asset := result["asset"].(map[string]interface{})
		if asset["name"] != "Reliance" {
			t.Errorf("expected Reliance, got %v", asset["name"])
		}
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		handler := NewAssetHandler(&mockAssetService{}, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "GET", "/assets/not-a-uuid", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		assetSvc := &mockAssetService{
			getAssetByIDFn: func(_, _ string) (*models.Asset, error) {
				return nil, apperrors.ErrAssetNotFound
			},
		}
		handler := NewAssetHandler(assetSvc, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "GET", "/assets/"+testAssetID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ASSET_NOT_FOUND")
	})
}

func TestAssetHandler_UpdateAsset(t *testing.T) {
	t.Run("returns 200 with net worth", func(t *testing.T) {
		assetSvc := &mockAssetService{
			updateAssetFn: func(_, assetID string, fields services.AssetUpdateFields) (*models.Asset, error) {
				return &models.Asset{
					Base:    models.Base{ID: assetID},
					Type:    models.AssetTypeBankAccount,
					Market:  models.MarketIndia,
					Name:    "HDFC Savings",
					Balance: *fields.Balance,
				}, nil
			},
		}
		netWorthSvc := &mockNetWorthService{
			computeFn: func(_ string, market models.Market) (*services.NetWorthSummary, error) {
				return &services.NetWorthSummary{
					Market:    market,
					Currency:  market.Currency(),
					Breakdown: finance.Breakdown{BankBalance: 7500},
					Total:     7500,
				}, nil
			},
		}
		handler := NewAssetHandler(assetSvc, netWorthSvc, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "PUT", "/assets/"+testAssetID, `{"balance":7500}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		netWorth := result["net_worth"].(map[string]interface{})
		summary := netWorth["summary"].(map[string]interface{})
		if summary["total"] != 7500.0 {
			t.Errorf("expected total 7500, got %v", summary["total"])
		}
	})

	t.Run("returns 400 on negative balance", func(t *testing.T) {
		handler := NewAssetHandler(&mockAssetService{}, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "PUT", "/assets/"+testAssetID, `{"balance":-100}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		assetSvc := &mockAssetService{
			updateAssetFn: func(_, _ string, _ services.AssetUpdateFields) (*models.Asset, error) {
				return nil, apperrors.ErrAssetNotFound
			},
		}
		handler := NewAssetHandler(assetSvc, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "PUT", "/assets/"+testAssetID, `{"name":"New Name"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestAssetHandler_DeleteAsset(t *testing.T) {
	t.Run("returns 200 with net worth for the deleted market", func(t *testing.T) {
		assetSvc := &mockAssetService{
			deleteAssetFn: func(_, assetID string) (*models.Asset, error) {
				return &models.Asset{
					Base:   models.Base{ID: assetID},
					Type:   models.AssetTypeStock,
					Market: models.MarketEurope,
					Name:   "Shell",
				}, nil
			},
		}
		var computedMarket models.Market
		netWorthSvc := &mockNetWorthService{
			computeFn: func(_ string, market models.Market) (*services.NetWorthSummary, error) {
				computedMarket = market
				return &services.NetWorthSummary{Market: market, Currency: market.Currency()}, nil
			},
		}
		handler := NewAssetHandler(assetSvc, netWorthSvc, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "DELETE", "/assets/"+testAssetID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if computedMarket != models.MarketEurope {
			t.Errorf("expected europe net worth recomputed, got %q", computedMarket)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		assetSvc := &mockAssetService{
			deleteAssetFn: func(_, _ string) (*models.Asset, error) {
				return nil, apperrors.ErrAssetNotFound
			},
		}
		handler := NewAssetHandler(assetSvc, &mockNetWorthService{}, &mockAuditService{})
		r := setupAssetRouter(handler)

		rec := doRequest(r, "DELETE", "/assets/"+testAssetID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
