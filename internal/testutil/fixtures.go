package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"nestegg/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createAsset(t *testing.T, db *gorm.DB, asset *models.Asset) *models.Asset {
	t.Helper()

	asset.IsActive = true
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// CreateTestStock creates a stock holding.
func CreateTestStock(t *testing.T, db *gorm.DB, userID string, market models.Market, name string, price, quantity float64) *models.Asset {
	t.Helper()

	return createAsset(t, db, &models.Asset{
		UserID:        userID,
		Type:          models.AssetTypeStock,
		Market:        market,
		Name:          name,
		StockSymbol:   fmt.Sprintf("SYM%d", nextID()),
		PurchasePrice: price,
		Quantity:      quantity,
	})
}

// CreateTestBankAccount creates a bank account holding with the given balance.
func CreateTestBankAccount(t *testing.T, db *gorm.DB, userID string, market models.Market, balance float64) *models.Asset {
	t.Helper()

	return createAsset(t, db, &models.Asset{
		UserID:        userID,
		Type:          models.AssetTypeBankAccount,
		Market:        market,
		Name:          fmt.Sprintf("Test Bank %d", nextID()),
		AccountNumber: fmt.Sprintf("ACC%08d", nextID()),
		Balance:       balance,
	})
}

// CreateTestMutualFund creates a mutual fund holding.
func CreateTestMutualFund(t *testing.T, db *gorm.DB, userID string, market models.Market, nav, units float64) *models.Asset {
	t.Helper()

	return createAsset(t, db, &models.Asset{
		UserID: userID,
		Type:   models.AssetTypeMutualFund,
		Market: market,
		Name:   fmt.Sprintf("Test Fund %d", nextID()),
		NAV:    nav,
		Units:  units,
	})
}

// CreateTestFixedDeposit creates a fixed deposit; maturity fields are derived
// by the create hook.
func CreateTestFixedDeposit(t *testing.T, db *gorm.DB, userID string, market models.Market, principal, ratePct float64, months int) *models.Asset {
	t.Helper()

	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return createAsset(t, db, &models.Asset{
		UserID:          userID,
		Type:            models.AssetTypeFixedDeposit,
		Market:          market,
		Name:            fmt.Sprintf("Test FD %d", nextID()),
		PrincipalAmount: principal,
		FDInterestRate:  ratePct,
		DurationMonths:  months,
		StartDate:       &start,
	})
}

// CreateTestInsurance creates an insurance policy holding.
func CreateTestInsurance(t *testing.T, db *gorm.DB, userID string, market models.Market, amountInsured, premium float64) *models.Asset {
	t.Helper()

	issued := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	return createAsset(t, db, &models.Asset{
		UserID:        userID,
		Type:          models.AssetTypeInsurance,
		Market:        market,
		Name:          fmt.Sprintf("Test Policy %d", nextID()),
		PolicyNumber:  fmt.Sprintf("POL%06d", nextID()),
		AmountInsured: amountInsured,
		IssueDate:     &issued,
		Premium:       premium,
		Nominee:       "Test Nominee",
	})
}

// CreateTestCommodity creates a commodity holding.
func CreateTestCommodity(t *testing.T, db *gorm.DB, userID string, market models.Market, price, quantity float64) *models.Asset {
	t.Helper()

	return createAsset(t, db, &models.Asset{
		UserID:            userID,
		Type:              models.AssetTypeCommodity,
		Market:            market,
		Name:              fmt.Sprintf("Test Gold %d", nextID()),
		PurchasePrice:     price,
		CommodityForm:     "coin",
		CommodityQuantity: quantity,
		CommodityUnit:     "g",
	})
}
