package models

import (
	"time"

	"nestegg/internal/finance"

	"gorm.io/gorm"
)

// Market is a currency-scoped partition of a user's holdings.
type Market string

const (
	MarketIndia  Market = "india"
	MarketEurope Market = "europe"
)

// Currency returns the ISO 4217 code for the market.
func (m Market) Currency() string {
	switch m {
	case MarketIndia:
		return "INR"
	case MarketEurope:
		return "EUR"
	default:
		return ""
	}
}

// Valid reports whether the market is one of the supported partitions.
func (m Market) Valid() bool {
	return m == MarketIndia || m == MarketEurope
}

// AssetType represents the kind of holding.
type AssetType string

const (
	AssetTypeStock        AssetType = "stock"
	AssetTypeBankAccount  AssetType = "bank_account"
	AssetTypeMutualFund   AssetType = "mutual_fund"
	AssetTypeFixedDeposit AssetType = "fixed_deposit"
	AssetTypeInsurance    AssetType = "insurance"
	AssetTypeCommodity    AssetType = "commodity"
)

// Valid reports whether the asset type is one of the supported kinds.
func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeStock, AssetTypeBankAccount, AssetTypeMutualFund,
		AssetTypeFixedDeposit, AssetTypeInsurance, AssetTypeCommodity:
		return true
	}
	return false
}

// Asset is a kind-polymorphic holding. A single table carries all six
// kinds; only the columns for the asset's Type are meaningful, the rest
// stay at their zero values. Money columns are amounts in the market
// currency.
type Asset struct {
	Base
	UserID   string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Type     AssetType `gorm:"not null;index" json:"type"`
	Market   Market    `gorm:"not null;index" json:"market"`
	Currency string    `gorm:"not null" json:"currency"`
	Name     string    `gorm:"not null" json:"name"`
	IsActive bool      `gorm:"default:true" json:"is_active"`

	// Stock fields. PurchasePrice is the (possibly merge-averaged) buy
	// price; CurrentValue is the live worth, refreshed from CurrentPrice.
	StockSymbol   string     `json:"stock_symbol,omitempty"`
	PurchasePrice float64    `json:"purchase_price,omitempty"`
	Quantity      float64    `json:"quantity,omitempty"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
	CurrentPrice  float64    `json:"current_price,omitempty"`
	CurrentValue  float64    `json:"current_value,omitempty"`

	// Bank account fields.
	AccountNumber string  `json:"account_number,omitempty"`
	Balance       float64 `json:"balance,omitempty"`

	// Mutual fund fields (CurrentValue doubles as the fund's current worth).
	NAV   float64 `gorm:"column:nav" json:"nav,omitempty"`
	Units float64 `json:"units,omitempty"`

	// Fixed deposit fields. MaturityDate and MaturityAmount are derived
	// and recomputed whenever principal, rate, duration, or start change.
	PrincipalAmount float64    `json:"principal_amount,omitempty"`
	FDInterestRate  float64    `gorm:"column:fd_interest_rate" json:"fd_interest_rate,omitempty"`
	DurationMonths  int        `json:"duration_months,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	MaturityDate    *time.Time `json:"maturity_date,omitempty"`
	MaturityAmount  float64    `json:"maturity_amount,omitempty"`

	// Insurance fields (MaturityDate is shared with fixed deposits).
	PolicyNumber       string     `json:"policy_number,omitempty"`
	AmountInsured      float64    `json:"amount_insured,omitempty"`
	IssueDate          *time.Time `json:"issue_date,omitempty"`
	Premium            float64    `json:"premium,omitempty"`
	PremiumPaymentDate *time.Time `json:"premium_payment_date,omitempty"`
	Nominee            string     `json:"nominee,omitempty"`

	// Commodity fields (PurchasePrice, PurchaseDate, and CurrentValue are
	// shared with stocks).
	CommodityForm     string  `json:"commodity_form,omitempty"`
	CommodityQuantity float64 `json:"commodity_quantity,omitempty"`
	CommodityUnit     string  `json:"commodity_unit,omitempty"`

	// Derived on every write and load, never stored.
	InvestedAmount float64 `gorm:"-" json:"total_invested,omitempty"`
}

// TotalInvested returns the amount originally put into the holding, for
// the kinds where that is derived rather than stored.
func (a *Asset) TotalInvested() float64 {
	switch a.Type {
	case AssetTypeStock:
		return a.PurchasePrice * a.Quantity
	case AssetTypeMutualFund:
		return a.NAV * a.Units
	case AssetTypeCommodity:
		return a.PurchasePrice * a.CommodityQuantity
	default:
		return 0
	}
}

// ApplyDerived fills in columns that are functions of other columns:
// the market currency, fixed-deposit maturity date and amount, and the
// default current values for stocks, funds, and commodities. A zero
// current value counts as unset and is recomputed from quantity and
// price. Called from the BeforeCreate hook and again by the service
// layer after updates.
func (a *Asset) ApplyDerived() {
	a.Currency = a.Market.Currency()

	switch a.Type {
	case AssetTypeStock:
		if a.CurrentValue == 0 {
			a.CurrentValue = a.PurchasePrice * a.Quantity
		}
	case AssetTypeMutualFund:
		if a.CurrentValue == 0 {
			a.CurrentValue = a.NAV * a.Units
		}
	case AssetTypeFixedDeposit:
		a.MaturityAmount = finance.MaturityAmount(a.PrincipalAmount, a.FDInterestRate, a.DurationMonths)
		if a.StartDate != nil && a.DurationMonths > 0 {
			d := finance.MaturityDate(*a.StartDate, a.DurationMonths)
			a.MaturityDate = &d
		} else {
			a.MaturityDate = nil
		}
	case AssetTypeCommodity:
		if a.CurrentValue == 0 {
			a.CurrentValue = a.PurchasePrice * a.CommodityQuantity
		}
	}

	a.InvestedAmount = a.TotalInvested()
}

// AfterFind fills in the derived total-invested figure on load.
func (a *Asset) AfterFind(tx *gorm.DB) error {
	a.InvestedAmount = a.TotalInvested()
	return nil
}

// BeforeCreate hook applies derived columns on insert.
func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if err := a.Base.BeforeCreate(tx); err != nil {
		return err
	}
	a.ApplyDerived()
	return nil
}
