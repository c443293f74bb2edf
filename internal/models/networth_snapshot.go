package models

import (
	"time"

	"nestegg/internal/uuid"

	"gorm.io/gorm"
)

// NetWorthSnapshot represents a point-in-time net worth figure for one
// market of a user's portfolio. Immutable time-series data — no Base
// embed, no soft deletes.
type NetWorthSnapshot struct {
	ID               string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Market           Market    `gorm:"not null" json:"market"`
	RecordedAt       time.Time `gorm:"not null" json:"recorded_at"`
	StockValue       float64   `gorm:"not null" json:"stock_value"`
	BankBalance      float64   `gorm:"not null" json:"bank_balance"`
	FundValue        float64   `gorm:"not null" json:"fund_value"`
	DepositPrincipal float64   `gorm:"not null" json:"deposit_principal"`
	CommodityValue   float64   `gorm:"not null" json:"commodity_value"`
	TotalNetWorth    float64   `gorm:"not null" json:"total_net_worth"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (s *NetWorthSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New()
	}
	return nil
}
