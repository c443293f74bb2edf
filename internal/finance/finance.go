// Package finance holds the pure portfolio math: net-worth aggregation,
// fixed-deposit maturity, and stock lot merging. Everything here is
// deterministic and side-effect free so the rules stay testable on their own.
package finance

import (
	"math"
	"time"
)

// Breakdown holds the per-kind components of a market's net worth.
// Insurance policies are deliberately absent: they never count toward
// net worth.
type Breakdown struct {
	StockValue       float64 `json:"stock_value"`
	BankBalance      float64 `json:"bank_balance"`
	FundValue        float64 `json:"fund_value"`
	DepositPrincipal float64 `json:"deposit_principal"`
	CommodityValue   float64 `json:"commodity_value"`
}

// Total returns the market net worth: the sum of current stock worth,
// bank balances, fund worth, fixed-deposit principal (not maturity
// amount), and commodity value. Empty components contribute 0.
func (b Breakdown) Total() float64 {
	return b.StockValue + b.BankBalance + b.FundValue + b.DepositPrincipal + b.CommodityValue
}

// MaturityAmount computes a fixed deposit's value at maturity with annual
// compounding over a fractional year count:
//
//	amount = principal * (1 + rate/100)^(months/12)
//
// Nonsensical inputs (principal, rate, or duration <= 0) yield 0; this is
// a guard, not an error signal.
func MaturityAmount(principal, annualRatePct float64, durationMonths int) float64 {
	if principal <= 0 || annualRatePct <= 0 || durationMonths <= 0 {
		return 0
	}
	years := float64(durationMonths) / 12
	return principal * math.Pow(1+annualRatePct/100, years)
}

// MaturityDate advances a start date by the deposit duration using
// calendar-month arithmetic, not day counting.
func MaturityDate(start time.Time, durationMonths int) time.Time {
	return start.AddDate(0, durationMonths, 0)
}

// MonthsBetween returns the number of whole calendar months from start to
// end. The day of month is respected: Jan 31 to Feb 28 is 0 months.
// Calendar-month arithmetic is used everywhere a deposit duration is
// derived from dates; there is no 30-day-month approximation.
func MonthsBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// MergedLot is the result of merging a new stock purchase into an
// existing holding of the same stock.
type MergedLot struct {
	Quantity      float64
	TotalInvested float64
	AveragePrice  float64
}

// MergeStockLots combines an existing holding with an additional purchase:
// quantities and invested amounts add, and the average price is the
// quantity-weighted mean of the two lots.
func MergeStockLots(oldPrice, oldQty, addPrice, addQty float64) MergedLot {
	lot := MergedLot{
		Quantity:      oldQty + addQty,
		TotalInvested: oldPrice*oldQty + addPrice*addQty,
	}
	if lot.Quantity > 0 {
		lot.AveragePrice = lot.TotalInvested / lot.Quantity
	}
	return lot
}
