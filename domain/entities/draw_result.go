package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// DrawResult is the announced outcome of a completed slot, one per slot.
// Created exactly once, atomically with the slot's COMPLETED transition,
// and never updated. DisplayUnits is cosmetic only and must never feed a
// financial computation.
type DrawResult struct {
	ID            int64            `db:"id"`
	SlotID        int64            `db:"slot_id"`
	Winner        string           `db:"winner"` // number or dash-joined sorted combo
	DummyUnits    int64            `db:"dummy_units"`
	TotalUnits    int64            `db:"total_units"` // real + dummy
	PerUnitPayout decimal.Decimal  `db:"per_unit_payout"`
	PayoutTotal   decimal.Decimal  `db:"payout_total"` // amount actually credited to real winners
	AnnouncedBy   string           `db:"announced_by"` // admin id or "SYSTEM"
	Collected     decimal.Decimal  `db:"collected"`
	ProfitPct     decimal.Decimal  `db:"profit_pct"`
	DisplayUnits  map[string]int64 `db:"display_units"`
	CreatedAt     time.Time        `db:"created_at"`
}

// RealUnits returns the number of real (paying) units behind the result.
func (r *DrawResult) RealUnits() int64 {
	return r.TotalUnits - r.DummyUnits
}

// Profit returns the house take for the slot: collected minus real payout.
func (r *DrawResult) Profit() decimal.Decimal {
	return r.Collected.Sub(r.PayoutTotal)
}
