package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds the two balance tracks for an agent. TotalBalance may go
// negative within the configured negative-balance limit; ReservedWinning is
// money the house owes to winners that has not been physically paid out.
type Wallet struct {
	ID              int64           `db:"id"`
	UserID          int64           `db:"user_id"`
	TotalBalance    decimal.Decimal `db:"total_balance"`
	ReservedWinning decimal.Decimal `db:"reserved_winning"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// AvailableBalance is the only balance usable for new bids or admin
// settlement: total minus reserved winnings.
func (w *Wallet) AvailableBalance() decimal.Decimal {
	return w.TotalBalance.Sub(w.ReservedWinning)
}

// CanDebit checks whether debiting amount keeps the available balance
// within the per-agent negative-balance limit.
func (w *Wallet) CanDebit(amount, negativeLimit decimal.Decimal) bool {
	return w.AvailableBalance().Sub(amount).GreaterThanOrEqual(negativeLimit.Neg())
}

// CanSettleFromReserve checks whether the reserved track covers amount.
func (w *Wallet) CanSettleFromReserve(amount decimal.Decimal) bool {
	return w.ReservedWinning.GreaterThanOrEqual(amount)
}
