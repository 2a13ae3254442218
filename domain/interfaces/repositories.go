package interfaces

import (
	"context"
	"time"

	"drawhouse/domain/entities"

	"github.com/shopspring/decimal"
)

// WalletRepository defines data access for wallet rows. The wallet row is
// the unit of mutual exclusion: every balance-affecting operation loads it
// with GetByUserIDForUpdate inside a transaction.
type WalletRepository interface {
	// GetByUserID retrieves a wallet, or nil if the user has none yet.
	GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error)

	// GetByUserIDForUpdate retrieves a wallet with a row lock, or nil.
	GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error)

	// GetByIDForUpdate retrieves a wallet by row id with a row lock, or nil.
	GetByIDForUpdate(ctx context.Context, walletID int64) (*entities.Wallet, error)

	// Create creates a zero-balance wallet for the user.
	Create(ctx context.Context, userID int64) (*entities.Wallet, error)

	// UpdateBalances writes both balance tracks atomically.
	UpdateBalances(ctx context.Context, walletID int64, total, reserved decimal.Decimal) error
}

// WalletTxRepository defines data access for the append-only ledger.
type WalletTxRepository interface {
	// Record appends a ledger entry and back-fills its ID and CreatedAt.
	Record(ctx context.Context, tx *entities.WalletTx) error

	// GetByIDForUpdate retrieves a ledger entry with a row lock, or nil.
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.WalletTx, error)

	// ResolveDeposit flips a pending deposit's status and back-fills its
	// balance_after snapshot. The one tolerated update-after-create.
	ResolveDeposit(ctx context.Context, id int64, status entities.DepositStatus, balanceAfter decimal.Decimal) error

	// ListByWallet returns the most recent entries for a wallet.
	ListByWallet(ctx context.Context, walletID int64, limit int) ([]*entities.WalletTx, error)

	// SumBalanceAffecting returns the sum of amounts that move the total
	// balance (reservations and unapproved deposits excluded), for
	// ledger-to-balance reconciliation.
	SumBalanceAffecting(ctx context.Context, walletID int64) (decimal.Decimal, error)
}

// SlotRepository defines data access for draw slots.
type SlotRepository interface {
	// Create persists a new slot and back-fills its ID.
	Create(ctx context.Context, slot *entities.Slot) error

	// GetByID retrieves a slot, or nil if absent.
	GetByID(ctx context.Context, id int64) (*entities.Slot, error)

	// GetByIDForUpdate retrieves a slot with a row lock, or nil.
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Slot, error)

	// UpdateStatus writes the slot's lifecycle state.
	UpdateStatus(ctx context.Context, id int64, status entities.SlotStatus) error

	// UpdateSchedule rewrites slot time and window close for an OPEN slot.
	UpdateSchedule(ctx context.Context, id int64, slotTime, windowCloseAt time.Time) error

	// ListExpiredOpen returns OPEN slots whose window has passed.
	ListExpiredOpen(ctx context.Context, now time.Time) ([]*entities.Slot, error)

	// ListAnnounceDue returns CLOSED slots past their draw time.
	ListAnnounceDue(ctx context.Context, now time.Time) ([]*entities.Slot, error)
}

// BidRepository defines the payout engine's read contract over stakes,
// plus the write used by bid placement. Aggregates cover ACTIVE bids only.
type BidRepository interface {
	// Create persists a new bid and back-fills its ID.
	Create(ctx context.Context, bid *entities.Bid) error

	// CountBySlot returns the number of active bids on a slot.
	CountBySlot(ctx context.Context, slotID int64) (int64, error)

	// AggregateCollected returns the total stake collected for a slot.
	AggregateCollected(ctx context.Context, slotID int64) (decimal.Decimal, error)

	// AggregateUnitsBySelection returns real units keyed by selection
	// (number for LD, sorted combo key for JP).
	AggregateUnitsBySelection(ctx context.Context, slotID int64) (map[string]int64, error)

	// ListBySelection returns the active bids on one selection key.
	ListBySelection(ctx context.Context, slotID int64, key string) ([]*entities.Bid, error)

	// SumUnitsForNumber returns the units already staked on an LD number.
	SumUnitsForNumber(ctx context.Context, slotID int64, number int) (int64, error)
}

// DrawResultRepository defines data access for announced results.
type DrawResultRepository interface {
	// Create persists a result and back-fills its ID.
	Create(ctx context.Context, result *entities.DrawResult) error

	// GetBySlotID retrieves the result for a slot, or nil if absent.
	GetBySlotID(ctx context.Context, slotID int64) (*entities.DrawResult, error)
}

// SettingsRepository defines access to the configuration singleton.
type SettingsRepository interface {
	// Get retrieves the settings row, creating defaults when absent.
	Get(ctx context.Context) (*entities.AppSettings, error)

	// Update overwrites the settings row.
	Update(ctx context.Context, settings *entities.AppSettings) error
}
