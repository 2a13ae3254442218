package interfaces

import (
	"context"
	"time"

	"drawhouse/domain/entities"

	"github.com/shopspring/decimal"
)

// SystemActor is the actor recorded when the scheduler announces a result.
const SystemActor = "SYSTEM"

// WalletLedger owns every wallet state transition. Each operation is one
// atomic unit over the wallet row plus one new ledger row; callers supply
// the settings snapshot so the ledger never reads global configuration.
type WalletLedger interface {
	// DebitForBid decreases the total balance by amount for a stake.
	// Fails with ErrInsufficientFunds when the available balance would
	// drop below the negative-balance limit.
	DebitForBid(ctx context.Context, userID int64, amount decimal.Decimal, meta entities.BidMeta, settings entities.SettingsSnapshot) (*entities.Wallet, error)

	// CreditCommission increases the total balance; creates the wallet
	// lazily when absent.
	CreditCommission(ctx context.Context, userID int64, amount decimal.Decimal, meta entities.BidMeta) (*entities.Wallet, error)

	// CreditWinning increases the reserved-winning track only. Fails with
	// ErrWalletNotFound when the user has no wallet.
	CreditWinning(ctx context.Context, userID int64, amount decimal.Decimal, meta entities.WinMeta) (*entities.Wallet, error)

	// WinningSettlementToAgent records the admin paying an agent:
	// increases the total balance, leaves the reserve untouched.
	WinningSettlementToAgent(ctx context.Context, adminID, userID int64, amount decimal.Decimal) (*entities.Wallet, error)

	// WinningSettlementToUser records the agent paying the end customer:
	// decrements both the reserve and the total balance. Fails with
	// ErrInsufficientReserve when the reserve does not cover amount.
	WinningSettlementToUser(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*entities.Wallet, error)

	// SettleCommissionByAdmin decreases the total balance; requires
	// amount within the available balance.
	SettleCommissionByAdmin(ctx context.Context, adminID, userID int64, amount decimal.Decimal) (*entities.Wallet, error)

	// AdminProcessWithdraw decreases the total balance; requires amount
	// within the available balance.
	AdminProcessWithdraw(ctx context.Context, adminID, userID int64, amount decimal.Decimal) (*entities.Wallet, error)

	// RequestBidDeposit appends a PENDING deposit row with zero balance
	// effect and returns it.
	RequestBidDeposit(ctx context.Context, userID int64, amount decimal.Decimal, externalRef string) (*entities.WalletTx, error)

	// ApproveDeposit resolves a pending deposit: on approval the amount
	// is applied to the total balance and the row's snapshot back-filled;
	// on decline the row is marked without balance effect.
	ApproveDeposit(ctx context.Context, adminID, txID int64, approve bool) (*entities.Wallet, error)
}

// PlannedCredit is one winner credit the orchestrator intends to apply.
type PlannedCredit struct {
	UserID int64
	BidID  int64
	Units  int64
	Amount decimal.Decimal
}

// CreditFailure describes one winner that could not be credited.
type CreditFailure struct {
	UserID int64
	BidID  int64
	Reason string
}

// AnnounceOutcome is the result of a successful announcement.
type AnnounceOutcome struct {
	Result  *entities.DrawResult
	Credits []PlannedCredit
}

// DrawAnnouncer sequences payout computation, winner crediting and result
// persistence for a closed slot. Credit-or-abort: a result is never
// persisted unless every real winner was credited.
type DrawAnnouncer interface {
	// AnnounceResult announces the slot's outcome. selector is the
	// explicit winning number/combo key from an admin, or nil to let the
	// auto-selection policy choose.
	AnnounceResult(ctx context.Context, actor string, slotID int64, selector *string) (*AnnounceOutcome, error)
}

// PlaceBidInput carries one stake request from an agent.
type PlaceBidInput struct {
	SlotID        int64
	CustomerName  string
	CustomerPhone string
	Number        *int  // LD
	Count         int64 // LD units
	JPNumbers     []int // JP combo
}

// BidPlacer validates and records stakes, debiting the agent wallet and
// crediting commission in the same transaction scope.
type BidPlacer interface {
	PlaceBid(ctx context.Context, userID int64, input PlaceBidInput) (*entities.Bid, error)
}

// SlotLifecycle manages slot scheduling and the OPEN -> CLOSED transition.
type SlotLifecycle interface {
	// CreateSlot schedules a draw with a settings snapshot.
	CreateSlot(ctx context.Context, slotType entities.SlotType, slotTime time.Time) (*entities.Slot, error)

	// Reschedule moves an OPEN slot with no bids to a new draw time.
	Reschedule(ctx context.Context, slotID int64, slotTime time.Time) (*entities.Slot, error)

	// CloseExpired transitions every OPEN slot past its window close and
	// returns the slots it closed.
	CloseExpired(ctx context.Context, now time.Time) ([]*entities.Slot, error)
}
