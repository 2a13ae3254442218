package entities

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TxMeta is the tagged union of per-type ledger metadata. Each transaction
// type carries exactly one concrete meta shape, giving compile-time
// guarantees over the fields instead of free-form key lookups.
type TxMeta interface {
	isTxMeta()
}

// DepositMeta accompanies BID_CREDIT deposit requests.
type DepositMeta struct {
	Reference   string `json:"reference"`
	ExternalRef string `json:"externalRef,omitempty"`
	ApprovedBy  *int64 `json:"approvedBy,omitempty"`
}

// BidMeta accompanies BID_DEBIT and COMMISSION_CREDIT entries.
type BidMeta struct {
	SlotID      int64  `json:"slotId"`
	SlotCode    string `json:"slotCode,omitempty"`
	BidID       int64  `json:"bidId,omitempty"`
	UniqueBidID string `json:"uniqueBidId,omitempty"`
}

// WinMeta accompanies WIN_CREDIT reservation entries.
type WinMeta struct {
	SlotID     int64           `json:"slotId"`
	BidID      int64           `json:"bidId"`
	Winner     string          `json:"winner"`
	UnitPayout decimal.Decimal `json:"unitPayout"`
	Units      int64           `json:"units"`
}

// SettlementMeta accompanies settlement and withdraw entries.
type SettlementMeta struct {
	AdminID   int64  `json:"adminId,omitempty"`
	Reference string `json:"reference,omitempty"`
	Note      string `json:"note,omitempty"`
}

func (DepositMeta) isTxMeta()    {}
func (BidMeta) isTxMeta()        {}
func (WinMeta) isTxMeta()        {}
func (SettlementMeta) isTxMeta() {}

// WalletTx is an immutable ledger entry. Amount is signed: negative for
// debits and settlements out of the wallet. BalanceAfter and ReservedAfter
// snapshot the wallet tracks after the entry applied. The only tolerated
// update after creation is a pending deposit's status flip (and, on
// approval, its balance_after back-fill).
type WalletTx struct {
	ID            int64           `db:"id"`
	WalletID      int64           `db:"wallet_id"`
	Type          TransactionType `db:"type"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	ReservedAfter decimal.Decimal `db:"reserved_after"`
	DepositStatus *DepositStatus  `db:"deposit_status"`
	Meta          TxMeta          `db:"meta"`
	CreatedAt     time.Time       `db:"created_at"`
}

// IsPendingDeposit returns true for an unresolved deposit request.
func (t *WalletTx) IsPendingDeposit() bool {
	return t.Type == TransactionTypeBidCredit &&
		t.DepositStatus != nil && *t.DepositStatus == DepositStatusPending
}

// CountsTowardBalance returns true if this entry's amount is part of the
// ledger-to-balance reconciliation sum. Reservations never touch the total
// balance, and deposits only count once approved.
func (t *WalletTx) CountsTowardBalance() bool {
	if t.Type == TransactionTypeWinCredit {
		return false
	}
	if t.Type == TransactionTypeBidCredit {
		return t.DepositStatus != nil && *t.DepositStatus == DepositStatusApproved
	}
	return true
}

// Validate performs basic shape validation on the ledger entry.
func (t *WalletTx) Validate() error {
	if !t.Type.IsValid() {
		return errors.New("unknown transaction type")
	}
	if t.Amount.IsZero() {
		return errors.New("amount cannot be zero")
	}
	if t.Type == TransactionTypeBidCredit && t.DepositStatus == nil {
		return errors.New("deposit entry requires a status")
	}
	if t.Type != TransactionTypeBidCredit && t.DepositStatus != nil {
		return errors.New("only deposit entries carry a status")
	}
	return nil
}
