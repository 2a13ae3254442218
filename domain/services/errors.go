package services

import (
	"errors"
	"fmt"

	"drawhouse/domain/interfaces"
)

// Sentinel errors for the wallet ledger and draw lifecycle. Callers match
// with errors.Is; validation failures surface as plain errors.
var (
	ErrInsufficientFunds   = errors.New("insufficient available balance")
	ErrInsufficientReserve = errors.New("insufficient reserved winning")
	ErrWalletNotFound      = errors.New("wallet not found")

	ErrSlotNotFound         = errors.New("slot not found")
	ErrSlotAlreadyCompleted = errors.New("slot already completed")
	ErrAnnounceTooEarly     = errors.New("betting window has not closed yet")
	ErrSlotImmutable        = errors.New("slot has bids and cannot be edited")
	ErrBidWindowClosed      = errors.New("betting window is closed")
	ErrNumberCapExceeded    = errors.New("bid limit reached for this number")

	ErrDepositNotPending = errors.New("deposit request already resolved")
)

// AnnouncementError aborts a draw announcement when one or more winner
// credits cannot be applied. The whole announcement rolls back; the
// failure list goes to the operator for manual remediation.
type AnnouncementError struct {
	SlotID   int64
	Failures []interfaces.CreditFailure
}

func (e *AnnouncementError) Error() string {
	return fmt.Sprintf("announcement aborted for slot %d: %d winner credit(s) failed", e.SlotID, len(e.Failures))
}
