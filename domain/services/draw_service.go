package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// drawService sequences payout computation, winner crediting and result
// persistence. All repositories must come from one unit of work so the
// credit-then-persist sequence commits or rolls back as a whole.
type drawService struct {
	slotRepo   interfaces.SlotRepository
	bidRepo    interfaces.BidRepository
	resultRepo interfaces.DrawResultRepository
	walletRepo interfaces.WalletRepository
	ledger     interfaces.WalletLedger
}

// NewDrawService creates a new draw announcement service.
func NewDrawService(
	slotRepo interfaces.SlotRepository,
	bidRepo interfaces.BidRepository,
	resultRepo interfaces.DrawResultRepository,
	walletRepo interfaces.WalletRepository,
	ledger interfaces.WalletLedger,
) interfaces.DrawAnnouncer {
	return &drawService{
		slotRepo:   slotRepo,
		bidRepo:    bidRepo,
		resultRepo: resultRepo,
		walletRepo: walletRepo,
		ledger:     ledger,
	}
}

// AnnounceResult announces the outcome for a closed slot. The protocol is
// credit-or-abort: every real winner is credited before the result row and
// the COMPLETED transition persist; any planning failure aborts the whole
// announcement with the failure list for manual remediation.
func (s *drawService) AnnounceResult(ctx context.Context, actor string, slotID int64, selector *string) (*interfaces.AnnounceOutcome, error) {
	slot, err := s.slotRepo.GetByIDForUpdate(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock slot %d: %w", slotID, err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	if slot.IsCompleted() {
		return nil, ErrSlotAlreadyCompleted
	}

	now := time.Now()
	if !slot.WindowExpired(now) {
		return nil, ErrAnnounceTooEarly
	}
	if slot.Status == entities.SlotStatusOpen {
		slot.Close()
		if err := s.slotRepo.UpdateStatus(ctx, slot.ID, entities.SlotStatusClosed); err != nil {
			return nil, fmt.Errorf("failed to close slot %d: %w", slot.ID, err)
		}
	}

	settings := slot.Settings

	collected, err := s.bidRepo.AggregateCollected(ctx, slot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate collected amount: %w", err)
	}
	unitsByKey, err := s.bidRepo.AggregateUnitsBySelection(ctx, slot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate units: %w", err)
	}

	engineInput := PayoutInput{
		Collected:            collected,
		PrizeAmount:          settings.WinningPrize(slot.Type),
		MinProfitPct:         settings.MinProfitPct,
		Policy:               settings.PayoutPolicy,
		MaxUnitsPerSelection: settings.LDBidLimitPerNumber,
	}

	winnerKey, err := s.resolveWinner(slot, unitsByKey, engineInput, selector)
	if err != nil {
		return nil, err
	}

	engineInput.RealUnits = unitsByKey[winnerKey]
	breakdown, err := ComputePayout(engineInput)
	if err != nil {
		return nil, fmt.Errorf("failed to compute payout: %w", err)
	}

	// Phase 1: plan every winner credit without touching any wallet.
	// Failures are collected, not short-circuited, so the operator sees
	// the complete list.
	credits, failures, err := s.planCredits(ctx, slot, winnerKey, breakdown)
	if err != nil {
		return nil, err
	}
	if len(failures) > 0 {
		return nil, &AnnouncementError{SlotID: slot.ID, Failures: failures}
	}

	// Phase 2: apply all planned credits inside the same transaction.
	for _, credit := range credits {
		if _, err := s.ledger.CreditWinning(ctx, credit.UserID, credit.Amount, entities.WinMeta{
			SlotID:     slot.ID,
			BidID:      credit.BidID,
			Winner:     winnerKey,
			UnitPayout: breakdown.UnitPayout,
			Units:      credit.Units,
		}); err != nil {
			return nil, fmt.Errorf("failed to credit winner %d: %w", credit.UserID, err)
		}
	}

	displayUnits, err := BuildDisplayUnits(slot.Type, winnerKey, unitsByKey, breakdown.TotalUnits)
	if err != nil {
		return nil, fmt.Errorf("failed to build display units: %w", err)
	}

	result := &entities.DrawResult{
		SlotID:        slot.ID,
		Winner:        winnerKey,
		DummyUnits:    breakdown.DummyUnits,
		TotalUnits:    breakdown.TotalUnits,
		PerUnitPayout: breakdown.UnitPayout,
		PayoutTotal:   breakdown.PayoutToReal,
		AnnouncedBy:   actor,
		Collected:     collected,
		ProfitPct:     settings.MinProfitPct,
		DisplayUnits:  displayUnits,
	}
	if err := s.resultRepo.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to persist draw result: %w", err)
	}

	slot.Complete()
	if err := s.slotRepo.UpdateStatus(ctx, slot.ID, entities.SlotStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to complete slot %d: %w", slot.ID, err)
	}

	log.WithFields(log.Fields{
		"slotID":     slot.ID,
		"winner":     winnerKey,
		"realUnits":  engineInput.RealUnits,
		"dummyUnits": breakdown.DummyUnits,
		"payout":     breakdown.PayoutToReal,
		"actor":      actor,
	}).Info("draw announced")

	return &interfaces.AnnounceOutcome{Result: result, Credits: credits}, nil
}

// resolveWinner validates an admin-supplied selector or runs the
// auto-selection policy when none was given.
func (s *drawService) resolveWinner(slot *entities.Slot, unitsByKey map[string]int64, in PayoutInput, selector *string) (string, error) {
	if selector != nil {
		return normalizeSelector(slot.Type, *selector)
	}

	selection, err := PickWinner(slot.Type, unitsByKey, in)
	if err != nil {
		return "", fmt.Errorf("failed to auto-select winner: %w", err)
	}
	return selection.Key, nil
}

// planCredits computes every intended winner credit for phase 1.
func (s *drawService) planCredits(ctx context.Context, slot *entities.Slot, winnerKey string, breakdown PayoutBreakdown) ([]interfaces.PlannedCredit, []interfaces.CreditFailure, error) {
	if breakdown.PayoutToReal.LessThanOrEqual(decimal.Zero) {
		return nil, nil, nil
	}

	bids, err := s.bidRepo.ListBySelection(ctx, slot.ID, winnerKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list winning bids: %w", err)
	}

	var credits []interfaces.PlannedCredit
	var failures []interfaces.CreditFailure
	for _, bid := range bids {
		payout := breakdown.WinnerPayout(bid.Units())
		if payout.LessThanOrEqual(decimal.Zero) {
			failures = append(failures, interfaces.CreditFailure{
				UserID: bid.UserID,
				BidID:  bid.ID,
				Reason: "payout rounds to zero",
			})
			continue
		}

		wallet, err := s.walletRepo.GetByUserID(ctx, bid.UserID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load wallet for user %d: %w", bid.UserID, err)
		}
		if wallet == nil {
			failures = append(failures, interfaces.CreditFailure{
				UserID: bid.UserID,
				BidID:  bid.ID,
				Reason: "wallet not found",
			})
			continue
		}

		credits = append(credits, interfaces.PlannedCredit{
			UserID: bid.UserID,
			BidID:  bid.ID,
			Units:  bid.Units(),
			Amount: payout,
		})
	}
	return credits, failures, nil
}

// normalizeSelector validates an admin-entered winning selection and
// returns its canonical key (combos are sorted).
func normalizeSelector(slotType entities.SlotType, selector string) (string, error) {
	if slotType == entities.SlotTypeLD {
		n, err := strconv.Atoi(selector)
		if err != nil || n < entities.MinNumber || n > entities.MaxNumber {
			return "", fmt.Errorf("invalid winning number %q", selector)
		}
		return strconv.Itoa(n), nil
	}

	numbers, err := entities.ParseComboKey(selector)
	if err != nil {
		return "", err
	}
	if len(numbers) != entities.JPComboSize {
		return "", fmt.Errorf("winning combo must have %d numbers", entities.JPComboSize)
	}
	for _, n := range numbers {
		if n < entities.MinNumber || n > entities.MaxNumber {
			return "", fmt.Errorf("combo numbers must be between %d and %d", entities.MinNumber, entities.MaxNumber)
		}
	}
	return entities.ComboKey(numbers), nil
}
