package services

import (
	"context"
	"fmt"
	"time"

	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// bidService records stakes for agents: validation, the slot-open gate,
// the per-number cap, the wallet debit and the commission credit all
// happen inside the caller's unit of work.
type bidService struct {
	slotRepo interfaces.SlotRepository
	bidRepo  interfaces.BidRepository
	ledger   interfaces.WalletLedger
}

// NewBidService creates a new bid placement service.
func NewBidService(
	slotRepo interfaces.SlotRepository,
	bidRepo interfaces.BidRepository,
	ledger interfaces.WalletLedger,
) interfaces.BidPlacer {
	return &bidService{
		slotRepo: slotRepo,
		bidRepo:  bidRepo,
		ledger:   ledger,
	}
}

// PlaceBid validates and records one stake. The debit failing means no bid
// is created; the slot-status gate is what excludes late bids from the
// announce-time aggregation.
func (s *bidService) PlaceBid(ctx context.Context, userID int64, input interfaces.PlaceBidInput) (*entities.Bid, error) {
	slot, err := s.slotRepo.GetByID(ctx, input.SlotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot %d: %w", input.SlotID, err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	if !slot.AcceptsBids(time.Now()) {
		return nil, ErrBidWindowClosed
	}

	settings := slot.Settings

	bid := &entities.Bid{
		SlotID:        slot.ID,
		UserID:        userID,
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		Number:        input.Number,
		Count:         input.Count,
		JPNumbers:     input.JPNumbers,
		Status:        entities.BidStatusActive,
	}
	if err := bid.Validate(slot.Type); err != nil {
		return nil, err
	}

	if slot.Type == entities.SlotTypeLD && settings.LDBidLimitPerNumber > 0 {
		staked, err := s.bidRepo.SumUnitsForNumber(ctx, slot.ID, *bid.Number)
		if err != nil {
			return nil, fmt.Errorf("failed to check number cap: %w", err)
		}
		if staked+bid.Count > settings.LDBidLimitPerNumber {
			return nil, ErrNumberCapExceeded
		}
	}

	bid.Amount = settings.BidPrice(slot.Type).Mul(decimal.NewFromInt(bid.Units())).Round(2)
	bid.UniqueBidID = bid.ComputeUniqueBidID(slot.Code)

	meta := entities.BidMeta{
		SlotID:      slot.ID,
		SlotCode:    slot.Code,
		UniqueBidID: bid.UniqueBidID,
	}
	if _, err := s.ledger.DebitForBid(ctx, userID, bid.Amount, meta, settings); err != nil {
		return nil, err
	}

	if err := s.bidRepo.Create(ctx, bid); err != nil {
		return nil, fmt.Errorf("failed to create bid: %w", err)
	}

	commission := bid.Amount.Mul(settings.DefaultCommissionPct).Round(2)
	if commission.GreaterThan(decimal.Zero) {
		meta.BidID = bid.ID
		if _, err := s.ledger.CreditCommission(ctx, userID, commission, meta); err != nil {
			return nil, fmt.Errorf("failed to credit commission: %w", err)
		}
	}

	log.WithFields(log.Fields{
		"slotID":      slot.ID,
		"userID":      userID,
		"uniqueBidID": bid.UniqueBidID,
		"amount":      bid.Amount,
	}).Debug("bid placed")

	return bid, nil
}
