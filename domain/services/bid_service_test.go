package services

import (
	"context"
	"testing"
	"time"

	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"
	"drawhouse/domain/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func openTestSlot(id int64, slotType entities.SlotType) *entities.Slot {
	settings := entities.DefaultAppSettings().Snapshot()
	return &entities.Slot{
		ID:            id,
		Code:          "LD-20260115-2000",
		Type:          slotType,
		SlotTime:      time.Now().Add(time.Hour),
		WindowCloseAt: time.Now().Add(50 * time.Minute),
		Status:        entities.SlotStatusOpen,
		Settings:      settings,
	}
}

func intPtr(n int) *int { return &n }

func TestBidService_PlaceBid_LD(t *testing.T) {
	t.Parallel()

	t.Run("debits the stake and credits commission", func(t *testing.T) {
		t.Parallel()

		slotRepo := new(testhelpers.MockSlotRepository)
		bidRepo := new(testhelpers.MockBidRepository)
		ledger := new(testhelpers.MockWalletLedger)

		slot := openTestSlot(1, entities.SlotTypeLD)
		slotRepo.On("GetByID", mock.Anything, int64(1)).Return(slot, nil)
		bidRepo.On("SumUnitsForNumber", mock.Anything, int64(1), 13).Return(int64(0), nil)

		// 3 units at the default 100 LD price: 300 staked, 15 commission.
		ledger.On("DebitForBid", mock.Anything, int64(100), decEq("300"), mock.MatchedBy(func(meta entities.BidMeta) bool {
			return meta.SlotID == 1 && meta.UniqueBidID != ""
		}), mock.Anything).Return(newTestWallet(1, 100, -300, 0), nil)

		bidRepo.On("Create", mock.Anything, mock.MatchedBy(func(bid *entities.Bid) bool {
			return bid.Amount.Equal(decimal.NewFromInt(300)) &&
				*bid.Number == 13 &&
				bid.UniqueBidID == "LD-20260115-2000:0912345:13x3"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*entities.Bid).ID = 55
		}).Return(nil)

		ledger.On("CreditCommission", mock.Anything, int64(100), decEq("15"), mock.MatchedBy(func(meta entities.BidMeta) bool {
			return meta.BidID == 55
		})).Return(newTestWallet(1, 100, -285, 0), nil)

		service := NewBidService(slotRepo, bidRepo, ledger)
		bid, err := service.PlaceBid(context.Background(), 100, interfaces.PlaceBidInput{
			SlotID:        1,
			CustomerName:  "Thiha",
			CustomerPhone: "0912345",
			Number:        intPtr(13),
			Count:         3,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(3), bid.Units())
		ledger.AssertExpectations(t)
		bidRepo.AssertExpectations(t)
	})

	t.Run("rejects bids after the window closes", func(t *testing.T) {
		t.Parallel()

		slotRepo := new(testhelpers.MockSlotRepository)
		bidRepo := new(testhelpers.MockBidRepository)
		ledger := new(testhelpers.MockWalletLedger)

		slot := openTestSlot(1, entities.SlotTypeLD)
		slot.WindowCloseAt = time.Now().Add(-time.Minute)
		slotRepo.On("GetByID", mock.Anything, int64(1)).Return(slot, nil)

		service := NewBidService(slotRepo, bidRepo, ledger)
		_, err := service.PlaceBid(context.Background(), 100, interfaces.PlaceBidInput{
			SlotID: 1,
			Number: intPtr(13),
			Count:  1,
		})

		assert.ErrorIs(t, err, ErrBidWindowClosed)
		ledger.AssertNotCalled(t, "DebitForBid", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("enforces the per-number cap", func(t *testing.T) {
		t.Parallel()

		slotRepo := new(testhelpers.MockSlotRepository)
		bidRepo := new(testhelpers.MockBidRepository)
		ledger := new(testhelpers.MockWalletLedger)

		slot := openTestSlot(1, entities.SlotTypeLD)
		slotRepo.On("GetByID", mock.Anything, int64(1)).Return(slot, nil)
		// 498 of the default 500-unit cap already staked.
		bidRepo.On("SumUnitsForNumber", mock.Anything, int64(1), 13).Return(int64(498), nil)

		service := NewBidService(slotRepo, bidRepo, ledger)
		_, err := service.PlaceBid(context.Background(), 100, interfaces.PlaceBidInput{
			SlotID: 1,
			Number: intPtr(13),
			Count:  3,
		})

		assert.ErrorIs(t, err, ErrNumberCapExceeded)
		bidRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects out-of-range numbers", func(t *testing.T) {
		t.Parallel()

		slotRepo := new(testhelpers.MockSlotRepository)
		slotRepo.On("GetByID", mock.Anything, int64(1)).Return(openTestSlot(1, entities.SlotTypeLD), nil)

		service := NewBidService(slotRepo, new(testhelpers.MockBidRepository), new(testhelpers.MockWalletLedger))
		_, err := service.PlaceBid(context.Background(), 100, interfaces.PlaceBidInput{
			SlotID: 1,
			Number: intPtr(38),
			Count:  1,
		})

		assert.Error(t, err)
	})

	t.Run("failed debit creates no bid", func(t *testing.T) {
		t.Parallel()

		slotRepo := new(testhelpers.MockSlotRepository)
		bidRepo := new(testhelpers.MockBidRepository)
		ledger := new(testhelpers.MockWalletLedger)

		slotRepo.On("GetByID", mock.Anything, int64(1)).Return(openTestSlot(1, entities.SlotTypeLD), nil)
		bidRepo.On("SumUnitsForNumber", mock.Anything, int64(1), 13).Return(int64(0), nil)
		ledger.On("DebitForBid", mock.Anything, int64(100), mock.Anything, mock.Anything, mock.Anything).
			Return(nil, ErrInsufficientFunds)

		service := NewBidService(slotRepo, bidRepo, ledger)
		_, err := service.PlaceBid(context.Background(), 100, interfaces.PlaceBidInput{
			SlotID: 1,
			Number: intPtr(13),
			Count:  1,
		})

		assert.ErrorIs(t, err, ErrInsufficientFunds)
		bidRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestBidService_PlaceBid_JP(t *testing.T) {
	t.Parallel()

	t.Run("jackpot combo is one unit at the JP price", func(t *testing.T) {
		t.Parallel()

		slotRepo := new(testhelpers.MockSlotRepository)
		bidRepo := new(testhelpers.MockBidRepository)
		ledger := new(testhelpers.MockWalletLedger)

		slot := openTestSlot(1, entities.SlotTypeJP)
		slot.Code = "JP-20260115-2000"
		slotRepo.On("GetByID", mock.Anything, int64(1)).Return(slot, nil)

		ledger.On("DebitForBid", mock.Anything, int64(100), decEq("120"), mock.Anything, mock.Anything).
			Return(newTestWallet(1, 100, -120, 0), nil)
		bidRepo.On("Create", mock.Anything, mock.MatchedBy(func(bid *entities.Bid) bool {
			return bid.Units() == 1 && bid.SelectionKey() == "3-3-9-14-22-37"
		})).Return(nil)
		ledger.On("CreditCommission", mock.Anything, int64(100), decEq("6"), mock.Anything).
			Return(newTestWallet(1, 100, -114, 0), nil)

		service := NewBidService(slotRepo, bidRepo, ledger)
		// Repeats are allowed: combos sample with replacement.
		bid, err := service.PlaceBid(context.Background(), 100, interfaces.PlaceBidInput{
			SlotID:        1,
			CustomerPhone: "0912345",
			JPNumbers:     []int{22, 3, 14, 9, 3, 37},
		})

		require.NoError(t, err)
		assert.Equal(t, "3-3-9-14-22-37", bid.SelectionKey())
		ledger.AssertExpectations(t)
	})

	t.Run("rejects short combos", func(t *testing.T) {
		t.Parallel()

		slotRepo := new(testhelpers.MockSlotRepository)
		slotRepo.On("GetByID", mock.Anything, int64(1)).Return(openTestSlot(1, entities.SlotTypeJP), nil)

		service := NewBidService(slotRepo, new(testhelpers.MockBidRepository), new(testhelpers.MockWalletLedger))
		_, err := service.PlaceBid(context.Background(), 100, interfaces.PlaceBidInput{
			SlotID:    1,
			JPNumbers: []int{1, 2, 3},
		})

		assert.Error(t, err)
	})
}
