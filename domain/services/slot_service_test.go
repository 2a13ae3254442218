package services

import (
	"context"
	"testing"
	"time"

	"drawhouse/domain/entities"
	"drawhouse/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSlotService_CreateSlot(t *testing.T) {
	t.Parallel()

	t.Run("snapshots live settings and derives the window", func(t *testing.T) {
		t.Parallel()

		slotRepo := new(testhelpers.MockSlotRepository)
		bidRepo := new(testhelpers.MockBidRepository)
		settingsRepo := new(testhelpers.MockSettingsRepository)

		settings := entities.DefaultAppSettings()
		settingsRepo.On("Get", mock.Anything).Return(settings, nil)

		slotTime := time.Now().Add(3 * time.Hour).Truncate(time.Minute)
		slotRepo.On("Create", mock.Anything, mock.MatchedBy(func(slot *entities.Slot) bool {
			return slot.Status == entities.SlotStatusOpen &&
				slot.WindowCloseAt.Equal(slotTime.Add(-10*time.Minute)) &&
				slot.Settings.PayoutPolicy == entities.PolicyCappedWithScaledFallback
		})).Return(nil)

		service := NewSlotService(slotRepo, bidRepo, settingsRepo)
		slot, err := service.CreateSlot(context.Background(), entities.SlotTypeLD, slotTime)

		require.NoError(t, err)
		assert.Equal(t, entities.BuildSlotCode(entities.SlotTypeLD, slotTime), slot.Code)
		slotRepo.AssertExpectations(t)
	})

	t.Run("rejects past slot times", func(t *testing.T) {
		t.Parallel()

		service := NewSlotService(
			new(testhelpers.MockSlotRepository),
			new(testhelpers.MockBidRepository),
			new(testhelpers.MockSettingsRepository),
		)
		_, err := service.CreateSlot(context.Background(), entities.SlotTypeLD, time.Now().Add(-time.Minute))
		assert.Error(t, err)
	})
}

func TestSlotService_Reschedule(t *testing.T) {
	t.Parallel()

	t.Run("slots with bids are immutable", func(t *testing.T) {
		t.Parallel()

		slotRepo := new(testhelpers.MockSlotRepository)
		bidRepo := new(testhelpers.MockBidRepository)

		slot := openTestSlot(1, entities.SlotTypeLD)
		slotRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(slot, nil)
		bidRepo.On("CountBySlot", mock.Anything, int64(1)).Return(int64(4), nil)

		service := NewSlotService(slotRepo, bidRepo, new(testhelpers.MockSettingsRepository))
		_, err := service.Reschedule(context.Background(), 1, time.Now().Add(4*time.Hour))

		assert.ErrorIs(t, err, ErrSlotImmutable)
		slotRepo.AssertNotCalled(t, "UpdateSchedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("moves an empty open slot and rebuilds the code", func(t *testing.T) {
		t.Parallel()

		slotRepo := new(testhelpers.MockSlotRepository)
		bidRepo := new(testhelpers.MockBidRepository)

		slot := openTestSlot(1, entities.SlotTypeLD)
		slotRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(slot, nil)
		bidRepo.On("CountBySlot", mock.Anything, int64(1)).Return(int64(0), nil)

		newTime := time.Now().Add(6 * time.Hour).Truncate(time.Minute)
		slotRepo.On("UpdateSchedule", mock.Anything, int64(1), newTime, newTime.Add(-10*time.Minute)).Return(nil)

		service := NewSlotService(slotRepo, bidRepo, new(testhelpers.MockSettingsRepository))
		got, err := service.Reschedule(context.Background(), 1, newTime)

		require.NoError(t, err)
		assert.Equal(t, entities.BuildSlotCode(entities.SlotTypeLD, newTime), got.Code)
		slotRepo.AssertExpectations(t)
	})
}

func TestSlotService_CloseExpired(t *testing.T) {
	t.Parallel()

	slotRepo := new(testhelpers.MockSlotRepository)
	bidRepo := new(testhelpers.MockBidRepository)

	now := time.Now()
	first := openTestSlot(1, entities.SlotTypeLD)
	second := openTestSlot(2, entities.SlotTypeJP)
	slotRepo.On("ListExpiredOpen", mock.Anything, now).Return([]*entities.Slot{first, second}, nil)
	slotRepo.On("UpdateStatus", mock.Anything, int64(1), entities.SlotStatusClosed).Return(nil)
	slotRepo.On("UpdateStatus", mock.Anything, int64(2), entities.SlotStatusClosed).Return(nil)

	service := NewSlotService(slotRepo, bidRepo, new(testhelpers.MockSettingsRepository))
	closed, err := service.CloseExpired(context.Background(), now)

	require.NoError(t, err)
	assert.Len(t, closed, 2)
	assert.Equal(t, entities.SlotStatusClosed, first.Status)
	slotRepo.AssertExpectations(t)
}
