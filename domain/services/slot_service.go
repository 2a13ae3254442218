package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// slotService manages slot scheduling and the OPEN -> CLOSED transition.
type slotService struct {
	slotRepo     interfaces.SlotRepository
	bidRepo      interfaces.BidRepository
	settingsRepo interfaces.SettingsRepository
}

// NewSlotService creates a new slot lifecycle service.
func NewSlotService(
	slotRepo interfaces.SlotRepository,
	bidRepo interfaces.BidRepository,
	settingsRepo interfaces.SettingsRepository,
) interfaces.SlotLifecycle {
	return &slotService{
		slotRepo:     slotRepo,
		bidRepo:      bidRepo,
		settingsRepo: settingsRepo,
	}
}

// CreateSlot schedules a draw, snapshotting the live settings so later
// configuration changes never reprice it.
func (s *slotService) CreateSlot(ctx context.Context, slotType entities.SlotType, slotTime time.Time) (*entities.Slot, error) {
	if !slotType.IsValid() {
		return nil, errors.New("unknown slot type")
	}
	if !slotTime.After(time.Now()) {
		return nil, errors.New("slot time must be in the future")
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	slot := entities.NewSlot(slotType, slotTime, settings.Snapshot())
	if err := s.slotRepo.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}
	return slot, nil
}

// Reschedule moves an OPEN slot to a new draw time. A slot with existing
// bids is immutable.
func (s *slotService) Reschedule(ctx context.Context, slotID int64, slotTime time.Time) (*entities.Slot, error) {
	slot, err := s.slotRepo.GetByIDForUpdate(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock slot %d: %w", slotID, err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	if slot.Status != entities.SlotStatusOpen {
		return nil, errors.New("only open slots can be rescheduled")
	}

	count, err := s.bidRepo.CountBySlot(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to count bids: %w", err)
	}
	if count > 0 {
		return nil, ErrSlotImmutable
	}

	slot.SlotTime = slotTime
	slot.WindowCloseAt = slotTime.Add(-slot.Settings.WindowLead())
	slot.Code = entities.BuildSlotCode(slot.Type, slotTime)
	if err := s.slotRepo.UpdateSchedule(ctx, slot.ID, slot.SlotTime, slot.WindowCloseAt); err != nil {
		return nil, fmt.Errorf("failed to reschedule slot %d: %w", slot.ID, err)
	}
	return slot, nil
}

// CloseExpired transitions every OPEN slot whose window has passed.
func (s *slotService) CloseExpired(ctx context.Context, now time.Time) ([]*entities.Slot, error) {
	expired, err := s.slotRepo.ListExpiredOpen(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired slots: %w", err)
	}

	for _, slot := range expired {
		slot.Close()
		if err := s.slotRepo.UpdateStatus(ctx, slot.ID, entities.SlotStatusClosed); err != nil {
			return nil, fmt.Errorf("failed to close slot %d: %w", slot.ID, err)
		}
		log.WithFields(log.Fields{
			"slotID": slot.ID,
			"code":   slot.Code,
		}).Info("betting window closed")
	}
	return expired, nil
}
