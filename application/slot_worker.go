package application

import (
	"context"
	"fmt"
	"time"

	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"
	"drawhouse/domain/services"

	log "github.com/sirupsen/logrus"
)

// SlotWorker drives the slot lifecycle on a timer: it closes betting
// windows that have passed and announces draws that are due, each slot in
// its own transaction so one failure never blocks the rest.
type SlotWorker struct {
	uowFactory UnitOfWorkFactory
	interval   time.Duration
}

// NewSlotWorker creates a new slot lifecycle worker.
func NewSlotWorker(uowFactory UnitOfWorkFactory, interval time.Duration) *SlotWorker {
	return &SlotWorker{
		uowFactory: uowFactory,
		interval:   interval,
	}
}

// Start begins the worker loop and returns a cleanup function.
func (w *SlotWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Info("Slot worker started")

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			w.tick(ctx)

			select {
			case <-ctx.Done():
				log.Info("Slot worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Slot worker shutting down (stop requested)...")
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

func (w *SlotWorker) tick(ctx context.Context) {
	now := time.Now()

	if err := w.closeExpiredWindows(ctx, now); err != nil {
		log.Errorf("Error closing expired windows: %v", err)
	}
	if err := w.announceDueSlots(ctx, now); err != nil {
		log.Errorf("Error announcing due slots: %v", err)
	}
}

// closeExpiredWindows transitions every OPEN slot past its window close.
func (w *SlotWorker) closeExpiredWindows(ctx context.Context, now time.Time) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	lifecycle := services.NewSlotService(uow.SlotRepository(), uow.BidRepository(), uow.SettingsRepository())
	closed, err := lifecycle.CloseExpired(ctx, now)
	if err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if len(closed) > 0 {
		log.Infof("Closed %d betting windows", len(closed))
	}
	return nil
}

// announceDueSlots announces every slot past its draw time, each in its
// own transaction.
func (w *SlotWorker) announceDueSlots(ctx context.Context, now time.Time) error {
	due, err := w.listDueSlots(ctx, now)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	var successCount, failureCount int
	for _, slot := range due {
		if err := w.announceSlot(ctx, slot); err != nil {
			log.Errorf("Error announcing slot %d (%s): %v", slot.ID, slot.Code, err)
			failureCount++
		} else {
			successCount++
		}
	}

	log.WithFields(log.Fields{
		"total":      len(due),
		"successful": successCount,
		"failed":     failureCount,
	}).Info("Completed scheduled announcements")

	return nil
}

func (w *SlotWorker) listDueSlots(ctx context.Context, now time.Time) ([]*entities.Slot, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.SlotRepository().ListAnnounceDue(ctx, now)
}

func (w *SlotWorker) announceSlot(ctx context.Context, slot *entities.Slot) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledger := services.NewWalletService(uow.WalletRepository(), uow.WalletTxRepository())
	announcer := services.NewDrawService(
		uow.SlotRepository(),
		uow.BidRepository(),
		uow.DrawResultRepository(),
		uow.WalletRepository(),
		ledger,
	)

	outcome, err := announcer.AnnounceResult(ctx, interfaces.SystemActor, slot.ID, nil)
	if err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"slotID": slot.ID,
		"code":   slot.Code,
		"winner": outcome.Result.Winner,
		"payout": outcome.Result.PayoutTotal,
	}).Info("Scheduled announcement completed")

	return nil
}
