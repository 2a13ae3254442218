package application

import (
	"context"
	"time"

	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"
	"drawhouse/domain/services"

	"github.com/shopspring/decimal"
)

// App exposes the platform operations. Each method runs one unit of work:
// the domain services see only transaction-scoped repositories, so every
// operation commits or rolls back as a whole.
type App struct {
	uowFactory UnitOfWorkFactory
}

// NewApp creates the application facade.
func NewApp(uowFactory UnitOfWorkFactory) *App {
	return &App{uowFactory: uowFactory}
}

// withUow runs fn inside a transaction, committing on success.
func (a *App) withUow(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := a.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}

// PlaceBid records a stake for an agent.
func (a *App) PlaceBid(ctx context.Context, userID int64, input interfaces.PlaceBidInput) (*entities.Bid, error) {
	var bid *entities.Bid
	err := a.withUow(ctx, func(uow UnitOfWork) error {
		ledger := services.NewWalletService(uow.WalletRepository(), uow.WalletTxRepository())
		placer := services.NewBidService(uow.SlotRepository(), uow.BidRepository(), ledger)

		var err error
		bid, err = placer.PlaceBid(ctx, userID, input)
		return err
	})
	return bid, err
}

// AnnounceSlot announces a slot's outcome. selector is the explicit winning
// selection from an admin, or nil for auto-selection.
func (a *App) AnnounceSlot(ctx context.Context, actor string, slotID int64, selector *string) (*interfaces.AnnounceOutcome, error) {
	var outcome *interfaces.AnnounceOutcome
	err := a.withUow(ctx, func(uow UnitOfWork) error {
		ledger := services.NewWalletService(uow.WalletRepository(), uow.WalletTxRepository())
		announcer := services.NewDrawService(
			uow.SlotRepository(),
			uow.BidRepository(),
			uow.DrawResultRepository(),
			uow.WalletRepository(),
			ledger,
		)

		var err error
		outcome, err = announcer.AnnounceResult(ctx, actor, slotID, selector)
		return err
	})
	return outcome, err
}

// CreateSlot schedules a draw.
func (a *App) CreateSlot(ctx context.Context, slotType entities.SlotType, slotTime time.Time) (*entities.Slot, error) {
	var slot *entities.Slot
	err := a.withUow(ctx, func(uow UnitOfWork) error {
		lifecycle := services.NewSlotService(uow.SlotRepository(), uow.BidRepository(), uow.SettingsRepository())

		var err error
		slot, err = lifecycle.CreateSlot(ctx, slotType, slotTime)
		return err
	})
	return slot, err
}

// RescheduleSlot moves an open, bid-free slot to a new draw time.
func (a *App) RescheduleSlot(ctx context.Context, slotID int64, slotTime time.Time) (*entities.Slot, error) {
	var slot *entities.Slot
	err := a.withUow(ctx, func(uow UnitOfWork) error {
		lifecycle := services.NewSlotService(uow.SlotRepository(), uow.BidRepository(), uow.SettingsRepository())

		var err error
		slot, err = lifecycle.Reschedule(ctx, slotID, slotTime)
		return err
	})
	return slot, err
}

// RequestDeposit records a pending balance top-up for review.
func (a *App) RequestDeposit(ctx context.Context, userID int64, amount decimal.Decimal, externalRef string) (*entities.WalletTx, error) {
	var tx *entities.WalletTx
	err := a.withUow(ctx, func(uow UnitOfWork) error {
		ledger := services.NewWalletService(uow.WalletRepository(), uow.WalletTxRepository())

		var err error
		tx, err = ledger.RequestBidDeposit(ctx, userID, amount, externalRef)
		return err
	})
	return tx, err
}

// ResolveDeposit approves or declines a pending deposit.
func (a *App) ResolveDeposit(ctx context.Context, adminID, txID int64, approve bool) (*entities.Wallet, error) {
	var wallet *entities.Wallet
	err := a.withUow(ctx, func(uow UnitOfWork) error {
		ledger := services.NewWalletService(uow.WalletRepository(), uow.WalletTxRepository())

		var err error
		wallet, err = ledger.ApproveDeposit(ctx, adminID, txID, approve)
		return err
	})
	return wallet, err
}

// SettleWinningToAgent records the admin paying out an agent's winnings.
func (a *App) SettleWinningToAgent(ctx context.Context, adminID, userID int64, amount decimal.Decimal) (*entities.Wallet, error) {
	var wallet *entities.Wallet
	err := a.withUow(ctx, func(uow UnitOfWork) error {
		ledger := services.NewWalletService(uow.WalletRepository(), uow.WalletTxRepository())

		var err error
		wallet, err = ledger.WinningSettlementToAgent(ctx, adminID, userID, amount)
		return err
	})
	return wallet, err
}

// SettleWinningToUser records an agent paying the end customer from the
// winning reserve.
func (a *App) SettleWinningToUser(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*entities.Wallet, error) {
	var wallet *entities.Wallet
	err := a.withUow(ctx, func(uow UnitOfWork) error {
		ledger := services.NewWalletService(uow.WalletRepository(), uow.WalletTxRepository())

		var err error
		wallet, err = ledger.WinningSettlementToUser(ctx, userID, amount, note)
		return err
	})
	return wallet, err
}

// SettleCommission records an admin collecting accumulated commission.
func (a *App) SettleCommission(ctx context.Context, adminID, userID int64, amount decimal.Decimal) (*entities.Wallet, error) {
	var wallet *entities.Wallet
	err := a.withUow(ctx, func(uow UnitOfWork) error {
		ledger := services.NewWalletService(uow.WalletRepository(), uow.WalletTxRepository())

		var err error
		wallet, err = ledger.SettleCommissionByAdmin(ctx, adminID, userID, amount)
		return err
	})
	return wallet, err
}

// ProcessWithdraw records an admin-processed withdrawal.
func (a *App) ProcessWithdraw(ctx context.Context, adminID, userID int64, amount decimal.Decimal) (*entities.Wallet, error) {
	var wallet *entities.Wallet
	err := a.withUow(ctx, func(uow UnitOfWork) error {
		ledger := services.NewWalletService(uow.WalletRepository(), uow.WalletTxRepository())

		var err error
		wallet, err = ledger.AdminProcessWithdraw(ctx, adminID, userID, amount)
		return err
	})
	return wallet, err
}

// GetSettings returns the live configuration, creating defaults on first use.
func (a *App) GetSettings(ctx context.Context) (*entities.AppSettings, error) {
	var settings *entities.AppSettings
	err := a.withUow(ctx, func(uow UnitOfWork) error {
		var err error
		settings, err = uow.SettingsRepository().Get(ctx)
		return err
	})
	return settings, err
}

// UpdateSettings overwrites the live configuration. Existing slots keep
// their snapshots.
func (a *App) UpdateSettings(ctx context.Context, settings *entities.AppSettings) error {
	return a.withUow(ctx, func(uow UnitOfWork) error {
		return uow.SettingsRepository().Update(ctx, settings)
	})
}
