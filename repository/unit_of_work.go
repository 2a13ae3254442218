package repository

import (
	"context"
	"fmt"

	"drawhouse/application"
	"drawhouse/database"
	"drawhouse/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db  *database.DB
	tx  pgx.Tx
	ctx context.Context

	walletRepo     interfaces.WalletRepository
	walletTxRepo   interfaces.WalletTxRepository
	slotRepo       interfaces.SlotRepository
	bidRepo        interfaces.BidRepository
	drawResultRepo interfaces.DrawResultRepository
	settingsRepo   interfaces.SettingsRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) application.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

// Create creates a new UnitOfWork
func (f *unitOfWorkFactory) Create() application.UnitOfWork {
	return &unitOfWork{db: f.db}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.walletRepo = NewWalletRepositoryWithTx(tx)
	u.walletTxRepo = NewWalletTxRepositoryWithTx(tx)
	u.slotRepo = NewSlotRepositoryWithTx(tx)
	u.bidRepo = NewBidRepositoryWithTx(tx)
	u.drawResultRepo = NewDrawResultRepositoryWithTx(tx)
	u.settingsRepo = NewSettingsRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// Rollback rolls back the transaction. A no-op after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// WalletRepository returns the wallet repository for this unit of work
func (u *unitOfWork) WalletRepository() interfaces.WalletRepository {
	if u.walletRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.walletRepo
}

// WalletTxRepository returns the ledger repository for this unit of work
func (u *unitOfWork) WalletTxRepository() interfaces.WalletTxRepository {
	if u.walletTxRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.walletTxRepo
}

// SlotRepository returns the slot repository for this unit of work
func (u *unitOfWork) SlotRepository() interfaces.SlotRepository {
	if u.slotRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.slotRepo
}

// BidRepository returns the bid repository for this unit of work
func (u *unitOfWork) BidRepository() interfaces.BidRepository {
	if u.bidRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.bidRepo
}

// DrawResultRepository returns the draw result repository for this unit of work
func (u *unitOfWork) DrawResultRepository() interfaces.DrawResultRepository {
	if u.drawResultRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.drawResultRepo
}

// SettingsRepository returns the settings repository for this unit of work
func (u *unitOfWork) SettingsRepository() interfaces.SettingsRepository {
	if u.settingsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.settingsRepo
}
