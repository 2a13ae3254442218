package application

import (
	"context"

	"drawhouse/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	WalletRepository() interfaces.WalletRepository
	WalletTxRepository() interfaces.WalletTxRepository
	SlotRepository() interfaces.SlotRepository
	BidRepository() interfaces.BidRepository
	DrawResultRepository() interfaces.DrawResultRepository
	SettingsRepository() interfaces.SettingsRepository
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
