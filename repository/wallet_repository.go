package repository

import (
	"context"
	"fmt"

	"drawhouse/database"
	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const walletColumns = `id, user_id, total_balance, reserved_winning, created_at, updated_at`

// WalletRepository implements wallet data access over pgx.
type WalletRepository struct {
	q Queryable
}

// NewWalletRepository creates a wallet repository on the pool.
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// NewWalletRepositoryWithTx creates a wallet repository on a transaction.
func NewWalletRepositoryWithTx(tx Queryable) interfaces.WalletRepository {
	return &WalletRepository{q: tx}
}

// GetByUserID retrieves a wallet by owner, or nil if absent.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	return r.scanWallet(ctx, query, userID)
}

// GetByUserIDForUpdate retrieves a wallet by owner with a row lock.
func (r *WalletRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`
	return r.scanWallet(ctx, query, userID)
}

// GetByIDForUpdate retrieves a wallet by row id with a row lock.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, walletID int64) (*entities.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	return r.scanWallet(ctx, query, walletID)
}

// Create creates a zero-balance wallet for the user.
func (r *WalletRepository) Create(ctx context.Context, userID int64) (*entities.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, total_balance, reserved_winning)
		VALUES ($1, 0, 0)
		RETURNING ` + walletColumns

	var wallet entities.Wallet
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.TotalBalance,
		&wallet.ReservedWinning,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %d: %w", userID, err)
	}
	return &wallet, nil
}

// UpdateBalances writes both balance tracks atomically.
func (r *WalletRepository) UpdateBalances(ctx context.Context, walletID int64, total, reserved decimal.Decimal) error {
	query := `
		UPDATE wallets
		SET total_balance = $1, reserved_winning = $2, updated_at = NOW()
		WHERE id = $3
	`
	result, err := r.q.Exec(ctx, query, total, reserved, walletID)
	if err != nil {
		return fmt.Errorf("failed to update wallet %d: %w", walletID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("wallet %d not found", walletID)
	}
	return nil
}

func (r *WalletRepository) scanWallet(ctx context.Context, query string, arg any) (*entities.Wallet, error) {
	var wallet entities.Wallet
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.TotalBalance,
		&wallet.ReservedWinning,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}
