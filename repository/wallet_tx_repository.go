package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"drawhouse/database"
	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletTxRepository implements ledger data access over pgx. The ledger is
// append-only; ResolveDeposit is the one tolerated update.
type WalletTxRepository struct {
	q Queryable
}

// NewWalletTxRepository creates a ledger repository on the pool.
func NewWalletTxRepository(db *database.DB) *WalletTxRepository {
	return &WalletTxRepository{q: db.Pool}
}

// NewWalletTxRepositoryWithTx creates a ledger repository on a transaction.
func NewWalletTxRepositoryWithTx(tx Queryable) interfaces.WalletTxRepository {
	return &WalletTxRepository{q: tx}
}

// Record appends a ledger entry.
func (r *WalletTxRepository) Record(ctx context.Context, tx *entities.WalletTx) error {
	metaJSON, err := encodeMeta(tx.Meta)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO wallet_transactions
			(wallet_id, type, amount, balance_after, reserved_after, deposit_status, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err = r.q.QueryRow(ctx, query,
		tx.WalletID,
		tx.Type,
		tx.Amount,
		tx.BalanceAfter,
		tx.ReservedAfter,
		tx.DepositStatus,
		metaJSON,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry for wallet %d: %w", tx.WalletID, err)
	}
	return nil
}

// GetByIDForUpdate retrieves a ledger entry with a row lock, or nil.
func (r *WalletTxRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.WalletTx, error) {
	query := `
		SELECT id, wallet_id, type, amount, balance_after, reserved_after, deposit_status, meta, created_at
		FROM wallet_transactions
		WHERE id = $1
		FOR UPDATE
	`
	tx, err := r.scanTx(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry %d: %w", id, err)
	}
	return tx, nil
}

// ResolveDeposit flips a pending deposit's status and back-fills its
// balance snapshot.
func (r *WalletTxRepository) ResolveDeposit(ctx context.Context, id int64, status entities.DepositStatus, balanceAfter decimal.Decimal) error {
	query := `
		UPDATE wallet_transactions
		SET deposit_status = $1, balance_after = $2
		WHERE id = $3 AND type = $4 AND deposit_status = $5
	`
	result, err := r.q.Exec(ctx, query, status, balanceAfter, id,
		entities.TransactionTypeBidCredit, entities.DepositStatusPending)
	if err != nil {
		return fmt.Errorf("failed to resolve deposit %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("deposit %d is not pending", id)
	}
	return nil
}

// ListByWallet returns the most recent entries for a wallet.
func (r *WalletTxRepository) ListByWallet(ctx context.Context, walletID int64, limit int) ([]*entities.WalletTx, error) {
	query := `
		SELECT id, wallet_id, type, amount, balance_after, reserved_after, deposit_status, meta, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.q.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries for wallet %d: %w", walletID, err)
	}
	defer rows.Close()

	var txs []*entities.WalletTx
	for rows.Next() {
		tx, err := r.scanTx(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return txs, nil
}

// SumBalanceAffecting sums the amounts that move the total balance:
// reservations never do, deposits only once approved.
func (r *WalletTxRepository) SumBalanceAffecting(ctx context.Context, walletID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM wallet_transactions
		WHERE wallet_id = $1
		  AND type <> $2
		  AND (type <> $3 OR deposit_status = $4)
	`
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, query, walletID,
		entities.TransactionTypeWinCredit,
		entities.TransactionTypeBidCredit,
		entities.DepositStatusApproved,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum ledger for wallet %d: %w", walletID, err)
	}
	return sum, nil
}

func (r *WalletTxRepository) scanTx(row pgx.Row) (*entities.WalletTx, error) {
	var tx entities.WalletTx
	var metaJSON []byte
	err := row.Scan(
		&tx.ID,
		&tx.WalletID,
		&tx.Type,
		&tx.Amount,
		&tx.BalanceAfter,
		&tx.ReservedAfter,
		&tx.DepositStatus,
		&metaJSON,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	meta, err := decodeMeta(tx.Type, metaJSON)
	if err != nil {
		return nil, err
	}
	tx.Meta = meta
	return &tx, nil
}

// encodeMeta serializes the typed meta union to JSON.
func encodeMeta(meta entities.TxMeta) ([]byte, error) {
	if meta == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger meta: %w", err)
	}
	return data, nil
}

// decodeMeta picks the concrete meta shape from the transaction type.
func decodeMeta(txType entities.TransactionType, data []byte) (entities.TxMeta, error) {
	if len(data) == 0 {
		return nil, nil
	}

	unmarshal := func(v entities.TxMeta) (entities.TxMeta, error) {
		if err := json.Unmarshal(data, v); err != nil {
			return nil, fmt.Errorf("failed to decode ledger meta: %w", err)
		}
		return v, nil
	}

	switch txType {
	case entities.TransactionTypeBidCredit:
		meta := &entities.DepositMeta{}
		decoded, err := unmarshal(meta)
		if err != nil {
			return nil, err
		}
		return *decoded.(*entities.DepositMeta), nil
	case entities.TransactionTypeBidDebit, entities.TransactionTypeCommissionCredit:
		meta := &entities.BidMeta{}
		decoded, err := unmarshal(meta)
		if err != nil {
			return nil, err
		}
		return *decoded.(*entities.BidMeta), nil
	case entities.TransactionTypeWinCredit:
		meta := &entities.WinMeta{}
		decoded, err := unmarshal(meta)
		if err != nil {
			return nil, err
		}
		return *decoded.(*entities.WinMeta), nil
	default:
		meta := &entities.SettlementMeta{}
		decoded, err := unmarshal(meta)
		if err != nil {
			return nil, err
		}
		return *decoded.(*entities.SettlementMeta), nil
	}
}
