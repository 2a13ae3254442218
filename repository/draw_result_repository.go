package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"drawhouse/database"
	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// DrawResultRepository implements draw result data access over pgx.
// Results are insert-only; the slot_id unique constraint is the final
// backstop against double announcement.
type DrawResultRepository struct {
	q Queryable
}

// NewDrawResultRepository creates a draw result repository on the pool.
func NewDrawResultRepository(db *database.DB) *DrawResultRepository {
	return &DrawResultRepository{q: db.Pool}
}

// NewDrawResultRepositoryWithTx creates a draw result repository on a transaction.
func NewDrawResultRepositoryWithTx(tx Queryable) interfaces.DrawResultRepository {
	return &DrawResultRepository{q: tx}
}

// Create persists the announced outcome for a slot.
func (r *DrawResultRepository) Create(ctx context.Context, result *entities.DrawResult) error {
	displayJSON, err := json.Marshal(result.DisplayUnits)
	if err != nil {
		return fmt.Errorf("failed to encode display units: %w", err)
	}

	query := `
		INSERT INTO draw_results
			(slot_id, winner, dummy_units, total_units, per_unit_payout, payout_total, announced_by, collected, profit_pct, display_units)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err = r.q.QueryRow(ctx, query,
		result.SlotID,
		result.Winner,
		result.DummyUnits,
		result.TotalUnits,
		result.PerUnitPayout,
		result.PayoutTotal,
		result.AnnouncedBy,
		result.Collected,
		result.ProfitPct,
		displayJSON,
	).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create draw result for slot %d: %w", result.SlotID, err)
	}
	return nil
}

// GetBySlotID retrieves the result for a slot, or nil if not announced.
func (r *DrawResultRepository) GetBySlotID(ctx context.Context, slotID int64) (*entities.DrawResult, error) {
	query := `
		SELECT id, slot_id, winner, dummy_units, total_units, per_unit_payout, payout_total, announced_by, collected, profit_pct, display_units, created_at
		FROM draw_results
		WHERE slot_id = $1
	`
	var result entities.DrawResult
	var displayJSON []byte
	err := r.q.QueryRow(ctx, query, slotID).Scan(
		&result.ID,
		&result.SlotID,
		&result.Winner,
		&result.DummyUnits,
		&result.TotalUnits,
		&result.PerUnitPayout,
		&result.PayoutTotal,
		&result.AnnouncedBy,
		&result.Collected,
		&result.ProfitPct,
		&displayJSON,
		&result.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw result for slot %d: %w", slotID, err)
	}

	if err := json.Unmarshal(displayJSON, &result.DisplayUnits); err != nil {
		return nil, fmt.Errorf("failed to decode display units: %w", err)
	}
	return &result, nil
}
