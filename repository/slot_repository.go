package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"drawhouse/database"
	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const slotColumns = `id, code, slot_type, slot_time, window_close_at, status, settings, created_at, updated_at`

// SlotRepository implements slot data access over pgx. The settings
// snapshot travels with the row as JSONB.
type SlotRepository struct {
	q Queryable
}

// NewSlotRepository creates a slot repository on the pool.
func NewSlotRepository(db *database.DB) *SlotRepository {
	return &SlotRepository{q: db.Pool}
}

// NewSlotRepositoryWithTx creates a slot repository on a transaction.
func NewSlotRepositoryWithTx(tx Queryable) interfaces.SlotRepository {
	return &SlotRepository{q: tx}
}

// Create persists a new slot.
func (r *SlotRepository) Create(ctx context.Context, slot *entities.Slot) error {
	settingsJSON, err := json.Marshal(slot.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode slot settings: %w", err)
	}

	query := `
		INSERT INTO slots (code, slot_type, slot_time, window_close_at, status, settings)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err = r.q.QueryRow(ctx, query,
		slot.Code,
		slot.Type,
		slot.SlotTime,
		slot.WindowCloseAt,
		slot.Status,
		settingsJSON,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create slot %s: %w", slot.Code, err)
	}
	return nil
}

// GetByID retrieves a slot, or nil if absent.
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*entities.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate retrieves a slot with a row lock.
func (r *SlotRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

// UpdateStatus writes the slot's lifecycle state.
func (r *SlotRepository) UpdateStatus(ctx context.Context, id int64, status entities.SlotStatus) error {
	query := `UPDATE slots SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.q.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update slot %d status: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("slot %d not found", id)
	}
	return nil
}

// UpdateSchedule moves a slot's draw time and window. The code is rebuilt
// by the caller and written alongside so it keeps matching the time.
func (r *SlotRepository) UpdateSchedule(ctx context.Context, id int64, slotTime, windowCloseAt time.Time) error {
	query := `
		UPDATE slots
		SET slot_time = $1, window_close_at = $2,
		    code = slot_type || '-' || TO_CHAR($1 AT TIME ZONE 'UTC', 'YYYYMMDD-HH24MI'),
		    updated_at = NOW()
		WHERE id = $3
	`
	result, err := r.q.Exec(ctx, query, slotTime, windowCloseAt, id)
	if err != nil {
		return fmt.Errorf("failed to reschedule slot %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("slot %d not found", id)
	}
	return nil
}

// ListExpiredOpen returns OPEN slots whose betting window has passed.
func (r *SlotRepository) ListExpiredOpen(ctx context.Context, now time.Time) ([]*entities.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE status = $1 AND window_close_at <= $2 ORDER BY window_close_at`
	return r.list(ctx, query, entities.SlotStatusOpen, now)
}

// ListAnnounceDue returns slots past their draw time that still lack a result.
func (r *SlotRepository) ListAnnounceDue(ctx context.Context, now time.Time) ([]*entities.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE status <> $1 AND slot_time <= $2 ORDER BY slot_time`
	return r.list(ctx, query, entities.SlotStatusCompleted, now)
}

func (r *SlotRepository) getOne(ctx context.Context, query string, args ...any) (*entities.Slot, error) {
	slot, err := scanSlot(r.q.QueryRow(ctx, query, args...))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return slot, nil
}

func (r *SlotRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Slot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var slots []*entities.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate slots: %w", err)
	}
	return slots, nil
}

func scanSlot(row pgx.Row) (*entities.Slot, error) {
	var slot entities.Slot
	var settingsJSON []byte
	err := row.Scan(
		&slot.ID,
		&slot.Code,
		&slot.Type,
		&slot.SlotTime,
		&slot.WindowCloseAt,
		&slot.Status,
		&settingsJSON,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(settingsJSON, &slot.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode slot settings: %w", err)
	}
	return &slot, nil
}
