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

const bidColumns = `id, slot_id, user_id, customer_name, customer_phone, amount, number, unit_count, jp_numbers, unique_bid_id, status, created_at`

// BidRepository implements bid data access over pgx. JP combos are stored
// as an integer array and normalized to canonical keys in Go, so the
// aggregation queries stay free of array gymnastics.
type BidRepository struct {
	q Queryable
}

// NewBidRepository creates a bid repository on the pool.
func NewBidRepository(db *database.DB) *BidRepository {
	return &BidRepository{q: db.Pool}
}

// NewBidRepositoryWithTx creates a bid repository on a transaction.
func NewBidRepositoryWithTx(tx Queryable) interfaces.BidRepository {
	return &BidRepository{q: tx}
}

// Create persists a new bid.
func (r *BidRepository) Create(ctx context.Context, bid *entities.Bid) error {
	query := `
		INSERT INTO bids (slot_id, user_id, customer_name, customer_phone, amount, number, unit_count, jp_numbers, unique_bid_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		bid.SlotID,
		bid.UserID,
		bid.CustomerName,
		bid.CustomerPhone,
		bid.Amount,
		bid.Number,
		bid.Count,
		intsToPg(bid.JPNumbers),
		bid.UniqueBidID,
		bid.Status,
	).Scan(&bid.ID, &bid.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bid for slot %d: %w", bid.SlotID, err)
	}
	return nil
}

// CountBySlot returns how many active bids a slot holds.
func (r *BidRepository) CountBySlot(ctx context.Context, slotID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM bids WHERE slot_id = $1 AND status = $2`
	var count int64
	err := r.q.QueryRow(ctx, query, slotID, entities.BidStatusActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bids for slot %d: %w", slotID, err)
	}
	return count, nil
}

// AggregateCollected sums the stakes of all active bids in a slot.
func (r *BidRepository) AggregateCollected(ctx context.Context, slotID int64) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM bids WHERE slot_id = $1 AND status = $2`
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, query, slotID, entities.BidStatusActive).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum collected for slot %d: %w", slotID, err)
	}
	return total, nil
}

// AggregateUnitsBySelection returns unit totals keyed by canonical
// selection key for all active bids in a slot.
func (r *BidRepository) AggregateUnitsBySelection(ctx context.Context, slotID int64) (map[string]int64, error) {
	bids, err := r.listActive(ctx, slotID)
	if err != nil {
		return nil, err
	}

	units := make(map[string]int64)
	for _, bid := range bids {
		units[bid.SelectionKey()] += bid.Units()
	}
	return units, nil
}

// ListBySelection returns the active bids on a canonical selection key.
func (r *BidRepository) ListBySelection(ctx context.Context, slotID int64, key string) ([]*entities.Bid, error) {
	bids, err := r.listActive(ctx, slotID)
	if err != nil {
		return nil, err
	}

	var matched []*entities.Bid
	for _, bid := range bids {
		if bid.SelectionKey() == key {
			matched = append(matched, bid)
		}
	}
	return matched, nil
}

// SumUnitsForNumber returns the active units already staked on a lucky
// draw number, for per-number cap enforcement.
func (r *BidRepository) SumUnitsForNumber(ctx context.Context, slotID int64, number int) (int64, error) {
	query := `SELECT COALESCE(SUM(unit_count), 0) FROM bids WHERE slot_id = $1 AND number = $2 AND status = $3`
	var units int64
	err := r.q.QueryRow(ctx, query, slotID, number, entities.BidStatusActive).Scan(&units)
	if err != nil {
		return 0, fmt.Errorf("failed to sum units for slot %d number %d: %w", slotID, number, err)
	}
	return units, nil
}

func (r *BidRepository) listActive(ctx context.Context, slotID int64) ([]*entities.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE slot_id = $1 AND status = $2 ORDER BY id`
	rows, err := r.q.Query(ctx, query, slotID, entities.BidStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids for slot %d: %w", slotID, err)
	}
	defer rows.Close()

	var bids []*entities.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, bid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bids: %w", err)
	}
	return bids, nil
}

func scanBid(row pgx.Row) (*entities.Bid, error) {
	var bid entities.Bid
	var jpNumbers []int32
	err := row.Scan(
		&bid.ID,
		&bid.SlotID,
		&bid.UserID,
		&bid.CustomerName,
		&bid.CustomerPhone,
		&bid.Amount,
		&bid.Number,
		&bid.Count,
		&jpNumbers,
		&bid.UniqueBidID,
		&bid.Status,
		&bid.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	bid.JPNumbers = pgToInts(jpNumbers)
	return &bid, nil
}

func intsToPg(numbers []int) []int32 {
	if numbers == nil {
		return nil
	}
	out := make([]int32, len(numbers))
	for i, n := range numbers {
		out[i] = int32(n)
	}
	return out
}

func pgToInts(numbers []int32) []int {
	if numbers == nil {
		return nil
	}
	out := make([]int, len(numbers))
	for i, n := range numbers {
		out[i] = int(n)
	}
	return out
}
