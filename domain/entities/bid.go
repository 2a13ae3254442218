package entities

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MinNumber and MaxNumber bound every playable number for both games.
	MinNumber = 1
	MaxNumber = 37

	// JPComboSize is the fixed combo length for a jackpot bid.
	JPComboSize = 6
)

// BidStatus is a soft flag; bids are otherwise immutable once created.
type BidStatus string

const (
	BidStatusActive    BidStatus = "ACTIVE"
	BidStatusCancelled BidStatus = "CANCELLED"
)

// Bid is one stake placed by an agent on behalf of a customer.
// LD bids carry Number and a unit Count; JP bids carry JPNumbers and are
// always a single unit.
type Bid struct {
	ID            int64           `db:"id"`
	SlotID        int64           `db:"slot_id"`
	UserID        int64           `db:"user_id"`
	CustomerName  string          `db:"customer_name"`
	CustomerPhone string          `db:"customer_phone"`
	Amount        decimal.Decimal `db:"amount"`
	Number        *int            `db:"number"`
	Count         int64           `db:"unit_count"`
	JPNumbers     []int           `db:"jp_numbers"`
	UniqueBidID   string          `db:"unique_bid_id"`
	Status        BidStatus       `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
}

// Validate checks the variant payload against the slot type. JP combos are
// range-checked only; duplicates are allowed (sampling with replacement).
func (b *Bid) Validate(slotType SlotType) error {
	switch slotType {
	case SlotTypeLD:
		if b.Number == nil {
			return errors.New("lucky draw bid requires a number")
		}
		if *b.Number < MinNumber || *b.Number > MaxNumber {
			return fmt.Errorf("number must be between %d and %d", MinNumber, MaxNumber)
		}
		if b.Count < 1 {
			return errors.New("unit count must be at least 1")
		}
	case SlotTypeJP:
		if len(b.JPNumbers) != JPComboSize {
			return fmt.Errorf("jackpot bid requires exactly %d numbers", JPComboSize)
		}
		for _, n := range b.JPNumbers {
			if n < MinNumber || n > MaxNumber {
				return fmt.Errorf("combo numbers must be between %d and %d", MinNumber, MaxNumber)
			}
		}
	default:
		return errors.New("unknown slot type")
	}
	return nil
}

// IsActive returns true unless the bid has been soft-cancelled.
func (b *Bid) IsActive() bool {
	return b.Status != BidStatusCancelled
}

// Units returns the stake units this bid contributes to its selection:
// the unit count for LD, always one for a JP combo.
func (b *Bid) Units() int64 {
	if b.Number != nil {
		return b.Count
	}
	return 1
}

// SelectionKey normalizes the bid's selection for aggregation: the number
// itself for LD, the sorted dash-joined combo for JP.
func (b *Bid) SelectionKey() string {
	if b.Number != nil {
		return strconv.Itoa(*b.Number)
	}
	return ComboKey(b.JPNumbers)
}

// ComputeUniqueBidID derives the deterministic composite identity used for
// idempotent identification. It is advisory, not a hard uniqueness
// constraint.
func (b *Bid) ComputeUniqueBidID(slotCode string) string {
	if b.Number != nil {
		return fmt.Sprintf("%s:%s:%dx%d", slotCode, b.CustomerPhone, *b.Number, b.Count)
	}
	return fmt.Sprintf("%s:%s:%s", slotCode, b.CustomerPhone, ComboKey(b.JPNumbers))
}

// ComboKey builds the canonical key for a jackpot combo: numbers sorted
// ascending, dash-joined.
func ComboKey(numbers []int) string {
	sorted := make([]int, len(numbers))
	copy(sorted, numbers)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, n := range sorted {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "-")
}

// ParseComboKey parses a dash-joined combo key back into numbers.
func ParseComboKey(key string) ([]int, error) {
	parts := strings.Split(key, "-")
	numbers := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid combo key %q: %w", key, err)
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}
