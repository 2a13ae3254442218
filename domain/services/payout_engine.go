package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"

	"drawhouse/domain/entities"

	"github.com/shopspring/decimal"
)

const (
	// Display unit-value range used when no real winner exists: the full
	// prize is split into D = ceil(W/p) cosmetic units for a random p.
	minDisplayUnitValue = 20
	maxDisplayUnitValue = 50

	// maxAutoCandidates bounds how many low-unit selections the
	// auto-selection policy evaluates.
	maxAutoCandidates = 5
)

// PayoutInput is everything the engine needs for one slot, passed as an
// immutable snapshot so the computation stays pure.
type PayoutInput struct {
	Collected            decimal.Decimal
	PrizeAmount          decimal.Decimal // full advertised prize W
	RealUnits            int64           // real units on the winning selection R
	MinProfitPct         decimal.Decimal
	Policy               entities.DummyUnitPolicy
	MaxUnitsPerSelection int64 // dummy-unit cap for the capped policy; 0 = unlimited
}

// PayoutBreakdown is the engine's verdict for a slot: how many synthetic
// units to synthesize, the advertised per-unit payout, and the amount that
// will actually be credited to real winners.
type PayoutBreakdown struct {
	Ceiling      decimal.Decimal // M: maximum real payout the house allows
	DummyUnits   int64           // D
	TotalUnits   int64           // R + D
	UnitPayout   decimal.Decimal // U, rounded to 2dp for display
	PayoutToReal decimal.Decimal

	// unitRate is the unrounded rate; per-winner payouts multiply this by
	// the winner's stake before rounding, so rounding error never
	// compounds across winners.
	unitRate decimal.Decimal
}

// WinnerPayout computes one winner's payout from the unrounded unit rate.
func (b PayoutBreakdown) WinnerPayout(units int64) decimal.Decimal {
	return b.unitRate.Mul(decimal.NewFromInt(units)).Round(2)
}

// ComputePayout decides the dummy/real split for a closed slot.
//
// The full prize W is nominally split across R+D units. Increasing D
// dilutes the unit payout, shrinking the real winners' share U*R without
// changing the advertised prize pool; D is the smallest integer keeping
// U*R at or under the ceiling M = collected*(1-minProfitPct).
func ComputePayout(in PayoutInput) (PayoutBreakdown, error) {
	out := PayoutBreakdown{
		Ceiling:      in.Collected.Sub(in.Collected.Mul(in.MinProfitPct)).Round(2),
		UnitPayout:   decimal.Zero,
		PayoutToReal: decimal.Zero,
		unitRate:     decimal.Zero,
	}

	if in.RealUnits == 0 {
		// Nobody to pay. Synthesize a plausible-looking unit split so the
		// advertised result stays consistent.
		p, err := randomInt(minDisplayUnitValue, maxDisplayUnitValue)
		if err != nil {
			return out, err
		}
		out.DummyUnits = in.PrizeAmount.Div(decimal.NewFromInt(p)).Ceil().IntPart()
		if out.DummyUnits < 1 {
			out.DummyUnits = 1
		}
		out.TotalUnits = out.DummyUnits
		out.UnitPayout = in.PrizeAmount.Div(decimal.NewFromInt(out.DummyUnits)).Round(2)
		return out, nil
	}

	if out.Ceiling.LessThanOrEqual(decimal.Zero) {
		// The house cannot afford any payout at all.
		out.TotalUnits = in.RealUnits
		return out, nil
	}

	r := decimal.NewFromInt(in.RealUnits)

	// Minimum D such that W*R/(R+D) <= M, i.e. D >= W*R/M - R.
	dummy := in.PrizeAmount.Mul(r).Div(out.Ceiling).Sub(r).Ceil().IntPart()
	if dummy < 0 {
		dummy = 0
	}

	if in.Policy == entities.PolicyCappedWithScaledFallback &&
		in.MaxUnitsPerSelection > 0 && dummy > in.MaxUnitsPerSelection {
		// Dilution would look absurd; pay exactly at the ceiling instead.
		out.DummyUnits = 0
		out.TotalUnits = in.RealUnits
		out.unitRate = out.Ceiling.Div(r)
		out.UnitPayout = out.unitRate.Round(2)
		out.PayoutToReal = out.Ceiling
		return out, nil
	}

	out.DummyUnits = dummy
	out.TotalUnits = in.RealUnits + dummy
	out.unitRate = in.PrizeAmount.Div(decimal.NewFromInt(out.TotalUnits))
	out.UnitPayout = out.unitRate.Round(2)
	out.PayoutToReal = out.unitRate.Mul(r).Round(2)
	return out, nil
}

// WinnerSelection is one candidate evaluated by the auto-selection policy.
type WinnerSelection struct {
	Key       string
	RealUnits int64
	Projected PayoutBreakdown
	Profit    decimal.Decimal
}

// PickWinner implements the auto-selection policy for system-driven slots:
// among the selections with bids, take up to five with the fewest real
// units (ties shuffled), project the profit for each, and pick the most
// profitable. With no bids at all, random zero-unit fillers compete
// instead, which lands in the cosmetic zero-winner branch.
func PickWinner(slotType entities.SlotType, unitsByKey map[string]int64, in PayoutInput) (*WinnerSelection, error) {
	type candidate struct {
		key   string
		units int64
	}

	candidates := make([]candidate, 0, len(unitsByKey))
	for key, units := range unitsByKey {
		candidates = append(candidates, candidate{key: key, units: units})
	}

	if len(candidates) == 0 {
		fillers, err := randomSelections(slotType, maxAutoCandidates)
		if err != nil {
			return nil, err
		}
		for _, key := range fillers {
			candidates = append(candidates, candidate{key: key})
		}
	}

	// Shuffle first so the later stable sort breaks unit ties randomly.
	if err := shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}); err != nil {
		return nil, err
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].units < candidates[j].units
	})
	if len(candidates) > maxAutoCandidates {
		candidates = candidates[:maxAutoCandidates]
	}

	var best *WinnerSelection
	for _, c := range candidates {
		projected := in
		projected.RealUnits = c.units
		breakdown, err := ComputePayout(projected)
		if err != nil {
			return nil, err
		}

		sel := &WinnerSelection{
			Key:       c.key,
			RealUnits: c.units,
			Projected: breakdown,
			Profit:    in.Collected.Sub(breakdown.PayoutToReal),
		}
		if best == nil ||
			sel.Profit.GreaterThan(best.Profit) ||
			(sel.Profit.Equal(best.Profit) && sel.RealUnits < best.RealUnits) {
			best = sel
		}
	}
	return best, nil
}

// BuildDisplayUnits synthesizes the cosmetic per-selection unit counts
// shown with a published result: small random counts across selections,
// the winning selection inflated to its advertised total, and a few spike
// selections exceeding it so the distribution looks organic. Display only;
// settlement never reads this map.
func BuildDisplayUnits(slotType entities.SlotType, winnerKey string, realUnits map[string]int64, winnerTotal int64) (map[string]int64, error) {
	display := make(map[string]int64, len(realUnits)+maxAutoCandidates+1)

	for key, units := range realUnits {
		jitter, err := randomInt(0, 3)
		if err != nil {
			return nil, err
		}
		display[key] = units + jitter
	}

	if slotType == entities.SlotTypeLD {
		// Fill quiet numbers so the board never looks empty.
		for n := entities.MinNumber; n <= entities.MaxNumber; n++ {
			key := fmt.Sprintf("%d", n)
			if _, ok := display[key]; ok {
				continue
			}
			base, err := randomInt(0, 6)
			if err != nil {
				return nil, err
			}
			if base > 0 {
				display[key] = base
			}
		}
	}

	display[winnerKey] = winnerTotal

	// A few spikes above the winner keep the winning selection from
	// standing out as the obvious maximum.
	spikes, err := randomSelections(slotType, 3)
	if err != nil {
		return nil, err
	}
	for _, key := range spikes {
		if key == winnerKey {
			continue
		}
		bump, err := randomInt(1, 40)
		if err != nil {
			return nil, err
		}
		display[key] = winnerTotal + bump
	}

	return display, nil
}

// randomSelections generates random selection keys for the slot type.
func randomSelections(slotType entities.SlotType, count int) ([]string, error) {
	keys := make([]string, 0, count)
	for len(keys) < count {
		if slotType == entities.SlotTypeLD {
			n, err := randomInt(entities.MinNumber, entities.MaxNumber)
			if err != nil {
				return nil, err
			}
			keys = append(keys, fmt.Sprintf("%d", n))
			continue
		}

		combo := make([]int, entities.JPComboSize)
		for i := range combo {
			n, err := randomInt(entities.MinNumber, entities.MaxNumber)
			if err != nil {
				return nil, err
			}
			combo[i] = int(n)
		}
		keys = append(keys, entities.ComboKey(combo))
	}
	return keys, nil
}

// randomInt returns a cryptographically random integer in [min, max].
func randomInt(min, max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max-min+1))
	if err != nil {
		return 0, fmt.Errorf("random generation failed: %w", err)
	}
	return min + n.Int64(), nil
}

// shuffle is a Fisher-Yates shuffle over crypto/rand.
func shuffle(n int, swap func(i, j int)) error {
	for i := n - 1; i > 0; i-- {
		j, err := randomInt(0, int64(i))
		if err != nil {
			return err
		}
		swap(i, int(j))
	}
	return nil
}
