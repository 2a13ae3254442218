package services

import (
	"testing"

	"drawhouse/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ldInput(collected, prize float64, realUnits int64) PayoutInput {
	return PayoutInput{
		Collected:            decimal.NewFromFloat(collected),
		PrizeAmount:          decimal.NewFromFloat(prize),
		RealUnits:            realUnits,
		MinProfitPct:         decimal.NewFromFloat(0.15),
		Policy:               entities.PolicyUncapped,
		MaxUnitsPerSelection: 500,
	}
}

func TestComputePayout_DilutionKeepsRealPayoutUnderCeiling(t *testing.T) {
	t.Parallel()

	// 1000 collected at 15% minimum profit caps the real payout at 850.
	// A 3300 prize over 5 real units needs 15 dummy units: 3300/20 = 165
	// per unit, 825 to real winners.
	breakdown, err := ComputePayout(ldInput(1000, 3300, 5))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(850).Equal(breakdown.Ceiling), "ceiling = %s", breakdown.Ceiling)
	assert.Equal(t, int64(15), breakdown.DummyUnits)
	assert.Equal(t, int64(20), breakdown.TotalUnits)
	assert.True(t, decimal.NewFromInt(165).Equal(breakdown.UnitPayout), "unit payout = %s", breakdown.UnitPayout)
	assert.True(t, decimal.NewFromInt(825).Equal(breakdown.PayoutToReal), "payout = %s", breakdown.PayoutToReal)
}

func TestComputePayout_NoDilutionWhenPrizeFitsUnderCeiling(t *testing.T) {
	t.Parallel()

	// 10000 collected allows 8500 out; the 3300 prize on one unit fits
	// without any dummy units.
	breakdown, err := ComputePayout(ldInput(10000, 3300, 1))
	require.NoError(t, err)

	assert.Equal(t, int64(0), breakdown.DummyUnits)
	assert.Equal(t, int64(1), breakdown.TotalUnits)
	assert.True(t, decimal.NewFromInt(3300).Equal(breakdown.PayoutToReal), "payout = %s", breakdown.PayoutToReal)
}

func TestComputePayout_ZeroRealUnitsPaysNothing(t *testing.T) {
	t.Parallel()

	breakdown, err := ComputePayout(ldInput(1000, 3300, 0))
	require.NoError(t, err)

	assert.True(t, breakdown.PayoutToReal.IsZero())
	// Synthetic split: D = ceil(3300/p) for p in [20, 50].
	assert.GreaterOrEqual(t, breakdown.DummyUnits, int64(66))
	assert.LessOrEqual(t, breakdown.DummyUnits, int64(165))
	assert.Equal(t, breakdown.DummyUnits, breakdown.TotalUnits)
	assert.True(t, breakdown.UnitPayout.GreaterThan(decimal.Zero))
	assert.True(t, breakdown.WinnerPayout(3).IsZero())
}

func TestComputePayout_ZeroCeilingPaysNothing(t *testing.T) {
	t.Parallel()

	breakdown, err := ComputePayout(ldInput(0, 3300, 5))
	require.NoError(t, err)

	assert.True(t, breakdown.PayoutToReal.IsZero())
	assert.Equal(t, int64(0), breakdown.DummyUnits)
	assert.Equal(t, int64(5), breakdown.TotalUnits)
	assert.True(t, breakdown.UnitPayout.IsZero())
}

func TestComputePayout_CappedPolicyFallsBackToCeiling(t *testing.T) {
	t.Parallel()

	// 100 collected with 5 real units would need 190 dummy units. With a
	// cap of 10 the capped policy pays exactly at the ceiling instead.
	in := ldInput(100, 3300, 5)
	in.Policy = entities.PolicyCappedWithScaledFallback
	in.MaxUnitsPerSelection = 10

	breakdown, err := ComputePayout(in)
	require.NoError(t, err)

	assert.Equal(t, int64(0), breakdown.DummyUnits)
	assert.Equal(t, int64(5), breakdown.TotalUnits)
	assert.True(t, decimal.NewFromInt(85).Equal(breakdown.PayoutToReal), "payout = %s", breakdown.PayoutToReal)
	assert.True(t, decimal.NewFromInt(17).Equal(breakdown.WinnerPayout(1)), "per-unit = %s", breakdown.WinnerPayout(1))
}

func TestComputePayout_UncappedPolicyDilutesPastCap(t *testing.T) {
	t.Parallel()

	in := ldInput(100, 3300, 5)
	in.MaxUnitsPerSelection = 10 // ignored by the uncapped policy

	breakdown, err := ComputePayout(in)
	require.NoError(t, err)

	assert.Equal(t, int64(190), breakdown.DummyUnits)
	assert.Equal(t, int64(195), breakdown.TotalUnits)
	assert.True(t, breakdown.PayoutToReal.LessThanOrEqual(breakdown.Ceiling),
		"payout %s exceeds ceiling %s", breakdown.PayoutToReal, breakdown.Ceiling)
}

func TestComputePayout_RealPayoutNeverExceedsCeiling(t *testing.T) {
	t.Parallel()

	cases := []struct {
		collected float64
		prize     float64
		realUnits int64
	}{
		{100, 3300, 1},
		{500, 3300, 3},
		{1000, 3300, 5},
		{2500, 3300, 12},
		{12000, 100000, 1},
		{50000, 100000, 7},
		{777, 3300, 37},
	}

	for _, policy := range []entities.DummyUnitPolicy{entities.PolicyUncapped, entities.PolicyCappedWithScaledFallback} {
		for _, c := range cases {
			in := ldInput(c.collected, c.prize, c.realUnits)
			in.Policy = policy

			breakdown, err := ComputePayout(in)
			require.NoError(t, err)

			assert.True(t, breakdown.PayoutToReal.LessThanOrEqual(breakdown.Ceiling),
				"policy %s collected %v units %d: payout %s > ceiling %s",
				policy, c.collected, c.realUnits, breakdown.PayoutToReal, breakdown.Ceiling)
			assert.GreaterOrEqual(t, breakdown.DummyUnits, int64(0))
			assert.Equal(t, breakdown.TotalUnits, breakdown.DummyUnits+c.realUnits)
		}
	}
}

func TestWinnerPayout_SplitsWithoutCompoundingRounding(t *testing.T) {
	t.Parallel()

	breakdown, err := ComputePayout(ldInput(1000, 3300, 7))
	require.NoError(t, err)

	// Three winners holding 2, 2 and 3 units. Each payout rounds from the
	// unrounded rate, so the sum stays within a cent of the pooled payout.
	sum := breakdown.WinnerPayout(2).Add(breakdown.WinnerPayout(2)).Add(breakdown.WinnerPayout(3))
	diff := sum.Sub(breakdown.PayoutToReal).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.NewFromFloat(0.03)), "diff = %s", diff)
}

func TestPickWinner_PrefersMostProfitableLowUnitSelection(t *testing.T) {
	t.Parallel()

	unitsByKey := map[string]int64{
		"1": 40,
		"2": 1,
		"3": 3,
		"4": 12,
		"5": 7,
		"6": 25,
	}
	in := ldInput(1000, 3300, 0)

	selection, err := PickWinner(entities.SlotTypeLD, unitsByKey, in)
	require.NoError(t, err)
	require.NotNil(t, selection)

	// The candidate pool is the five fewest-unit selections; the largest
	// stack can never win the auto-selection. Profit ties break toward the
	// fewest real units, which is the single-unit selection here.
	assert.NotEqual(t, "1", selection.Key)
	assert.Equal(t, "2", selection.Key)

	for key, units := range unitsByKey {
		if key == "1" {
			continue
		}
		projected := in
		projected.RealUnits = units
		breakdown, err := ComputePayout(projected)
		require.NoError(t, err)
		profit := in.Collected.Sub(breakdown.PayoutToReal)
		assert.True(t, selection.Profit.GreaterThanOrEqual(profit),
			"selection %s (profit %s) beaten by %s (profit %s)", selection.Key, selection.Profit, key, profit)
	}
}

func TestPickWinner_NoBidsFallsBackToRandomSelection(t *testing.T) {
	t.Parallel()

	in := ldInput(0, 3300, 0)
	selection, err := PickWinner(entities.SlotTypeLD, map[string]int64{}, in)
	require.NoError(t, err)
	require.NotNil(t, selection)

	assert.Equal(t, int64(0), selection.RealUnits)
	assert.True(t, selection.Projected.PayoutToReal.IsZero())
	assert.NotEmpty(t, selection.Key)
}

func TestBuildDisplayUnits_WinnerShowsAdvertisedTotal(t *testing.T) {
	t.Parallel()

	realUnits := map[string]int64{"7": 5, "12": 2}
	display, err := BuildDisplayUnits(entities.SlotTypeLD, "7", realUnits, 20)
	require.NoError(t, err)

	assert.Equal(t, int64(20), display["7"])
	// Real counts only ever jitter upward.
	assert.GreaterOrEqual(t, display["12"], int64(2))
}

func TestBuildDisplayUnits_JPKeepsComboKeys(t *testing.T) {
	t.Parallel()

	winner := entities.ComboKey([]int{5, 1, 9, 22, 13, 37})
	display, err := BuildDisplayUnits(entities.SlotTypeJP, winner, map[string]int64{winner: 1}, 30)
	require.NoError(t, err)

	assert.Equal(t, int64(30), display[winner])
}
