package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// DummyUnitPolicy selects how the payout engine handles a dummy-unit count
// that exceeds the per-selection cap.
type DummyUnitPolicy string

const (
	// PolicyUncapped always dilutes with the minimum dummy units that keep
	// the real payout under the ceiling, no matter how many that takes.
	PolicyUncapped DummyUnitPolicy = "UNCAPPED"

	// PolicyCappedWithScaledFallback caps dummy units at the configured
	// per-selection maximum; when the cap would be exceeded it pays real
	// winners exactly at the ceiling with zero dummy units instead.
	PolicyCappedWithScaledFallback DummyUnitPolicy = "CAPPED_SCALED_FALLBACK"
)

// IsValid returns true for a known policy value.
func (p DummyUnitPolicy) IsValid() bool {
	return p == PolicyUncapped || p == PolicyCappedWithScaledFallback
}

// AppSettings is the singleton pricing/profit configuration row.
// Read-mostly; admin-mutable; created with defaults when absent.
type AppSettings struct {
	MinProfitPct              decimal.Decimal `db:"min_profit_pct"`
	WinningPrizeLD            decimal.Decimal `db:"winning_prize_ld"`
	WinningPrizeJP            decimal.Decimal `db:"winning_prize_jp"`
	BidPrizeLD                decimal.Decimal `db:"bid_prize_ld"`
	BidPrizeJP                decimal.Decimal `db:"bid_prize_jp"`
	AgentNegativeBalanceLimit decimal.Decimal `db:"agent_negative_balance_limit"`
	DefaultCommissionPct      decimal.Decimal `db:"default_commission_pct"`
	LDBidLimitPerNumber       int64           `db:"ld_bid_limit_per_number"`
	WindowLeadMinutes         int64           `db:"window_lead_minutes"`
	PayoutPolicy              DummyUnitPolicy `db:"payout_policy"`
	UpdatedAt                 time.Time       `db:"updated_at"`
}

// DefaultAppSettings returns the settings row created on first access.
func DefaultAppSettings() *AppSettings {
	return &AppSettings{
		MinProfitPct:              decimal.NewFromFloat(0.15),
		WinningPrizeLD:            decimal.NewFromInt(3300),
		WinningPrizeJP:            decimal.NewFromInt(100000),
		BidPrizeLD:                decimal.NewFromInt(100),
		BidPrizeJP:                decimal.NewFromInt(120),
		AgentNegativeBalanceLimit: decimal.NewFromInt(200),
		DefaultCommissionPct:      decimal.NewFromFloat(0.05),
		LDBidLimitPerNumber:       500,
		WindowLeadMinutes:         10,
		PayoutPolicy:              PolicyCappedWithScaledFallback,
	}
}

// Snapshot captures the settings as an immutable per-call value. Slots
// store a snapshot at creation time so a later settings change never
// reprices an already scheduled draw.
func (s *AppSettings) Snapshot() SettingsSnapshot {
	return SettingsSnapshot{
		MinProfitPct:              s.MinProfitPct,
		WinningPrizeLD:            s.WinningPrizeLD,
		WinningPrizeJP:            s.WinningPrizeJP,
		BidPrizeLD:                s.BidPrizeLD,
		BidPrizeJP:                s.BidPrizeJP,
		AgentNegativeBalanceLimit: s.AgentNegativeBalanceLimit,
		DefaultCommissionPct:      s.DefaultCommissionPct,
		LDBidLimitPerNumber:       s.LDBidLimitPerNumber,
		WindowLeadMinutes:         s.WindowLeadMinutes,
		PayoutPolicy:              s.PayoutPolicy,
	}
}

// SettingsSnapshot is the value handed to services. It is deliberately a
// plain value type: the payout engine and wallet ledger never reach for
// global state.
type SettingsSnapshot struct {
	MinProfitPct              decimal.Decimal `json:"minProfitPct"`
	WinningPrizeLD            decimal.Decimal `json:"winningPrizeLD"`
	WinningPrizeJP            decimal.Decimal `json:"winningPrizeJP"`
	BidPrizeLD                decimal.Decimal `json:"bidPrizeLD"`
	BidPrizeJP                decimal.Decimal `json:"bidPrizeJP"`
	AgentNegativeBalanceLimit decimal.Decimal `json:"agentNegativeBalanceLimit"`
	DefaultCommissionPct      decimal.Decimal `json:"defaultCommissionPct"`
	LDBidLimitPerNumber       int64           `json:"ldBidLimitPerNumber"`
	WindowLeadMinutes         int64           `json:"windowLeadMinutes"`
	PayoutPolicy              DummyUnitPolicy `json:"payoutPolicy"`
}

// WinningPrize returns the full advertised prize for a slot type.
func (s SettingsSnapshot) WinningPrize(t SlotType) decimal.Decimal {
	if t == SlotTypeJP {
		return s.WinningPrizeJP
	}
	return s.WinningPrizeLD
}

// BidPrice returns the per-unit stake price for a slot type.
func (s SettingsSnapshot) BidPrice(t SlotType) decimal.Decimal {
	if t == SlotTypeJP {
		return s.BidPrizeJP
	}
	return s.BidPrizeLD
}

// WindowLead returns the lead time between window close and draw time.
func (s SettingsSnapshot) WindowLead() time.Duration {
	return time.Duration(s.WindowLeadMinutes) * time.Minute
}
