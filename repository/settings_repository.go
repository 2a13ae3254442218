package repository

import (
	"context"
	"fmt"

	"drawhouse/database"
	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const settingsColumns = `min_profit_pct, winning_prize_ld, winning_prize_jp, bid_prize_ld, bid_prize_jp, agent_negative_balance_limit, default_commission_pct, ld_bid_limit_per_number, window_lead_minutes, payout_policy, updated_at`

// SettingsRepository implements access to the singleton settings row.
// The row is pinned at id 1 and created with defaults on first read.
type SettingsRepository struct {
	q Queryable
}

// NewSettingsRepository creates a settings repository on the pool.
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{q: db.Pool}
}

// NewSettingsRepositoryWithTx creates a settings repository on a transaction.
func NewSettingsRepositoryWithTx(tx Queryable) interfaces.SettingsRepository {
	return &SettingsRepository{q: tx}
}

// Get returns the settings row, inserting defaults when none exists yet.
func (r *SettingsRepository) Get(ctx context.Context) (*entities.AppSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM app_settings WHERE id = 1`
	settings, err := r.scanSettings(r.q.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return r.createDefaults(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// Update overwrites the settings row.
func (r *SettingsRepository) Update(ctx context.Context, settings *entities.AppSettings) error {
	query := `
		UPDATE app_settings
		SET min_profit_pct = $1, winning_prize_ld = $2, winning_prize_jp = $3,
		    bid_prize_ld = $4, bid_prize_jp = $5, agent_negative_balance_limit = $6,
		    default_commission_pct = $7, ld_bid_limit_per_number = $8,
		    window_lead_minutes = $9, payout_policy = $10, updated_at = NOW()
		WHERE id = 1
	`
	result, err := r.q.Exec(ctx, query,
		settings.MinProfitPct,
		settings.WinningPrizeLD,
		settings.WinningPrizeJP,
		settings.BidPrizeLD,
		settings.BidPrizeJP,
		settings.AgentNegativeBalanceLimit,
		settings.DefaultCommissionPct,
		settings.LDBidLimitPerNumber,
		settings.WindowLeadMinutes,
		settings.PayoutPolicy,
	)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("settings row not found")
	}
	return nil
}

func (r *SettingsRepository) createDefaults(ctx context.Context) (*entities.AppSettings, error) {
	defaults := entities.DefaultAppSettings()
	query := `
		INSERT INTO app_settings
			(id, min_profit_pct, winning_prize_ld, winning_prize_jp, bid_prize_ld, bid_prize_jp,
			 agent_negative_balance_limit, default_commission_pct, ld_bid_limit_per_number,
			 window_lead_minutes, payout_policy)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
		RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query,
		defaults.MinProfitPct,
		defaults.WinningPrizeLD,
		defaults.WinningPrizeJP,
		defaults.BidPrizeLD,
		defaults.BidPrizeJP,
		defaults.AgentNegativeBalanceLimit,
		defaults.DefaultCommissionPct,
		defaults.LDBidLimitPerNumber,
		defaults.WindowLeadMinutes,
		defaults.PayoutPolicy,
	).Scan(&defaults.UpdatedAt)
	if err == pgx.ErrNoRows {
		// Lost the insert race; read the winner's row.
		return r.Get(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}
	return defaults, nil
}

func (r *SettingsRepository) scanSettings(row pgx.Row) (*entities.AppSettings, error) {
	var settings entities.AppSettings
	err := row.Scan(
		&settings.MinProfitPct,
		&settings.WinningPrizeLD,
		&settings.WinningPrizeJP,
		&settings.BidPrizeLD,
		&settings.BidPrizeJP,
		&settings.AgentNegativeBalanceLimit,
		&settings.DefaultCommissionPct,
		&settings.LDBidLimitPerNumber,
		&settings.WindowLeadMinutes,
		&settings.PayoutPolicy,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
