package services

import (
	"context"
	"testing"

	"drawhouse/domain/entities"
	"drawhouse/domain/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestWallet(id, userID int64, total, reserved float64) *entities.Wallet {
	return &entities.Wallet{
		ID:              id,
		UserID:          userID,
		TotalBalance:    decimal.NewFromFloat(total),
		ReservedWinning: decimal.NewFromFloat(reserved),
	}
}

func testSettings() entities.SettingsSnapshot {
	return entities.DefaultAppSettings().Snapshot()
}

// decEq matches a decimal argument by numeric value rather than internal
// representation.
func decEq(want string) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.RequireFromString(want))
	})
}

func TestWalletService_DebitForBid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		amount      decimal.Decimal
		setupMocks  func(*testhelpers.MockWalletRepository, *testhelpers.MockWalletTxRepository)
		wantErr     error
		wantBalance decimal.Decimal
	}{
		{
			name:   "debit on zero wallet within negative limit",
			amount: decimal.NewFromInt(50),
			setupMocks: func(walletRepo *testhelpers.MockWalletRepository, txRepo *testhelpers.MockWalletTxRepository) {
				wallet := newTestWallet(1, 100, 0, 0)
				walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(100)).Return(wallet, nil)
				walletRepo.On("UpdateBalances", mock.Anything, int64(1), decEq("-50"), decEq("0")).Return(nil)
				txRepo.On("Record", mock.Anything, mock.MatchedBy(func(tx *entities.WalletTx) bool {
					return tx.Type == entities.TransactionTypeBidDebit &&
						tx.Amount.Equal(decimal.NewFromInt(-50)) &&
						tx.BalanceAfter.Equal(decimal.NewFromInt(-50))
				})).Return(nil)
			},
			wantBalance: decimal.NewFromInt(-50),
		},
		{
			name:   "debit past negative limit fails",
			amount: decimal.NewFromInt(200),
			setupMocks: func(walletRepo *testhelpers.MockWalletRepository, txRepo *testhelpers.MockWalletTxRepository) {
				// Already at -50; limit 200 leaves only 150 of headroom.
				wallet := newTestWallet(1, 100, -50, 0)
				walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(100)).Return(wallet, nil)
			},
			wantErr: ErrInsufficientFunds,
		},
		{
			name:   "reserved winnings do not fund bids",
			amount: decimal.NewFromInt(250),
			setupMocks: func(walletRepo *testhelpers.MockWalletRepository, txRepo *testhelpers.MockWalletTxRepository) {
				// Total 400 but 380 reserved: available 20, headroom 220.
				wallet := newTestWallet(1, 100, 400, 380)
				walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(100)).Return(wallet, nil)
			},
			wantErr: ErrInsufficientFunds,
		},
		{
			name:   "wallet created lazily on first debit",
			amount: decimal.NewFromInt(10),
			setupMocks: func(walletRepo *testhelpers.MockWalletRepository, txRepo *testhelpers.MockWalletTxRepository) {
				walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(100)).Return(nil, nil)
				walletRepo.On("Create", mock.Anything, int64(100)).Return(newTestWallet(1, 100, 0, 0), nil)
				walletRepo.On("UpdateBalances", mock.Anything, int64(1), mock.Anything, mock.Anything).Return(nil)
				txRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
			},
			wantBalance: decimal.NewFromInt(-10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			walletRepo := new(testhelpers.MockWalletRepository)
			txRepo := new(testhelpers.MockWalletTxRepository)
			tt.setupMocks(walletRepo, txRepo)

			service := NewWalletService(walletRepo, txRepo)
			wallet, err := service.DebitForBid(ctx, 100, tt.amount, entities.BidMeta{SlotID: 7}, testSettings())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, wallet)
			} else {
				require.NoError(t, err)
				assert.True(t, tt.wantBalance.Equal(wallet.TotalBalance), "balance = %s", wallet.TotalBalance)
			}

			walletRepo.AssertExpectations(t)
			txRepo.AssertExpectations(t)
		})
	}
}

func TestWalletService_CreditWinning(t *testing.T) {
	t.Parallel()

	t.Run("credits the reserve only", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		walletRepo := new(testhelpers.MockWalletRepository)
		txRepo := new(testhelpers.MockWalletTxRepository)

		wallet := newTestWallet(1, 100, 40, 0)
		walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(100)).Return(wallet, nil)
		walletRepo.On("UpdateBalances", mock.Anything, int64(1), decEq("40"), decEq("165")).Return(nil)
		txRepo.On("Record", mock.Anything, mock.MatchedBy(func(tx *entities.WalletTx) bool {
			return tx.Type == entities.TransactionTypeWinCredit &&
				tx.ReservedAfter.Equal(decimal.NewFromInt(165)) &&
				!tx.CountsTowardBalance()
		})).Return(nil)

		service := NewWalletService(walletRepo, txRepo)
		got, err := service.CreditWinning(ctx, 100, decimal.NewFromInt(165), entities.WinMeta{SlotID: 7, Winner: "13"})

		require.NoError(t, err)
		assert.True(t, got.TotalBalance.Equal(decimal.NewFromInt(40)))
		assert.True(t, got.ReservedWinning.Equal(decimal.NewFromInt(165)))
		walletRepo.AssertExpectations(t)
		txRepo.AssertExpectations(t)
	})

	t.Run("fails when wallet is missing", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		walletRepo := new(testhelpers.MockWalletRepository)
		txRepo := new(testhelpers.MockWalletTxRepository)
		walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(100)).Return(nil, nil)

		service := NewWalletService(walletRepo, txRepo)
		_, err := service.CreditWinning(ctx, 100, decimal.NewFromInt(10), entities.WinMeta{})

		assert.ErrorIs(t, err, ErrWalletNotFound)
	})
}

func TestWalletService_WinningSettlementToUser(t *testing.T) {
	t.Parallel()

	t.Run("decrements both tracks", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		walletRepo := new(testhelpers.MockWalletRepository)
		txRepo := new(testhelpers.MockWalletTxRepository)

		wallet := newTestWallet(1, 100, 200, 165)
		walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(100)).Return(wallet, nil)
		walletRepo.On("UpdateBalances", mock.Anything, int64(1), decEq("35"), decEq("0")).Return(nil)
		txRepo.On("Record", mock.Anything, mock.MatchedBy(func(tx *entities.WalletTx) bool {
			return tx.Type == entities.TransactionTypeWinSettlementAgentUser &&
				tx.Amount.Equal(decimal.NewFromInt(-165))
		})).Return(nil)

		service := NewWalletService(walletRepo, txRepo)
		got, err := service.WinningSettlementToUser(ctx, 100, decimal.NewFromInt(165), "paid in cash")

		require.NoError(t, err)
		assert.True(t, got.ReservedWinning.IsZero())
		assert.True(t, got.TotalBalance.Equal(decimal.NewFromInt(35)))
		txRepo.AssertExpectations(t)
	})

	t.Run("fails when the reserve does not cover the amount", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		walletRepo := new(testhelpers.MockWalletRepository)
		txRepo := new(testhelpers.MockWalletTxRepository)

		wallet := newTestWallet(1, 100, 500, 50)
		walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(100)).Return(wallet, nil)

		service := NewWalletService(walletRepo, txRepo)
		_, err := service.WinningSettlementToUser(ctx, 100, decimal.NewFromInt(100), "")

		assert.ErrorIs(t, err, ErrInsufficientReserve)
	})
}

func TestWalletService_WinningSettlementToAgent_LeavesReserveUntouched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	walletRepo := new(testhelpers.MockWalletRepository)
	txRepo := new(testhelpers.MockWalletTxRepository)

	wallet := newTestWallet(1, 100, 10, 165)
	walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(100)).Return(wallet, nil)
	walletRepo.On("UpdateBalances", mock.Anything, int64(1), decEq("175"), decEq("165")).Return(nil)
	txRepo.On("Record", mock.Anything, mock.MatchedBy(func(tx *entities.WalletTx) bool {
		return tx.Type == entities.TransactionTypeWinSettlementAdminAgent &&
			tx.ReservedAfter.Equal(decimal.NewFromInt(165))
	})).Return(nil)

	service := NewWalletService(walletRepo, txRepo)
	got, err := service.WinningSettlementToAgent(ctx, 999, 100, decimal.NewFromInt(165))

	require.NoError(t, err)
	assert.True(t, got.ReservedWinning.Equal(decimal.NewFromInt(165)))
	assert.True(t, got.TotalBalance.Equal(decimal.NewFromInt(175)))
}

func TestWalletService_AdminProcessWithdraw_RequiresAvailableBalance(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	walletRepo := new(testhelpers.MockWalletRepository)
	txRepo := new(testhelpers.MockWalletTxRepository)

	// Total 300 with 250 reserved: only 50 available, no negative allowance
	// for admin-side debits.
	wallet := newTestWallet(1, 100, 300, 250)
	walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(100)).Return(wallet, nil)

	service := NewWalletService(walletRepo, txRepo)
	_, err := service.AdminProcessWithdraw(ctx, 999, 100, decimal.NewFromInt(100))

	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestWalletService_DepositLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("request records a pending entry with zero balance effect", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		walletRepo := new(testhelpers.MockWalletRepository)
		txRepo := new(testhelpers.MockWalletTxRepository)

		wallet := newTestWallet(1, 100, 70, 0)
		walletRepo.On("GetByUserIDForUpdate", mock.Anything, int64(100)).Return(wallet, nil)
		txRepo.On("Record", mock.Anything, mock.MatchedBy(func(tx *entities.WalletTx) bool {
			return tx.IsPendingDeposit() &&
				tx.BalanceAfter.Equal(decimal.NewFromInt(70)) &&
				!tx.CountsTowardBalance()
		})).Return(nil)

		service := NewWalletService(walletRepo, txRepo)
		tx, err := service.RequestBidDeposit(ctx, 100, decimal.NewFromInt(500), "bank-ref-1")

		require.NoError(t, err)
		assert.True(t, tx.IsPendingDeposit())
		walletRepo.AssertNotCalled(t, "UpdateBalances", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("approval applies the amount and resolves the entry", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		walletRepo := new(testhelpers.MockWalletRepository)
		txRepo := new(testhelpers.MockWalletTxRepository)

		status := entities.DepositStatusPending
		pending := &entities.WalletTx{
			ID:            9,
			WalletID:      1,
			Type:          entities.TransactionTypeBidCredit,
			Amount:        decimal.NewFromInt(500),
			BalanceAfter:  decimal.NewFromInt(70),
			DepositStatus: &status,
		}
		txRepo.On("GetByIDForUpdate", mock.Anything, int64(9)).Return(pending, nil)
		walletRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(newTestWallet(1, 100, 70, 0), nil)
		walletRepo.On("UpdateBalances", mock.Anything, int64(1), decEq("570"), decEq("0")).Return(nil)
		txRepo.On("ResolveDeposit", mock.Anything, int64(9), entities.DepositStatusApproved, decEq("570")).Return(nil)

		service := NewWalletService(walletRepo, txRepo)
		wallet, err := service.ApproveDeposit(ctx, 999, 9, true)

		require.NoError(t, err)
		assert.True(t, wallet.TotalBalance.Equal(decimal.NewFromInt(570)))
		txRepo.AssertExpectations(t)
	})

	t.Run("decline resolves without balance effect", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		walletRepo := new(testhelpers.MockWalletRepository)
		txRepo := new(testhelpers.MockWalletTxRepository)

		status := entities.DepositStatusPending
		pending := &entities.WalletTx{
			ID:            9,
			WalletID:      1,
			Type:          entities.TransactionTypeBidCredit,
			Amount:        decimal.NewFromInt(500),
			BalanceAfter:  decimal.NewFromInt(70),
			DepositStatus: &status,
		}
		txRepo.On("GetByIDForUpdate", mock.Anything, int64(9)).Return(pending, nil)
		txRepo.On("ResolveDeposit", mock.Anything, int64(9), entities.DepositStatusDeclined, decEq("70")).Return(nil)

		service := NewWalletService(walletRepo, txRepo)
		wallet, err := service.ApproveDeposit(ctx, 999, 9, false)

		require.NoError(t, err)
		assert.Nil(t, wallet)
		walletRepo.AssertNotCalled(t, "UpdateBalances", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("resolving twice fails", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		walletRepo := new(testhelpers.MockWalletRepository)
		txRepo := new(testhelpers.MockWalletTxRepository)

		status := entities.DepositStatusApproved
		resolved := &entities.WalletTx{
			ID:            9,
			WalletID:      1,
			Type:          entities.TransactionTypeBidCredit,
			Amount:        decimal.NewFromInt(500),
			DepositStatus: &status,
		}
		txRepo.On("GetByIDForUpdate", mock.Anything, int64(9)).Return(resolved, nil)

		service := NewWalletService(walletRepo, txRepo)
		_, err := service.ApproveDeposit(ctx, 999, 9, true)

		assert.ErrorIs(t, err, ErrDepositNotPending)
	})
}

func TestWalletService_RejectsNonPositiveAmounts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := NewWalletService(new(testhelpers.MockWalletRepository), new(testhelpers.MockWalletTxRepository))

	_, err := service.DebitForBid(ctx, 100, decimal.Zero, entities.BidMeta{}, testSettings())
	assert.Error(t, err)

	_, err = service.CreditCommission(ctx, 100, decimal.NewFromInt(-5), entities.BidMeta{})
	assert.Error(t, err)
}
