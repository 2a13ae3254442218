package testhelpers

import (
	"context"

	"drawhouse/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockWalletLedger is a mock implementation of WalletLedger
type MockWalletLedger struct {
	mock.Mock
}

func (m *MockWalletLedger) DebitForBid(ctx context.Context, userID int64, amount decimal.Decimal, meta entities.BidMeta, settings entities.SettingsSnapshot) (*entities.Wallet, error) {
	args := m.Called(ctx, userID, amount, meta, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletLedger) CreditCommission(ctx context.Context, userID int64, amount decimal.Decimal, meta entities.BidMeta) (*entities.Wallet, error) {
	args := m.Called(ctx, userID, amount, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletLedger) CreditWinning(ctx context.Context, userID int64, amount decimal.Decimal, meta entities.WinMeta) (*entities.Wallet, error) {
	args := m.Called(ctx, userID, amount, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletLedger) WinningSettlementToAgent(ctx context.Context, adminID, userID int64, amount decimal.Decimal) (*entities.Wallet, error) {
	args := m.Called(ctx, adminID, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletLedger) WinningSettlementToUser(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*entities.Wallet, error) {
	args := m.Called(ctx, userID, amount, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletLedger) SettleCommissionByAdmin(ctx context.Context, adminID, userID int64, amount decimal.Decimal) (*entities.Wallet, error) {
	args := m.Called(ctx, adminID, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletLedger) AdminProcessWithdraw(ctx context.Context, adminID, userID int64, amount decimal.Decimal) (*entities.Wallet, error) {
	args := m.Called(ctx, adminID, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletLedger) RequestBidDeposit(ctx context.Context, userID int64, amount decimal.Decimal, externalRef string) (*entities.WalletTx, error) {
	args := m.Called(ctx, userID, amount, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WalletTx), args.Error(1)
}

func (m *MockWalletLedger) ApproveDeposit(ctx context.Context, adminID, txID int64, approve bool) (*entities.Wallet, error) {
	args := m.Called(ctx, adminID, txID, approve)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}
