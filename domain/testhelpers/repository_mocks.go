package testhelpers

import (
	"context"
	"time"

	"drawhouse/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByIDForUpdate(ctx context.Context, walletID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Create(ctx context.Context, userID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateBalances(ctx context.Context, walletID int64, total, reserved decimal.Decimal) error {
	args := m.Called(ctx, walletID, total, reserved)
	return args.Error(0)
}

// MockWalletTxRepository is a mock implementation of WalletTxRepository
type MockWalletTxRepository struct {
	mock.Mock
}

func (m *MockWalletTxRepository) Record(ctx context.Context, tx *entities.WalletTx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockWalletTxRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.WalletTx, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WalletTx), args.Error(1)
}

func (m *MockWalletTxRepository) ResolveDeposit(ctx context.Context, id int64, status entities.DepositStatus, balanceAfter decimal.Decimal) error {
	args := m.Called(ctx, id, status, balanceAfter)
	return args.Error(0)
}

func (m *MockWalletTxRepository) ListByWallet(ctx context.Context, walletID int64, limit int) ([]*entities.WalletTx, error) {
	args := m.Called(ctx, walletID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WalletTx), args.Error(1)
}

func (m *MockWalletTxRepository) SumBalanceAffecting(ctx context.Context, walletID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockSlotRepository is a mock implementation of SlotRepository
type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) Create(ctx context.Context, slot *entities.Slot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *MockSlotRepository) GetByID(ctx context.Context, id int64) (*entities.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Slot), args.Error(1)
}

func (m *MockSlotRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Slot), args.Error(1)
}

func (m *MockSlotRepository) UpdateStatus(ctx context.Context, id int64, status entities.SlotStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockSlotRepository) UpdateSchedule(ctx context.Context, id int64, slotTime, windowCloseAt time.Time) error {
	args := m.Called(ctx, id, slotTime, windowCloseAt)
	return args.Error(0)
}

func (m *MockSlotRepository) ListExpiredOpen(ctx context.Context, now time.Time) ([]*entities.Slot, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Slot), args.Error(1)
}

func (m *MockSlotRepository) ListAnnounceDue(ctx context.Context, now time.Time) ([]*entities.Slot, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Slot), args.Error(1)
}

// MockBidRepository is a mock implementation of BidRepository
type MockBidRepository struct {
	mock.Mock
}

func (m *MockBidRepository) Create(ctx context.Context, bid *entities.Bid) error {
	args := m.Called(ctx, bid)
	return args.Error(0)
}

func (m *MockBidRepository) CountBySlot(ctx context.Context, slotID int64) (int64, error) {
	args := m.Called(ctx, slotID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBidRepository) AggregateCollected(ctx context.Context, slotID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, slotID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBidRepository) AggregateUnitsBySelection(ctx context.Context, slotID int64) (map[string]int64, error) {
	args := m.Called(ctx, slotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockBidRepository) ListBySelection(ctx context.Context, slotID int64, key string) ([]*entities.Bid, error) {
	args := m.Called(ctx, slotID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bid), args.Error(1)
}

func (m *MockBidRepository) SumUnitsForNumber(ctx context.Context, slotID int64, number int) (int64, error) {
	args := m.Called(ctx, slotID, number)
	return args.Get(0).(int64), args.Error(1)
}

// MockDrawResultRepository is a mock implementation of DrawResultRepository
type MockDrawResultRepository struct {
	mock.Mock
}

func (m *MockDrawResultRepository) Create(ctx context.Context, result *entities.DrawResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockDrawResultRepository) GetBySlotID(ctx context.Context, slotID int64) (*entities.DrawResult, error) {
	args := m.Called(ctx, slotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DrawResult), args.Error(1)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*entities.AppSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AppSettings), args.Error(1)
}

func (m *MockSettingsRepository) Update(ctx context.Context, settings *entities.AppSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}
