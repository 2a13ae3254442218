package services

import (
	"context"
	"errors"
	"fmt"

	"drawhouse/domain/entities"
	"drawhouse/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// walletService implements the WalletLedger over transaction-scoped
// repositories. Every operation performs one wallet read-modify-write plus
// one ledger append; the caller's unit of work makes the pair atomic.
type walletService struct {
	walletRepo interfaces.WalletRepository
	txRepo     interfaces.WalletTxRepository
}

// NewWalletService creates a new wallet ledger service.
func NewWalletService(
	walletRepo interfaces.WalletRepository,
	txRepo interfaces.WalletTxRepository,
) interfaces.WalletLedger {
	return &walletService{
		walletRepo: walletRepo,
		txRepo:     txRepo,
	}
}

// DebitForBid decreases the total balance by amount for a stake.
func (s *walletService) DebitForBid(ctx context.Context, userID int64, amount decimal.Decimal, meta entities.BidMeta, settings entities.SettingsSnapshot) (*entities.Wallet, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	wallet, err := s.getOrCreateForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !wallet.CanDebit(amount, settings.AgentNegativeBalanceLimit) {
		return nil, ErrInsufficientFunds
	}

	wallet.TotalBalance = wallet.TotalBalance.Sub(amount)
	return s.applyAndRecord(ctx, wallet, &entities.WalletTx{
		WalletID: wallet.ID,
		Type:     entities.TransactionTypeBidDebit,
		Amount:   amount.Neg(),
		Meta:     meta,
	})
}

// CreditCommission increases the total balance, creating the wallet lazily.
func (s *walletService) CreditCommission(ctx context.Context, userID int64, amount decimal.Decimal, meta entities.BidMeta) (*entities.Wallet, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	wallet, err := s.getOrCreateForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	wallet.TotalBalance = wallet.TotalBalance.Add(amount)
	return s.applyAndRecord(ctx, wallet, &entities.WalletTx{
		WalletID: wallet.ID,
		Type:     entities.TransactionTypeCommissionCredit,
		Amount:   amount,
		Meta:     meta,
	})
}

// CreditWinning increases the reserved-winning track only. The wallet must
// already exist from a prior bid or commission.
func (s *walletService) CreditWinning(ctx context.Context, userID int64, amount decimal.Decimal, meta entities.WinMeta) (*entities.Wallet, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet for user %d: %w", userID, err)
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	wallet.ReservedWinning = wallet.ReservedWinning.Add(amount)
	return s.applyAndRecord(ctx, wallet, &entities.WalletTx{
		WalletID: wallet.ID,
		Type:     entities.TransactionTypeWinCredit,
		Amount:   amount,
		Meta:     meta,
	})
}

// WinningSettlementToAgent records the admin paying an agent. The reserve
// is deliberately untouched; the two tracks reconcile through reporting.
func (s *walletService) WinningSettlementToAgent(ctx context.Context, adminID, userID int64, amount decimal.Decimal) (*entities.Wallet, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet for user %d: %w", userID, err)
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	wallet.TotalBalance = wallet.TotalBalance.Add(amount)
	return s.applyAndRecord(ctx, wallet, &entities.WalletTx{
		WalletID: wallet.ID,
		Type:     entities.TransactionTypeWinSettlementAdminAgent,
		Amount:   amount,
		Meta:     entities.SettlementMeta{AdminID: adminID, Reference: uuid.NewString()},
	})
}

// WinningSettlementToUser records the agent paying the end customer.
func (s *walletService) WinningSettlementToUser(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*entities.Wallet, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet for user %d: %w", userID, err)
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	if !wallet.CanSettleFromReserve(amount) {
		return nil, ErrInsufficientReserve
	}

	wallet.ReservedWinning = wallet.ReservedWinning.Sub(amount)
	wallet.TotalBalance = wallet.TotalBalance.Sub(amount)
	return s.applyAndRecord(ctx, wallet, &entities.WalletTx{
		WalletID: wallet.ID,
		Type:     entities.TransactionTypeWinSettlementAgentUser,
		Amount:   amount.Neg(),
		Meta:     entities.SettlementMeta{Note: note, Reference: uuid.NewString()},
	})
}

// SettleCommissionByAdmin decreases the total balance within the available
// balance.
func (s *walletService) SettleCommissionByAdmin(ctx context.Context, adminID, userID int64, amount decimal.Decimal) (*entities.Wallet, error) {
	return s.debitAvailable(ctx, adminID, userID, amount, entities.TransactionTypeCommissionSettlement)
}

// AdminProcessWithdraw decreases the total balance within the available
// balance.
func (s *walletService) AdminProcessWithdraw(ctx context.Context, adminID, userID int64, amount decimal.Decimal) (*entities.Wallet, error) {
	return s.debitAvailable(ctx, adminID, userID, amount, entities.TransactionTypeWithdraw)
}

// RequestBidDeposit appends a PENDING deposit row with zero balance effect.
func (s *walletService) RequestBidDeposit(ctx context.Context, userID int64, amount decimal.Decimal, externalRef string) (*entities.WalletTx, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	wallet, err := s.getOrCreateForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := entities.DepositStatusPending
	tx := &entities.WalletTx{
		WalletID:      wallet.ID,
		Type:          entities.TransactionTypeBidCredit,
		Amount:        amount,
		BalanceAfter:  wallet.TotalBalance,
		ReservedAfter: wallet.ReservedWinning,
		DepositStatus: &status,
		Meta:          entities.DepositMeta{Reference: uuid.NewString(), ExternalRef: externalRef},
	}
	if err := s.txRepo.Record(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record deposit request: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"txID":   tx.ID,
		"amount": amount,
	}).Info("deposit requested")

	return tx, nil
}

// ApproveDeposit resolves a pending deposit request.
func (s *walletService) ApproveDeposit(ctx context.Context, adminID, txID int64, approve bool) (*entities.Wallet, error) {
	tx, err := s.txRepo.GetByIDForUpdate(ctx, txID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deposit request %d: %w", txID, err)
	}
	if tx == nil {
		return nil, errors.New("deposit request not found")
	}
	if !tx.IsPendingDeposit() {
		return nil, ErrDepositNotPending
	}

	if !approve {
		if err := s.txRepo.ResolveDeposit(ctx, tx.ID, entities.DepositStatusDeclined, tx.BalanceAfter); err != nil {
			return nil, fmt.Errorf("failed to decline deposit %d: %w", tx.ID, err)
		}
		return nil, nil
	}

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, tx.WalletID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet %d: %w", tx.WalletID, err)
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	wallet.TotalBalance = wallet.TotalBalance.Add(tx.Amount)
	if err := s.walletRepo.UpdateBalances(ctx, wallet.ID, wallet.TotalBalance, wallet.ReservedWinning); err != nil {
		return nil, fmt.Errorf("failed to update wallet %d: %w", wallet.ID, err)
	}
	if err := s.txRepo.ResolveDeposit(ctx, tx.ID, entities.DepositStatusApproved, wallet.TotalBalance); err != nil {
		return nil, fmt.Errorf("failed to approve deposit %d: %w", tx.ID, err)
	}

	log.WithFields(log.Fields{
		"adminID":  adminID,
		"walletID": wallet.ID,
		"txID":     tx.ID,
		"amount":   tx.Amount,
	}).Info("deposit approved")

	return wallet, nil
}

// debitAvailable is the shared path for admin-side debits that must stay
// within the available balance (no negative-limit allowance).
func (s *walletService) debitAvailable(ctx context.Context, adminID, userID int64, amount decimal.Decimal, txType entities.TransactionType) (*entities.Wallet, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet for user %d: %w", userID, err)
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	if amount.GreaterThan(wallet.AvailableBalance()) {
		return nil, ErrInsufficientFunds
	}

	wallet.TotalBalance = wallet.TotalBalance.Sub(amount)
	return s.applyAndRecord(ctx, wallet, &entities.WalletTx{
		WalletID: wallet.ID,
		Type:     txType,
		Amount:   amount.Neg(),
		Meta:     entities.SettlementMeta{AdminID: adminID, Reference: uuid.NewString()},
	})
}

// applyAndRecord persists the updated wallet and appends the ledger entry
// with post-operation snapshots.
func (s *walletService) applyAndRecord(ctx context.Context, wallet *entities.Wallet, tx *entities.WalletTx) (*entities.Wallet, error) {
	if err := s.walletRepo.UpdateBalances(ctx, wallet.ID, wallet.TotalBalance, wallet.ReservedWinning); err != nil {
		return nil, fmt.Errorf("failed to update wallet %d: %w", wallet.ID, err)
	}

	tx.BalanceAfter = wallet.TotalBalance
	tx.ReservedAfter = wallet.ReservedWinning
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ledger entry: %w", err)
	}
	if err := s.txRepo.Record(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	return wallet, nil
}

// getOrCreateForUpdate loads the wallet with a row lock, creating it lazily
// on first use.
func (s *walletService) getOrCreateForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet for user %d: %w", userID, err)
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet, err = s.walletRepo.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %d: %w", userID, err)
	}
	return wallet, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("amount must be positive")
	}
	return nil
}
