package entities

// TransactionType represents the type of wallet ledger entry
type TransactionType string

// All ledger entry types supported by the system
const (
	// Bid-related transactions
	TransactionTypeBidCredit TransactionType = "BID_CREDIT" // deposit request, two-phase
	TransactionTypeBidDebit  TransactionType = "BID_DEBIT"

	// Commission transactions
	TransactionTypeCommissionCredit     TransactionType = "COMMISSION_CREDIT"
	TransactionTypeCommissionSettlement TransactionType = "COMMISSION_SETTLEMENT"

	// Winning transactions
	TransactionTypeWinCredit               TransactionType = "WIN_CREDIT" // reservation only
	TransactionTypeWinSettlementAdminAgent TransactionType = "WIN_SETTLEMENT_ADMIN_TO_AGENT"
	TransactionTypeWinSettlementAgentUser  TransactionType = "WIN_SETTLEMENT_AGENT_TO_USER"

	// Admin transactions
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
)

// DepositStatus tracks the approval state of a BID_CREDIT deposit request.
// Only BID_CREDIT rows carry a status; this is the one ledger row whose
// status (and, on approval, balance_after) is updated after creation.
type DepositStatus string

const (
	DepositStatusPending  DepositStatus = "PENDING"
	DepositStatusApproved DepositStatus = "APPROVED"
	DepositStatusDeclined DepositStatus = "DECLINED"
)

// AffectsTotalBalance returns true if entries of this type move the
// wallet's total balance. WIN_CREDIT moves only the reserved track, and a
// BID_CREDIT has no balance effect until approved.
func (tt TransactionType) AffectsTotalBalance() bool {
	return tt != TransactionTypeWinCredit
}

// AffectsReserve returns true if entries of this type move the
// reserved-winning track.
func (tt TransactionType) AffectsReserve() bool {
	return tt == TransactionTypeWinCredit ||
		tt == TransactionTypeWinSettlementAgentUser
}

// IsSettlement returns true for admin or agent settlement entries.
func (tt TransactionType) IsSettlement() bool {
	return tt == TransactionTypeCommissionSettlement ||
		tt == TransactionTypeWinSettlementAdminAgent ||
		tt == TransactionTypeWinSettlementAgentUser
}

// IsValid returns true if the transaction type is one of the known types.
func (tt TransactionType) IsValid() bool {
	switch tt {
	case TransactionTypeBidCredit, TransactionTypeBidDebit,
		TransactionTypeCommissionCredit, TransactionTypeCommissionSettlement,
		TransactionTypeWinCredit, TransactionTypeWinSettlementAdminAgent,
		TransactionTypeWinSettlementAgentUser, TransactionTypeWithdraw:
		return true
	}
	return false
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
