package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types. Deposits and incoming transfer legs carry positive
// amounts, withdrawals and outgoing legs negative ones.
const (
	TypeDeposit     = "deposit"
	TypeWithdraw    = "withdraw"
	TypeTransferOut = "transfer_out"
	TypeTransferIn  = "transfer_in"
)

// Account is a customer account tracked by the ledger. The balance is only
// ever written through the engine's atomic operations and stays at or above
// -OverdraftLimit between operations.
type Account struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	AccountNumber  string          `json:"account_number"`
	AccountType    string          `json:"account_type"`
	Balance        decimal.Decimal `json:"balance"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Available returns the amount that can still be drawn from the account
// before hitting the overdraft floor.
func (a Account) Available() decimal.Decimal {
	return a.Balance.Add(a.OverdraftLimit)
}

// Transaction is one immutable entry in an account's history. A transfer
// produces two of them, one per side, with opposite signs.
type Transaction struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"account_id"`
	Type        string          `json:"transaction_type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}
