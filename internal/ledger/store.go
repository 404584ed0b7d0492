package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Store is durable keyed storage for accounts and their transaction log.
// Reads outside RunAtomic observe only committed state.
type Store interface {
	// RunAtomic executes fn inside a single transaction. Every effect fn
	// applies through the Tx becomes visible together on commit, or not at
	// all if fn returns an error.
	RunAtomic(ctx context.Context, fn func(tx Tx) error) error

	GetAccount(ctx context.Context, id int64) (Account, error)
	GetAccountByNumber(ctx context.Context, number string) (Account, error)
	ListAccountsByUser(ctx context.Context, userID int64) ([]Account, error)

	GetTransaction(ctx context.Context, id int64) (Transaction, error)
	ListTransactions(ctx context.Context, accountID int64) ([]Transaction, error)
	ListTransactionsBetween(ctx context.Context, accountID int64, start, end time.Time) ([]Transaction, error)
}

// Tx is the handle passed to RunAtomic callbacks. Locked rows stay locked
// until the surrounding transaction ends.
type Tx interface {
	// LockAccount reads the account row and holds it against concurrent
	// mutation for the rest of the transaction.
	LockAccount(ctx context.Context, id int64) (Account, error)

	// LockAccountPair locks both rows in ascending internal id order
	// regardless of argument order, so two transfers crossing the same pair
	// of accounts in opposite directions cannot deadlock. Results are
	// returned in argument order.
	LockAccountPair(ctx context.Context, firstID, secondID int64) (Account, Account, error)

	// AccountIDByNumber resolves an external account number without locking.
	AccountIDByNumber(ctx context.Context, number string) (int64, error)

	// AccountNumberTaken reports whether the number is already assigned.
	AccountNumberTaken(ctx context.Context, number string) (bool, error)

	// InsertAccount persists a new account, assigning ID and CreatedAt on
	// acct. Returns ErrDuplicateAccountNumber if the number is taken.
	InsertAccount(ctx context.Context, acct *Account) error

	// UpdateBalance writes the account's balance.
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error

	// AppendTransaction adds an entry to the transaction log, assigning ID
	// and CreatedAt on txn.
	AppendTransaction(ctx context.Context, txn *Transaction) error

	// DeleteAccount removes the account and its entire transaction history.
	DeleteAccount(ctx context.Context, id int64) error
}
