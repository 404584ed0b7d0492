// Package ledger implements the account ledger engine: the single component
// allowed to mutate account balances. Every deposit, withdrawal and transfer
// runs as one atomic unit against a Store, and every balance change leaves a
// matching record in the transaction log, so an account's balance always
// equals the sum of its recorded transaction amounts.
package ledger

import "errors"

var (
	// ErrInvalidAmount rejects operations with a non-positive amount before
	// any store access.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrAccountNotFound indicates a referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound indicates a referenced transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInsufficientFunds occurs when a withdrawal or transfer would push the
	// balance below the overdraft floor.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSelfTransfer occurs when a transfer's source and destination resolve
	// to the same account.
	ErrSelfTransfer = errors.New("cannot transfer to the same account")

	// ErrDuplicateAccountNumber is returned by Tx.InsertAccount when the
	// account number is already assigned.
	ErrDuplicateAccountNumber = errors.New("account number already taken")

	// ErrAccountNumberExhausted is returned when the generator cannot find a
	// free 10-digit number within its attempt budget.
	ErrAccountNumberExhausted = errors.New("account number space exhausted")

	// ErrAccountCreationFailed wraps store failures that persist after the
	// account number generation retry.
	ErrAccountCreationFailed = errors.New("account creation failed")
)
