package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Service is the account ledger engine. It owns every balance mutation and
// expects its callers to have authenticated and authorized the account and
// user identifiers they pass in.
type Service struct {
	store   Store
	numbers *NumberGenerator
}

// NewService builds the engine on top of a Store.
func NewService(store Store) *Service {
	return &Service{store: store, numbers: NewNumberGenerator()}
}

// CreateAccountInput captures the data needed to open an account. The
// opening balance is always zero; AccountNumber is optional and generated
// when empty.
type CreateAccountInput struct {
	UserID         int64
	AccountType    string
	OverdraftLimit decimal.Decimal
	InterestRate   decimal.Decimal
	AccountNumber  string
}

// CreateAccount opens an account with a zero balance. A uniqueness collision
// on a generated number is retried once with a fresh number; any failure
// beyond that surfaces as ErrAccountCreationFailed.
func (s *Service) CreateAccount(ctx context.Context, input CreateAccountInput) (Account, error) {
	if input.OverdraftLimit.IsNegative() {
		return Account{}, fmt.Errorf("%w: overdraft limit must not be negative", ErrAccountCreationFailed)
	}
	if input.InterestRate.IsNegative() {
		return Account{}, fmt.Errorf("%w: interest rate must not be negative", ErrAccountCreationFailed)
	}

	generated := input.AccountNumber == ""

	// A duplicate insert aborts the enclosing transaction, so the retry has
	// to re-run the whole atomic unit rather than re-insert inside it.
	const insertAttempts = 2
	var lastErr error
	for attempt := 0; attempt < insertAttempts; attempt++ {
		acct, err := s.createAccountOnce(ctx, input)
		if err == nil {
			return acct, nil
		}
		lastErr = err
		if !generated || !errors.Is(err, ErrDuplicateAccountNumber) {
			break
		}
	}

	if errors.Is(lastErr, ErrAccountNumberExhausted) {
		return Account{}, lastErr
	}
	return Account{}, fmt.Errorf("%w: %v", ErrAccountCreationFailed, lastErr)
}

func (s *Service) createAccountOnce(ctx context.Context, input CreateAccountInput) (Account, error) {
	var created Account
	err := s.store.RunAtomic(ctx, func(tx Tx) error {
		number := input.AccountNumber
		if number == "" {
			generated, err := s.numbers.Generate(ctx, tx)
			if err != nil {
				return err
			}
			number = generated
		}

		acct := Account{
			UserID:         input.UserID,
			AccountNumber:  number,
			AccountType:    input.AccountType,
			Balance:        decimal.Zero,
			OverdraftLimit: input.OverdraftLimit,
			InterestRate:   input.InterestRate,
		}
		if err := tx.InsertAccount(ctx, &acct); err != nil {
			return err
		}
		created = acct
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	return created, nil
}

// Deposit credits amount to the account and appends the matching log entry,
// all inside one atomic unit.
func (s *Service) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return s.store.RunAtomic(ctx, func(tx Tx) error {
		acct, err := tx.LockAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, acct.ID, acct.Balance.Add(amount)); err != nil {
			return err
		}
		return tx.AppendTransaction(ctx, &Transaction{
			AccountID:   acct.ID,
			Type:        TypeDeposit,
			Amount:      amount,
			Description: fmt.Sprintf("Deposit of %s", amount),
		})
	})
}

// Withdraw debits amount from the account if the balance plus overdraft
// covers it, and appends the matching log entry. On ErrInsufficientFunds no
// state changes.
func (s *Service) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return s.store.RunAtomic(ctx, func(tx Tx) error {
		acct, err := tx.LockAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(acct.Available()) {
			return ErrInsufficientFunds
		}
		if err := tx.UpdateBalance(ctx, acct.ID, acct.Balance.Sub(amount)); err != nil {
			return err
		}
		return tx.AppendTransaction(ctx, &Transaction{
			AccountID:   acct.ID,
			Type:        TypeWithdraw,
			Amount:      amount.Neg(),
			Description: fmt.Sprintf("Withdrawal of %s", amount),
		})
	})
}

// Transfer moves amount from the source account to the account identified by
// toNumber. Both balance writes and both transaction legs commit together or
// not at all.
func (s *Service) Transfer(ctx context.Context, fromID int64, toNumber string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return s.store.RunAtomic(ctx, func(tx Tx) error {
		toID, err := tx.AccountIDByNumber(ctx, toNumber)
		if err != nil {
			return err
		}
		if toID == fromID {
			return ErrSelfTransfer
		}

		from, to, err := tx.LockAccountPair(ctx, fromID, toID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(from.Available()) {
			return ErrInsufficientFunds
		}

		if err := tx.UpdateBalance(ctx, from.ID, from.Balance.Sub(amount)); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, to.ID, to.Balance.Add(amount)); err != nil {
			return err
		}
		if err := tx.AppendTransaction(ctx, &Transaction{
			AccountID:   from.ID,
			Type:        TypeTransferOut,
			Amount:      amount.Neg(),
			Description: fmt.Sprintf("Transfer to account %s", to.AccountNumber),
		}); err != nil {
			return err
		}
		return tx.AppendTransaction(ctx, &Transaction{
			AccountID:   to.ID,
			Type:        TypeTransferIn,
			Amount:      amount,
			Description: fmt.Sprintf("Transfer from account %s", from.AccountNumber),
		})
	})
}

// DeleteAccount removes the account and its transaction history in one
// atomic unit.
func (s *Service) DeleteAccount(ctx context.Context, accountID int64) error {
	return s.store.RunAtomic(ctx, func(tx Tx) error {
		if _, err := tx.LockAccount(ctx, accountID); err != nil {
			return err
		}
		return tx.DeleteAccount(ctx, accountID)
	})
}

// GetAccount fetches a single account.
func (s *Service) GetAccount(ctx context.Context, accountID int64) (Account, error) {
	return s.store.GetAccount(ctx, accountID)
}

// GetAccountByNumber fetches an account by its external number.
func (s *Service) GetAccountByNumber(ctx context.Context, number string) (Account, error) {
	return s.store.GetAccountByNumber(ctx, number)
}

// ListAccountsByUser returns every account owned by the user.
func (s *Service) ListAccountsByUser(ctx context.Context, userID int64) ([]Account, error) {
	return s.store.ListAccountsByUser(ctx, userID)
}

// GetTransaction fetches a single transaction log entry.
func (s *Service) GetTransaction(ctx context.Context, transactionID int64) (Transaction, error) {
	return s.store.GetTransaction(ctx, transactionID)
}

// ListTransactions returns the account's full history in append order.
func (s *Service) ListTransactions(ctx context.Context, accountID int64) ([]Transaction, error) {
	return s.store.ListTransactions(ctx, accountID)
}

// ListTransactionsBetween returns the account's history restricted to
// [start, end] inclusive.
func (s *Service) ListTransactionsBetween(ctx context.Context, accountID int64, start, end time.Time) ([]Transaction, error) {
	return s.store.ListTransactionsBetween(ctx, accountID, start, end)
}
