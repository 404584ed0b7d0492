package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const pgUniqueViolation = "23505"

const (
	accountColumns     = `id, user_id, account_number, account_type, balance::text, overdraft_limit::text, interest_rate::text, created_at`
	transactionColumns = `id, account_id, transaction_type, amount::text, description, created_at`
)

// PostgresStore persists the ledger in PostgreSQL. Atomic units map to
// database transactions and row locks are taken with SELECT ... FOR UPDATE.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// pgQuerier is the query surface shared by the pool and an open transaction.
type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *PostgresStore) RunAtomic(ctx context.Context, fn func(tx Tx) error) error {
	dbTx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback(ctx) // nolint:errcheck

	if err := fn(&postgresTx{q: dbTx}); err != nil {
		return err
	}
	return dbTx.Commit(ctx)
}

func (s *PostgresStore) GetAccount(ctx context.Context, id int64) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (s *PostgresStore) GetAccountByNumber(ctx context.Context, number string) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, number)
	return scanAccount(row)
}

func (s *PostgresStore) ListAccountsByUser(ctx context.Context, userID int64) ([]Account, error) {
	rows, err := s.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

func (s *PostgresStore) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	row := s.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	return scanTransaction(row)
}

func (s *PostgresStore) ListTransactions(ctx context.Context, accountID int64) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE account_id = $1 ORDER BY id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (s *PostgresStore) ListTransactionsBetween(ctx context.Context, accountID int64, start, end time.Time) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `SELECT `+transactionColumns+` FROM transactions
        WHERE account_id = $1 AND created_at >= $2 AND created_at <= $3 ORDER BY id`, accountID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// postgresTx implements Tx over an open pgx transaction.
type postgresTx struct {
	q pgQuerier
}

func (t *postgresTx) LockAccount(ctx context.Context, id int64) (Account, error) {
	row := t.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
	return scanAccount(row)
}

// LockAccountPair acquires both rows in ascending id order so that crossing
// transfers over the same account pair cannot form a deadlock cycle.
func (t *postgresTx) LockAccountPair(ctx context.Context, firstID, secondID int64) (Account, Account, error) {
	lowID, highID := firstID, secondID
	if highID < lowID {
		lowID, highID = highID, lowID
	}
	low, err := t.LockAccount(ctx, lowID)
	if err != nil {
		return Account{}, Account{}, err
	}
	high, err := t.LockAccount(ctx, highID)
	if err != nil {
		return Account{}, Account{}, err
	}
	if firstID == lowID {
		return low, high, nil
	}
	return high, low, nil
}

func (t *postgresTx) AccountIDByNumber(ctx context.Context, number string) (int64, error) {
	var id int64
	err := t.q.QueryRow(ctx, `SELECT id FROM accounts WHERE account_number = $1`, number).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (t *postgresTx) AccountNumberTaken(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := t.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`, number).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (t *postgresTx) InsertAccount(ctx context.Context, acct *Account) error {
	err := t.q.QueryRow(ctx, `INSERT INTO accounts (user_id, account_number, account_type, balance, overdraft_limit, interest_rate)
        VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric)
        RETURNING id, created_at`,
		acct.UserID, acct.AccountNumber, acct.AccountType,
		acct.Balance.String(), acct.OverdraftLimit.String(), acct.InterestRate.String(),
	).Scan(&acct.ID, &acct.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateAccountNumber
	}
	return err
}

func (t *postgresTx) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	cmd, err := t.q.Exec(ctx, `UPDATE accounts SET balance = $1::numeric WHERE id = $2`, balance.String(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (t *postgresTx) AppendTransaction(ctx context.Context, txn *Transaction) error {
	return t.q.QueryRow(ctx, `INSERT INTO transactions (account_id, transaction_type, amount, description)
        VALUES ($1, $2, $3::numeric, $4)
        RETURNING id, created_at`,
		txn.AccountID, txn.Type, txn.Amount.String(), txn.Description,
	).Scan(&txn.ID, &txn.CreatedAt)
}

func (t *postgresTx) DeleteAccount(ctx context.Context, id int64) error {
	if _, err := t.q.Exec(ctx, `DELETE FROM transactions WHERE account_id = $1`, id); err != nil {
		return err
	}
	cmd, err := t.q.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		acct      Account
		balance   string
		overdraft string
		interest  string
	)
	err := row.Scan(&acct.ID, &acct.UserID, &acct.AccountNumber, &acct.AccountType, &balance, &overdraft, &interest, &acct.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, err
	}
	if acct.Balance, err = decimal.NewFromString(balance); err != nil {
		return Account{}, fmt.Errorf("parse balance: %w", err)
	}
	if acct.OverdraftLimit, err = decimal.NewFromString(overdraft); err != nil {
		return Account{}, fmt.Errorf("parse overdraft limit: %w", err)
	}
	if acct.InterestRate, err = decimal.NewFromString(interest); err != nil {
		return Account{}, fmt.Errorf("parse interest rate: %w", err)
	}
	return acct, nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var (
		txn    Transaction
		amount string
	)
	err := row.Scan(&txn.ID, &txn.AccountID, &txn.Type, &amount, &txn.Description, &txn.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	}
	if err != nil {
		return Transaction{}, err
	}
	if txn.Amount, err = decimal.NewFromString(amount); err != nil {
		return Transaction{}, fmt.Errorf("parse amount: %w", err)
	}
	return txn, nil
}

func collectTransactions(rows pgx.Rows) ([]Transaction, error) {
	var txns []Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
