package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// memoryStore is a concurrency-safe in-memory Store used by unit tests and
// dev mode. A single mutex spans each atomic unit, and writes are staged in
// the Tx and applied only on commit, so a failed callback leaves no trace.
type memoryStore struct {
	mu            sync.Mutex
	accounts      map[int64]Account
	numbers       map[string]int64
	transactions  map[int64]Transaction
	history       map[int64][]int64
	nextAccountID int64
	nextTxnID     int64
	now           func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{
		accounts:      make(map[int64]Account),
		numbers:       make(map[string]int64),
		transactions:  make(map[int64]Transaction),
		history:       make(map[int64][]int64),
		nextAccountID: 1,
		nextTxnID:     1,
		now:           time.Now,
	}
}

func (s *memoryStore) RunAtomic(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		s:        s,
		accounts: make(map[int64]Account),
		numbers:  make(map[string]int64),
		deleted:  make(map[int64]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.apply()
	return nil
}

func (s *memoryStore) GetAccount(_ context.Context, id int64) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return acct, nil
}

func (s *memoryStore) GetAccountByNumber(_ context.Context, number string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.numbers[number]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return s.accounts[id], nil
}

func (s *memoryStore) ListAccountsByUser(_ context.Context, userID int64) ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var accounts []Account
	for _, acct := range s.accounts {
		if acct.UserID == userID {
			accounts = append(accounts, acct)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (s *memoryStore) GetTransaction(_ context.Context, id int64) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[id]
	if !ok {
		return Transaction{}, ErrTransactionNotFound
	}
	return txn, nil
}

func (s *memoryStore) ListTransactions(_ context.Context, accountID int64) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.history[accountID]
	txns := make([]Transaction, 0, len(ids))
	for _, id := range ids {
		txns = append(txns, s.transactions[id])
	}
	return txns, nil
}

func (s *memoryStore) ListTransactionsBetween(_ context.Context, accountID int64, start, end time.Time) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var txns []Transaction
	for _, id := range s.history[accountID] {
		txn := s.transactions[id]
		if txn.CreatedAt.Before(start) || txn.CreatedAt.After(end) {
			continue
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// memoryTx stages mutations until commit. The store mutex is held for the
// whole transaction, so staged reads never race with other writers.
type memoryTx struct {
	s        *memoryStore
	accounts map[int64]Account
	numbers  map[string]int64
	appended []Transaction
	deleted  map[int64]bool
}

func (tx *memoryTx) account(id int64) (Account, bool) {
	if tx.deleted[id] {
		return Account{}, false
	}
	if acct, ok := tx.accounts[id]; ok {
		return acct, true
	}
	acct, ok := tx.s.accounts[id]
	return acct, ok
}

func (tx *memoryTx) LockAccount(_ context.Context, id int64) (Account, error) {
	acct, ok := tx.account(id)
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return acct, nil
}

func (tx *memoryTx) LockAccountPair(ctx context.Context, firstID, secondID int64) (Account, Account, error) {
	// The store mutex already serializes transactions; ordering is kept for
	// contract parity with the Postgres store.
	lowID, highID := firstID, secondID
	if highID < lowID {
		lowID, highID = highID, lowID
	}
	low, err := tx.LockAccount(ctx, lowID)
	if err != nil {
		return Account{}, Account{}, err
	}
	high, err := tx.LockAccount(ctx, highID)
	if err != nil {
		return Account{}, Account{}, err
	}
	if firstID == lowID {
		return low, high, nil
	}
	return high, low, nil
}

func (tx *memoryTx) AccountIDByNumber(_ context.Context, number string) (int64, error) {
	if id, ok := tx.numbers[number]; ok {
		return id, nil
	}
	if id, ok := tx.s.numbers[number]; ok && !tx.deleted[id] {
		return id, nil
	}
	return 0, ErrAccountNotFound
}

func (tx *memoryTx) AccountNumberTaken(ctx context.Context, number string) (bool, error) {
	_, err := tx.AccountIDByNumber(ctx, number)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (tx *memoryTx) InsertAccount(ctx context.Context, acct *Account) error {
	taken, err := tx.AccountNumberTaken(ctx, acct.AccountNumber)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateAccountNumber
	}

	acct.ID = tx.s.nextAccountID
	tx.s.nextAccountID++
	acct.CreatedAt = tx.s.now().UTC()

	tx.accounts[acct.ID] = *acct
	tx.numbers[acct.AccountNumber] = acct.ID
	return nil
}

func (tx *memoryTx) UpdateBalance(_ context.Context, id int64, balance decimal.Decimal) error {
	acct, ok := tx.account(id)
	if !ok {
		return ErrAccountNotFound
	}
	acct.Balance = balance
	tx.accounts[id] = acct
	return nil
}

func (tx *memoryTx) AppendTransaction(_ context.Context, txn *Transaction) error {
	if _, ok := tx.account(txn.AccountID); !ok {
		return ErrAccountNotFound
	}
	txn.ID = tx.s.nextTxnID
	tx.s.nextTxnID++
	txn.CreatedAt = tx.s.now().UTC()
	tx.appended = append(tx.appended, *txn)
	return nil
}

func (tx *memoryTx) DeleteAccount(_ context.Context, id int64) error {
	acct, ok := tx.account(id)
	if !ok {
		return ErrAccountNotFound
	}
	tx.deleted[id] = true
	delete(tx.accounts, id)
	delete(tx.numbers, acct.AccountNumber)
	return nil
}

func (tx *memoryTx) apply() {
	s := tx.s
	for id := range tx.deleted {
		if acct, ok := s.accounts[id]; ok {
			delete(s.numbers, acct.AccountNumber)
			delete(s.accounts, id)
		}
		for _, txnID := range s.history[id] {
			delete(s.transactions, txnID)
		}
		delete(s.history, id)
	}
	for id, acct := range tx.accounts {
		s.accounts[id] = acct
	}
	for number, id := range tx.numbers {
		s.numbers[number] = id
	}
	for _, txn := range tx.appended {
		s.transactions[txn.ID] = txn
		s.history[txn.AccountID] = append(s.history[txn.AccountID], txn.ID)
	}
}
