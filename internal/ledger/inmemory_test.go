package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMemoryStoreRollbackDiscardsStagedWrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var acct Account
	err := store.RunAtomic(ctx, func(tx Tx) error {
		acct = Account{UserID: 1, AccountNumber: "1111111111", AccountType: "current"}
		return tx.InsertAccount(ctx, &acct)
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	boom := errors.New("boom")
	err = store.RunAtomic(ctx, func(tx Tx) error {
		if err := tx.UpdateBalance(ctx, acct.ID, decimal.NewFromInt(500)); err != nil {
			return err
		}
		if err := tx.AppendTransaction(ctx, &Transaction{AccountID: acct.ID, Type: TypeDeposit, Amount: decimal.NewFromInt(500)}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}

	got, err := store.GetAccount(ctx, acct.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !got.Balance.IsZero() {
		t.Fatalf("rolled-back balance leaked: %s", got.Balance)
	}
	txns, _ := store.ListTransactions(ctx, acct.ID)
	if len(txns) != 0 {
		t.Fatalf("rolled-back transaction leaked: %+v", txns)
	}
}

func TestMemoryStoreStagedStateVisibleInsideTx(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.RunAtomic(ctx, func(tx Tx) error {
		acct := Account{UserID: 1, AccountNumber: "2222222222", AccountType: "current"}
		if err := tx.InsertAccount(ctx, &acct); err != nil {
			return err
		}

		// The uncommitted insert is visible to the same transaction.
		id, err := tx.AccountIDByNumber(ctx, "2222222222")
		if err != nil {
			return err
		}
		if id != acct.ID {
			t.Fatalf("expected staged id %d, got %d", acct.ID, id)
		}
		taken, err := tx.AccountNumberTaken(ctx, "2222222222")
		if err != nil {
			return err
		}
		if !taken {
			t.Fatal("staged number reported free")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run atomic: %v", err)
	}

	// But not before commit to outside readers: verify it is there now.
	if _, err := store.GetAccountByNumber(ctx, "2222222222"); err != nil {
		t.Fatalf("committed account missing: %v", err)
	}
}

func TestMemoryStoreDuplicateNumberInsert(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.RunAtomic(ctx, func(tx Tx) error {
		acct := Account{UserID: 1, AccountNumber: "3333333333"}
		return tx.InsertAccount(ctx, &acct)
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	err = store.RunAtomic(ctx, func(tx Tx) error {
		dup := Account{UserID: 2, AccountNumber: "3333333333"}
		return tx.InsertAccount(ctx, &dup)
	})
	if !errors.Is(err, ErrDuplicateAccountNumber) {
		t.Fatalf("expected ErrDuplicateAccountNumber, got %v", err)
	}
}

func TestMemoryStoreDeleteRollback(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var acct Account
	if err := store.RunAtomic(ctx, func(tx Tx) error {
		acct = Account{UserID: 1, AccountNumber: "4444444444"}
		return tx.InsertAccount(ctx, &acct)
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	boom := errors.New("boom")
	err := store.RunAtomic(ctx, func(tx Tx) error {
		if err := tx.DeleteAccount(ctx, acct.ID); err != nil {
			return err
		}
		if _, err := tx.LockAccount(ctx, acct.ID); !errors.Is(err, ErrAccountNotFound) {
			t.Fatalf("staged delete not visible inside tx: %v", err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}

	if _, err := store.GetAccount(ctx, acct.ID); err != nil {
		t.Fatalf("account lost by rolled-back delete: %v", err)
	}
}

func TestMemoryStoreLockAccountPairReturnsArgumentOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var a, b Account
	if err := store.RunAtomic(ctx, func(tx Tx) error {
		a = Account{UserID: 1, AccountNumber: "5555555555"}
		if err := tx.InsertAccount(ctx, &a); err != nil {
			return err
		}
		b = Account{UserID: 2, AccountNumber: "6666666666"}
		return tx.InsertAccount(ctx, &b)
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := store.RunAtomic(ctx, func(tx Tx) error {
		first, second, err := tx.LockAccountPair(ctx, b.ID, a.ID)
		if err != nil {
			return err
		}
		if first.ID != b.ID || second.ID != a.ID {
			t.Fatalf("pair returned out of argument order: %d, %d", first.ID, second.ID)
		}
		return nil
	}); err != nil {
		t.Fatalf("lock pair: %v", err)
	}
}
