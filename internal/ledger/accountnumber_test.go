package ledger

import (
	"context"
	"errors"
	"testing"
)

// saturatedTx reports every number as taken.
type saturatedTx struct {
	Tx
	checks int
}

func (t *saturatedTx) AccountNumberTaken(_ context.Context, _ string) (bool, error) {
	t.checks++
	return true, nil
}

func TestNumberGeneratorDrawFormat(t *testing.T) {
	gen := NewNumberGenerator()
	for i := 0; i < 100; i++ {
		number := gen.draw()
		if len(number) != accountNumberLength {
			t.Fatalf("expected %d digits, got %q", accountNumberLength, number)
		}
		for _, r := range number {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit %q in %q", r, number)
			}
		}
	}
}

func TestNumberGeneratorExhaustsAfterBoundedAttempts(t *testing.T) {
	gen := NewNumberGenerator()
	tx := &saturatedTx{}

	_, err := gen.Generate(context.Background(), tx)
	if !errors.Is(err, ErrAccountNumberExhausted) {
		t.Fatalf("expected ErrAccountNumberExhausted, got %v", err)
	}
	if tx.checks != maxNumberAttempts {
		t.Fatalf("expected %d freedom checks, got %d", maxNumberAttempts, tx.checks)
	}
}

func TestNumberGeneratorSkipsTakenNumbers(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// Pin the random source so the first draw collides with an existing
	// account and the second draw differs.
	draws := []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}
	var i int
	gen := &NumberGenerator{intN: func(int) int {
		d := draws[i%len(draws)]
		i++
		return d
	}}

	err := store.RunAtomic(ctx, func(tx Tx) error {
		taken := Account{UserID: 1, AccountNumber: "1111111111"}
		if err := tx.InsertAccount(ctx, &taken); err != nil {
			return err
		}
		number, err := gen.Generate(ctx, tx)
		if err != nil {
			return err
		}
		if number != "2222222222" {
			t.Fatalf("expected redraw to yield 2222222222, got %q", number)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run atomic: %v", err)
	}
}
