package ledger

import (
	"context"
	"math/rand"
)

const (
	accountNumberLength = 10

	// maxNumberAttempts bounds the collision redraw loop. With a 10^10
	// address space this is never reached in practice, but callers get a
	// typed failure instead of an unbounded spin.
	maxNumberAttempts = 64
)

// NumberGenerator produces unassigned 10-digit account numbers drawn
// uniformly at random. Freedom checks run against the transaction that will
// perform the insert, and the insert itself remains the arbiter: a number
// grabbed by a concurrent creation surfaces as ErrDuplicateAccountNumber
// there, which the engine answers with one retry on a fresh number.
type NumberGenerator struct {
	intN func(n int) int
}

// NewNumberGenerator returns a generator backed by the default random source.
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{intN: rand.Intn}
}

// Generate draws numbers until one is free within tx, or the attempt budget
// runs out.
func (g *NumberGenerator) Generate(ctx context.Context, tx Tx) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := g.draw()
		taken, err := tx.AccountNumberTaken(ctx, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
	return "", ErrAccountNumberExhausted
}

func (g *NumberGenerator) draw() string {
	digits := make([]byte, accountNumberLength)
	for i := range digits {
		digits[i] = byte('0' + g.intN(10))
	}
	return string(digits)
}
