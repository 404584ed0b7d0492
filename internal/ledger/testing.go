package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeedBalance sets an account balance directly when s is the in-memory
// store. Test helper only; it bypasses the transaction log.
func SeedBalance(s Store, accountID int64, balance decimal.Decimal) {
	if mem, ok := s.(*memoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		if acct, exists := mem.accounts[accountID]; exists {
			acct.Balance = balance
			mem.accounts[accountID] = acct
		}
	}
}

// SetClock overrides the in-memory store's timestamp source so tests can
// pin created_at values.
func SetClock(s Store, now func() time.Time) {
	if mem, ok := s.(*memoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.now = now
	}
}
