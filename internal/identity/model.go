// Package identity manages user accounts and credentials. It sits outside
// the ledger engine: the HTTP layer authenticates a user here, then passes
// the resulting user id into ledger operations.
package identity

import "time"

// User is a registered customer.
type User struct {
	ID           int64
	Email        string
	PasswordHash []byte
	FirstName    string
	LastName     string
	Phone        string
	Admin        bool
	CreatedAt    time.Time
}
