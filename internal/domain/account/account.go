package account

import "strconv"

// Account is a fixed ledger holder with a credit limit and a running balance.
// The account set is provisioned by seed migrations and never changes at
// runtime; balances move only through the ledger core.
type Account struct {
	ID      int   `json:"id"`
	Limit   int64 `json:"limit"`   // Positive; the balance floor is its negation
	Balance int64 `json:"balance"` // Stored in cents/minor units
}

// WithinLimit reports whether a balance satisfies the credit-limit invariant.
// The boundary is inclusive: landing exactly on -limit is allowed.
func (a *Account) WithinLimit(balance int64) bool {
	return balance >= -a.Limit
}

// Snapshot is the post-update balance/limit pair returned to callers after a
// committed transaction, and recorded on every movement.
type Snapshot struct {
	Balance int64 `json:"balance"`
	Limit   int64 `json:"limit"`
}

// ErrAccountNotFound indicates an account id outside the provisioned set
type ErrAccountNotFound struct {
	AccountID int
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + strconv.Itoa(e.AccountID)
}
