// Package movement defines the append-only ledger entry and the contracts for
// applying transactions and reading movement history.
package movement

import (
	"time"
)

// Kind identifies the direction of a movement
type Kind string

const (
	KindCredit Kind = "c"
	KindDebit  Kind = "d"
)

// Valid reports whether the kind is one of the two accepted values
func (k Kind) Valid() bool {
	return k == KindCredit || k == KindDebit
}

// Movement is one recorded credit or debit against an account, immutable once
// written. BalanceAfter and LimitAfter snapshot the account state at the
// instant this movement committed; the statement builder reads current state
// from the newest snapshot instead of summing history.
//
// Opening rows are synthetic bootstrap entries seeded with the account; they
// carry the initial snapshot and are never shown in statements.
type Movement struct {
	ID           int64     `json:"id" bson:"movement_id"`
	AccountID    int       `json:"account_id" bson:"account_id"`
	Kind         Kind      `json:"kind" bson:"kind"`
	Amount       int64     `json:"amount" bson:"amount"` // Stored in cents/minor units
	Description  string    `json:"description" bson:"description"`
	Opening      bool      `json:"opening,omitempty" bson:"opening,omitempty"`
	BalanceAfter int64     `json:"balance_after" bson:"balance_after"`
	LimitAfter   int64     `json:"limit_after" bson:"limit_after"`
	RecordedAt   time.Time `json:"recorded_at" bson:"recorded_at"`
}

// TransactionInput is a validated, normalized transaction request ready for
// the ledger core. Construct it with NewTransactionInput.
type TransactionInput struct {
	Amount      int64
	Kind        Kind
	Description string
}

// Statement is the current balance/limit view plus the most recent real
// movements, newest first. AsOf is the wall-clock construction time and is
// not stored anywhere.
type Statement struct {
	Balance int64
	Limit   int64
	AsOf    time.Time
	Recent  []Movement
}
