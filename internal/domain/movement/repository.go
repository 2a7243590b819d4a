package movement

import (
	"context"
	"strconv"

	"github.com/crebito-ledger/internal/domain/account"
)

// Repository defines ledger persistence operations backed by the relational store
type Repository interface {
	// Apply atomically mutates the account balance and records the movement
	// as one unit. The debit guard is evaluated inside the store's conditional
	// update; a rejected operation persists nothing.
	// Returns ErrOperationRejected when the store returns no row (unknown
	// account or a debit that would breach the credit limit - the store does
	// not distinguish the two).
	Apply(ctx context.Context, accountID int, input TransactionInput) (account.Snapshot, error)

	// Recent returns up to limit movements for the account, newest first,
	// including the opening row when it falls inside the window.
	Recent(ctx context.Context, accountID int, limit int) ([]Movement, error)

	// ListAfter returns up to batch real movements with id greater than
	// afterID, in ascending id order. Opening rows are skipped.
	ListAfter(ctx context.Context, afterID int64, batch int) ([]Movement, error)

	// FeedCheckpoint returns the id of the last movement published to the feed
	FeedCheckpoint(ctx context.Context) (int64, error)

	// AdvanceFeedCheckpoint moves the feed cursor forward to lastID
	AdvanceFeedCheckpoint(ctx context.Context, lastID int64) error
}

// ArchiveRepository defines movement archive operations backed by the
// document store. Save must be idempotent on the movement id so the
// at-least-once feed can be replayed safely.
type ArchiveRepository interface {
	Save(ctx context.Context, m *Movement) error
	GetByAccountID(ctx context.Context, accountID int, limit, offset int) ([]*Movement, error)
	CountByAccountID(ctx context.Context, accountID int) (int64, error)
}

// ErrOperationRejected indicates the conditional update matched no row:
// the account is unknown or the debit would drive the balance below -limit.
// The store-level conflation is deliberate; callers decide "not found" from
// the configured account range before reaching the store.
type ErrOperationRejected struct {
	AccountID int
}

func (e ErrOperationRejected) Error() string {
	return "transaction rejected for account: " + strconv.Itoa(e.AccountID)
}
