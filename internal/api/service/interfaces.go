package service

import (
	"context"

	"github.com/crebito-ledger/internal/domain/account"
	"github.com/crebito-ledger/internal/domain/movement"
)

// LedgerService defines the interface for the transaction core
type LedgerService interface {
	// ApplyTransaction applies a validated credit or debit to an account and
	// returns the post-update balance/limit snapshot.
	// Returns account.ErrAccountNotFound for ids outside the provisioned
	// range and movement.ErrOperationRejected when the debit guard fires.
	ApplyTransaction(ctx context.Context, accountID int, input movement.TransactionInput) (account.Snapshot, error)
}

// StatementService defines the interface for building account statements
type StatementService interface {
	// BuildStatement returns the current balance/limit plus the most recent
	// real movements, newest first, opening entries excluded.
	// Returns account.ErrAccountNotFound for unknown accounts or accounts
	// with no ledger history.
	BuildStatement(ctx context.Context, accountID int) (*movement.Statement, error)
}

// ArchiveService defines the interface for querying the movement archive
type ArchiveService interface {
	// ListMovements retrieves a paginated page of archived movements for an
	// account, newest first. Returns movements, total count, and any error.
	ListMovements(ctx context.Context, accountID int, page, perPage int) ([]*movement.Movement, int64, error)
}
