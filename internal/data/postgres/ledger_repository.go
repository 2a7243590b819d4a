// Package postgres provides the PostgreSQL implementation of the ledger
// repository. The balance mutation and the movement insert are one SQL
// statement (a CTE chaining a conditional update into an insert), so the
// credit-limit invariant holds under concurrent writers without any
// service-level locking.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crebito-ledger/internal/domain/account"
	"github.com/crebito-ledger/internal/domain/movement"
	"github.com/crebito-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// The debit guard lives inside the UPDATE's WHERE clause: the row is only
// updated when the resulting balance stays at or above -credit_limit, and the
// inserted movement snapshots the balance produced by that same update. Zero
// rows back means the account is unknown or the debit was rejected; the store
// does not say which.
const (
	applyCreditQuery = `
		WITH updated AS (
			UPDATE accounts
			SET balance = balance + $1
			WHERE id = $2
			RETURNING balance, credit_limit
		)
		INSERT INTO movements (account_id, kind, amount, description, balance_after, limit_after)
		SELECT $2, $3, $1, $4, updated.balance, updated.credit_limit
		FROM updated
		RETURNING balance_after, limit_after
	`

	applyDebitQuery = `
		WITH updated AS (
			UPDATE accounts
			SET balance = balance - $1
			WHERE id = $2 AND balance - $1 >= -credit_limit
			RETURNING balance, credit_limit
		)
		INSERT INTO movements (account_id, kind, amount, description, balance_after, limit_after)
		SELECT $2, $3, $1, $4, updated.balance, updated.credit_limit
		FROM updated
		RETURNING balance_after, limit_after
	`

	recentMovementsQuery = `
		SELECT id, account_id, kind, amount, description, opening, balance_after, limit_after, recorded_at
		FROM movements
		WHERE account_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	listAfterQuery = `
		SELECT id, account_id, kind, amount, description, opening, balance_after, limit_after, recorded_at
		FROM movements
		WHERE id > $1 AND NOT opening
		ORDER BY id ASC
		LIMIT $2
	`

	feedCheckpointQuery = `
		SELECT last_movement_id
		FROM feed_checkpoint
		WHERE id = 1
	`

	advanceCheckpointQuery = `
		UPDATE feed_checkpoint
		SET last_movement_id = $1, updated_at = NOW()
		WHERE id = 1
	`
)

// LedgerRepository implements the movement.Repository interface for PostgreSQL
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) movement.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Apply executes the transaction as a single atomic statement and returns the
// post-update balance/limit snapshot. No rows returned means nothing was
// persisted and the operation is rejected.
func (r *LedgerRepository) Apply(ctx context.Context, accountID int, input movement.TransactionInput) (account.Snapshot, error) {
	query := applyCreditQuery
	if input.Kind == movement.KindDebit {
		query = applyDebitQuery
	}

	var snap account.Snapshot
	err := r.querier.QueryRow(ctx, query,
		input.Amount,
		accountID,
		string(input.Kind),
		input.Description,
	).Scan(&snap.Balance, &snap.Limit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Snapshot{}, movement.ErrOperationRejected{AccountID: accountID}
		}
		r.logger.Error("Failed to apply transaction", "account_id", accountID, "kind", string(input.Kind), "error", err)
		return account.Snapshot{}, fmt.Errorf("failed to apply transaction: %w", err)
	}

	return snap, nil
}

// Recent returns up to limit movements for the account, newest first
func (r *LedgerRepository) Recent(ctx context.Context, accountID int, limit int) ([]movement.Movement, error) {
	rows, err := r.querier.Query(ctx, recentMovementsQuery, accountID, limit)
	if err != nil {
		r.logger.Error("Failed to query recent movements", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to query recent movements: %w", err)
	}
	defer rows.Close()

	return scanMovements(rows)
}

// ListAfter returns up to batch real movements past afterID, oldest first
func (r *LedgerRepository) ListAfter(ctx context.Context, afterID int64, batch int) ([]movement.Movement, error) {
	rows, err := r.querier.Query(ctx, listAfterQuery, afterID, batch)
	if err != nil {
		r.logger.Error("Failed to list movements for feed", "after_id", afterID, "error", err)
		return nil, fmt.Errorf("failed to list movements for feed: %w", err)
	}
	defer rows.Close()

	return scanMovements(rows)
}

// FeedCheckpoint returns the id of the last movement published to the feed.
// A missing checkpoint row (fresh database) reads as zero.
func (r *LedgerRepository) FeedCheckpoint(ctx context.Context) (int64, error) {
	var lastID int64
	err := r.querier.QueryRow(ctx, feedCheckpointQuery).Scan(&lastID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		r.logger.Error("Failed to read feed checkpoint", "error", err)
		return 0, fmt.Errorf("failed to read feed checkpoint: %w", err)
	}
	return lastID, nil
}

// AdvanceFeedCheckpoint moves the feed cursor forward to lastID
func (r *LedgerRepository) AdvanceFeedCheckpoint(ctx context.Context, lastID int64) error {
	result, err := r.querier.Exec(ctx, advanceCheckpointQuery, lastID)
	if err != nil {
		r.logger.Error("Failed to advance feed checkpoint", "last_id", lastID, "error", err)
		return fmt.Errorf("failed to advance feed checkpoint: %w", err)
	}
	if result.RowsAffected() == 0 {
		return errors.New("feed checkpoint row is missing")
	}
	return nil
}

func scanMovements(rows pgx.Rows) ([]movement.Movement, error) {
	var movements []movement.Movement
	for rows.Next() {
		var m movement.Movement
		var kind string
		if err := rows.Scan(
			&m.ID,
			&m.AccountID,
			&kind,
			&m.Amount,
			&m.Description,
			&m.Opening,
			&m.BalanceAfter,
			&m.LimitAfter,
			&m.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		m.Kind = movement.Kind(kind)
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read movements: %w", err)
	}
	return movements, nil
}
