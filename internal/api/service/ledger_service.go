package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/crebito-ledger/internal/config"
	"github.com/crebito-ledger/internal/domain/account"
	"github.com/crebito-ledger/internal/domain/movement"
	"github.com/crebito-ledger/internal/platform/metrics"
)

// LedgerServiceImpl implements the LedgerService interface
type LedgerServiceImpl struct {
	ledgerRepo movement.Repository
	cfg        *config.LedgerConfig
	logger     *slog.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(logger *slog.Logger, cfg *config.LedgerConfig, ledgerRepo movement.Repository) LedgerService {
	return &LedgerServiceImpl{
		ledgerRepo: ledgerRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// ApplyTransaction applies a validated transaction to an account.
// The account set is fixed, so "not found" is decided against the configured
// id range before touching the store; the store itself reports unknown id and
// limit breach as the same rejection.
func (s *LedgerServiceImpl) ApplyTransaction(ctx context.Context, accountID int, input movement.TransactionInput) (account.Snapshot, error) {
	if accountID < 1 || accountID > s.cfg.MaxAccountID {
		return account.Snapshot{}, account.ErrAccountNotFound{AccountID: accountID}
	}

	snap, err := s.ledgerRepo.Apply(ctx, accountID, input)
	if err != nil {
		var rejected movement.ErrOperationRejected
		if errors.As(err, &rejected) {
			s.logger.Info("Transaction rejected",
				"account_id", accountID,
				"kind", string(input.Kind),
				"amount", input.Amount,
			)
			metrics.RecordTransaction(string(input.Kind), metrics.OutcomeRejected)
			return account.Snapshot{}, err
		}
		metrics.RecordTransaction(string(input.Kind), metrics.OutcomeError)
		return account.Snapshot{}, err
	}

	s.logger.Info("Transaction committed",
		"account_id", accountID,
		"kind", string(input.Kind),
		"amount", input.Amount,
		"balance", snap.Balance,
	)
	metrics.RecordTransaction(string(input.Kind), metrics.OutcomeCommitted)

	return snap, nil
}
