package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/crebito-ledger/internal/config"
	"github.com/crebito-ledger/internal/domain/account"
	"github.com/crebito-ledger/internal/domain/movement"
)

// StatementServiceImpl implements the StatementService interface
type StatementServiceImpl struct {
	ledgerRepo movement.Repository
	cfg        *config.LedgerConfig
	logger     *slog.Logger
	now        func() time.Time // Injectable clock for tests
}

// NewStatementService creates a new statement service
func NewStatementService(logger *slog.Logger, cfg *config.LedgerConfig, ledgerRepo movement.Repository) StatementService {
	return &StatementServiceImpl{
		ledgerRepo: ledgerRepo,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// BuildStatement reconstructs the current balance/limit view plus the most
// recent real movements from the append-only log.
//
// The newest movement's snapshot is the authoritative current state whether
// it is the opening entry or a real transaction. One extra row is fetched so
// a full window of real movements survives the opening-entry filter.
func (s *StatementServiceImpl) BuildStatement(ctx context.Context, accountID int) (*movement.Statement, error) {
	if accountID < 1 || accountID > s.cfg.MaxAccountID {
		return nil, account.ErrAccountNotFound{AccountID: accountID}
	}

	window := s.cfg.StatementWindow
	recent, err := s.ledgerRepo.Recent(ctx, accountID, window+1)
	if err != nil {
		return nil, err
	}

	// Every provisioned account carries at least its opening entry; an empty
	// log means the account was never seeded.
	if len(recent) == 0 {
		s.logger.Warn("Statement requested for account with no ledger history", "account_id", accountID)
		return nil, account.ErrAccountNotFound{AccountID: accountID}
	}

	statement := &movement.Statement{
		Balance: recent[0].BalanceAfter,
		Limit:   recent[0].LimitAfter,
		AsOf:    s.now().UTC(),
		Recent:  make([]movement.Movement, 0, window),
	}

	for _, m := range recent {
		if m.Opening {
			continue
		}
		if len(statement.Recent) == window {
			break
		}
		statement.Recent = append(statement.Recent, m)
	}

	return statement, nil
}
