package service

import (
	"context"
	"log/slog"

	"github.com/crebito-ledger/internal/config"
	"github.com/crebito-ledger/internal/domain/account"
	"github.com/crebito-ledger/internal/domain/movement"
)

// ArchiveServiceImpl implements the ArchiveService interface
type ArchiveServiceImpl struct {
	archiveRepo movement.ArchiveRepository
	cfg         *config.LedgerConfig
	logger      *slog.Logger
}

// NewArchiveService creates a new archive query service
func NewArchiveService(logger *slog.Logger, cfg *config.LedgerConfig, archiveRepo movement.ArchiveRepository) ArchiveService {
	return &ArchiveServiceImpl{
		archiveRepo: archiveRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// ListMovements retrieves a paginated page of archived movements for an account.
// Returns movements, total count, and any error.
func (s *ArchiveServiceImpl) ListMovements(ctx context.Context, accountID int, page, perPage int) ([]*movement.Movement, int64, error) {
	if accountID < 1 || accountID > s.cfg.MaxAccountID {
		return nil, 0, account.ErrAccountNotFound{AccountID: accountID}
	}

	offset := (page - 1) * perPage

	movements, err := s.archiveRepo.GetByAccountID(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.archiveRepo.CountByAccountID(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}
