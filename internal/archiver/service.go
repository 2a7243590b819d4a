// Package archiver persists feed movements into the long-term archive.
package archiver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crebito-ledger/internal/config"
	"github.com/crebito-ledger/internal/domain/movement"
	"github.com/panjf2000/ants/v2"
)

// ArchivingService persists one movement into the archive
type ArchivingService interface {
	ArchiveMovement(ctx context.Context, m *movement.Movement) error
}

// MongoArchivingService writes movements to the document archive
type MongoArchivingService struct {
	archiveRepo movement.ArchiveRepository
	logger      *slog.Logger
}

// NewMongoArchivingService creates the base archiving service
func NewMongoArchivingService(logger *slog.Logger, archiveRepo movement.ArchiveRepository) *MongoArchivingService {
	return &MongoArchivingService{
		archiveRepo: archiveRepo,
		logger:      logger,
	}
}

// ArchiveMovement upserts the movement; replayed feed messages are absorbed
// by the idempotent save
func (s *MongoArchivingService) ArchiveMovement(ctx context.Context, m *movement.Movement) error {
	if err := s.archiveRepo.Save(ctx, m); err != nil {
		return fmt.Errorf("failed to archive movement %d: %w", m.ID, err)
	}
	s.logger.Debug("Archived movement", "movement_id", m.ID, "account_id", m.AccountID)
	return nil
}

// WorkerPoolArchivingService fans archive writes out over an ants pool while
// keeping the caller's at-least-once semantics: ArchiveMovement blocks until
// the pooled write finishes so the Kafka offset is only committed after the
// archive accepted the movement.
type WorkerPoolArchivingService struct {
	baseService ArchivingService
	pool        *ants.Pool
	logger      *slog.Logger
}

// NewWorkerPoolArchivingService wraps baseService with a bounded worker pool
func NewWorkerPoolArchivingService(
	baseService ArchivingService,
	cfg config.WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolArchivingService, error) {
	pool, err := ants.NewPool(cfg.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolArchivingService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// ArchiveMovement submits the write to the pool and waits for its result
func (s *WorkerPoolArchivingService) ArchiveMovement(ctx context.Context, m *movement.Movement) error {
	resultChan := make(chan error, 1)

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.ArchiveMovement(ctx, m)
		close(resultChan)
	})
	if err != nil {
		close(resultChan)
		s.logger.Error("Failed to submit movement to worker pool",
			"movement_id", m.ID,
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool
func (s *WorkerPoolArchivingService) Shutdown() {
	s.logger.Info("Shutting down archiver worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool
func (s *WorkerPoolArchivingService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool
func (s *WorkerPoolArchivingService) Capacity() int {
	return s.pool.Cap()
}
