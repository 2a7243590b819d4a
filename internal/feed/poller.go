// Package feed publishes committed movements to the message feed.
//
// The movements table doubles as the outbox: the poller walks it in id order
// from a persisted checkpoint, publishes each row, and only then advances the
// checkpoint. A crash between publish and advance replays movements, so the
// feed is at-least-once and downstream consumers dedupe on movement id.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/crebito-ledger/internal/config"
	"github.com/crebito-ledger/internal/domain/movement"
	"github.com/crebito-ledger/internal/platform/messaging/producers"
	"github.com/crebito-ledger/internal/platform/metrics"
)

// Poller drains newly committed movements into the feed topic
type Poller struct {
	logger     *slog.Logger
	cfg        *config.FeedConfig
	ledgerRepo movement.Repository
	publisher  producers.MessagePublisher
}

// NewPoller creates a feed poller
func NewPoller(logger *slog.Logger, cfg *config.FeedConfig, ledgerRepo movement.Repository, publisher producers.MessagePublisher) *Poller {
	return &Poller{
		logger:     logger,
		cfg:        cfg,
		ledgerRepo: ledgerRepo,
		publisher:  publisher,
	}
}

// Run polls until the context is canceled. Blocking; callers run it in its
// own goroutine.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Starting movement feed poller",
		"interval", p.cfg.PollingInterval,
		"batch_size", p.cfg.BatchSize,
	)

	ticker := time.NewTicker(p.cfg.PollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Stopping movement feed poller")
			return
		case <-ticker.C:
			if err := p.drain(ctx); err != nil {
				p.logger.Error("Feed drain failed", "error", err)
			}
		}
	}
}

// drain publishes every movement past the checkpoint, batch by batch
func (p *Poller) drain(ctx context.Context) error {
	for {
		published, err := p.publishBatch(ctx)
		if err != nil {
			return err
		}
		if published < p.cfg.BatchSize {
			return nil
		}
	}
}

// publishBatch pushes one batch to the feed and advances the checkpoint past
// the last movement the broker accepted. Returns the number published.
func (p *Poller) publishBatch(ctx context.Context) (int, error) {
	checkpoint, err := p.ledgerRepo.FeedCheckpoint(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read feed checkpoint: %w", err)
	}

	movements, err := p.ledgerRepo.ListAfter(ctx, checkpoint, p.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list movements after %d: %w", checkpoint, err)
	}
	if len(movements) == 0 {
		return 0, nil
	}

	published := 0
	lastID := checkpoint
	for i := range movements {
		m := &movements[i]
		key := strconv.Itoa(m.AccountID) + "/" + strconv.FormatInt(m.ID, 10)
		if err := p.publisher.Publish(ctx, key, m); err != nil {
			// Advance past what was accepted so the retry resumes here.
			p.advance(ctx, lastID, checkpoint)
			return published, fmt.Errorf("failed to publish movement %d: %w", m.ID, err)
		}
		lastID = m.ID
		published++
	}

	p.advance(ctx, lastID, checkpoint)
	metrics.RecordFeedPublished(published)
	p.logger.Debug("Published movement batch to feed",
		"count", published,
		"checkpoint", lastID,
	)
	return published, nil
}

func (p *Poller) advance(ctx context.Context, lastID, previous int64) {
	if lastID == previous {
		return
	}
	if err := p.ledgerRepo.AdvanceFeedCheckpoint(ctx, lastID); err != nil {
		p.logger.Error("Failed to advance feed checkpoint", "last_id", lastID, "error", err)
	}
}
