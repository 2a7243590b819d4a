package archiver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/crebito-ledger/internal/domain/movement"
	"github.com/crebito-ledger/internal/platform/messaging/producers"
)

// MovementEventHandler handles incoming movement feed messages from Kafka
type MovementEventHandler struct {
	archivingService ArchivingService
	dlqProducer      producers.DeadLetterPublisher
	logger           *slog.Logger
}

// NewMovementEventHandler creates a new handler
func NewMovementEventHandler(
	logger *slog.Logger,
	archivingService ArchivingService,
	dlqProducer producers.DeadLetterPublisher,
) *MovementEventHandler {
	return &MovementEventHandler{
		archivingService: archivingService,
		dlqProducer:      dlqProducer,
		logger:           logger,
	}
}

// HandleMessage processes one feed message. Unparseable payloads go to the
// DLQ so the partition does not wedge; archive failures return an error to
// keep the offset uncommitted for redelivery.
func (h *MovementEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var m movement.Movement
	if err := json.Unmarshal(value, &m); err != nil {
		h.logger.Error("Failed to unmarshal movement from feed message",
			"error", err,
			"message_key", string(key),
		)

		if h.dlqProducer != nil {
			dlqReason := fmt.Sprintf("unmarshal failed: %s", err.Error())
			if dlqErr := h.dlqProducer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				// Dead-lettered; commit the offset.
				return nil
			}
		}
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	if err := h.archivingService.ArchiveMovement(ctx, &m); err != nil {
		h.logger.Error("Failed to archive movement",
			"movement_id", m.ID,
			"account_id", m.AccountID,
			"error", err,
		)
		return fmt.Errorf("archiving movement %d failed: %w", m.ID, err)
	}

	return nil
}
