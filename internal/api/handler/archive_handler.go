package handler

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/crebito-ledger/internal/api/service"
	"github.com/crebito-ledger/internal/domain/account"
	"github.com/crebito-ledger/internal/domain/movement"
	"github.com/gin-gonic/gin"
)

// ArchiveHandler handles HTTP requests for the movement archive
type ArchiveHandler struct {
	archiveService service.ArchiveService
	logger         *slog.Logger
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(logger *slog.Logger, archiveService service.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{
		archiveService: archiveService,
		logger:         logger,
	}
}

// ListByAccount returns a paginated page of archived movements for an account
func (h *ArchiveHandler) ListByAccount(c *gin.Context) {
	accountID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		RespondUnprocessable(c, "Invalid account ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondUnprocessable(c, "Invalid pagination parameters")
		return
	}

	movements, total, err := h.archiveService.ListMovements(c.Request.Context(), accountID, pagination.Page, pagination.PerPage)
	if err != nil {
		var notFound account.ErrAccountNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to list archived movements", "accountID", accountID, "error", err)
		RespondInternalError(c)
		return
	}

	response := MovementListResponse{Movements: make([]ArchivedMovementResponse, 0, len(movements))}
	for _, m := range movements {
		response.Movements = append(response.Movements, mapMovementToResponse(m))
	}

	RespondWithPaginatedData(c, response, pagination.Page, pagination.PerPage, int(total))
}

// mapMovementToResponse maps a movement entity to an archived movement DTO
func mapMovementToResponse(m *movement.Movement) ArchivedMovementResponse {
	return ArchivedMovementResponse{
		ID:           m.ID,
		Kind:         string(m.Kind),
		Amount:       m.Amount,
		Description:  m.Description,
		BalanceAfter: m.BalanceAfter,
		LimitAfter:   m.LimitAfter,
		RecordedAt:   m.RecordedAt.UTC().Format(time.RFC3339Nano),
	}
}
