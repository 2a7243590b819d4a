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

// StatementHandler handles HTTP requests for account statements
type StatementHandler struct {
	statementService service.StatementService
	logger           *slog.Logger
}

// NewStatementHandler creates a new statement handler
func NewStatementHandler(logger *slog.Logger, statementService service.StatementService) *StatementHandler {
	return &StatementHandler{
		statementService: statementService,
		logger:           logger,
	}
}

// Get returns the account snapshot plus the most recent movements
func (h *StatementHandler) Get(c *gin.Context) {
	accountID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		RespondUnprocessable(c, "Invalid account ID")
		return
	}

	statement, err := h.statementService.BuildStatement(c.Request.Context(), accountID)
	if err != nil {
		var notFound account.ErrAccountNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to build statement", "accountID", accountID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapStatementToResponse(statement))
}

// mapStatementToResponse maps a statement entity to a statement response DTO
func mapStatementToResponse(s *movement.Statement) StatementResponse {
	recent := make([]StatementMovementResponse, 0, len(s.Recent))
	for _, m := range s.Recent {
		recent = append(recent, StatementMovementResponse{
			Amount:      m.Amount,
			Kind:        string(m.Kind),
			Description: m.Description,
			AppliedAt:   m.RecordedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	return StatementResponse{
		Balance:         s.Balance,
		Limit:           s.Limit,
		AsOf:            s.AsOf.Format(time.RFC3339Nano),
		RecentMovements: recent,
	}
}
