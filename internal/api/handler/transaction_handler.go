package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/crebito-ledger/internal/api/service"
	"github.com/crebito-ledger/internal/domain/account"
	"github.com/crebito-ledger/internal/domain/movement"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles HTTP requests for ledger transactions
type TransactionHandler struct {
	ledgerService service.LedgerService
	logger        *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, ledgerService service.LedgerService) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// Create applies a signed movement to an account. A malformed body, a
// non-integer id or a rejected debit all answer 422; only an id that is a
// well-formed integer outside the account range answers 404.
func (h *TransactionHandler) Create(c *gin.Context) {
	accountID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		RespondUnprocessable(c, "Invalid account ID")
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondUnprocessable(c, "Invalid request body")
		return
	}
	if req.Amount == nil || req.Kind == nil || req.Description == nil {
		RespondUnprocessable(c, "Missing required fields")
		return
	}

	input, err := movement.NewTransactionInput(*req.Amount, *req.Kind, *req.Description)
	if err != nil {
		RespondUnprocessable(c, err.Error())
		return
	}

	snap, err := h.ledgerService.ApplyTransaction(c.Request.Context(), accountID, input)
	if err != nil {
		var notFound account.ErrAccountNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Account not found")
			return
		}
		var rejected movement.ErrOperationRejected
		if errors.As(err, &rejected) {
			RespondUnprocessable(c, "Transaction would exceed the account limit")
			return
		}
		h.logger.Error("Failed to apply transaction", "accountID", accountID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, TransactionResponse{Balance: snap.Balance, Limit: snap.Limit})
}
