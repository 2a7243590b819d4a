package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/crebito-ledger/internal/api/handler"
	"github.com/crebito-ledger/internal/api/middleware"
	"github.com/crebito-ledger/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	transactionHandler *handler.TransactionHandler,
	statementHandler *handler.StatementHandler,
	archiveHandler *handler.ArchiveHandler,
) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())

	accounts := r.Group("/accounts")
	{
		accounts.POST("/:id/transactions", transactionHandler.Create)
		accounts.GET("/:id/statement", statementHandler.Get)
		accounts.GET("/:id/movements", archiveHandler.ListByAccount)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}
