package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/crebito-ledger/internal/config"
	"github.com/crebito-ledger/internal/domain/account"
	"github.com/crebito-ledger/internal/domain/movement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Apply(ctx context.Context, accountID int, input movement.TransactionInput) (account.Snapshot, error) {
	args := m.Called(ctx, accountID, input)
	return args.Get(0).(account.Snapshot), args.Error(1)
}

func (m *MockLedgerRepository) Recent(ctx context.Context, accountID int, limit int) ([]movement.Movement, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]movement.Movement), args.Error(1)
}

func (m *MockLedgerRepository) ListAfter(ctx context.Context, afterID int64, batch int) ([]movement.Movement, error) {
	args := m.Called(ctx, afterID, batch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]movement.Movement), args.Error(1)
}

func (m *MockLedgerRepository) FeedCheckpoint(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) AdvanceFeedCheckpoint(ctx context.Context, lastID int64) error {
	args := m.Called(ctx, lastID)
	return args.Error(0)
}

func testLedgerConfig() *config.LedgerConfig {
	return &config.LedgerConfig{MaxAccountID: 5, StatementWindow: 10}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// openingMovement builds the synthetic seed entry for an account
func openingMovement(accountID int, limit int64, at time.Time) movement.Movement {
	return movement.Movement{
		ID:           int64(accountID),
		AccountID:    accountID,
		Kind:         movement.KindCredit,
		Amount:       0,
		Description:  "opening",
		Opening:      true,
		BalanceAfter: 0,
		LimitAfter:   limit,
		RecordedAt:   at,
	}
}

// realMovements builds n real movements newest-first with ids descending from maxID
func realMovements(accountID int, n int, maxID int64, limit int64) []movement.Movement {
	movements := make([]movement.Movement, 0, n)
	for i := 0; i < n; i++ {
		id := maxID - int64(i)
		movements = append(movements, movement.Movement{
			ID:           id,
			AccountID:    accountID,
			Kind:         movement.KindCredit,
			Amount:       100,
			Description:  "dep",
			BalanceAfter: 100 * id,
			LimitAfter:   limit,
			RecordedAt:   time.Now().Add(-time.Duration(i) * time.Minute),
		})
	}
	return movements
}

func TestStatementService_BuildStatement(t *testing.T) {
	ctx := context.Background()

	t.Run("NoRealMovementsReturnsEmptyList", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewStatementService(testLogger(), testLedgerConfig(), mockRepo)

		opening := openingMovement(1, 1000, time.Now().Add(-time.Hour))
		mockRepo.On("Recent", mock.Anything, 1, 11).Return([]movement.Movement{opening}, nil)

		statement, err := svc.BuildStatement(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), statement.Balance)
		assert.Equal(t, int64(1000), statement.Limit)
		assert.Empty(t, statement.Recent)
		mockRepo.AssertExpectations(t)
	})

	t.Run("FullWindowExcludesOpening", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewStatementService(testLogger(), testLedgerConfig(), mockRepo)

		// Exactly 10 real movements plus the opening entry: the window+1
		// fetch returns all 11 rows and the opening is filtered out.
		rows := realMovements(1, 10, 11, 1000)
		rows = append(rows, openingMovement(1, 1000, time.Now().Add(-time.Hour)))
		mockRepo.On("Recent", mock.Anything, 1, 11).Return(rows, nil)

		statement, err := svc.BuildStatement(ctx, 1)
		require.NoError(t, err)
		require.Len(t, statement.Recent, 10)
		for _, m := range statement.Recent {
			assert.False(t, m.Opening)
		}
		assert.Equal(t, int64(11), statement.Recent[0].ID, "newest first")
		assert.Equal(t, int64(2), statement.Recent[9].ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("LongHistoryTruncatesToWindow", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewStatementService(testLogger(), testLedgerConfig(), mockRepo)

		// 15 real movements exist; the repository returns the newest 11,
		// none of which is the opening entry.
		rows := realMovements(1, 11, 16, 1000)
		mockRepo.On("Recent", mock.Anything, 1, 11).Return(rows, nil)

		statement, err := svc.BuildStatement(ctx, 1)
		require.NoError(t, err)
		require.Len(t, statement.Recent, 10)
		assert.Equal(t, int64(16), statement.Recent[0].ID)
		assert.Equal(t, int64(7), statement.Recent[9].ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("SnapshotComesFromNewestMovement", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewStatementService(testLogger(), testLedgerConfig(), mockRepo)

		newest := movement.Movement{ID: 5, AccountID: 1, Kind: movement.KindDebit, Amount: 1500, Description: "x", BalanceAfter: -1000, LimitAfter: 1000, RecordedAt: time.Now()}
		older := movement.Movement{ID: 4, AccountID: 1, Kind: movement.KindCredit, Amount: 500, Description: "dep", BalanceAfter: 500, LimitAfter: 1000, RecordedAt: time.Now().Add(-time.Minute)}
		opening := openingMovement(1, 1000, time.Now().Add(-time.Hour))
		mockRepo.On("Recent", mock.Anything, 1, 11).Return([]movement.Movement{newest, older, opening}, nil)

		statement, err := svc.BuildStatement(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(-1000), statement.Balance)
		assert.Equal(t, int64(1000), statement.Limit)
		require.Len(t, statement.Recent, 2)
		assert.Equal(t, movement.KindDebit, statement.Recent[0].Kind)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmptyHistoryIsNotFound", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewStatementService(testLogger(), testLedgerConfig(), mockRepo)

		mockRepo.On("Recent", mock.Anything, 3, 11).Return([]movement.Movement{}, nil)

		_, err := svc.BuildStatement(ctx, 3)
		var notFound account.ErrAccountNotFound
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, 3, notFound.AccountID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("OutOfRangeIDDoesNotTouchStore", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewStatementService(testLogger(), testLedgerConfig(), mockRepo)

		_, err := svc.BuildStatement(ctx, 6)
		var notFound account.ErrAccountNotFound
		assert.ErrorAs(t, err, &notFound)
		mockRepo.AssertNotCalled(t, "Recent")
	})

	t.Run("StoreFailurePropagates", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewStatementService(testLogger(), testLedgerConfig(), mockRepo)

		expectedErr := errors.New("connection refused")
		mockRepo.On("Recent", mock.Anything, 1, 11).Return(nil, expectedErr)

		_, err := svc.BuildStatement(ctx, 1)
		assert.ErrorIs(t, err, expectedErr)
		mockRepo.AssertExpectations(t)
	})

	t.Run("AsOfIsGenerationTime", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		fixed := time.Date(2024, 2, 24, 12, 0, 0, 0, time.UTC)
		svc := &StatementServiceImpl{
			ledgerRepo: mockRepo,
			cfg:        testLedgerConfig(),
			logger:     testLogger(),
			now:        func() time.Time { return fixed },
		}

		opening := openingMovement(1, 1000, fixed.Add(-time.Hour))
		mockRepo.On("Recent", mock.Anything, 1, 11).Return([]movement.Movement{opening}, nil)

		statement, err := svc.BuildStatement(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, fixed, statement.AsOf)
		mockRepo.AssertExpectations(t)
	})
}
