package feed

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

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

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testPoller(repo *MockLedgerRepository, pub *MockPublisher) *Poller {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := &config.FeedConfig{BatchSize: 100}
	return NewPoller(logger, cfg, repo, pub)
}

func TestPoller_PublishBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("PublishesAndAdvancesCheckpoint", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		mockPub := new(MockPublisher)
		poller := testPoller(mockRepo, mockPub)

		movements := []movement.Movement{
			{ID: 6, AccountID: 1, Kind: movement.KindCredit, Amount: 100},
			{ID: 7, AccountID: 2, Kind: movement.KindDebit, Amount: 50},
		}
		mockRepo.On("FeedCheckpoint", mock.Anything).Return(int64(5), nil)
		mockRepo.On("ListAfter", mock.Anything, int64(5), 100).Return(movements, nil)
		mockPub.On("Publish", mock.Anything, "1/6", &movements[0]).Return(nil)
		mockPub.On("Publish", mock.Anything, "2/7", &movements[1]).Return(nil)
		mockRepo.On("AdvanceFeedCheckpoint", mock.Anything, int64(7)).Return(nil)

		published, err := poller.publishBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, published)
		mockRepo.AssertExpectations(t)
		mockPub.AssertExpectations(t)
	})

	t.Run("NothingToPublishLeavesCheckpointAlone", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		mockPub := new(MockPublisher)
		poller := testPoller(mockRepo, mockPub)

		mockRepo.On("FeedCheckpoint", mock.Anything).Return(int64(9), nil)
		mockRepo.On("ListAfter", mock.Anything, int64(9), 100).Return([]movement.Movement{}, nil)

		published, err := poller.publishBatch(ctx)
		require.NoError(t, err)
		assert.Zero(t, published)
		mockRepo.AssertNotCalled(t, "AdvanceFeedCheckpoint")
		mockPub.AssertNotCalled(t, "Publish")
	})

	t.Run("PublishFailureAdvancesPastAcceptedOnly", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		mockPub := new(MockPublisher)
		poller := testPoller(mockRepo, mockPub)

		movements := []movement.Movement{
			{ID: 6, AccountID: 1},
			{ID: 7, AccountID: 1},
		}
		brokerErr := errors.New("broker unavailable")
		mockRepo.On("FeedCheckpoint", mock.Anything).Return(int64(5), nil)
		mockRepo.On("ListAfter", mock.Anything, int64(5), 100).Return(movements, nil)
		mockPub.On("Publish", mock.Anything, "1/6", &movements[0]).Return(nil)
		mockPub.On("Publish", mock.Anything, "1/7", &movements[1]).Return(brokerErr)
		mockRepo.On("AdvanceFeedCheckpoint", mock.Anything, int64(6)).Return(nil)

		published, err := poller.publishBatch(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, brokerErr)
		assert.Equal(t, 1, published)
		mockRepo.AssertExpectations(t)
	})

	t.Run("CheckpointReadFailureAborts", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		mockPub := new(MockPublisher)
		poller := testPoller(mockRepo, mockPub)

		mockRepo.On("FeedCheckpoint", mock.Anything).Return(int64(0), errors.New("connection refused"))

		_, err := poller.publishBatch(ctx)
		require.Error(t, err)
		mockPub.AssertNotCalled(t, "Publish")
	})
}

func TestPoller_Drain(t *testing.T) {
	ctx := context.Background()

	t.Run("DrainsUntilShortBatch", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		mockPub := new(MockPublisher)
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		poller := NewPoller(logger, &config.FeedConfig{BatchSize: 2}, mockRepo, mockPub)

		first := []movement.Movement{{ID: 1, AccountID: 1}, {ID: 2, AccountID: 1}}
		second := []movement.Movement{{ID: 3, AccountID: 2}}

		mockRepo.On("FeedCheckpoint", mock.Anything).Return(int64(0), nil).Once()
		mockRepo.On("ListAfter", mock.Anything, int64(0), 2).Return(first, nil).Once()
		mockRepo.On("AdvanceFeedCheckpoint", mock.Anything, int64(2)).Return(nil).Once()

		mockRepo.On("FeedCheckpoint", mock.Anything).Return(int64(2), nil).Once()
		mockRepo.On("ListAfter", mock.Anything, int64(2), 2).Return(second, nil).Once()
		mockRepo.On("AdvanceFeedCheckpoint", mock.Anything, int64(3)).Return(nil).Once()

		mockPub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, poller.drain(ctx))
		mockRepo.AssertExpectations(t)
		mockPub.AssertNumberOfCalls(t, "Publish", 3)
	})
}
