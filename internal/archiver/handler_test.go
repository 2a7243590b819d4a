package archiver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/crebito-ledger/internal/domain/movement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockArchivingService struct {
	mock.Mock
}

func (m *MockArchivingService) ArchiveMovement(ctx context.Context, mv *movement.Movement) error {
	args := m.Called(ctx, mv)
	return args.Error(0)
}

type MockDeadLetterPublisher struct {
	mock.Mock
}

func (m *MockDeadLetterPublisher) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	args := m.Called(ctx, key, originalMessageValue, reason)
	return args.Error(0)
}

func (m *MockDeadLetterPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testArchiverLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestMovementEventHandler_HandleMessage(t *testing.T) {
	ctx := context.Background()

	validMovement := movement.Movement{ID: 42, AccountID: 1, Kind: movement.KindCredit, Amount: 100, Description: "dep"}
	validPayload, _ := json.Marshal(validMovement)

	t.Run("ArchivesValidMovement", func(t *testing.T) {
		mockSvc := new(MockArchivingService)
		mockDLQ := new(MockDeadLetterPublisher)
		handler := NewMovementEventHandler(testArchiverLogger(), mockSvc, mockDLQ)

		mockSvc.On("ArchiveMovement", mock.Anything, mock.MatchedBy(func(m *movement.Movement) bool {
			return m.ID == 42 && m.AccountID == 1 && m.Amount == 100
		})).Return(nil).Once()

		err := handler.HandleMessage(ctx, []byte("1/42"), validPayload)
		require.NoError(t, err)
		mockSvc.AssertExpectations(t)
		mockDLQ.AssertNotCalled(t, "PublishToDLQ")
	})

	t.Run("UnparseablePayloadGoesToDLQ", func(t *testing.T) {
		mockSvc := new(MockArchivingService)
		mockDLQ := new(MockDeadLetterPublisher)
		handler := NewMovementEventHandler(testArchiverLogger(), mockSvc, mockDLQ)

		badPayload := []byte("not json")
		mockDLQ.On("PublishToDLQ", mock.Anything, "bad-key", badPayload, mock.AnythingOfType("string")).Return(nil).Once()

		err := handler.HandleMessage(ctx, []byte("bad-key"), badPayload)
		require.NoError(t, err, "dead-lettered messages commit their offset")
		mockDLQ.AssertExpectations(t)
		mockSvc.AssertNotCalled(t, "ArchiveMovement")
	})

	t.Run("DLQFailureKeepsOffsetUncommitted", func(t *testing.T) {
		mockSvc := new(MockArchivingService)
		mockDLQ := new(MockDeadLetterPublisher)
		handler := NewMovementEventHandler(testArchiverLogger(), mockSvc, mockDLQ)

		badPayload := []byte("not json")
		mockDLQ.On("PublishToDLQ", mock.Anything, "bad-key", badPayload, mock.AnythingOfType("string")).Return(errors.New("dlq down")).Once()

		err := handler.HandleMessage(ctx, []byte("bad-key"), badPayload)
		require.Error(t, err)
		mockDLQ.AssertExpectations(t)
	})

	t.Run("NilDLQProducerReturnsUnmarshalError", func(t *testing.T) {
		mockSvc := new(MockArchivingService)
		handler := NewMovementEventHandler(testArchiverLogger(), mockSvc, nil)

		err := handler.HandleMessage(ctx, []byte("k"), []byte("not json"))
		require.Error(t, err)
	})

	t.Run("ArchiveFailurePropagates", func(t *testing.T) {
		mockSvc := new(MockArchivingService)
		mockDLQ := new(MockDeadLetterPublisher)
		handler := NewMovementEventHandler(testArchiverLogger(), mockSvc, mockDLQ)

		archiveErr := errors.New("mongo unavailable")
		mockSvc.On("ArchiveMovement", mock.Anything, mock.Anything).Return(archiveErr).Once()

		err := handler.HandleMessage(ctx, []byte("1/42"), validPayload)
		require.Error(t, err)
		assert.ErrorIs(t, err, archiveErr)
		mockSvc.AssertExpectations(t)
		mockDLQ.AssertNotCalled(t, "PublishToDLQ")
	})
}
