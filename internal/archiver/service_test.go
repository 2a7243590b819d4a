package archiver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/crebito-ledger/internal/config"
	"github.com/crebito-ledger/internal/domain/movement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMongoArchivingService_ArchiveMovement(t *testing.T) {
	ctx := context.Background()

	t.Run("SavesMovement", func(t *testing.T) {
		mockRepo := new(MockSaveRepository)
		svc := NewMongoArchivingService(testArchiverLogger(), mockRepo)

		m := &movement.Movement{ID: 1, AccountID: 1}
		mockRepo.On("Save", mock.Anything, m).Return(nil).Once()

		require.NoError(t, svc.ArchiveMovement(ctx, m))
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrapsSaveError", func(t *testing.T) {
		mockRepo := new(MockSaveRepository)
		svc := NewMongoArchivingService(testArchiverLogger(), mockRepo)

		saveErr := errors.New("write concern error")
		m := &movement.Movement{ID: 7}
		mockRepo.On("Save", mock.Anything, m).Return(saveErr).Once()

		err := svc.ArchiveMovement(ctx, m)
		require.Error(t, err)
		assert.ErrorIs(t, err, saveErr)
	})
}

// MockSaveRepository implements movement.ArchiveRepository for pool tests
type MockSaveRepository struct {
	mock.Mock
}

func (m *MockSaveRepository) Save(ctx context.Context, mv *movement.Movement) error {
	args := m.Called(ctx, mv)
	return args.Error(0)
}

func (m *MockSaveRepository) GetByAccountID(ctx context.Context, accountID int, limit, offset int) ([]*movement.Movement, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*movement.Movement), args.Error(1)
}

func (m *MockSaveRepository) CountByAccountID(ctx context.Context, accountID int) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func TestWorkerPoolArchivingService(t *testing.T) {
	ctx := context.Background()

	t.Run("DelegatesToBaseService", func(t *testing.T) {
		mockBase := new(MockArchivingService)
		svc, err := NewWorkerPoolArchivingService(mockBase, config.WorkerPoolConfig{Size: 2}, testArchiverLogger())
		require.NoError(t, err)
		defer svc.Shutdown()

		m := &movement.Movement{ID: 1}
		mockBase.On("ArchiveMovement", mock.Anything, m).Return(nil).Once()

		require.NoError(t, svc.ArchiveMovement(ctx, m))
		mockBase.AssertExpectations(t)
	})

	t.Run("PropagatesBaseError", func(t *testing.T) {
		mockBase := new(MockArchivingService)
		svc, err := NewWorkerPoolArchivingService(mockBase, config.WorkerPoolConfig{Size: 2}, testArchiverLogger())
		require.NoError(t, err)
		defer svc.Shutdown()

		baseErr := errors.New("archive failed")
		m := &movement.Movement{ID: 2}
		mockBase.On("ArchiveMovement", mock.Anything, m).Return(baseErr).Once()

		assert.ErrorIs(t, svc.ArchiveMovement(ctx, m), baseErr)
	})

	t.Run("HandlesConcurrentSubmissions", func(t *testing.T) {
		mockBase := new(MockArchivingService)
		svc, err := NewWorkerPoolArchivingService(mockBase, config.WorkerPoolConfig{Size: 4}, testArchiverLogger())
		require.NoError(t, err)
		defer svc.Shutdown()

		mockBase.On("ArchiveMovement", mock.Anything, mock.Anything).Return(nil)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				assert.NoError(t, svc.ArchiveMovement(ctx, &movement.Movement{ID: id}))
			}(int64(i))
		}
		wg.Wait()

		mockBase.AssertNumberOfCalls(t, "ArchiveMovement", 20)
		assert.Equal(t, 4, svc.Capacity())
	})
}
