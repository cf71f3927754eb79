package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"semainier/internal/clipboard"
	"semainier/internal/planning"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetWeek(ctx context.Context, shop, weekStart string) (planning.WeekSnapshot, error) {
	args := m.Called(ctx, shop, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(planning.WeekSnapshot), args.Error(1)
}

func (m *mockRepo) PutWeek(ctx context.Context, shop, weekStart string, snap planning.WeekSnapshot) error {
	return m.Called(ctx, shop, weekStart, snap).Error(0)
}

func (m *mockRepo) GetEmployees(ctx context.Context, shop string) ([]string, error) {
	args := m.Called(ctx, shop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockRepo) PutEmployees(ctx context.Context, shop string, employees []string) error {
	return m.Called(ctx, shop, employees).Error(0)
}

func (m *mockRepo) GetGridSlots(ctx context.Context, shop string) ([]string, error) {
	args := m.Called(ctx, shop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockRepo) PutGridSlots(ctx context.Context, shop string, slots []string) error {
	return m.Called(ctx, shop, slots).Error(0)
}

func (m *mockRepo) PurgeEmployee(ctx context.Context, shop, employee string) error {
	return m.Called(ctx, shop, employee).Error(0)
}

func (m *mockRepo) GetBuffer(ctx context.Context, shop string) (*clipboard.Buffer, error) {
	args := m.Called(ctx, shop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clipboard.Buffer), args.Error(1)
}

func (m *mockRepo) PutBuffer(ctx context.Context, shop string, buf *clipboard.Buffer) error {
	return m.Called(ctx, shop, buf).Error(0)
}

func (m *mockRepo) ClearBuffer(ctx context.Context, shop string) error {
	return m.Called(ctx, shop).Error(0)
}

func TestFailoverRepository(t *testing.T) {
	primary := new(mockRepo)
	fallback := new(mockRepo)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverRepository(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		snap := make(planning.WeekSnapshot)
		primary.On("GetWeek", ctx, "bakery", "2026-03-02").Return(snap, nil).Once()

		got, err := repo.GetWeek(ctx, "bakery", "2026-03-02")
		assert.NoError(t, err)
		assert.Equal(t, snap, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		snap := make(planning.WeekSnapshot)
		snap.SetVector("ALICE", "2026-03-02", planning.Vector{true})
		primary.On("GetWeek", ctx, "bakery", "2026-03-09").Return(nil, errors.New("fail")).Once()
		fallback.On("GetWeek", ctx, "bakery", "2026-03-09").Return(snap, nil).Once()

		got, err := repo.GetWeek(ctx, "bakery", "2026-03-09")
		assert.NoError(t, err)
		assert.Equal(t, snap, got)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("DownSkipsPrimary", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now()

		fallback.On("GetEmployees", ctx, "bakery").Return([]string{"ALICE"}, nil).Once()

		got, err := repo.GetEmployees(ctx, "bakery")
		assert.NoError(t, err)
		assert.Equal(t, []string{"ALICE"}, got)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * time.Minute)

		primary.On("GetEmployees", ctx, "bakery").Return([]string{"ALICE", "BOB"}, nil).Once()

		got, err := repo.GetEmployees(ctx, "bakery")
		assert.NoError(t, err)
		assert.Equal(t, []string{"ALICE", "BOB"}, got)
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})
}

func TestFailoverWritesAlwaysReachFallback(t *testing.T) {
	primary := new(mockRepo)
	fallback := new(mockRepo)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverRepository(primary, fallback, &logger)
	ctx := context.Background()

	snap := make(planning.WeekSnapshot)
	fallback.On("PutWeek", ctx, "bakery", "2026-03-02", snap).Return(nil).Once()
	primary.On("PutWeek", ctx, "bakery", "2026-03-02", snap).Return(errors.New("fail")).Once()

	// A primary write failure is absorbed: the fallback holds the state.
	err := repo.PutWeek(ctx, "bakery", "2026-03-02", snap)
	require.NoError(t, err)
	assert.True(t, repo.isDown.Load())
	primary.AssertExpectations(t)
	fallback.AssertExpectations(t)
}
