package service

import (
	"context"

	"github.com/phrazzld/biblioteca-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockSnapshotStore mocks the store.SnapshotStore interface
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) Load(ctx context.Context) (domain.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Snapshot), args.Error(1)
}

func (m *MockSnapshotStore) Save(ctx context.Context, s domain.Snapshot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSnapshotStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
