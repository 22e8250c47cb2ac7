package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"meibo/internal/domain"
)

// MockBatchRepository is a mock implementation of port.BatchRepository.
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) CreateBatch(ctx context.Context, audit *domain.BatchAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *MockBatchRepository) RecordReview(ctx context.Context, audit *domain.ReviewAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *MockBatchRepository) ListRecent(ctx context.Context, limit int) ([]*domain.BatchAudit, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BatchAudit), args.Error(1)
}

func (m *MockBatchRepository) GetBatch(ctx context.Context, id uuid.UUID) (*domain.BatchAudit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchAudit), args.Error(1)
}
