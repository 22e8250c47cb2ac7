package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"meibo/internal/domain"
	"meibo/internal/service"
)

// MockSessionService is a mock implementation of service.SessionService.
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) CreateBatch(ctx context.Context, uploads []service.BatchUpload) (*service.BatchView, error) {
	args := m.Called(ctx, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchView), args.Error(1)
}

func (m *MockSessionService) GetBatch(ctx context.Context, batchID uuid.UUID) (*service.BatchView, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchView), args.Error(1)
}

func (m *MockSessionService) ApplyReview(ctx context.Context, batchID uuid.UUID, edits map[uuid.UUID]domain.ReviewEdit) (*service.ReviewResult, error) {
	args := m.Called(ctx, batchID, edits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReviewResult), args.Error(1)
}

func (m *MockSessionService) Records(batchID uuid.UUID) ([]*domain.MergedRecord, error) {
	args := m.Called(batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MergedRecord), args.Error(1)
}
