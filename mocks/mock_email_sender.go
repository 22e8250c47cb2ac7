package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"meibo/internal/domain"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendBatchSummary(ctx context.Context, toEmail string, audit *domain.BatchAudit) error {
	args := m.Called(ctx, toEmail, audit)
	return args.Error(0)
}
