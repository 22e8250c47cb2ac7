package port

import (
	"context"

	"meibo/internal/domain"
)

// EmailSender defines the contract for batch notifications.
type EmailSender interface {
	SendBatchSummary(ctx context.Context, toEmail string, audit *domain.BatchAudit) error
}
