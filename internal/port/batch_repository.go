package port

import (
	"context"

	"github.com/google/uuid"

	"meibo/internal/domain"
)

// BatchRepository persists batch and review audit rows.
type BatchRepository interface {
	CreateBatch(ctx context.Context, audit *domain.BatchAudit) error
	RecordReview(ctx context.Context, audit *domain.ReviewAudit) error
	ListRecent(ctx context.Context, limit int) ([]*domain.BatchAudit, error)
	GetBatch(ctx context.Context, id uuid.UUID) (*domain.BatchAudit, error)
}
