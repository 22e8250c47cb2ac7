package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"meibo/internal/domain"
	"meibo/internal/port"
)

type batchRepo struct {
	db *sqlx.DB
}

// NewBatchRepo creates a new PostgreSQL-backed BatchRepository.
func NewBatchRepo(db *sqlx.DB) port.BatchRepository {
	return &batchRepo{db: db}
}

func (r *batchRepo) CreateBatch(ctx context.Context, audit *domain.BatchAudit) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO batches (id, file_count, raw_count, record_count, needs_review, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		audit.ID, audit.FileCount, audit.RawCount, audit.RecordCount, audit.NeedsReview, audit.CreatedAt)
	if err != nil {
		return fmt.Errorf("batchRepo.CreateBatch: %w", err)
	}
	return nil
}

func (r *batchRepo) RecordReview(ctx context.Context, audit *domain.ReviewAudit) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO batch_reviews (id, batch_id, updated, confirmed, deleted, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		audit.ID, audit.BatchID, audit.Updated, audit.Confirmed, audit.Deleted, audit.CreatedAt)
	if err != nil {
		return fmt.Errorf("batchRepo.RecordReview: %w", err)
	}
	return nil
}

func (r *batchRepo) ListRecent(ctx context.Context, limit int) ([]*domain.BatchAudit, error) {
	var batches []*domain.BatchAudit
	err := r.db.SelectContext(ctx, &batches,
		`SELECT * FROM batches ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("batchRepo.ListRecent: %w", err)
	}
	return batches, nil
}

func (r *batchRepo) GetBatch(ctx context.Context, id uuid.UUID) (*domain.BatchAudit, error) {
	var batch domain.BatchAudit
	err := r.db.GetContext(ctx, &batch, `SELECT * FROM batches WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("batchRepo.GetBatch: %w", err)
	}
	return &batch, nil
}
