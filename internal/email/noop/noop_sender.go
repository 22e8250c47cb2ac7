package noop

import (
	"context"
	"log"

	"meibo/internal/domain"
	"meibo/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs batch summaries to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendBatchSummary(_ context.Context, toEmail string, audit *domain.BatchAudit) error {
	log.Printf("[NOOP EMAIL] Batch summary for %s: batch=%s files=%d records=%d needs_review=%d",
		toEmail, audit.ID, audit.FileCount, audit.RecordCount, audit.NeedsReview)
	return nil
}
