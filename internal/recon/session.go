package recon

import (
	"sync"

	"github.com/google/uuid"

	"meibo/internal/domain"
)

// Session is the working record list of one reconciliation batch. The caller
// owns it and passes it explicitly; there is no process-wide state. Each
// exported method is a single critical section so interleaved review
// applications from concurrent UI actions cannot corrupt the list.
type Session struct {
	mu       sync.Mutex
	engine   *Engine
	records  []*domain.MergedRecord
	rawCount int
}

// NewSession creates an empty session bound to an engine.
func NewSession(engine *Engine) *Session {
	return &Session{engine: engine}
}

// BuildBatch reconciles a batch of raw records and replaces the session's
// record list with the result. The raw count is kept for display only.
func (s *Session) BuildBatch(raws []*domain.RawRecord) ([]*domain.MergedRecord, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.engine.Reconcile(raws)
	s.rawCount = len(raws)
	return s.records, s.rawCount
}

// Records returns the current record list. The slice is a copy; the records
// themselves are shared.
func (s *Session) Records() []*domain.MergedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.MergedRecord(nil), s.records...)
}

// RawCount returns the number of raw records the batch was built from.
func (s *Session) RawCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawCount
}

// Len returns the current number of records.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// ApplyReview folds human review outcomes into the record list. Records are
// addressed by their stable handle; handles with no matching record are
// ignored, so a stale re-rendered UI can never corrupt state.
//
// For each surviving edited record, every schema field is overwritten with the
// supplied value (edited values are authoritative even when unchanged), every
// confidence label is reset to high (human review supersedes extractor
// confidence), and the confirmed flag is set as supplied. Records flagged for
// deletion are removed; their contributing source files are reported in the
// summary so the caller can drop the stored scans. Applying the same
// non-deletion edits twice is a no-op the second time.
func (s *Session) ApplyReview(edits map[uuid.UUID]domain.ReviewEdit) domain.ReviewSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var summary domain.ReviewSummary
	var deleteIdx []int
	var deletedFiles []string
	seenFile := make(map[string]struct{})

	for i, rec := range s.records {
		edit, ok := edits[rec.ID]
		if !ok {
			continue
		}

		if edit.Delete {
			deleteIdx = append(deleteIdx, i)
			for _, src := range rec.SourceFiles {
				if _, seen := seenFile[src]; !seen {
					seenFile[src] = struct{}{}
					deletedFiles = append(deletedFiles, src)
				}
			}
			continue
		}

		rec.Fields = domain.NewFieldValues(s.engine.schema, edit.Fields)
		for _, f := range s.engine.schema.Fields() {
			rec.Confidence[f] = domain.ConfidenceHigh
		}
		rec.Confirmed = edit.Confirmed
		summary.Updated++
		if edit.Confirmed {
			summary.Confirmed++
		}
	}

	// Descending index order keeps the remaining indices stable while removing.
	for i := len(deleteIdx) - 1; i >= 0; i-- {
		idx := deleteIdx[i]
		s.records = append(s.records[:idx], s.records[idx+1:]...)
	}
	summary.Deleted = len(deleteIdx)

	// A scan still referenced by a surviving record must not be dropped.
	surviving := make(map[string]struct{})
	for _, rec := range s.records {
		for _, src := range rec.SourceFiles {
			surviving[src] = struct{}{}
		}
	}
	for _, src := range deletedFiles {
		if _, ok := surviving[src]; !ok {
			summary.DeletedSourceFiles = append(summary.DeletedSourceFiles, src)
		}
	}

	return summary
}
