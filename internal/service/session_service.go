package service

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"meibo/internal/config"
	"meibo/internal/domain"
	"meibo/internal/port"
	"meibo/internal/recon"
)

// BatchUpload is the DTO for one uploaded scan file.
type BatchUpload struct {
	FileName string
	Body     io.Reader
	Size     int64
}

// RecordView is one merged record with its derived quality verdict and
// presigned scan URLs. ScanURLs is aligned with SourceFiles; a URL may be
// empty when presigning failed.
type RecordView struct {
	ID          uuid.UUID            `json:"id"`
	Fields      domain.FieldValues   `json:"fields"`
	Confidence  domain.ConfidenceMap `json:"confidence"`
	Quality     domain.QualityInfo   `json:"quality"`
	Confirmed   bool                 `json:"confirmed"`
	SourceFiles []string             `json:"source_files"`
	SourceTypes []domain.DocType     `json:"source_types"`
	ScanURLs    []string             `json:"scan_urls"`
}

// BatchView is the full client-facing state of one batch.
type BatchView struct {
	ID          uuid.UUID    `json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	FileCount   int          `json:"file_count"`
	RawCount    int          `json:"raw_count"`
	NeedsReview int          `json:"needs_review"`
	Records     []RecordView `json:"records"`
}

// ReviewResult pairs a review summary with the post-review batch state.
type ReviewResult struct {
	Summary domain.ReviewSummary `json:"summary"`
	Batch   *BatchView           `json:"batch"`
}

// SessionService owns the in-memory batch registry and orchestrates upload,
// extraction, reconciliation and review.
type SessionService interface {
	CreateBatch(ctx context.Context, uploads []BatchUpload) (*BatchView, error)
	GetBatch(ctx context.Context, batchID uuid.UUID) (*BatchView, error)
	ApplyReview(ctx context.Context, batchID uuid.UUID, edits map[uuid.UUID]domain.ReviewEdit) (*ReviewResult, error)
	Records(batchID uuid.UUID) ([]*domain.MergedRecord, error)
}

// batchState is one live batch: its reconciliation session plus the stored
// scan objects keyed by file name.
type batchState struct {
	session   *recon.Session
	scans     map[string]*domain.ScanMeta
	fileCount int
	createdAt time.Time
}

type sessionService struct {
	mu      sync.RWMutex
	batches map[uuid.UUID]*batchState

	engine   *recon.Engine
	extract  ExtractService
	scans    ScanService
	repo     port.BatchRepository
	email    port.EmailSender
	emailCfg config.EmailConfig
	maxFiles int
}

// NewSessionService creates a new SessionService implementation.
func NewSessionService(
	engine *recon.Engine,
	extract ExtractService,
	scans ScanService,
	repo port.BatchRepository,
	email port.EmailSender,
	emailCfg config.EmailConfig,
	maxFiles int,
) SessionService {
	if maxFiles < 1 {
		maxFiles = 1
	}
	return &sessionService{
		batches:  make(map[uuid.UUID]*batchState),
		engine:   engine,
		extract:  extract,
		scans:    scans,
		repo:     repo,
		email:    email,
		emailCfg: emailCfg,
		maxFiles: maxFiles,
	}
}

func (s *sessionService) CreateBatch(ctx context.Context, uploads []BatchUpload) (*BatchView, error) {
	if len(uploads) == 0 {
		return nil, domain.ErrNoFiles
	}
	if len(uploads) > s.maxFiles {
		return nil, domain.ErrTooManyFiles
	}

	batchID := uuid.New()
	log.Printf("sessionService.CreateBatch: batch %s with %d files", batchID, len(uploads))

	stored := make(map[string]*domain.ScanMeta, len(uploads))
	inputs := make([]ScanInput, 0, len(uploads))
	for _, up := range uploads {
		meta, data, err := s.scans.StoreScan(ctx, batchID, up.FileName, up.Body, up.Size)
		if err != nil {
			// Roll back scans already stored for this batch.
			s.scans.DeleteScans(ctx, metaValues(stored))
			return nil, err
		}
		stored[meta.FileName] = meta
		inputs = append(inputs, ScanInput{
			FileBytes:   data,
			ContentType: meta.ContentType,
			FileName:    meta.FileName,
		})
	}

	raws := s.extract.ExtractBatch(ctx, inputs)

	session := recon.NewSession(s.engine)
	records, rawCount := session.BuildBatch(raws)

	state := &batchState{
		session:   session,
		scans:     stored,
		fileCount: len(uploads),
		createdAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.batches[batchID] = state
	s.mu.Unlock()

	audit := &domain.BatchAudit{
		ID:          batchID,
		FileCount:   state.fileCount,
		RawCount:    rawCount,
		RecordCount: len(records),
		NeedsReview: s.countNeedsReview(records),
		CreatedAt:   state.createdAt,
	}

	// Audit and notification are best-effort: the batch is already usable.
	if err := s.repo.CreateBatch(ctx, audit); err != nil {
		log.Printf("sessionService.CreateBatch: audit write failed for batch %s: %v", batchID, err)
	}
	if s.emailCfg.ToAddress != "" {
		if err := s.email.SendBatchSummary(ctx, s.emailCfg.ToAddress, audit); err != nil {
			log.Printf("sessionService.CreateBatch: summary email failed for batch %s: %v", batchID, err)
		}
	}

	return s.buildView(ctx, batchID, state), nil
}

func (s *sessionService) GetBatch(ctx context.Context, batchID uuid.UUID) (*BatchView, error) {
	state, err := s.lookup(batchID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, batchID, state), nil
}

func (s *sessionService) ApplyReview(ctx context.Context, batchID uuid.UUID, edits map[uuid.UUID]domain.ReviewEdit) (*ReviewResult, error) {
	state, err := s.lookup(batchID)
	if err != nil {
		return nil, err
	}

	summary := state.session.ApplyReview(edits)
	log.Printf("sessionService.ApplyReview: batch %s updated=%d confirmed=%d deleted=%d",
		batchID, summary.Updated, summary.Confirmed, summary.Deleted)

	// Drop scan objects no surviving record references.
	if len(summary.DeletedSourceFiles) > 0 {
		var doomed []*domain.ScanMeta
		s.mu.Lock()
		for _, name := range summary.DeletedSourceFiles {
			if meta, ok := state.scans[name]; ok {
				doomed = append(doomed, meta)
				delete(state.scans, name)
			}
		}
		s.mu.Unlock()
		s.scans.DeleteScans(ctx, doomed)
	}

	if summary.Updated > 0 || summary.Deleted > 0 {
		reviewAudit := &domain.ReviewAudit{
			ID:        uuid.New(),
			BatchID:   batchID,
			Updated:   summary.Updated,
			Confirmed: summary.Confirmed,
			Deleted:   summary.Deleted,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.repo.RecordReview(ctx, reviewAudit); err != nil {
			log.Printf("sessionService.ApplyReview: audit write failed for batch %s: %v", batchID, err)
		}
	}

	return &ReviewResult{
		Summary: summary,
		Batch:   s.buildView(ctx, batchID, state),
	}, nil
}

func (s *sessionService) Records(batchID uuid.UUID) ([]*domain.MergedRecord, error) {
	state, err := s.lookup(batchID)
	if err != nil {
		return nil, err
	}
	return state.session.Records(), nil
}

func (s *sessionService) lookup(batchID uuid.UUID) (*batchState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.batches[batchID]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	return state, nil
}

func (s *sessionService) buildView(ctx context.Context, batchID uuid.UUID, state *batchState) *BatchView {
	records := state.session.Records()

	view := &BatchView{
		ID:        batchID,
		CreatedAt: state.createdAt,
		FileCount: state.fileCount,
		RawCount:  state.session.RawCount(),
		Records:   make([]RecordView, 0, len(records)),
	}

	for _, rec := range records {
		quality := s.engine.Score(rec.Fields, rec.Confidence)
		if quality.Label != domain.QualityOK {
			view.NeedsReview++
		}

		urls := make([]string, len(rec.SourceFiles))
		for i, name := range rec.SourceFiles {
			s.mu.RLock()
			meta, ok := state.scans[name]
			s.mu.RUnlock()
			if !ok {
				continue
			}
			url, err := s.scans.PresignScan(ctx, meta)
			if err != nil {
				log.Printf("sessionService.buildView: presign failed for %s: %v", name, err)
				continue
			}
			urls[i] = url
		}

		view.Records = append(view.Records, RecordView{
			ID:          rec.ID,
			Fields:      rec.Fields.Clone(),
			Confidence:  rec.Confidence.Clone(),
			Quality:     quality,
			Confirmed:   rec.Confirmed,
			SourceFiles: append([]string(nil), rec.SourceFiles...),
			SourceTypes: append([]domain.DocType(nil), rec.SourceTypes...),
			ScanURLs:    urls,
		})
	}

	return view
}

func (s *sessionService) countNeedsReview(records []*domain.MergedRecord) int {
	n := 0
	for _, rec := range records {
		if q := s.engine.Score(rec.Fields, rec.Confidence); q.Label != domain.QualityOK {
			n++
		}
	}
	return n
}

func metaValues(m map[string]*domain.ScanMeta) []*domain.ScanMeta {
	out := make([]*domain.ScanMeta, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
