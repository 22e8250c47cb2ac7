package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"meibo/internal/config"
	"meibo/internal/domain"
	"meibo/internal/port"
)

// ScanService stores and retrieves batch scan objects.
type ScanService interface {
	StoreScan(ctx context.Context, batchID uuid.UUID, fileName string, body io.Reader, size int64) (*domain.ScanMeta, []byte, error)
	DeleteScans(ctx context.Context, scans []*domain.ScanMeta)
	PresignScan(ctx context.Context, scan *domain.ScanMeta) (string, error)
}

type scanService struct {
	storage port.ObjectStorage
	cfg     *config.S3Config
}

// NewScanService creates a new ScanService implementation.
func NewScanService(storage port.ObjectStorage, cfg *config.S3Config) ScanService {
	return &scanService{
		storage: storage,
		cfg:     cfg,
	}
}

// StoreScan validates and uploads one scan. The full file content is returned
// alongside the metadata because the caller feeds the same bytes to extraction.
func (s *scanService) StoreScan(ctx context.Context, batchID uuid.UUID, fileName string, body io.Reader, size int64) (*domain.ScanMeta, []byte, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if size > maxBytes {
		return nil, nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(body, maxBytes+1))
	if err != nil {
		return nil, nil, fmt.Errorf("reading scan: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, nil, domain.ErrFileTooLarge
	}

	// Magic-byte check: the extension alone is not trusted.
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	detectedType := http.DetectContentType(head)
	if _, validContent := domain.AllowedContentTypes[detectedType]; !validContent {
		return nil, nil, domain.ErrUnsupportedFileType
	}

	contentType := domain.AllowedFileTypes[fileType]
	key := fmt.Sprintf("batches/%s/scans/%s", batchID, fileName)

	meta := &domain.ScanMeta{
		FileName:    fileName,
		Bucket:      s.cfg.Bucket,
		Key:         key,
		FileType:    fileType,
		ContentType: contentType,
		Size:        int64(len(data)),
	}

	log.Printf("scanService.StoreScan: uploading %s (%s, %d bytes) for batch %s",
		fileName, contentType, meta.Size, batchID)

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      meta.Bucket,
		Key:         meta.Key,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
		Size:        meta.Size,
	})
	if err != nil {
		log.Printf("scanService.StoreScan: upload failed for %s: %v", fileName, err)
		return nil, nil, domain.ErrUploadFailed
	}

	return meta, data, nil
}

// DeleteScans removes scan objects. Failures are logged, not returned;
// deletion here is best-effort cleanup.
func (s *scanService) DeleteScans(ctx context.Context, scans []*domain.ScanMeta) {
	for _, scan := range scans {
		if err := s.storage.Delete(ctx, scan.Bucket, scan.Key); err != nil {
			log.Printf("scanService.DeleteScans: failed to delete %s: %v", scan.Key, err)
		}
	}
}

// PresignScan returns a short-lived download URL for a stored scan.
func (s *scanService) PresignScan(ctx context.Context, scan *domain.ScanMeta) (string, error) {
	return s.storage.GetPresignedURL(ctx, scan.Bucket, scan.Key, s.cfg.PresignExpiry)
}
