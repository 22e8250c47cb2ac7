package service

import (
	"context"
	"log"
	"sync"

	"meibo/internal/domain"
	"meibo/internal/port"
)

// ScanInput is the DTO for a single scan handed to extraction.
type ScanInput struct {
	FileBytes   []byte
	ContentType string
	FileName    string
}

// ExtractService runs scan extraction through the configured parser.
type ExtractService interface {
	ExtractBatch(ctx context.Context, scans []ScanInput) []*domain.RawRecord
}

type extractService struct {
	parser      port.DocumentParser
	schema      *domain.FieldSchema
	concurrency int
}

// NewExtractService creates a new ExtractService implementation.
func NewExtractService(parser port.DocumentParser, schema *domain.FieldSchema, concurrency int) ExtractService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &extractService{
		parser:      parser,
		schema:      schema,
		concurrency: concurrency,
	}
}

// ExtractBatch extracts all scans with bounded parallelism. The result slice
// is positionally aligned with the input: slot i always holds the record for
// scans[i] regardless of completion order. A scan whose extraction fails
// yields an empty record with DocTypeUnknown so the batch is never shortened
// or reordered by individual failures.
func (s *extractService) ExtractBatch(ctx context.Context, scans []ScanInput) []*domain.RawRecord {
	results := make([]*domain.RawRecord, len(scans))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i := range scans {
		scan := scans[i]
		idx := i

		sem <- struct{}{} // acquire
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }() // release
			results[idx] = s.extractOne(ctx, scan)
		}()
	}

	wg.Wait()
	return results
}

func (s *extractService) extractOne(ctx context.Context, scan ScanInput) *domain.RawRecord {
	out, err := s.parser.Parse(ctx, port.ParseInput{
		FileBytes:   scan.FileBytes,
		ContentType: scan.ContentType,
		SourceFile:  scan.FileName,
	})
	if err != nil {
		log.Printf("extractService.ExtractBatch: extraction failed for %s: %v", scan.FileName, err)
		return s.emptyRecord(scan.FileName)
	}

	raw, err := domain.NewRawRecord(s.schema, out.Fields, out.Confidence, scan.FileName, domain.ParseDocType(out.DocumentType))
	if err != nil {
		log.Printf("extractService.ExtractBatch: invalid extraction output for %s: %v", scan.FileName, err)
		return s.emptyRecord(scan.FileName)
	}

	log.Printf("extractService.ExtractBatch: extracted %s (doc_type=%s, model=%s)",
		scan.FileName, raw.DocType, out.ModelUsed)
	return raw
}

func (s *extractService) emptyRecord(fileName string) *domain.RawRecord {
	raw, _ := domain.NewRawRecord(s.schema, map[string]string{}, nil, fileName, domain.DocTypeUnknown)
	return raw
}
