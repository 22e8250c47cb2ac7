package domain

import (
	"time"

	"github.com/google/uuid"
)

// FieldValues maps schema field names to extracted string values. Instances
// built through NewFieldValues always carry every schema field, possibly empty.
type FieldValues map[string]string

// NewFieldValues projects src onto the schema: every schema field is present in
// the result (missing entries become ""), non-schema keys are dropped.
func NewFieldValues(schema *FieldSchema, src map[string]string) FieldValues {
	fv := make(FieldValues, schema.Len())
	for _, f := range schema.Fields() {
		fv[f] = src[f]
	}
	return fv
}

// Clone returns a deep copy.
func (fv FieldValues) Clone() FieldValues {
	out := make(FieldValues, len(fv))
	for k, v := range fv {
		out[k] = v
	}
	return out
}

// ConfidenceMap maps schema field names to confidence labels. Entries may be
// absent; the scorer and merger apply their own contextual defaults.
type ConfidenceMap map[string]Confidence

// NewConfidenceMap normalizes extractor-reported labels onto the schema:
// non-schema keys are dropped and unrecognized labels become low. Fields the
// extractor did not report stay absent.
func NewConfidenceMap(schema *FieldSchema, src map[string]string) ConfidenceMap {
	cm := make(ConfidenceMap, len(src))
	for k, v := range src {
		if schema.Has(k) {
			cm[k] = NormalizeConfidence(v)
		}
	}
	return cm
}

// Clone returns a deep copy.
func (cm ConfidenceMap) Clone() ConfidenceMap {
	out := make(ConfidenceMap, len(cm))
	for k, v := range cm {
		out[k] = v
	}
	return out
}

// RawRecord is one document's extraction result, unmerged. Immutable after
// construction; only the merger folds raw records into merged records.
type RawRecord struct {
	Fields     FieldValues   `json:"fields"`
	Confidence ConfidenceMap `json:"confidence"`
	SourceFile string        `json:"source_file"`
	DocType    DocType       `json:"doc_type"`
}

// NewRawRecord validates and normalizes one extraction result. A nil fields map
// is a collaborator contract violation and the only construction-time error;
// everything else degrades (unknown labels become low, unknown doc types become
// unknown, non-schema keys are dropped).
func NewRawRecord(schema *FieldSchema, fields, confidence map[string]string, sourceFile string, docType DocType) (*RawRecord, error) {
	if fields == nil {
		return nil, ErrMissingFields
	}
	if docType == "" {
		docType = DocTypeUnknown
	}
	return &RawRecord{
		Fields:     NewFieldValues(schema, fields),
		Confidence: NewConfidenceMap(schema, confidence),
		SourceFile: sourceFile,
		DocType:    docType,
	}, nil
}

// MergedRecord is the reconciled, possibly multi-document view of one
// identified person. The ID is a stable handle assigned at merge time; review
// edits and deletions target records by ID, never by position.
type MergedRecord struct {
	ID          uuid.UUID     `json:"id"`
	Fields      FieldValues   `json:"fields"`
	Confidence  ConfidenceMap `json:"confidence"`
	SourceFiles []string      `json:"source_files"`
	SourceTypes []DocType     `json:"source_types"`
	Confirmed   bool          `json:"confirmed"`
}

// QualityInfo is the derived match/completeness verdict for one record.
// Recomputed on demand, never cached across edits.
type QualityInfo struct {
	Pct       int          `json:"pct"`
	Label     QualityLabel `json:"label"`
	LowFields []string     `json:"low_fields"`
}

// ReviewEdit carries one record's human review outcome. Fields are
// authoritative as supplied: every schema field is overwritten from them
// (missing keys become empty).
type ReviewEdit struct {
	Fields    map[string]string `json:"fields"`
	Confirmed bool              `json:"confirmed"`
	Delete    bool              `json:"delete"`
}

// ReviewSummary reports what a review application changed.
type ReviewSummary struct {
	Updated            int      `json:"updated"`
	Confirmed          int      `json:"confirmed"`
	Deleted            int      `json:"deleted"`
	DeletedSourceFiles []string `json:"deleted_source_files,omitempty"`
}

// ScanMeta describes one stored scan object.
type ScanMeta struct {
	FileName    string   `json:"file_name"`
	Bucket      string   `json:"-"`
	Key         string   `json:"-"`
	FileType    FileType `json:"file_type"`
	ContentType string   `json:"content_type"`
	Size        int64    `json:"size"`
}

// BatchAudit is the persisted summary of one extraction batch.
type BatchAudit struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FileCount   int       `db:"file_count" json:"file_count"`
	RawCount    int       `db:"raw_count" json:"raw_count"`
	RecordCount int       `db:"record_count" json:"record_count"`
	NeedsReview int       `db:"needs_review" json:"needs_review"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ReviewAudit is the persisted outcome of one review application.
type ReviewAudit struct {
	ID        uuid.UUID `db:"id" json:"id"`
	BatchID   uuid.UUID `db:"batch_id" json:"batch_id"`
	Updated   int       `db:"updated" json:"updated"`
	Confirmed int       `db:"confirmed" json:"confirmed"`
	Deleted   int       `db:"deleted" json:"deleted"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
