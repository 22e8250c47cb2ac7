package domain

// FileType represents the allowed file types for scan upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// Confidence is the per-field trust signal reported by the extractor.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// NormalizeConfidence maps an extractor-reported label onto the two recognized
// values. Anything that is not exactly "high" is treated as low.
func NormalizeConfidence(label string) Confidence {
	if label == string(ConfidenceHigh) {
		return ConfidenceHigh
	}
	return ConfidenceLow
}

// DocType classifies the source document of an extraction.
type DocType string

const (
	DocTypeCertificate DocType = "certificate"
	DocTypeContract    DocType = "contract"
	DocTypeUnknown     DocType = "unknown"
)

// ParseDocType maps an extractor-reported document type onto a DocType,
// defaulting to unknown.
func ParseDocType(s string) DocType {
	switch DocType(s) {
	case DocTypeCertificate, DocTypeContract:
		return DocType(s)
	default:
		return DocTypeUnknown
	}
}

// QualityLabel is the three-level review verdict derived from a record's score.
type QualityLabel string

const (
	QualityOK             QualityLabel = "ok"
	QualityNeedsReview    QualityLabel = "needs_review"
	QualityNeedsReviewLow QualityLabel = "needs_review_low"
)
