package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"meibo/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// fieldLabels maps schema field names to the Japanese column headers the
// operators' downstream spreadsheets expect.
var fieldLabels = map[string]string{
	domain.FieldServiceCategory:          "事業",
	domain.FieldSurname:                  "利用者_姓",
	domain.FieldGivenName:                "利用者_名",
	domain.FieldSurnameKana:              "利用者_せい",
	domain.FieldGivenNameKana:            "利用者_めい",
	domain.FieldGender:                   "性別",
	domain.FieldBirthDate:                "生年月日",
	domain.FieldGuardianSurname:          "保護者_姓",
	domain.FieldGuardianGivenName:        "保護者_名",
	domain.FieldContractDate:             "契約日",
	domain.FieldCertificateType:          "受給者証タイプ",
	domain.FieldCertificateNumber:        "受給者証番号",
	domain.FieldGrantStartDate:           "支給決定開始日",
	domain.FieldGrantEndDate:             "支給決定満了日",
	domain.FieldMonitoringInitialMonths:  "モニタリング_当初Nか月",
	domain.FieldMonitoringIntervalMonths: "モニタリング_満了月からNか月ごと",
	domain.FieldPostalCode:               "郵便番号",
	domain.FieldPrefecture:               "都道府県",
	domain.FieldAddress:                  "住所",
	domain.FieldPhoneNumber:              "電話番号",
	domain.FieldEmail:                    "メールアドレス",
}

// qualityLabels maps verdicts to the display strings used in the export.
var qualityLabels = map[domain.QualityLabel]string{
	domain.QualityOK:             "OK",
	domain.QualityNeedsReview:    "要確認",
	domain.QualityNeedsReviewLow: "要確認(低)",
}

// FieldLabel returns the Japanese column header for a schema field, falling
// back to the field name itself.
func FieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

// QualityLabel returns the display string for a quality verdict.
func QualityLabel(label domain.QualityLabel) string {
	if s, ok := qualityLabels[label]; ok {
		return s
	}
	return string(label)
}

// Writer exports merged records as CSV. Columns are 判定 and 照合率 followed
// by the schema fields in schema order.
type Writer struct {
	csv    *csv.Writer
	schema *domain.FieldSchema
}

// NewWriter creates a Writer that writes CSV rows for the given schema to w.
func NewWriter(w io.Writer, schema *domain.FieldSchema) *Writer {
	return &Writer{csv: csv.NewWriter(w), schema: schema}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	header := make([]string, 0, w.schema.Len()+2)
	header = append(header, "判定", "照合率")
	for _, f := range w.schema.Fields() {
		header = append(header, FieldLabel(f))
	}
	return w.csv.Write(header)
}

// WriteRecord writes one merged record with its quality verdict.
func (w *Writer) WriteRecord(rec *domain.MergedRecord, quality domain.QualityInfo) error {
	row := make([]string, 0, w.schema.Len()+2)
	row = append(row, QualityLabel(quality.Label), strconv.Itoa(quality.Pct)+"%")
	for _, f := range w.schema.Fields() {
		row = append(row, rec.Fields[f])
	}
	return w.csv.Write(row)
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
