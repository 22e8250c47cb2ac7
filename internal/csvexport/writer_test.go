package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meibo/internal/domain"
)

func testSchema(t *testing.T) *domain.FieldSchema {
	t.Helper()
	return domain.DefaultFieldSchema()
}

func TestWriteHeader(t *testing.T) {
	schema := testSchema(t)

	var buf bytes.Buffer
	w := NewWriter(&buf, schema)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, schema.Len()+2)
	assert.Equal(t, "判定", row[0])
	assert.Equal(t, "照合率", row[1])
	assert.Equal(t, "事業", row[2])
	assert.Equal(t, "メールアドレス", row[len(row)-1])
}

func TestWriteRecord(t *testing.T) {
	schema := testSchema(t)

	rec := &domain.MergedRecord{
		ID: uuid.New(),
		Fields: domain.NewFieldValues(schema, map[string]string{
			domain.FieldSurname:           "佐藤",
			domain.FieldGivenName:         "太郎",
			domain.FieldCertificateNumber: "1234567890",
		}),
		Confidence: domain.ConfidenceMap{},
	}
	quality := domain.QualityInfo{Pct: 94, Label: domain.QualityNeedsReview}

	var buf bytes.Buffer
	w := NewWriter(&buf, schema)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteRecord(rec, quality))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	header, row := rows[0], rows[1]
	assert.Equal(t, "要確認", row[0])
	assert.Equal(t, "94%", row[1])

	byHeader := map[string]string{}
	for i := range header {
		byHeader[header[i]] = row[i]
	}
	assert.Equal(t, "佐藤", byHeader["利用者_姓"])
	assert.Equal(t, "太郎", byHeader["利用者_名"])
	assert.Equal(t, "1234567890", byHeader["受給者証番号"])
	assert.Equal(t, "", byHeader["住所"])
}

func TestQualityLabelStrings(t *testing.T) {
	assert.Equal(t, "OK", QualityLabel(domain.QualityOK))
	assert.Equal(t, "要確認", QualityLabel(domain.QualityNeedsReview))
	assert.Equal(t, "要確認(低)", QualityLabel(domain.QualityNeedsReviewLow))
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Batch Export", "My_Batch_Export"},
		{"batch/2024:08*24", "batch_2024_08_24"},
		{"___already___clean___", "already_clean"},
		{"日本語のみ", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeFilename(tc.in), tc.in)
	}
}

func TestBuildFilename(t *testing.T) {
	name := BuildFilename("meibo batch", "csv")
	assert.Regexp(t, `^meibo_batch_\d{4}-\d{2}-\d{2}\.csv$`, name)

	name = BuildFilename("meibo batch", "xlsx")
	assert.Regexp(t, `\.xlsx$`, name)
}
