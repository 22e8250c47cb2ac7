package recon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meibo/internal/domain"
	"meibo/internal/recon"
)

func newRaw(t *testing.T, schema *domain.FieldSchema, fields, conf map[string]string, source string, docType domain.DocType) *domain.RawRecord {
	t.Helper()
	r, err := domain.NewRawRecord(schema, fields, conf, source, docType)
	require.NoError(t, err)
	return r
}

func seedMerged(t *testing.T, e *recon.Engine, fields, conf map[string]string, source string, docType domain.DocType) *domain.MergedRecord {
	t.Helper()
	out := e.Reconcile([]*domain.RawRecord{newRaw(t, e.Schema(), fields, conf, source, docType)})
	require.Len(t, out, 1)
	return out[0]
}

func TestMergeInto_FillsEmptyField(t *testing.T) {
	e := newEngine(t)

	existing := seedMerged(t, e,
		map[string]string{domain.FieldCertificateNumber: "1234567890"},
		nil, "cert.jpg", domain.DocTypeCertificate)
	incoming := newRaw(t, e.Schema(),
		map[string]string{
			domain.FieldCertificateNumber: "1234567890",
			domain.FieldPhoneNumber:       "090-1111-2222",
		},
		map[string]string{domain.FieldPhoneNumber: "high"},
		"contract.jpg", domain.DocTypeContract)

	e.MergeInto(existing, incoming)

	assert.Equal(t, "090-1111-2222", existing.Fields[domain.FieldPhoneNumber])
	assert.Equal(t, domain.ConfidenceHigh, existing.Confidence[domain.FieldPhoneNumber])
}

func TestMergeInto_KeepsExistingWhenIncomingEmpty(t *testing.T) {
	e := newEngine(t)

	existing := seedMerged(t, e,
		map[string]string{domain.FieldAddress: "福岡市博多区1-2-3"},
		map[string]string{domain.FieldAddress: "high"},
		"a.jpg", domain.DocTypeCertificate)
	incoming := newRaw(t, e.Schema(), map[string]string{}, nil, "b.jpg", domain.DocTypeContract)

	e.MergeInto(existing, incoming)

	assert.Equal(t, "福岡市博多区1-2-3", existing.Fields[domain.FieldAddress])
	assert.Equal(t, domain.ConfidenceHigh, existing.Confidence[domain.FieldAddress])
}

func TestMergeInto_HighConfidenceReplacesLow(t *testing.T) {
	e := newEngine(t)

	existing := seedMerged(t, e,
		map[string]string{domain.FieldGender: "男"},
		map[string]string{domain.FieldGender: "low"},
		"a.jpg", domain.DocTypeCertificate)
	incoming := newRaw(t, e.Schema(),
		map[string]string{domain.FieldGender: "女"},
		map[string]string{domain.FieldGender: "high"},
		"b.jpg", domain.DocTypeCertificate)

	e.MergeInto(existing, incoming)

	assert.Equal(t, "女", existing.Fields[domain.FieldGender])
	assert.Equal(t, domain.ConfidenceHigh, existing.Confidence[domain.FieldGender])
}

// "Longer string wins" on equal confidence is a truncation heuristic carried
// over from the original merge policy, not a correctness guarantee.
func TestMergeInto_LongerValueWinsOnEqualConfidence(t *testing.T) {
	e := newEngine(t)

	existing := seedMerged(t, e,
		map[string]string{domain.FieldAddress: "博多区"},
		map[string]string{domain.FieldAddress: "high"},
		"a.jpg", domain.DocTypeCertificate)
	incoming := newRaw(t, e.Schema(),
		map[string]string{domain.FieldAddress: "福岡市博多区1-2-3"},
		map[string]string{domain.FieldAddress: "high"},
		"b.jpg", domain.DocTypeCertificate)

	e.MergeInto(existing, incoming)

	assert.Equal(t, "福岡市博多区1-2-3", existing.Fields[domain.FieldAddress])
	assert.Equal(t, domain.ConfidenceHigh, existing.Confidence[domain.FieldAddress])
}

func TestMergeInto_KeepsExistingOtherwise(t *testing.T) {
	e := newEngine(t)

	// Low incoming never displaces high existing, regardless of length.
	existing := seedMerged(t, e,
		map[string]string{domain.FieldSurname: "佐藤"},
		map[string]string{domain.FieldSurname: "high"},
		"a.jpg", domain.DocTypeCertificate)
	incoming := newRaw(t, e.Schema(),
		map[string]string{domain.FieldSurname: "佐々木佐藤"},
		map[string]string{domain.FieldSurname: "low"},
		"b.jpg", domain.DocTypeCertificate)

	e.MergeInto(existing, incoming)
	assert.Equal(t, "佐藤", existing.Fields[domain.FieldSurname])

	// Shorter incoming on equal confidence keeps existing too.
	incoming2 := newRaw(t, e.Schema(),
		map[string]string{domain.FieldSurname: "佐"},
		map[string]string{domain.FieldSurname: "high"},
		"c.jpg", domain.DocTypeCertificate)
	e.MergeInto(existing, incoming2)
	assert.Equal(t, "佐藤", existing.Fields[domain.FieldSurname])
}

func TestMergeInto_MissingConfidenceDefaultsToLow(t *testing.T) {
	e := newEngine(t)

	// Incoming value without a confidence entry cannot displace a confident
	// existing value of equal length.
	existing := seedMerged(t, e,
		map[string]string{domain.FieldGender: "男"},
		map[string]string{domain.FieldGender: "high"},
		"a.jpg", domain.DocTypeCertificate)
	incoming := newRaw(t, e.Schema(),
		map[string]string{domain.FieldGender: "女"},
		nil,
		"b.jpg", domain.DocTypeCertificate)

	e.MergeInto(existing, incoming)
	assert.Equal(t, "男", existing.Fields[domain.FieldGender])
}

func TestMergeInto_ProvenanceAppendOnlyNoDuplicates(t *testing.T) {
	e := newEngine(t)

	existing := seedMerged(t, e,
		map[string]string{domain.FieldCertificateNumber: "1234567890"},
		nil, "cert.jpg", domain.DocTypeCertificate)
	incoming := newRaw(t, e.Schema(),
		map[string]string{domain.FieldCertificateNumber: "1234567890"},
		nil, "contract.jpg", domain.DocTypeContract)

	e.MergeInto(existing, incoming)
	e.MergeInto(existing, incoming)

	assert.Equal(t, []string{"cert.jpg", "contract.jpg"}, existing.SourceFiles)
	assert.Equal(t, []domain.DocType{domain.DocTypeCertificate, domain.DocTypeContract}, existing.SourceTypes)
	assert.Len(t, existing.SourceFiles, len(existing.SourceTypes))
}

func TestMergeInto_Idempotent(t *testing.T) {
	e := newEngine(t)

	existing := seedMerged(t, e,
		map[string]string{
			domain.FieldCertificateNumber: "1234567890",
			domain.FieldSurname:           "佐藤",
		},
		map[string]string{domain.FieldSurname: "low"},
		"a.jpg", domain.DocTypeCertificate)
	incoming := newRaw(t, e.Schema(),
		map[string]string{
			domain.FieldCertificateNumber: "1234567890",
			domain.FieldSurname:           "佐藤",
			domain.FieldGivenName:         "太郎",
		},
		map[string]string{domain.FieldSurname: "high", domain.FieldGivenName: "high"},
		"b.jpg", domain.DocTypeCertificate)

	e.MergeInto(existing, incoming)
	once := *existing
	onceFields := existing.Fields.Clone()
	onceConf := existing.Confidence.Clone()
	onceSources := append([]string(nil), existing.SourceFiles...)

	e.MergeInto(existing, incoming)

	assert.Equal(t, onceFields, existing.Fields)
	assert.Equal(t, onceConf, existing.Confidence)
	assert.Equal(t, onceSources, existing.SourceFiles)
	assert.Equal(t, once.Confirmed, existing.Confirmed)
}

func TestReconcile_MergesByCertificateNumber(t *testing.T) {
	e := newEngine(t)

	// Two documents carrying the same certificate number: one names the
	// person, the other adds a phone number.
	a := newRaw(t, e.Schema(),
		map[string]string{
			domain.FieldCertificateNumber: "1234567890",
			domain.FieldSurname:           "佐藤",
			domain.FieldGivenName:         "太郎",
		},
		map[string]string{domain.FieldSurname: "high", domain.FieldGivenName: "high"},
		"cert.jpg", domain.DocTypeCertificate)
	b := newRaw(t, e.Schema(),
		map[string]string{
			domain.FieldCertificateNumber: "1234567890",
			domain.FieldPhoneNumber:       "090-1111-2222",
		},
		map[string]string{domain.FieldPhoneNumber: "high"},
		"contract.jpg", domain.DocTypeContract)

	out := e.Reconcile([]*domain.RawRecord{a, b})

	require.Len(t, out, 1)
	assert.Equal(t, "佐藤", out[0].Fields[domain.FieldSurname])
	assert.Equal(t, "090-1111-2222", out[0].Fields[domain.FieldPhoneNumber])
	assert.Equal(t, []string{"cert.jpg", "contract.jpg"}, out[0].SourceFiles)
}
