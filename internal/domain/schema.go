package domain

import "fmt"

// Canonical field names for the extraction schema. Values are Japanese document
// text; the names are stable identifiers used for matching, export column order,
// and the AI extraction prompt.
const (
	FieldServiceCategory          = "service_category"
	FieldSurname                  = "surname"
	FieldGivenName                = "given_name"
	FieldSurnameKana              = "surname_kana"
	FieldGivenNameKana            = "given_name_kana"
	FieldGender                   = "gender"
	FieldBirthDate                = "birth_date"
	FieldGuardianSurname          = "guardian_surname"
	FieldGuardianGivenName        = "guardian_given_name"
	FieldContractDate             = "contract_date"
	FieldCertificateType          = "certificate_type"
	FieldCertificateNumber        = "certificate_number"
	FieldGrantStartDate           = "grant_start_date"
	FieldGrantEndDate             = "grant_end_date"
	FieldMonitoringInitialMonths  = "monitoring_initial_months"
	FieldMonitoringIntervalMonths = "monitoring_interval_months"
	FieldPostalCode               = "postal_code"
	FieldPrefecture               = "prefecture"
	FieldAddress                  = "address"
	FieldPhoneNumber              = "phone_number"
	FieldEmail                    = "email"
)

// FieldSchema is the ordered set of recognized field names plus the subset that
// is required. The order defines column order everywhere (export, prompts, views).
type FieldSchema struct {
	ordered  []string
	required map[string]struct{}
}

// NewFieldSchema builds a schema from an ordered field list and a required subset.
// Every required field must appear in the ordered list.
func NewFieldSchema(ordered, required []string) (*FieldSchema, error) {
	inOrder := make(map[string]struct{}, len(ordered))
	for _, f := range ordered {
		inOrder[f] = struct{}{}
	}
	req := make(map[string]struct{}, len(required))
	for _, f := range required {
		if _, ok := inOrder[f]; !ok {
			return nil, fmt.Errorf("required field %q is not in the ordered field list", f)
		}
		req[f] = struct{}{}
	}
	return &FieldSchema{
		ordered:  append([]string(nil), ordered...),
		required: req,
	}, nil
}

// DefaultFieldSchema returns the service-user roster schema: the 21 columns of
// the exported roster, 13 of them required.
func DefaultFieldSchema() *FieldSchema {
	s, err := NewFieldSchema(
		[]string{
			FieldServiceCategory,
			FieldSurname,
			FieldGivenName,
			FieldSurnameKana,
			FieldGivenNameKana,
			FieldGender,
			FieldBirthDate,
			FieldGuardianSurname,
			FieldGuardianGivenName,
			FieldContractDate,
			FieldCertificateType,
			FieldCertificateNumber,
			FieldGrantStartDate,
			FieldGrantEndDate,
			FieldMonitoringInitialMonths,
			FieldMonitoringIntervalMonths,
			FieldPostalCode,
			FieldPrefecture,
			FieldAddress,
			FieldPhoneNumber,
			FieldEmail,
		},
		[]string{
			FieldServiceCategory,
			FieldSurname,
			FieldGivenName,
			FieldSurnameKana,
			FieldGivenNameKana,
			FieldGender,
			FieldContractDate,
			FieldCertificateType,
			FieldCertificateNumber,
			FieldGrantStartDate,
			FieldGrantEndDate,
			FieldMonitoringInitialMonths,
			FieldMonitoringIntervalMonths,
		},
	)
	if err != nil {
		panic(err) // static field lists above; unreachable
	}
	return s
}

// Fields returns the ordered field names. The returned slice is a copy.
func (s *FieldSchema) Fields() []string {
	return append([]string(nil), s.ordered...)
}

// Len returns the number of fields in the schema.
func (s *FieldSchema) Len() int {
	return len(s.ordered)
}

// Has reports whether name is a schema field.
func (s *FieldSchema) Has(name string) bool {
	for _, f := range s.ordered {
		if f == name {
			return true
		}
	}
	return false
}

// IsRequired reports whether name is a required field.
func (s *FieldSchema) IsRequired(name string) bool {
	_, ok := s.required[name]
	return ok
}

// Weight returns the scoring weight for a field: 2 for required fields, 1 otherwise.
func (s *FieldSchema) Weight(name string) int {
	if s.IsRequired(name) {
		return 2
	}
	return 1
}
