package recon

import (
	"strings"

	"meibo/internal/domain"
)

// KeyKind discriminates the variants of a MatchKey.
type KeyKind int

const (
	// KeyCertificate identifies a record by its certificate number. Two
	// documents carrying the same certificate number describe the same person
	// by definition.
	KeyCertificate KeyKind = iota + 1
	// KeyNameDOB identifies a record by surname, given name, and birth date.
	KeyNameDOB
)

// MatchKey is the strict identity of a record, used for first-pass grouping.
// It is a comparable tagged value rather than a formatted string so that
// certificate numbers can never collide with name/birth-date combinations.
type MatchKey struct {
	Kind      KeyKind
	ID        string
	Surname   string
	GivenName string
	BirthDate string
}

// NameKey is the looser second-pass identity: surname and given name only.
// It deliberately drops the birth date so that document types that never print
// one (contract pages) can still join a certificate's group.
type NameKey struct {
	Surname   string
	GivenName string
}

// PrimaryKey derives the strict identity key for a record. The certificate
// number wins when present; otherwise surname + given name + birth date must all
// be non-empty. Records with neither are unmatched at this stage.
func (e *Engine) PrimaryKey(fields domain.FieldValues) (MatchKey, bool) {
	if cert := strings.TrimSpace(fields[domain.FieldCertificateNumber]); cert != "" {
		return MatchKey{Kind: KeyCertificate, ID: cert}, true
	}

	surname := strings.TrimSpace(fields[domain.FieldSurname])
	given := strings.TrimSpace(fields[domain.FieldGivenName])
	birth := strings.TrimSpace(fields[domain.FieldBirthDate])
	if surname != "" && given != "" && birth != "" {
		return MatchKey{Kind: KeyNameDOB, Surname: surname, GivenName: given, BirthDate: birth}, true
	}

	return MatchKey{}, false
}

// FallbackKey derives the name-only identity key, or false when either name
// part is empty.
func (e *Engine) FallbackKey(fields domain.FieldValues) (NameKey, bool) {
	surname := strings.TrimSpace(fields[domain.FieldSurname])
	given := strings.TrimSpace(fields[domain.FieldGivenName])
	if surname == "" || given == "" {
		return NameKey{}, false
	}
	return NameKey{Surname: surname, GivenName: given}, true
}
