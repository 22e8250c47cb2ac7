package recon

import (
	"strings"

	"github.com/google/uuid"

	"meibo/internal/domain"
)

// MergeInto folds an incoming raw record into an existing merged record, field
// by field:
//
//  1. existing empty, incoming non-empty: adopt the incoming value and label
//  2. incoming empty: keep existing
//  3. both non-empty:
//     a. incoming high over existing low: adopt value, upgrade to high
//     b. equal labels and incoming strictly longer: adopt value, keep label
//        (longer strings are assumed less truncated — a heuristic, not a
//        verified invariant)
//     c. otherwise keep existing
//
// Provenance is append-only: a source file not yet recorded is appended along
// with its document type. Merging the same raw record twice is a no-op the
// second time.
func (e *Engine) MergeInto(existing *domain.MergedRecord, incoming *domain.RawRecord) {
	for _, f := range e.schema.Fields() {
		newVal := strings.TrimSpace(incoming.Fields[f])
		oldVal := strings.TrimSpace(existing.Fields[f])

		newConf, ok := incoming.Confidence[f]
		if !ok {
			newConf = domain.ConfidenceLow
		}
		oldConf, ok := existing.Confidence[f]
		if !ok {
			oldConf = domain.ConfidenceLow
		}

		switch {
		case oldVal == "" && newVal != "":
			existing.Fields[f] = newVal
			existing.Confidence[f] = newConf
		case oldVal != "" && newVal != "":
			if newConf == domain.ConfidenceHigh && oldConf == domain.ConfidenceLow {
				existing.Fields[f] = newVal
				existing.Confidence[f] = domain.ConfidenceHigh
			} else if newConf == oldConf && len(newVal) > len(oldVal) {
				existing.Fields[f] = newVal
			}
		}
	}

	if incoming.SourceFile == "" {
		return
	}
	for _, src := range existing.SourceFiles {
		if src == incoming.SourceFile {
			return
		}
	}
	existing.SourceFiles = append(existing.SourceFiles, incoming.SourceFile)
	existing.SourceTypes = append(existing.SourceTypes, incoming.DocType)
}

// promote turns a single raw record into a standalone merged record with a
// fresh stable handle.
func (e *Engine) promote(raw *domain.RawRecord) *domain.MergedRecord {
	return &domain.MergedRecord{
		ID:          uuid.New(),
		Fields:      raw.Fields.Clone(),
		Confidence:  raw.Confidence.Clone(),
		SourceFiles: []string{raw.SourceFile},
		SourceTypes: []domain.DocType{raw.DocType},
	}
}

// Reconcile groups raw records that describe the same person and merges each
// group into one record. Two stages:
//
// Stage 1 walks the input in order and groups by the strict PrimaryKey;
// keyless records are set aside. Stage 2 builds a reverse index from the
// stage-1 groups' FallbackKey and gives the set-aside records one more chance
// to join an existing group by name alone. The looser key is only ever tried
// for records that failed stage 1, so it cannot merge records whose strict
// keys disagreed.
//
// Output order is first-seen group order followed by the still-unmatched
// records, each promoted to a standalone merged record.
func (e *Engine) Reconcile(raws []*domain.RawRecord) []*domain.MergedRecord {
	groups := make(map[MatchKey]*domain.MergedRecord)
	var order []MatchKey
	var unmatched []*domain.RawRecord

	for _, raw := range raws {
		key, ok := e.PrimaryKey(raw.Fields)
		if !ok {
			unmatched = append(unmatched, raw)
			continue
		}
		if g, exists := groups[key]; exists {
			e.MergeInto(g, raw)
		} else {
			groups[key] = e.promote(raw)
			order = append(order, key)
		}
	}

	nameIndex := make(map[NameKey]MatchKey, len(order))
	for _, key := range order {
		if nk, ok := e.FallbackKey(groups[key].Fields); ok {
			nameIndex[nk] = key
		}
	}

	var stillUnmatched []*domain.RawRecord
	for _, raw := range unmatched {
		if nk, ok := e.FallbackKey(raw.Fields); ok {
			if gkey, hit := nameIndex[nk]; hit {
				e.MergeInto(groups[gkey], raw)
				continue
			}
		}
		stillUnmatched = append(stillUnmatched, raw)
	}

	out := make([]*domain.MergedRecord, 0, len(order)+len(stillUnmatched))
	for _, key := range order {
		out = append(out, groups[key])
	}
	for _, raw := range stillUnmatched {
		out = append(out, e.promote(raw))
	}
	return out
}
