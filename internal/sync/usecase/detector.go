package usecase

import (
	"fmt"

	recorddomain "lifehub-backend/internal/record/domain"
	"lifehub-backend/internal/sync/domain"

	"github.com/google/uuid"
)

// Detection is the output of conflict detection for one collection run.
// AutoApply pairs are safe to overwrite from the external side without asking
// anyone; LocalAhead pairs only need an out-of-band push back to the
// workspace; InSync counts pairs needing nothing at all.
type Detection struct {
	Conflicts  []domain.Conflict
	AutoApply  []MatchedPair
	LocalAhead []MatchedPair
	InSync     int
}

// DetectConflicts classifies matched pairs and unmatched documents.
//
// A pair only becomes a conflict when both sides changed since the last
// successful sync AND the shared fields actually differ. Exactly one
// differing field yields a field conflict; two or more yield a record
// conflict. Unmatched documents become missing conflicts. The result is
// ordered missing, then record, then field, stable within each kind.
func DetectConflicts(collection string, pairs []MatchedPair, unmatched []domain.ExternalDocument) Detection {
	schema, _ := recorddomain.SchemaFor(collection)

	var det Detection
	var recordConflicts, fieldConflicts []domain.Conflict

	for _, doc := range unmatched {
		det.Conflicts = append(det.Conflicts, domain.Conflict{
			ID:                uuid.New().String(),
			Type:              domain.ConflictMissing,
			Collection:        collection,
			ExternalID:        doc.ExternalID,
			ExternalValue:     snapshotExternal(schema, doc),
			ExternalTimestamp: doc.LastEditedAt,
		})
	}

	for _, pair := range pairs {
		localChanged := pair.Status == nil || pair.Status.LocalSyncedAt == nil ||
			pair.Local.UpdatedAt.After(*pair.Status.LocalSyncedAt)
		externalChanged := pair.Status == nil || pair.Status.ExternalSyncedAt == nil ||
			pair.External.LastEditedAt.After(*pair.Status.ExternalSyncedAt)

		switch {
		case !localChanged && !externalChanged:
			det.InSync++
		case !localChanged:
			// No local edits since last sync: the external version wins
			// silently, never a conflict.
			det.AutoApply = append(det.AutoApply, pair)
		case !externalChanged:
			det.LocalAhead = append(det.LocalAhead, pair)
		default:
			diffs := diffFields(schema, pair)
			switch len(diffs) {
			case 0:
				// Both timestamps moved but content converged; refresh the
				// bookkeeping so the pair is not re-inspected next run.
				det.AutoApply = append(det.AutoApply, pair)
			case 1:
				name := diffs[0]
				localVal := fieldValue(schema, pair, name, true)
				externalVal := fieldValue(schema, pair, name, false)
				localAt := pair.Local.UpdatedAt
				fieldConflicts = append(fieldConflicts, domain.Conflict{
					ID:                uuid.New().String(),
					Type:              domain.ConflictField,
					Collection:        collection,
					LocalID:           pair.Local.ID,
					ExternalID:        pair.External.ExternalID,
					Field:             name,
					LocalValue:        localVal,
					ExternalValue:     externalVal,
					LocalTimestamp:    &localAt,
					ExternalTimestamp: pair.External.LastEditedAt,
					Description:       fmt.Sprintf("%s differs: local %q, notion %q", name, normalizeValue(localVal), normalizeValue(externalVal)),
				})
			default:
				localAt := pair.Local.UpdatedAt
				recordConflicts = append(recordConflicts, domain.Conflict{
					ID:                uuid.New().String(),
					Type:              domain.ConflictRecord,
					Collection:        collection,
					LocalID:           pair.Local.ID,
					ExternalID:        pair.External.ExternalID,
					LocalValue:        snapshotLocal(schema, pair.Local),
					ExternalValue:     snapshotExternal(schema, pair.External),
					LocalTimestamp:    &localAt,
					ExternalTimestamp: pair.External.LastEditedAt,
				})
			}
		}
	}

	det.Conflicts = append(det.Conflicts, recordConflicts...)
	det.Conflicts = append(det.Conflicts, fieldConflicts...)
	return det
}

// diffFields returns the names of shared fields whose values differ, title
// first, then schema order.
func diffFields(schema recorddomain.Schema, pair MatchedPair) []string {
	var diffs []string
	if !valuesEqual(pair.Local.Title, pair.External.Title) {
		diffs = append(diffs, titleField)
	}
	for _, name := range schema.FieldNames() {
		var localVal any
		if pair.Local.Fields != nil {
			localVal = pair.Local.Fields[name]
		}
		if !valuesEqual(localVal, pair.External.Properties[name]) {
			diffs = append(diffs, name)
		}
	}
	return diffs
}

func fieldValue(schema recorddomain.Schema, pair MatchedPair, name string, local bool) any {
	if name == titleField {
		if local {
			return pair.Local.Title
		}
		return pair.External.Title
	}
	if local {
		if pair.Local.Fields == nil {
			return nil
		}
		return pair.Local.Fields[name]
	}
	return pair.External.Properties[name]
}
