package usecase

import (
	"encoding/json"
	"strconv"

	recorddomain "lifehub-backend/internal/record/domain"
	"lifehub-backend/internal/sync/domain"
)

// titleField is the pseudo-field name under which the primary display field
// participates in field comparison, snapshots and field_choices.
const titleField = "title"

// normalizeValue maps a weakly-typed field value to a canonical string so
// values that crossed a JSON or jsonb round-trip still compare equal.
func normalizeValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func valuesEqual(a, b any) bool {
	return normalizeValue(a) == normalizeValue(b)
}

// snapshotLocal flattens a record to the comparable field bag, title included.
func snapshotLocal(schema recorddomain.Schema, rec *recorddomain.Record) map[string]any {
	snap := map[string]any{titleField: rec.Title}
	for _, name := range schema.FieldNames() {
		if rec.Fields != nil {
			snap[name] = rec.Fields[name]
		}
	}
	return snap
}

// snapshotExternal flattens an external document the same way.
func snapshotExternal(schema recorddomain.Schema, doc domain.ExternalDocument) map[string]any {
	snap := map[string]any{titleField: doc.Title}
	for _, name := range schema.FieldNames() {
		snap[name] = doc.Properties[name]
	}
	return snap
}

// asFieldBag recovers a snapshot map from a conflict value, which arrives as
// map[string]any both in-process and after a client JSON round-trip.
func asFieldBag(v any) (map[string]any, bool) {
	bag, ok := v.(map[string]any)
	return bag, ok
}
