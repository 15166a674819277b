package domain

// Strategy is the caller's disposition for one conflict.
type Strategy string

const (
	PreferLocal    Strategy = "prefer_local"
	PreferExternal Strategy = "prefer_external"
	Skip           Strategy = "skip"
)

// ResolutionChoice is one caller decision. FieldChoices applies to record
// conflicts only and allows a partial merge; any field not mentioned defaults
// to prefer_local.
type ResolutionChoice struct {
	ConflictID   string              `json:"conflict_id" binding:"required"`
	Strategy     Strategy            `json:"strategy" binding:"required"`
	FieldChoices map[string]Strategy `json:"field_choices,omitempty"`
}

// ApplyFailure records one conflict whose resolution could not be applied.
type ApplyFailure struct {
	ConflictID string `json:"conflict_id"`
	Error      string `json:"error"`
}

// ApplyResult reports a resolution batch outcome. Failures are per item;
// partial success is expected and must be visible, never collapsed into a
// single boolean.
type ApplyResult struct {
	Applied  int            `json:"applied"`
	Skipped  int            `json:"skipped"`
	Failed   int            `json:"failed"`
	Failures []ApplyFailure `json:"failures,omitempty"`
}
