package domain

// RunStatus is the recovery workflow state for one collection.
type RunStatus string

const (
	RunRetrieving         RunStatus = "retrieving"
	RunAwaitingResolution RunStatus = "awaiting_resolution"
	RunComplete           RunStatus = "complete"
	RunFailed             RunStatus = "failed"
)

// RecoveryRun is the transient result of one recovery invocation for one
// collection. When Status is awaiting_resolution, Conflicts is the snapshot
// the caller must echo back with its choices; nothing is held server-side.
type RecoveryRun struct {
	Collection     string       `json:"collection"`
	Status         RunStatus    `json:"status"`
	RetrievedCount int          `json:"retrieved_count"`
	MatchedCount   int          `json:"matched_count"`
	NewCount       int          `json:"new_count"`
	ConflictCount  int          `json:"conflict_count"`
	AutoApplied    int          `json:"auto_applied"`
	Conflicts      []Conflict   `json:"conflicts,omitempty"`
	Apply          *ApplyResult `json:"apply,omitempty"`
}

// RecoverAllResult is the aggregate of a sequential recover-all loop. The
// three outcome buckets are reported distinctly, never conflated.
type RecoverAllResult struct {
	Succeeded []string                `json:"succeeded"`
	Failed    []string                `json:"failed"`
	Skipped   []string                `json:"skipped"`
	Runs      map[string]*RecoveryRun `json:"runs"`
	Errors    map[string]string       `json:"errors,omitempty"`
}
