package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAuthExpired: the workspace credential is missing or revoked. Fatal for
// the current run; the user must reconnect. No local state has been written
// when this surfaces.
var ErrAuthExpired = errors.New("workspace authorization expired")

// ErrExternalNotFound: the collection has no linked Notion database yet.
// Recover-all treats this as skip, not fail.
var ErrExternalNotFound = errors.New("collection has no linked workspace database")

// IncompleteResolutionError rejects a resolution batch whose choices do not
// cover every conflict exactly once. Nothing is applied.
type IncompleteResolutionError struct {
	Missing    []string
	Unknown    []string
	Duplicated []string
}

func (e *IncompleteResolutionError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("unresolved conflicts: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("unknown conflict ids: %s", strings.Join(e.Unknown, ", ")))
	}
	if len(e.Duplicated) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate choices for: %s", strings.Join(e.Duplicated, ", ")))
	}
	if len(parts) == 0 {
		return "incomplete resolution batch"
	}
	return "incomplete resolution batch: " + strings.Join(parts, "; ")
}

// RetrievalError wraps a transport failure while fetching external documents.
type RetrievalError struct {
	Collection string
	Err        error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieving %s documents: %v", e.Collection, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// LocalWriteError wraps a per-item store failure during resolution apply. It
// is recorded in the item's sync status and never aborts the batch.
type LocalWriteError struct {
	ConflictID string
	Err        error
}

func (e *LocalWriteError) Error() string {
	return fmt.Sprintf("applying resolution for conflict %s: %v", e.ConflictID, e.Err)
}

func (e *LocalWriteError) Unwrap() error { return e.Err }
