package domain

import "time"

// ConflictType classifies a detected divergence.
type ConflictType string

const (
	// ConflictMissing: the document exists externally with no local match.
	ConflictMissing ConflictType = "missing"
	// ConflictRecord: both sides changed and two or more fields differ.
	ConflictRecord ConflictType = "record"
	// ConflictField: both sides changed and exactly one field differs.
	ConflictField ConflictType = "field"
)

// Conflict is one divergence requiring a resolution. Conflicts are produced
// fresh per recovery run and held client-side until resolutions are
// submitted; they are never persisted.
type Conflict struct {
	ID                string       `json:"id"`
	Type              ConflictType `json:"type"`
	Collection        string       `json:"collection"`
	LocalID           string       `json:"local_id,omitempty"`
	ExternalID        string       `json:"external_id"`
	Field             string       `json:"field,omitempty"`
	LocalValue        any          `json:"local_value,omitempty"`
	ExternalValue     any          `json:"external_value"`
	LocalTimestamp    *time.Time   `json:"local_timestamp,omitempty"`
	ExternalTimestamp time.Time    `json:"external_timestamp"`
	Description       string       `json:"description,omitempty"`
}
