package domain

import "time"

// ExternalDocument is one record as retrieved from the Notion workspace,
// flattened to the collection's shared-field shape. It lives only for the
// duration of a recovery run.
type ExternalDocument struct {
	ExternalID   string         `json:"external_id"`
	Title        string         `json:"title"`
	Properties   map[string]any `json:"properties"`
	LastEditedAt time.Time      `json:"last_edited_at"`
}
