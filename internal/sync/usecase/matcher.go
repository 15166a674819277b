package usecase

import (
	"strings"

	recorddomain "lifehub-backend/internal/record/domain"
	"lifehub-backend/internal/sync/domain"
)

// MatchedPair is a local record paired with the external document that
// mirrors it. Status is nil when the pair was made by title fallback and the
// record has never synced before.
type MatchedPair struct {
	Local    *recorddomain.Record
	Status   *domain.SyncStatus
	External domain.ExternalDocument
}

// MatchResult buckets one retrieval batch: Pairs for documents with a local
// counterpart, Unmatched for external-only documents.
type MatchResult struct {
	Pairs     []MatchedPair
	Unmatched []domain.ExternalDocument
}

// MatchRecords pairs external documents with local records. The external id
// recorded by a prior sync is the primary key; a case-insensitive normalized
// title is the fallback, used only when exactly one unlinked local record
// carries that title. Ambiguous titles are left unmatched so a human decides.
func MatchRecords(external []domain.ExternalDocument, local []*recorddomain.Record, statuses []*domain.SyncStatus) MatchResult {
	recordByID := make(map[string]*recorddomain.Record, len(local))
	for _, rec := range local {
		recordByID[rec.ID] = rec
	}

	statusByLocalID := make(map[string]*domain.SyncStatus, len(statuses))
	statusByExternalID := make(map[string]*domain.SyncStatus)
	for _, st := range statuses {
		statusByLocalID[st.LocalID] = st
		if st.ExternalID != nil && *st.ExternalID != "" {
			statusByExternalID[*st.ExternalID] = st
		}
	}

	// Fallback pool: local records with no external linkage yet. Titles
	// shared by more than one record are poisoned, not first-come-first-served.
	titleCandidates := make(map[string][]*recorddomain.Record)
	for _, rec := range local {
		if st, ok := statusByLocalID[rec.ID]; ok && st.ExternalID != nil && *st.ExternalID != "" {
			continue
		}
		key := normalizeTitle(rec.Title)
		titleCandidates[key] = append(titleCandidates[key], rec)
	}

	claimed := make(map[string]bool)
	var result MatchResult
	for _, doc := range external {
		if st, ok := statusByExternalID[doc.ExternalID]; ok {
			if rec, ok := recordByID[st.LocalID]; ok {
				result.Pairs = append(result.Pairs, MatchedPair{Local: rec, Status: st, External: doc})
				continue
			}
			// Linked record was deleted locally; treat the document as new.
			result.Unmatched = append(result.Unmatched, doc)
			continue
		}

		candidates := titleCandidates[normalizeTitle(doc.Title)]
		if len(candidates) == 1 && !claimed[candidates[0].ID] {
			rec := candidates[0]
			claimed[rec.ID] = true
			result.Pairs = append(result.Pairs, MatchedPair{Local: rec, Status: statusByLocalID[rec.ID], External: doc})
			continue
		}
		result.Unmatched = append(result.Unmatched, doc)
	}
	return result
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
