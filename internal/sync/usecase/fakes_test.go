package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	recorddomain "lifehub-backend/internal/record/domain"
	"lifehub-backend/internal/sync/domain"

	"github.com/google/uuid"
)

// fakeRecordRepo is an in-memory RecordRepository with per-id failure
// injection for the partial-failure tests.
type fakeRecordRepo struct {
	records      []*recorddomain.Record
	failUpdateID string
	failCreate   bool
}

func (f *fakeRecordRepo) Create(rec *recorddomain.Record) error {
	if f.failCreate {
		return errors.New("insert rejected")
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Fields == nil {
		rec.Fields = recorddomain.FieldMap{}
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = time.Now()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRecordRepo) FindByID(id string) (*recorddomain.Record, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (f *fakeRecordRepo) FindByUserAndCollection(userID, collection string) ([]*recorddomain.Record, error) {
	var out []*recorddomain.Record
	for _, rec := range f.records {
		if rec.UserID == userID && rec.Collection == collection {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) Update(rec *recorddomain.Record) error {
	if f.failUpdateID != "" && rec.ID == f.failUpdateID {
		return errors.New("write rejected")
	}
	rec.UpdatedAt = time.Now()
	for i, existing := range f.records {
		if existing.ID == rec.ID {
			f.records[i] = rec
			return nil
		}
	}
	return fmt.Errorf("record %s not found", rec.ID)
}

func (f *fakeRecordRepo) Delete(id string) error {
	for i, rec := range f.records {
		if rec.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakeStatusRepo is an in-memory SyncStatusRepository. stateLog records the
// state carried by every upsert, in order.
type fakeStatusRepo struct {
	statuses []*domain.SyncStatus
	stateLog []domain.SyncState
}

func (f *fakeStatusRepo) Upsert(status *domain.SyncStatus) error {
	f.stateLog = append(f.stateLog, status.State)
	status.UpdatedAt = time.Now()
	for i, existing := range f.statuses {
		if existing.UserID == status.UserID && existing.Collection == status.Collection && existing.LocalID == status.LocalID {
			status.ID = existing.ID
			f.statuses[i] = status
			return nil
		}
	}
	if status.ID == "" {
		status.ID = uuid.New().String()
	}
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeStatusRepo) FindByUserAndCollection(userID, collection string) ([]*domain.SyncStatus, error) {
	var out []*domain.SyncStatus
	for _, st := range f.statuses {
		if st.UserID == userID && st.Collection == collection {
			out = append(out, st)
		}
	}
	return out, nil
}

func (f *fakeStatusRepo) FindByLocalID(userID, collection, localID string) (*domain.SyncStatus, error) {
	for _, st := range f.statuses {
		if st.UserID == userID && st.Collection == collection && st.LocalID == localID {
			return st, nil
		}
	}
	return nil, nil
}

func (f *fakeStatusRepo) DeleteByLocalID(userID, collection, localID string) error {
	for i, st := range f.statuses {
		if st.UserID == userID && st.Collection == collection && st.LocalID == localID {
			f.statuses = append(f.statuses[:i], f.statuses[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakeConnectionRepo is an in-memory ConnectionRepository.
type fakeConnectionRepo struct {
	connections map[string]*domain.WorkspaceConnection
	links       map[string]*domain.CollectionLink
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{
		connections: map[string]*domain.WorkspaceConnection{},
		links:       map[string]*domain.CollectionLink{},
	}
}

func (f *fakeConnectionRepo) SaveConnection(conn *domain.WorkspaceConnection) error {
	f.connections[conn.UserID] = conn
	return nil
}

func (f *fakeConnectionRepo) FindConnection(userID string) (*domain.WorkspaceConnection, error) {
	return f.connections[userID], nil
}

func (f *fakeConnectionRepo) SaveLink(link *domain.CollectionLink) error {
	f.links[link.UserID+"/"+link.Collection] = link
	return nil
}

func (f *fakeConnectionRepo) FindLink(userID, collection string) (*domain.CollectionLink, error) {
	return f.links[userID+"/"+collection], nil
}

func (f *fakeConnectionRepo) FindLinks(userID string) ([]*domain.CollectionLink, error) {
	var out []*domain.CollectionLink
	for _, link := range f.links {
		if link.UserID == userID {
			out = append(out, link)
		}
	}
	return out, nil
}

// fakeSource serves canned document batches keyed by cursor and counts calls.
type fakeSource struct {
	batches map[string]fakeBatch
	calls   int
	err     error
}

type fakeBatch struct {
	docs []domain.ExternalDocument
	next string
}

func (f *fakeSource) FetchPage(ctx context.Context, token, databaseID, collection, cursor string) ([]domain.ExternalDocument, string, error) {
	f.calls++
	if f.err != nil {
		return nil, "", f.err
	}
	batch, ok := f.batches[cursor]
	if !ok {
		return nil, "", nil
	}
	return batch.docs, batch.next, nil
}

// fakeWriter records every push.
type fakeWriter struct {
	upserts []fakeUpsert
	err     error
}

type fakeUpsert struct {
	externalID string
	title      string
	fields     map[string]any
}

func (f *fakeWriter) UpsertDocument(ctx context.Context, token, databaseID, externalID, collection, title string, fields map[string]any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if externalID == "" {
		externalID = "notion-" + uuid.New().String()
	}
	f.upserts = append(f.upserts, fakeUpsert{externalID: externalID, title: title, fields: fields})
	return externalID, nil
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
