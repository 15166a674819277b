package workspace

import (
	"context"
	"encoding/json"
	"fmt"

	recorddomain "lifehub-backend/internal/record/domain"
	"lifehub-backend/internal/sync/domain"
	"lifehub-backend/pkg/notion"
)

// NotionSource adapts the Notion client to the sync engine's document source
// and writer contracts, translating between the collection schemas and Notion
// property payloads.
type NotionSource struct {
	client   *notion.Client
	pageSize int
}

// NewNotionSource creates a new NotionSource
func NewNotionSource(client *notion.Client, pageSize int) *NotionSource {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &NotionSource{client: client, pageSize: pageSize}
}

func (s *NotionSource) FetchPage(ctx context.Context, token, databaseID, collection, cursor string) ([]domain.ExternalDocument, string, error) {
	schema, ok := recorddomain.SchemaFor(collection)
	if !ok {
		return nil, "", fmt.Errorf("unknown collection %q", collection)
	}
	result, err := s.client.QueryDatabase(ctx, token, databaseID, cursor, s.pageSize)
	if err != nil {
		return nil, "", err
	}

	docs := make([]domain.ExternalDocument, 0, len(result.Pages))
	for _, page := range result.Pages {
		if page.Archived {
			continue
		}
		docs = append(docs, decodePage(schema, page))
	}
	return docs, result.NextCursor, nil
}

func (s *NotionSource) UpsertDocument(ctx context.Context, token, databaseID, externalID, collection, title string, fields map[string]any) (string, error) {
	schema, ok := recorddomain.SchemaFor(collection)
	if !ok {
		return "", fmt.Errorf("unknown collection %q", collection)
	}

	properties := make(map[string]json.RawMessage, len(schema.Fields)+1)
	titleProp, err := notion.EncodeProperty("title", title)
	if err != nil {
		return "", err
	}
	properties[schema.TitleProperty] = titleProp

	for _, def := range schema.Fields {
		value, present := fields[def.Name]
		if !present {
			continue
		}
		encoded, err := notion.EncodeProperty(notionPropertyType(def.Type), value)
		if err != nil {
			return "", err
		}
		properties[def.NotionProperty] = encoded
	}

	return s.client.UpsertPage(ctx, token, databaseID, externalID, properties)
}

func decodePage(schema recorddomain.Schema, page notion.Page) domain.ExternalDocument {
	doc := domain.ExternalDocument{
		ExternalID:   page.ID,
		Properties:   map[string]any{},
		LastEditedAt: page.LastEditedTime,
	}
	if raw, ok := page.Properties[schema.TitleProperty]; ok {
		if v, err := notion.DecodeProperty(raw); err == nil {
			if title, ok := v.(string); ok {
				doc.Title = title
			}
		}
	}
	for _, def := range schema.Fields {
		raw, ok := page.Properties[def.NotionProperty]
		if !ok {
			continue
		}
		v, err := notion.DecodeProperty(raw)
		if err != nil || v == nil {
			continue
		}
		doc.Properties[def.Name] = v
	}
	return doc
}

func notionPropertyType(t recorddomain.FieldType) string {
	switch t {
	case recorddomain.FieldText:
		return "rich_text"
	case recorddomain.FieldNumber:
		return "number"
	case recorddomain.FieldSelect:
		return "select"
	case recorddomain.FieldDate:
		return "date"
	case recorddomain.FieldCheckbox:
		return "checkbox"
	default:
		return "rich_text"
	}
}
