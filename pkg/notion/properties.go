package notion

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Notion property payloads are deeply nested per type. These helpers flatten
// them to plain Go values on the way in and rebuild them on the way out, so
// the rest of the application only sees a flat property bag.

type richTextSpan struct {
	PlainText string `json:"plain_text"`
	Text      *struct {
		Content string `json:"content"`
	} `json:"text,omitempty"`
}

type propertyEnvelope struct {
	Type     string         `json:"type"`
	Title    []richTextSpan `json:"title,omitempty"`
	RichText []richTextSpan `json:"rich_text,omitempty"`
	Number   *float64       `json:"number,omitempty"`
	Checkbox *bool          `json:"checkbox,omitempty"`
	Select   *struct {
		Name string `json:"name"`
	} `json:"select,omitempty"`
	Date *struct {
		Start string `json:"start"`
	} `json:"date,omitempty"`
}

// DecodeProperty flattens one raw property value. Unknown property types
// decode to nil so callers can skip them.
func DecodeProperty(raw json.RawMessage) (any, error) {
	var env propertyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("notion: decoding property: %w", err)
	}
	switch env.Type {
	case "title":
		return joinSpans(env.Title), nil
	case "rich_text":
		return joinSpans(env.RichText), nil
	case "number":
		if env.Number == nil {
			return nil, nil
		}
		return *env.Number, nil
	case "checkbox":
		if env.Checkbox == nil {
			return false, nil
		}
		return *env.Checkbox, nil
	case "select":
		if env.Select == nil {
			return "", nil
		}
		return env.Select.Name, nil
	case "date":
		if env.Date == nil || env.Date.Start == "" {
			return nil, nil
		}
		return env.Date.Start, nil
	default:
		return nil, nil
	}
}

func joinSpans(spans []richTextSpan) string {
	var b strings.Builder
	for _, s := range spans {
		if s.PlainText != "" {
			b.WriteString(s.PlainText)
		} else if s.Text != nil {
			b.WriteString(s.Text.Content)
		}
	}
	return b.String()
}

// EncodeProperty builds the raw payload for one property of the given Notion
// type ("title", "rich_text", "number", "select", "date", "checkbox").
func EncodeProperty(propType string, value any) (json.RawMessage, error) {
	switch propType {
	case "title", "rich_text":
		text := fmt.Sprintf("%v", value)
		if value == nil {
			text = ""
		}
		span := map[string]any{"text": map[string]any{"content": text}}
		return json.Marshal(map[string]any{propType: []any{span}})
	case "number":
		return json.Marshal(map[string]any{"number": value})
	case "checkbox":
		b, _ := value.(bool)
		return json.Marshal(map[string]any{"checkbox": b})
	case "select":
		name := fmt.Sprintf("%v", value)
		if value == nil || name == "" {
			return json.Marshal(map[string]any{"select": nil})
		}
		return json.Marshal(map[string]any{"select": map[string]any{"name": name}})
	case "date":
		if value == nil {
			return json.Marshal(map[string]any{"date": nil})
		}
		start := ""
		switch v := value.(type) {
		case time.Time:
			start = v.Format(time.RFC3339)
		default:
			start = fmt.Sprintf("%v", v)
		}
		if start == "" {
			return json.Marshal(map[string]any{"date": nil})
		}
		return json.Marshal(map[string]any{"date": map[string]any{"start": start}})
	default:
		return nil, fmt.Errorf("notion: unsupported property type %q", propType)
	}
}
