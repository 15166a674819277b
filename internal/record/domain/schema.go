package domain

// FieldType enumerates the value shapes a record field can take. Each maps to
// exactly one Notion property type, which is what makes field-by-field
// comparison across the two stores well defined.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldDate     FieldType = "date"
	FieldCheckbox FieldType = "checkbox"
)

// FieldDef describes one shared field of a collection.
type FieldDef struct {
	Name           string    `json:"name"`
	Type           FieldType `json:"type"`
	NotionProperty string    `json:"notion_property"`
}

// Schema describes the shared shape of one collection: the title property on
// the Notion side plus the comparable fields.
type Schema struct {
	Collection    string     `json:"collection"`
	TitleProperty string     `json:"title_property"`
	Fields        []FieldDef `json:"fields"`
}

// FieldNames returns the names of the comparable non-title fields.
func (s Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Field looks up a field definition by name.
func (s Schema) Field(name string) (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Collections is an open enumeration: adding a schema here is all it takes to
// make a new entity kind syncable.
var schemas = []Schema{
	{
		Collection:    "task",
		TitleProperty: "Name",
		Fields: []FieldDef{
			{Name: "description", Type: FieldText, NotionProperty: "Description"},
			{Name: "status", Type: FieldSelect, NotionProperty: "Status"},
			{Name: "priority", Type: FieldNumber, NotionProperty: "Priority"},
			{Name: "due_date", Type: FieldDate, NotionProperty: "Due Date"},
		},
	},
	{
		Collection:    "rule",
		TitleProperty: "Name",
		Fields: []FieldDef{
			{Name: "description", Type: FieldText, NotionProperty: "Description"},
			{Name: "priority", Type: FieldNumber, NotionProperty: "Priority"},
			{Name: "active", Type: FieldCheckbox, NotionProperty: "Active"},
		},
	},
	{
		Collection:    "journal_entry",
		TitleProperty: "Title",
		Fields: []FieldDef{
			{Name: "content", Type: FieldText, NotionProperty: "Content"},
			{Name: "mood", Type: FieldSelect, NotionProperty: "Mood"},
			{Name: "entry_date", Type: FieldDate, NotionProperty: "Date"},
		},
	},
	{
		Collection:    "calendar_event",
		TitleProperty: "Name",
		Fields: []FieldDef{
			{Name: "description", Type: FieldText, NotionProperty: "Description"},
			{Name: "start_time", Type: FieldDate, NotionProperty: "Start"},
			{Name: "end_time", Type: FieldDate, NotionProperty: "End"},
			{Name: "all_day", Type: FieldCheckbox, NotionProperty: "All Day"},
		},
	},
}

// SchemaFor returns the schema of a collection.
func SchemaFor(collection string) (Schema, bool) {
	for _, s := range schemas {
		if s.Collection == collection {
			return s, true
		}
	}
	return Schema{}, false
}

// Collections lists every known collection in registry order. Recover-all
// walks this list.
func Collections() []string {
	names := make([]string, 0, len(schemas))
	for _, s := range schemas {
		names = append(names, s.Collection)
	}
	return names
}
