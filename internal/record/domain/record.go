package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// FieldMap is the weakly-typed field bag of a record, stored as jsonb.
type FieldMap map[string]any

func (m FieldMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *FieldMap) Scan(value any) error {
	if value == nil {
		*m = FieldMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for FieldMap")
	}
	if len(data) == 0 {
		*m = FieldMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// Record is one local entity of any collection. The title is the primary
// display field; everything else lives in Fields per the collection schema.
type Record struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"index:idx_records_user_collection;not null"`
	Collection string    `json:"collection" gorm:"index:idx_records_user_collection;not null"`
	Title      string    `json:"title" gorm:"not null"`
	Fields     FieldMap  `json:"fields" gorm:"type:jsonb"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
