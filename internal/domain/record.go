package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// FieldMap is a custom type for storing the shaped row payload as JSON.
type FieldMap map[string]interface{}

// Value implements the driver.Valuer interface for database serialization.
func (m FieldMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database deserialization.
func (m *FieldMap) Scan(value interface{}) error {
	if value == nil {
		*m = FieldMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan FieldMap")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, m)
}

// Record is a shaped input row persisted to the record store. Records are
// never mutated after creation; ownership transfers to the store once
// persisted. The (module, dedup_key) pair is unique so a race between two
// jobs inserting the same natural key resolves as a row-level insert
// error on the loser.
type Record struct {
	ID       string  `gorm:"type:text;primaryKey" json:"id"`
	Module   Module  `gorm:"type:text;not null;index:idx_records_key,unique" json:"module"`
	DedupKey *string `gorm:"type:text;index:idx_records_key,unique" json:"dedup_key,omitempty"`

	// Reference is the module's primary document number, promoted out of
	// the field map for listing and search.
	Reference string   `gorm:"type:text;index" json:"reference,omitempty"`
	Fields    FieldMap `gorm:"type:text" json:"fields"`

	SourceID  string    `gorm:"type:text;not null;index" json:"source_id"`
	CreatedBy string    `gorm:"type:text;not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Record.
func (Record) TableName() string {
	return "ingest_records"
}
