package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// RowResult records what happened to one sheet row during a run.
type RowResult struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	RunID      string      `gorm:"type:text;not null;index:idx_row_results_run" json:"run_id"`
	RowNumber  int         `gorm:"not null" json:"row_number"` // 1-based, header is row 1
	Identifier string      `gorm:"type:text;index" json:"identifier"`
	State      string      `gorm:"type:text" json:"state"`
	Outcome    string      `gorm:"type:text;index" json:"outcome"`
	RemoteID   string      `gorm:"type:text" json:"remote_id,omitempty"`
	MediaPath  string      `gorm:"type:text" json:"media_path,omitempty"`
	Title      string      `gorm:"type:text" json:"title,omitempty"`
	Tags       StringArray `gorm:"type:text" json:"tags"`
	Slot       *int        `json:"slot,omitempty"`
	PublishAt  *time.Time  `json:"publish_at,omitempty"`
	StatusText string      `gorm:"type:text" json:"status_text"`
	DurationMs int64       `json:"duration_ms"`
	CreatedAt  time.Time   `json:"created_at"`
}

// TableName returns the database table name for RowResult.
func (RowResult) TableName() string {
	return "row_results"
}
