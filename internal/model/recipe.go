package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported steps column type %T", value)
	}

	return json.Unmarshal(bytes, a)
}

// MarshalJSON always renders a list, never null
func (a JSONBStringArray) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

// Recipe is a saved recipe record. Records are immutable once created.
type Recipe struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"_id"`
	CreatedAt time.Time        `json:"created_at"`
	User      string           `gorm:"column:user_email;size:320;not null;index" json:"user"`
	Title     string           `gorm:"type:text" json:"title"`
	PrepTime  string           `gorm:"size:255" json:"prep_time"`
	Servings  int              `gorm:"not null;default:0" json:"servings"`
	Steps     JSONBStringArray `gorm:"type:jsonb;not null" json:"steps"`
}

// BeforeCreate assigns the record identifier
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Steps == nil {
		r.Steps = JSONBStringArray{}
	}
	return nil
}
