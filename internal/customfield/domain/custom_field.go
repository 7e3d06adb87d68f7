package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldDate        FieldType = "date"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multiselect"
	FieldCheckbox    FieldType = "checkbox"
	FieldURL         FieldType = "url"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldDate, FieldSelect, FieldMultiSelect, FieldCheckbox, FieldURL:
		return true
	}
	return false
}

// HasOptions reports whether values are picked from Options.
func (t FieldType) HasOptions() bool {
	return t == FieldSelect || t == FieldMultiSelect
}

// StringArray is a custom type to handle JSON array in GORM
type StringArray []string

// Value implements driver.Valuer
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = []string{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		*a = []string{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// CustomField is a board-scoped, user-defined typed attribute of tasks.
type CustomField struct {
	ID        string      `json:"id" gorm:"primaryKey"`
	BoardID   string      `json:"board_id" gorm:"index;not null"`
	Name      string      `json:"name" gorm:"not null"`
	Type      FieldType   `json:"type" gorm:"not null"`
	Options   StringArray `json:"options" gorm:"type:text"`
	Required  bool        `json:"required" gorm:"default:false"`
	Position  int         `json:"position" gorm:"default:0"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (CustomField) TableName() string {
	return "custom_fields"
}

// CustomFieldValue holds one task's value for one field, stored as text in
// the field type's canonical form.
type CustomFieldValue struct {
	TaskID    string    `json:"task_id" gorm:"primaryKey"`
	FieldID   string    `json:"field_id" gorm:"primaryKey;index"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CustomFieldValue) TableName() string {
	return "custom_field_values"
}
