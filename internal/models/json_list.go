package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
)

// StringList is an ordered list of strings persisted as a JSON array column.
// A nil list is stored as NULL; an empty non-nil list is stored as [].
type StringList []string

// Scan implements sql.Scanner for reading a JSON array column.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan StringList: expected []byte or string, got %T", value)
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("failed to unmarshal string list: %w", err)
	}
	if items == nil {
		items = []string{}
	}

	*l = items
	return nil
}

// Value implements driver.Valuer for writing a JSON array column.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}

	encoded, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(encoded), nil
}

// NonEmptyOrNil returns nil for an empty list so it is stored as NULL.
func (l StringList) NonEmptyOrNil() StringList {
	if len(l) == 0 {
		return nil
	}
	return l
}
