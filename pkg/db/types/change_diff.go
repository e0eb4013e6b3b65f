package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

const (
	DiffActionCreated = "created"
	DiffActionUpdated = "updated"
)

// FieldChange captures a single field's old and new value.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// ChangeDiff is the history payload, stored as a JSON text column. Created
// entries carry the supplied field names; updated entries carry a per-field
// from/to map.
type ChangeDiff struct {
	Action  string                 `json:"action"`
	Fields  []string               `json:"fields,omitempty"`
	Changes map[string]FieldChange `json:"changes,omitempty"`
}

// Value implements driver.Valuer.
func (d ChangeDiff) Value() (driver.Value, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal change diff: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (d *ChangeDiff) Scan(value any) error {
	if value == nil {
		*d = ChangeDiff{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported change diff source %T", value)
	}

	if len(data) == 0 {
		*d = ChangeDiff{}
		return nil
	}
	if err := json.Unmarshal(data, d); err != nil {
		return fmt.Errorf("unmarshal change diff: %w", err)
	}
	return nil
}
