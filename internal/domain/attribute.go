package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NoteAttributeKey is the attribute the order-note editor reads and writes.
const NoteAttributeKey = "note"

// Attribute is a custom order annotation.
type Attribute struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func validateAttribute(name string, value any) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("attribute name required: %w", ErrInvalidArgument)
	}
	switch value.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return nil
	default:
		return fmt.Errorf("attribute %q must be a scalar, got %T: %w", name, value, ErrInvalidArgument)
	}
}
