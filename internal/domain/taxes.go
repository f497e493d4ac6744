package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TaxInclusion records whether line prices already include taxes.
type TaxInclusion int

const (
	TaxesUnknown TaxInclusion = iota
	TaxesIncluded
	TaxesExcluded
)

// TaxInclusionFromBool maps a nullable flag onto TaxInclusion.
func TaxInclusionFromBool(v *bool) TaxInclusion {
	switch {
	case v == nil:
		return TaxesUnknown
	case *v:
		return TaxesIncluded
	default:
		return TaxesExcluded
	}
}

// Bool returns the nullable form used by storage and the wire format.
func (t TaxInclusion) Bool() *bool {
	switch t {
	case TaxesIncluded:
		v := true
		return &v
	case TaxesExcluded:
		v := false
		return &v
	default:
		return nil
	}
}

func (t TaxInclusion) String() string {
	switch t {
	case TaxesIncluded:
		return "included"
	case TaxesExcluded:
		return "excluded"
	default:
		return "unknown"
	}
}

func (t TaxInclusion) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Bool())
}

func (t *TaxInclusion) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = TaxesUnknown
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("taxesIncluded must be true, false or null: %w", ErrInvalidArgument)
	}
	*t = TaxInclusionFromBool(&v)
	return nil
}
