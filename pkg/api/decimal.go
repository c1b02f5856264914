package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Decimal carries a monetary amount or percentage as decimal text.
//
// It unmarshals from either a JSON number (12.5) or a JSON string ("12.50")
// and keeps the text as sent, so no precision is lost to float64 on the way
// in. Parsing and range checks happen in the service. It always marshals as a
// JSON string.
type Decimal string

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*d = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = Decimal(strings.TrimSpace(s))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("decimal must be a number or a string: %w", err)
		}
		*d = Decimal(n.String())
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(d))
}

// String returns the decimal text.
func (d Decimal) String() string {
	return string(d)
}
