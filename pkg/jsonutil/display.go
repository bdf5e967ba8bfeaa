// Package jsonutil has helpers for displaying JSON-encoded cell values.
package jsonutil

import (
	"encoding/json"
	"fmt"
)

// CellDisplayValue renders one JSON-encoded cell value for human-readable
// output. Scalars lose their JSON quoting, whole numbers drop the float
// suffix, and null renders as the empty string. Composite values (the rare
// cell holding an array or object) pass through as raw JSON.
func CellDisplayValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		if num == float64(int64(num)) {
			return fmt.Sprintf("%d", int64(num))
		}
		return fmt.Sprintf("%g", num)
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return fmt.Sprintf("%t", b)
	}

	return string(raw)
}
