package models

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// cellState discriminates the three states a cell endpoint can be in.
type cellState uint8

const (
	cellAbsent  cellState = iota // no value at all (row or cell does not exist)
	cellKnown                    // a concrete domain value, possibly a real null
	cellUnknown                  // value existed but was not retained by the producer
)

// unknownToken is the serialized form of the Unknown sentinel. It cannot
// collide with a retained value because retained values are always wrapped
// in a one-element array.
const unknownToken = "?"

// CellValue is one endpoint of a cell delta. It is either absent (the cell
// has no value, e.g. the row does not exist), a retained domain value, or
// the Unknown sentinel for values the producer chose not to keep.
//
// The zero CellValue is absent.
type CellValue struct {
	state cellState
	value any
}

// NoValue returns the absent CellValue.
func NoValue() CellValue {
	return CellValue{state: cellAbsent}
}

// Value returns a CellValue wrapping a retained domain value. The wrapped
// value may itself be nil; that is a real null, distinct from NoValue.
func Value(v any) CellValue {
	return CellValue{state: cellKnown, value: v}
}

// Unknown returns the sentinel for a value the producer did not retain.
func Unknown() CellValue {
	return CellValue{state: cellUnknown}
}

// IsAbsent reports whether the cell has no value at all.
func (c CellValue) IsAbsent() bool { return c.state == cellAbsent }

// IsKnown reports whether the cell holds a retained domain value.
func (c CellValue) IsKnown() bool { return c.state == cellKnown }

// IsUnknown reports whether the cell is the Unknown sentinel.
func (c CellValue) IsUnknown() bool { return c.state == cellUnknown }

// Get returns the retained domain value. The second return is false for
// absent and Unknown cells.
func (c CellValue) Get() (any, bool) {
	if c.state != cellKnown {
		return nil, false
	}
	return c.value, true
}

// Equal reports whether two cell values are in the same state and, for
// retained values, hold deeply equal domain values.
func (c CellValue) Equal(o CellValue) bool {
	if c.state != o.state {
		return false
	}
	if c.state != cellKnown {
		return true
	}
	return reflect.DeepEqual(c.value, o.value)
}

func (c CellValue) String() string {
	switch c.state {
	case cellKnown:
		return fmt.Sprintf("[%v]", c.value)
	case cellUnknown:
		return unknownToken
	default:
		return "null"
	}
}

// MarshalJSON encodes absent as null, a retained value as a one-element
// array, and Unknown as the "?" token.
func (c CellValue) MarshalJSON() ([]byte, error) {
	switch c.state {
	case cellKnown:
		return json.Marshal([1]any{c.value})
	case cellUnknown:
		return json.Marshal(unknownToken)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes the encoding produced by MarshalJSON.
func (c *CellValue) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*c = NoValue()
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != unknownToken {
			return fmt.Errorf("cell value: unexpected string %q", s)
		}
		*c = Unknown()
		return nil
	case '[':
		var wrapped []any
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		if len(wrapped) != 1 {
			return fmt.Errorf("cell value: expected one wrapped element, got %d", len(wrapped))
		}
		*c = Value(wrapped[0])
		return nil
	default:
		return fmt.Errorf("cell value: cannot decode %s", string(data))
	}
}

// CellDelta is a (before, after) pair of cell endpoints for one row of one
// column. For a recycled row id (present in both addRows and removeRows of
// its table delta) Before belongs to the removed row and After to the
// added one.
type CellDelta struct {
	Before CellValue
	After  CellValue
}

// IsNoop reports whether the delta records no change at all.
func (d CellDelta) IsNoop() bool {
	return d.Before.IsAbsent() && d.After.IsAbsent()
}

func (d CellDelta) String() string {
	return fmt.Sprintf("(%s → %s)", d.Before, d.After)
}

// MarshalJSON encodes the delta as a [before, after] pair.
func (d CellDelta) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]CellValue{d.Before, d.After})
}

// UnmarshalJSON decodes a [before, after] pair.
func (d *CellDelta) UnmarshalJSON(data []byte) error {
	var pair [2]CellValue
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	d.Before, d.After = pair[0], pair[1]
	return nil
}
