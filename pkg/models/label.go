package models

import (
	"encoding/json"
	"fmt"

	"github.com/gridnote-io/gridnote-engine/pkg/apperrors"
)

// LabelDelta records one create, delete, or rename of a table or column
// identifier. From is nil for creates, To is nil for deletes. A single
// delta never encodes a multi-hop chain; chains only arise from composing
// summaries, and composition collapses them again.
type LabelDelta struct {
	From *string
	To   *string
}

// Created returns the delta for a newly created identifier.
func Created(name string) LabelDelta {
	return LabelDelta{To: &name}
}

// Deleted returns the delta for a deleted identifier.
func Deleted(name string) LabelDelta {
	return LabelDelta{From: &name}
}

// Renamed returns the delta for a renamed identifier.
func Renamed(from, to string) LabelDelta {
	return LabelDelta{From: &from, To: &to}
}

// IsCreate reports whether the delta introduces a new identifier.
func (d LabelDelta) IsCreate() bool { return d.From == nil && d.To != nil }

// IsDelete reports whether the delta removes an identifier.
func (d LabelDelta) IsDelete() bool { return d.From != nil && d.To == nil }

// IsRename reports whether the delta renames an existing identifier.
func (d LabelDelta) IsRename() bool { return d.From != nil && d.To != nil }

// Validate rejects the one shape the producer must never emit: a delta with
// neither endpoint.
func (d LabelDelta) Validate() error {
	if d.From == nil && d.To == nil {
		return apperrors.ErrMalformedRename
	}
	return nil
}

func (d LabelDelta) String() string {
	from, to := "null", "null"
	if d.From != nil {
		from = *d.From
	}
	if d.To != nil {
		to = *d.To
	}
	return fmt.Sprintf("(%s → %s)", from, to)
}

// MarshalJSON encodes the delta as a [from, to] pair with nulls for the
// missing endpoints.
func (d LabelDelta) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]*string{d.From, d.To})
}

// UnmarshalJSON decodes a [from, to] pair.
func (d *LabelDelta) UnmarshalJSON(data []byte) error {
	var pair [2]*string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	d.From, d.To = pair[0], pair[1]
	return nil
}
