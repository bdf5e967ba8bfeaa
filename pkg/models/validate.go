package models

import (
	"fmt"

	"github.com/gridnote-io/gridnote-engine/pkg/apperrors"
)

// Validate checks the producer-defect conditions the algebra refuses to
// work around: malformed label deltas and overlapping row lists. It is a
// precondition check, not an exhaustive consistency proof.
func (s *ActionSummary) Validate() error {
	if s == nil {
		return nil
	}
	for _, ld := range s.TableRenames {
		if err := ld.Validate(); err != nil {
			return fmt.Errorf("table rename %s: %w", ld, err)
		}
	}
	for table, delta := range s.TableDeltas {
		if err := delta.Validate(); err != nil {
			return fmt.Errorf("table %q: %w", table, err)
		}
	}
	return nil
}

// Validate checks one table delta. updateRows must be disjoint from both
// addRows and removeRows; an id present in both addRows and removeRows is
// legal and denotes two distinct rows sharing a recycled numeric id.
func (d *TableDelta) Validate() error {
	if d == nil {
		return nil
	}
	for _, ld := range d.ColumnRenames {
		if err := ld.Validate(); err != nil {
			return fmt.Errorf("column rename %s: %w", ld, err)
		}
	}
	updated := make(map[int]struct{}, len(d.UpdateRows))
	for _, id := range d.UpdateRows {
		updated[id] = struct{}{}
	}
	for _, id := range d.AddRows {
		if _, ok := updated[id]; ok {
			return fmt.Errorf("row %d in both addRows and updateRows: %w", id, apperrors.ErrRowListsOverlap)
		}
	}
	for _, id := range d.RemoveRows {
		if _, ok := updated[id]; ok {
			return fmt.Errorf("row %d in both removeRows and updateRows: %w", id, apperrors.ErrRowListsOverlap)
		}
	}
	return nil
}
