package summary

import (
	"fmt"
	"sort"

	"github.com/gridnote-io/gridnote-engine/pkg/models"
)

// Concatenate folds a chronologically ordered sequence of action summaries
// into one equivalent summary. It is pure and associative but not
// commutative: row-id-reuse detection and rename composition depend on
// which summary acted first. Inputs are never mutated.
func Concatenate(summaries []*models.ActionSummary) (*models.ActionSummary, error) {
	for i, s := range summaries {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("summary %d: %w", i, err)
		}
	}
	acc := models.NewActionSummary()
	for _, s := range summaries {
		acc = concatPair(acc, s)
	}
	return acc, nil
}

func concatPair(a, b *models.ActionSummary) *models.ActionSummary {
	join := joinScope(a.TableRenames, keySet(a.TableDeltas), b.TableRenames, keySet(b.TableDeltas))
	out := models.NewActionSummary()
	out.TableRenames = join.renames
	for _, m := range join.merges {
		var d1, d2 *models.TableDelta
		if m.key1 != "" {
			d1 = a.TableDeltas[m.key1]
		}
		if m.key2 != "" {
			d2 = b.TableDeltas[m.key2]
		}
		md := mergeTableDelta(d1, d2, m)
		if md.IsEmpty() {
			continue
		}
		if existing, ok := out.TableDeltas[m.resultKey]; ok {
			// Two retained-dead entries landed on the same recycled name;
			// their row sets belong to distinct instants and can coexist.
			mergeDeltaInto(existing, md)
			continue
		}
		out.TableDeltas[m.resultKey] = md
	}
	return out
}

// rowEvent classifies what one summary did to one row id.
type rowEvent uint8

const (
	rowNone    rowEvent = iota
	rowAdd              // new and present after
	rowRemove           // present before, gone after
	rowUpdate           // present before and after, edited
	rowRecycle          // one row removed and an unrelated one added under the same id
)

// composeRowEvents chains two summaries' effects on one row id. The only
// irreducible pair is remove-then-add: two distinct logical rows sharing a
// recycled numeric id, never one row's full lifecycle.
func composeRowEvents(e1, e2 rowEvent) rowEvent {
	if e1 == rowNone {
		return e2
	}
	if e2 == rowNone {
		return e1
	}
	switch e1 {
	case rowAdd:
		switch e2 {
		case rowRemove:
			return rowNone // added then removed: vanishes entirely
		default:
			return rowAdd
		}
	case rowUpdate:
		switch e2 {
		case rowRemove:
			return rowRemove
		case rowRecycle:
			return rowRecycle
		default:
			return rowUpdate
		}
	case rowRemove:
		switch e2 {
		case rowAdd, rowRecycle:
			return rowRecycle
		default:
			return rowRemove
		}
	default: // rowRecycle
		switch e2 {
		case rowRemove:
			return rowRemove // the recycled addition was undone
		default:
			return rowRecycle
		}
	}
}

func rowEvents(d *models.TableDelta) map[int]rowEvent {
	events := make(map[int]rowEvent, len(d.AddRows)+len(d.RemoveRows)+len(d.UpdateRows))
	for _, id := range d.RemoveRows {
		events[id] = rowRemove
	}
	for _, id := range d.AddRows {
		if events[id] == rowRemove {
			events[id] = rowRecycle
		} else {
			events[id] = rowAdd
		}
	}
	for _, id := range d.UpdateRows {
		events[id] = rowUpdate
	}
	return events
}

// composeCellDelta chains one column's (before, after) pairs for one
// logical row across the pair. Values are never fabricated across an
// Unknown gap: each endpoint keeps exactly what its side retained. The
// row's composed fate makes the missing endpoint authoritative for
// creations (before is null) and deletions (after is null).
func composeCellDelta(fate rowEvent, cd1 models.CellDelta, ok1 bool, cd2 models.CellDelta, ok2 bool) (models.CellDelta, bool) {
	if fate == rowNone || (!ok1 && !ok2) {
		return models.CellDelta{}, false
	}
	var out models.CellDelta
	switch {
	case ok1 && ok2:
		out = models.CellDelta{Before: cd1.Before, After: cd2.After}
	case ok1:
		out = cd1
	default:
		out = cd2
	}
	switch fate {
	case rowAdd:
		out.Before = models.NoValue()
	case rowRemove:
		out.After = models.NoValue()
	}
	return out, true
}

func mergeTableDelta(d1, d2 *models.TableDelta, m scopeMerge) *models.TableDelta {
	switch {
	case d1 == nil && d2 == nil:
		return nil
	case d2 == nil:
		md := d1.Clone()
		if m.deleted {
			markTableDeleted(md)
		}
		return md
	case d1 == nil:
		return d2.Clone()
	}

	md := models.NewTableDelta()

	// Row classification over the union of touched ids.
	fates := rowEvents(d1)
	for id, e2 := range rowEvents(d2) {
		fates[id] = composeRowEvents(fates[id], e2)
	}
	for id, fate := range fates {
		switch fate {
		case rowAdd:
			md.AddRows = append(md.AddRows, id)
		case rowRemove:
			md.RemoveRows = append(md.RemoveRows, id)
		case rowUpdate:
			md.UpdateRows = append(md.UpdateRows, id)
		case rowRecycle:
			md.AddRows = append(md.AddRows, id)
			md.RemoveRows = append(md.RemoveRows, id)
		}
	}
	sort.Ints(md.AddRows)
	sort.Ints(md.RemoveRows)
	sort.Ints(md.UpdateRows)

	// Column namespace composes by the same ledger join as tables.
	join := joinScope(d1.ColumnRenames, keySet(d1.ColumnDeltas), d2.ColumnRenames, keySet(d2.ColumnDeltas))
	md.ColumnRenames = join.renames
	for _, cm := range join.merges {
		var c1, c2 models.ColumnDelta
		if cm.key1 != "" {
			c1 = d1.ColumnDeltas[cm.key1]
		}
		if cm.key2 != "" {
			c2 = d2.ColumnDeltas[cm.key2]
		}
		col := composeColumn(c1, c2, fates, cm)
		if len(col) == 0 {
			continue
		}
		if existing, ok := md.ColumnDeltas[cm.resultKey]; ok {
			for id, cd := range col {
				existing[id] = cd
			}
			continue
		}
		md.ColumnDeltas[cm.resultKey] = col
	}

	if m.deleted {
		markTableDeleted(md)
	}
	return md
}

func composeColumn(c1, c2 models.ColumnDelta, fates map[int]rowEvent, m scopeMerge) models.ColumnDelta {
	out := make(models.ColumnDelta, len(c1)+len(c2))
	ids := make(map[int]struct{}, len(c1)+len(c2))
	for id := range c1 {
		ids[id] = struct{}{}
	}
	for id := range c2 {
		ids[id] = struct{}{}
	}
	for id := range ids {
		fate, tracked := fates[id]
		if !tracked {
			// Cell delta for a row outside the row lists; carry it as an edit.
			fate = rowUpdate
		}
		cd1, ok1 := c1[id]
		cd2, ok2 := c2[id]
		cd, ok := composeCellDelta(fate, cd1, ok1, cd2, ok2)
		if !ok {
			continue
		}
		if m.created {
			// The column was born inside the pair; nothing preceded it.
			cd.Before = models.NoValue()
		}
		if m.deleted {
			cd.After = models.NoValue()
		}
		if cd.IsNoop() {
			continue
		}
		out[id] = cd
	}
	return out
}

// markTableDeleted folds a table deletion into a merged delta: rows added
// inside the pair vanish with the table, surviving edits become removals,
// and every retained after-value is authoritatively gone.
func markTableDeleted(d *models.TableDelta) {
	removed := make(map[int]struct{}, len(d.RemoveRows))
	for _, id := range d.RemoveRows {
		removed[id] = struct{}{}
	}
	vanished := make(map[int]struct{})
	for _, id := range d.AddRows {
		if _, ok := removed[id]; !ok {
			vanished[id] = struct{}{}
		}
	}
	removes := append([]int(nil), d.RemoveRows...)
	for _, id := range d.UpdateRows {
		if _, ok := removed[id]; !ok {
			removes = append(removes, id)
		}
	}
	sort.Ints(removes)
	d.AddRows = nil
	d.UpdateRows = nil
	d.RemoveRows = removes

	for col, cells := range d.ColumnDeltas {
		for id, cd := range cells {
			if _, ok := vanished[id]; ok {
				delete(cells, id)
				continue
			}
			cd.After = models.NoValue()
			if cd.IsNoop() {
				delete(cells, id)
				continue
			}
			cells[id] = cd
		}
		if len(cells) == 0 {
			delete(d.ColumnDeltas, col)
		}
	}
}

// mergeDeltaInto folds src into dst for the rare case of two retained-dead
// deltas sharing one recycled result key.
func mergeDeltaInto(dst, src *models.TableDelta) {
	dst.AddRows = mergeSortedIDs(dst.AddRows, src.AddRows)
	dst.RemoveRows = mergeSortedIDs(dst.RemoveRows, src.RemoveRows)
	dst.UpdateRows = mergeSortedIDs(dst.UpdateRows, src.UpdateRows)
	dst.ColumnRenames = append(dst.ColumnRenames, src.ColumnRenames...)
	for col, cells := range src.ColumnDeltas {
		if existing, ok := dst.ColumnDeltas[col]; ok {
			for id, cd := range cells {
				existing[id] = cd
			}
			continue
		}
		dst.ColumnDeltas[col] = cells
	}
}

func mergeSortedIDs(a, b []int) []int {
	if len(b) == 0 {
		return a
	}
	seen := make(map[int]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			a = append(a, id)
		}
	}
	sort.Ints(a)
	return a
}

func keySet[V any](m map[string]V) map[string]struct{} {
	set := make(map[string]struct{}, len(m))
	for k := range m {
		set[k] = struct{}{}
	}
	return set
}
