// Package render turns an action summary into a bounded, display-oriented
// per-table tabular diff for activity and audit log UIs.
package render

import (
	"fmt"
	"sort"

	"github.com/jinzhu/inflection"

	"github.com/gridnote-io/gridnote-engine/pkg/models"
)

// Row kinds in a rendered diff.
const (
	RowAdded   = "+"
	RowRemoved = "-"
	RowUpdated = "→"
	RowOmitted = "..."
)

// Options bounds the rendered output.
type Options struct {
	// MaxRowsPerTable caps the rendered rows per table. A table whose
	// affected-row count exceeds the cap has its interior collapsed into
	// one omission row so the total stays below the cap. Caps below 3
	// cannot fit a boundary row plus the omission marker below them and
	// are treated as 3. Zero or negative means unbounded.
	MaxRowsPerTable int
}

// DiffRow is one rendered row: an added, removed, or updated document row,
// or the single omission marker of a collapsed interior run.
type DiffRow struct {
	Kind       string             `json:"type"`
	RowID      int                `json:"rowId"`
	CellDeltas []models.CellDelta `json:"cellDeltas,omitempty"`
	Omitted    int                `json:"omitted,omitempty"`
	Note       string             `json:"note,omitempty"`
}

// TableDiff is the rendered diff of one table: the union of columns with
// any recorded delta, and one row per affected row id.
type TableDiff struct {
	Header []string  `json:"header"`
	Cells  []DiffRow `json:"cells"`
}

// Render produces the per-table tabular diff of a summary. A row id
// present in both addRows and removeRows is two distinct logical rows
// sharing a recycled id and renders as separate '-' and '+' rows, never as
// one update.
func Render(s *models.ActionSummary, opts Options) (map[string]*TableDiff, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out := make(map[string]*TableDiff)
	if s == nil {
		return out, nil
	}
	for table, delta := range s.TableDeltas {
		diff := renderTable(delta, opts)
		if diff != nil {
			out[table] = diff
		}
	}
	return out, nil
}

func renderTable(delta *models.TableDelta, opts Options) *TableDiff {
	if delta == nil || (len(delta.AddRows) == 0 && len(delta.RemoveRows) == 0 && len(delta.UpdateRows) == 0) {
		return nil
	}

	header := make([]string, 0, len(delta.ColumnDeltas))
	for col := range delta.ColumnDeltas {
		header = append(header, col)
	}
	sort.Strings(header)

	cellsFor := func(id int, pick func(models.CellDelta) models.CellDelta) []models.CellDelta {
		cells := make([]models.CellDelta, len(header))
		for i, col := range header {
			cd, ok := delta.ColumnDeltas[col][id]
			if !ok {
				cd = models.CellDelta{Before: models.Unknown(), After: models.Unknown()}
			}
			cells[i] = pick(cd)
		}
		return cells
	}

	var rows []DiffRow
	for _, id := range sorted(delta.RemoveRows) {
		rows = append(rows, DiffRow{Kind: RowRemoved, RowID: id, CellDeltas: cellsFor(id, removalPair)})
	}
	for _, id := range sorted(delta.UpdateRows) {
		rows = append(rows, DiffRow{Kind: RowUpdated, RowID: id, CellDeltas: cellsFor(id, updatePair)})
	}
	for _, id := range sorted(delta.AddRows) {
		rows = append(rows, DiffRow{Kind: RowAdded, RowID: id, CellDeltas: cellsFor(id, additionPair)})
	}

	if opts.MaxRowsPerTable > 0 && len(rows) > opts.MaxRowsPerTable {
		rows = collapse(rows, opts.MaxRowsPerTable)
	}
	return &TableDiff{Header: header, Cells: rows}
}

// removalPair shows only what the row lost. For a recycled id the recorded
// delta spans two logical rows; the removal keeps the before side.
func removalPair(cd models.CellDelta) models.CellDelta {
	return models.CellDelta{Before: cd.Before, After: models.NoValue()}
}

// additionPair keeps the after side, the recycled-id mirror of removalPair.
func additionPair(cd models.CellDelta) models.CellDelta {
	return models.CellDelta{Before: models.NoValue(), After: cd.After}
}

func updatePair(cd models.CellDelta) models.CellDelta {
	return cd
}

// collapse replaces the interior run of rows with one omission marker,
// keeping boundary rows for context and at least one representative of
// every row kind the table actually contains, while staying below the cap.
func collapse(rows []DiffRow, limit int) []DiffRow {
	if limit < 3 {
		limit = 3
	}
	budget := limit - 2
	if budget >= len(rows) {
		budget = len(rows) - 1
	}
	head := (budget + 1) / 2
	tail := budget - head

	kept := make([]DiffRow, 0, budget)
	kept = append(kept, rows[:head]...)
	if tail > 0 {
		kept = append(kept, rows[len(rows)-tail:]...)
	}

	// Swap interior representatives in for any kind that fell out.
	present := make(map[string]int)
	for _, r := range rows {
		present[r.Kind]++
	}
	keptKinds := make(map[string]int)
	for _, r := range kept {
		keptKinds[r.Kind]++
	}
	for _, kind := range []string{RowRemoved, RowUpdated, RowAdded} {
		if present[kind] == 0 || keptKinds[kind] > 0 {
			continue
		}
		var rep DiffRow
		for _, r := range rows {
			if r.Kind == kind {
				rep = r
				break
			}
		}
		for i := len(kept) - 1; i >= 0; i-- {
			if keptKinds[kept[i].Kind] > 1 {
				keptKinds[kept[i].Kind]--
				kept[i] = rep
				keptKinds[kind]++
				break
			}
		}
	}

	omitted := len(rows) - len(kept)
	noun := inflection.Plural("row")
	if omitted == 1 {
		noun = inflection.Singular("rows")
	}
	marker := DiffRow{
		Kind:    RowOmitted,
		Omitted: omitted,
		Note:    fmt.Sprintf("%d more %s", omitted, noun),
	}
	out := make([]DiffRow, 0, len(kept)+1)
	out = append(out, kept[:head]...)
	out = append(out, marker)
	out = append(out, kept[head:]...)
	return out
}

func sorted(ids []int) []int {
	out := append([]int(nil), ids...)
	sort.Ints(out)
	return out
}
