package models

import (
	"strings"
)

// ColumnDelta maps row ids to the (before, after) cell pair recorded for
// one column. Row ids are recyclable: for an id present in both addRows and
// removeRows of the owning table delta, Before describes the removed row
// and After the unrelated added one.
type ColumnDelta map[int]CellDelta

// Clone returns a deep copy of the column delta.
func (c ColumnDelta) Clone() ColumnDelta {
	if c == nil {
		return nil
	}
	out := make(ColumnDelta, len(c))
	for id, d := range c {
		out[id] = d
	}
	return out
}

// TableDelta is the compacted record of everything that happened to one
// table: its row-set changes, per-column cell deltas, and the rename
// ledger of its column namespace.
type TableDelta struct {
	AddRows       []int                  `json:"addRows"`
	RemoveRows    []int                  `json:"removeRows"`
	UpdateRows    []int                  `json:"updateRows"`
	ColumnRenames []LabelDelta           `json:"columnRenames"`
	ColumnDeltas  map[string]ColumnDelta `json:"columnDeltas"`
}

// NewTableDelta returns an empty table delta with an allocated column map.
func NewTableDelta() *TableDelta {
	return &TableDelta{ColumnDeltas: make(map[string]ColumnDelta)}
}

// IsEmpty reports whether the delta records nothing at all.
func (d *TableDelta) IsEmpty() bool {
	if d == nil {
		return true
	}
	return len(d.AddRows) == 0 && len(d.RemoveRows) == 0 && len(d.UpdateRows) == 0 &&
		len(d.ColumnRenames) == 0 && len(d.ColumnDeltas) == 0
}

// Clone returns a deep copy of the table delta.
func (d *TableDelta) Clone() *TableDelta {
	if d == nil {
		return nil
	}
	out := &TableDelta{
		AddRows:       append([]int(nil), d.AddRows...),
		RemoveRows:    append([]int(nil), d.RemoveRows...),
		UpdateRows:    append([]int(nil), d.UpdateRows...),
		ColumnRenames: append([]LabelDelta(nil), d.ColumnRenames...),
		ColumnDeltas:  make(map[string]ColumnDelta, len(d.ColumnDeltas)),
	}
	for col, cells := range d.ColumnDeltas {
		out.ColumnDeltas[col] = cells.Clone()
	}
	return out
}

// ActionSummary is the compacted table/column/row-level record of what
// changed between two document states, independent of how many primitive
// actions produced the change. Summaries are immutable once produced;
// they are folded by Concatenate or consumed once by Rebase or Render.
type ActionSummary struct {
	TableRenames []LabelDelta           `json:"tableRenames"`
	TableDeltas  map[string]*TableDelta `json:"tableDeltas"`
}

// NewActionSummary returns an empty summary with an allocated table map.
func NewActionSummary() *ActionSummary {
	return &ActionSummary{TableDeltas: make(map[string]*TableDelta)}
}

// IsEmpty reports whether the summary records nothing at all.
func (s *ActionSummary) IsEmpty() bool {
	if s == nil {
		return true
	}
	return len(s.TableRenames) == 0 && len(s.TableDeltas) == 0
}

// Clone returns a deep copy of the summary.
func (s *ActionSummary) Clone() *ActionSummary {
	if s == nil {
		return nil
	}
	out := &ActionSummary{
		TableRenames: append([]LabelDelta(nil), s.TableRenames...),
		TableDeltas:  make(map[string]*TableDelta, len(s.TableDeltas)),
	}
	for table, delta := range s.TableDeltas {
		out.TableDeltas[table] = delta.Clone()
	}
	return out
}

// Delta keys carry a "-" prefix when the entity no longer exists at the end
// of the summary but its retained deltas are worth keeping. The name after
// the prefix is the From endpoint of the accompanying delete LabelDelta.

// RetiredKey returns the delta key for an entity deleted during the summary.
func RetiredKey(name string) string {
	return "-" + name
}

// IsRetiredKey reports whether the key names a deleted entity.
func IsRetiredKey(key string) bool {
	return strings.HasPrefix(key, "-")
}

// TrimRetiredKey strips the deleted-entity prefix, if present.
func TrimRetiredKey(key string) string {
	return strings.TrimPrefix(key, "-")
}

// RetentionPolicy is the summary producer's row-cap configuration: how many
// literal cell deltas it retains per table before falling back to the
// Unknown sentinel, and which columns are exempt from the cap. The algebra
// never consults it; it is the shared contract between hosts, the producer,
// and the config layer.
type RetentionPolicy struct {
	// MaxCellDeltasPerTable caps the literal cell deltas retained per
	// table. Zero means unlimited.
	MaxCellDeltasPerTable int `json:"max_cell_deltas_per_table"`
	// RetainColumns lists column ids always retained in full.
	RetainColumns []string `json:"retain_columns,omitempty"`
}

// Exempt reports whether a column is always retained in full.
func (p RetentionPolicy) Exempt(columnID string) bool {
	for _, id := range p.RetainColumns {
		if id == columnID {
			return true
		}
	}
	return false
}
