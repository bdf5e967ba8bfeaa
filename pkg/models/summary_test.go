package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridnote-io/gridnote-engine/pkg/apperrors"
)

func TestRetiredKeys(t *testing.T) {
	assert.Equal(t, "-users", RetiredKey("users"))
	assert.True(t, IsRetiredKey("-users"))
	assert.False(t, IsRetiredKey("users"))
	assert.Equal(t, "users", TrimRetiredKey("-users"))
	assert.Equal(t, "users", TrimRetiredKey("users"))
}

func TestTableDelta_IsEmpty(t *testing.T) {
	assert.True(t, (*TableDelta)(nil).IsEmpty())
	assert.True(t, NewTableDelta().IsEmpty())
	assert.False(t, (&TableDelta{AddRows: []int{1}}).IsEmpty())
	assert.False(t, (&TableDelta{ColumnRenames: []LabelDelta{Created("c")}}).IsEmpty())
}

func TestActionSummary_CloneIsDeep(t *testing.T) {
	s := NewActionSummary()
	s.TableRenames = []LabelDelta{Renamed("a", "b")}
	s.TableDeltas["b"] = &TableDelta{
		UpdateRows: []int{1},
		ColumnDeltas: map[string]ColumnDelta{
			"c": {1: {Before: Value(1), After: Value(2)}},
		},
	}

	c := s.Clone()
	require.Equal(t, s, c)

	c.TableDeltas["b"].UpdateRows[0] = 9
	c.TableDeltas["b"].ColumnDeltas["c"][1] = CellDelta{}
	c.TableDeltas["extra"] = NewTableDelta()

	assert.Equal(t, 1, s.TableDeltas["b"].UpdateRows[0])
	assert.Equal(t, Value(2), s.TableDeltas["b"].ColumnDeltas["c"][1].After)
	assert.NotContains(t, s.TableDeltas, "extra")
}

func TestActionSummary_Validate(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *ActionSummary
		wantErr error
	}{
		{
			name:  "nil summary",
			build: func() *ActionSummary { return nil },
		},
		{
			name: "well formed",
			build: func() *ActionSummary {
				s := NewActionSummary()
				s.TableRenames = []LabelDelta{Renamed("a", "b")}
				s.TableDeltas["b"] = &TableDelta{AddRows: []int{1}, RemoveRows: []int{1}}
				return s
			},
		},
		{
			name: "malformed table rename",
			build: func() *ActionSummary {
				s := NewActionSummary()
				s.TableRenames = []LabelDelta{{}}
				return s
			},
			wantErr: apperrors.ErrMalformedRename,
		},
		{
			name: "malformed column rename",
			build: func() *ActionSummary {
				s := NewActionSummary()
				s.TableDeltas["t"] = &TableDelta{ColumnRenames: []LabelDelta{{}}}
				return s
			},
			wantErr: apperrors.ErrMalformedRename,
		},
		{
			name: "update overlaps add",
			build: func() *ActionSummary {
				s := NewActionSummary()
				s.TableDeltas["t"] = &TableDelta{AddRows: []int{1}, UpdateRows: []int{1}}
				return s
			},
			wantErr: apperrors.ErrRowListsOverlap,
		},
		{
			name: "update overlaps remove",
			build: func() *ActionSummary {
				s := NewActionSummary()
				s.TableDeltas["t"] = &TableDelta{RemoveRows: []int{2}, UpdateRows: []int{2}}
				return s
			},
			wantErr: apperrors.ErrRowListsOverlap,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestActionSummary_JSONRoundTrip(t *testing.T) {
	s := NewActionSummary()
	s.TableRenames = []LabelDelta{Renamed("tasks", "todos"), Deleted("scratch")}
	s.TableDeltas["todos"] = &TableDelta{
		AddRows:       []int{4},
		UpdateRows:    []int{2},
		ColumnRenames: []LabelDelta{Created("done")},
		ColumnDeltas: map[string]ColumnDelta{
			"done":  {2: {Before: Unknown(), After: Value(true)}},
			"title": {4: {Before: NoValue(), After: Value("buy milk")}},
		},
	}
	s.TableDeltas[RetiredKey("scratch")] = &TableDelta{
		RemoveRows:   []int{1},
		ColumnDeltas: map[string]ColumnDelta{},
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var back ActionSummary
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s.TableRenames, back.TableRenames)
	require.Contains(t, back.TableDeltas, "todos")
	todos := back.TableDeltas["todos"]
	assert.Equal(t, []int{4}, todos.AddRows)
	assert.True(t, todos.ColumnDeltas["done"][2].Before.IsUnknown())
	assert.Equal(t, Value(true), todos.ColumnDeltas["done"][2].After)
	assert.Equal(t, []int{1}, back.TableDeltas[RetiredKey("scratch")].RemoveRows)
}

func TestRetentionPolicy_Exempt(t *testing.T) {
	p := RetentionPolicy{MaxCellDeltasPerTable: 100, RetainColumns: []string{"id", "title"}}
	assert.True(t, p.Exempt("id"))
	assert.False(t, p.Exempt("body"))
	assert.False(t, RetentionPolicy{}.Exempt("id"))
}
