package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gridnote-io/gridnote-engine/pkg/models"
)

func TestRetentionService_ZeroCapRetainsEverything(t *testing.T) {
	svc := NewRetentionService(zap.NewNop())

	s := models.NewActionSummary()
	s.TableDeltas["t"] = &models.TableDelta{
		UpdateRows: []int{1, 2},
		ColumnDeltas: map[string]models.ColumnDelta{
			"c": {
				1: {Before: models.Value("a"), After: models.Value("b")},
				2: {Before: models.Value("c"), After: models.Value("d")},
			},
		},
	}

	degraded, err := svc.EnforcePolicy(context.Background(), models.RetentionPolicy{}, s)
	require.NoError(t, err)
	assert.Zero(t, degraded)
	assert.Equal(t, models.Value("b"), s.TableDeltas["t"].ColumnDeltas["c"][1].After)
}

func TestRetentionService_DegradesOverBudgetCells(t *testing.T) {
	svc := NewRetentionService(zap.NewNop())

	s := models.NewActionSummary()
	s.TableDeltas["t"] = &models.TableDelta{
		UpdateRows: []int{1, 2, 3},
		ColumnDeltas: map[string]models.ColumnDelta{
			"c": {
				1: {Before: models.Value("a"), After: models.Value("b")},
				2: {Before: models.Value("c"), After: models.Value("d")},
				3: {Before: models.Value("e"), After: models.Value("f")},
			},
		},
	}

	degraded, err := svc.EnforcePolicy(context.Background(), models.RetentionPolicy{MaxCellDeltasPerTable: 2}, s)
	require.NoError(t, err)
	assert.Equal(t, 1, degraded)

	cells := s.TableDeltas["t"].ColumnDeltas["c"]
	assert.Equal(t, models.Value("b"), cells[1].After, "cells inside the budget keep literal values")
	assert.Equal(t, models.Value("d"), cells[2].After)
	assert.True(t, cells[3].Before.IsUnknown())
	assert.True(t, cells[3].After.IsUnknown())
}

func TestRetentionService_ExemptColumnsNeverDegrade(t *testing.T) {
	svc := NewRetentionService(zap.NewNop())

	s := models.NewActionSummary()
	s.TableDeltas["t"] = &models.TableDelta{
		UpdateRows: []int{1, 2},
		ColumnDeltas: map[string]models.ColumnDelta{
			"body":  {1: {Before: models.Value("long"), After: models.Value("longer")}},
			"title": {2: {Before: models.Value("x"), After: models.Value("y")}},
		},
	}
	policy := models.RetentionPolicy{MaxCellDeltasPerTable: 1, RetainColumns: []string{"title"}}

	degraded, err := svc.EnforcePolicy(context.Background(), policy, s)
	require.NoError(t, err)
	assert.Zero(t, degraded, "one budgeted cell plus one exempt cell fits a cap of one")
	assert.Equal(t, models.Value("y"), s.TableDeltas["t"].ColumnDeltas["title"][2].After)
}

func TestRetentionService_ValuelessCellsDoNotChargeBudget(t *testing.T) {
	svc := NewRetentionService(zap.NewNop())

	s := models.NewActionSummary()
	s.TableDeltas["t"] = &models.TableDelta{
		UpdateRows: []int{1, 2, 3},
		ColumnDeltas: map[string]models.ColumnDelta{
			"c": {
				1: {Before: models.Unknown(), After: models.Unknown()},
				2: {Before: models.Value("a"), After: models.Value("b")},
				3: {Before: models.Value("c"), After: models.Value("d")},
			},
		},
	}

	degraded, err := svc.EnforcePolicy(context.Background(), models.RetentionPolicy{MaxCellDeltasPerTable: 1}, s)
	require.NoError(t, err)
	assert.Equal(t, 1, degraded, "the already-unknown cell retains nothing and must not count")

	cells := s.TableDeltas["t"].ColumnDeltas["c"]
	assert.Equal(t, models.Value("b"), cells[2].After, "the first literal cell fits the budget")
	assert.True(t, cells[3].After.IsUnknown())
}

func TestRetentionService_LogsBoundedSampleOfDroppedDelta(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewRetentionService(zap.New(core))

	s := models.NewActionSummary()
	s.TableDeltas["t"] = &models.TableDelta{
		UpdateRows: []int{1, 2},
		ColumnDeltas: map[string]models.ColumnDelta{
			"c": {
				1: {Before: models.Value("keep"), After: models.Value("kept")},
				2: {Before: models.Value("old"), After: models.Value("new")},
			},
		},
	}

	_, err := svc.EnforcePolicy(context.Background(), models.RetentionPolicy{MaxCellDeltasPerTable: 1}, s)
	require.NoError(t, err)

	entries := logs.FilterMessage("degraded over-budget cell deltas").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "old -> new", entries[0].ContextMap()["first_dropped"])
}

func TestRetentionService_KeepsStructuralNulls(t *testing.T) {
	svc := NewRetentionService(zap.NewNop())

	s := models.NewActionSummary()
	s.TableDeltas["t"] = &models.TableDelta{
		AddRows: []int{1, 2},
		ColumnDeltas: map[string]models.ColumnDelta{
			"c": {
				1: {Before: models.NoValue(), After: models.Value("x")},
				2: {Before: models.NoValue(), After: models.Value("y")},
			},
		},
	}

	_, err := svc.EnforcePolicy(context.Background(), models.RetentionPolicy{MaxCellDeltasPerTable: 1}, s)
	require.NoError(t, err)

	over := s.TableDeltas["t"].ColumnDeltas["c"][2]
	assert.True(t, over.Before.IsAbsent(), "a creation endpoint stays authoritatively null")
	assert.True(t, over.After.IsUnknown())
}
