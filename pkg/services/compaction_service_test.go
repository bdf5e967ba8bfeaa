package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridnote-io/gridnote-engine/pkg/apperrors"
	"github.com/gridnote-io/gridnote-engine/pkg/audit"
	"github.com/gridnote-io/gridnote-engine/pkg/models"
)

func newTestAuditor() *audit.OperationsAuditor {
	return audit.NewOperationsAuditor(zap.NewNop())
}

func TestHistoryCompactionService_Compact(t *testing.T) {
	svc := NewHistoryCompactionService(newTestAuditor(), zap.NewNop())

	create := models.NewActionSummary()
	create.TableRenames = []models.LabelDelta{models.Created("tasks")}
	create.TableDeltas["tasks"] = &models.TableDelta{
		AddRows: []int{1},
		ColumnDeltas: map[string]models.ColumnDelta{
			"title": {1: {Before: models.NoValue(), After: models.Value("a")}},
		},
	}
	edit := models.NewActionSummary()
	edit.TableDeltas["tasks"] = &models.TableDelta{
		UpdateRows: []int{1},
		ColumnDeltas: map[string]models.ColumnDelta{
			"title": {1: {Before: models.Value("a"), After: models.Value("b")}},
		},
	}

	result, err := svc.Compact(context.Background(), "doc-1", []*models.ActionSummary{create, edit})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, result.ID)
	assert.Equal(t, "doc-1", result.DocumentID)
	assert.Equal(t, 2, result.Folded)
	require.Contains(t, result.Summary.TableDeltas, "tasks")
	cell := result.Summary.TableDeltas["tasks"].ColumnDeltas["title"][1]
	assert.True(t, cell.Before.IsAbsent())
	assert.Equal(t, models.Value("b"), cell.After)
}

func TestHistoryCompactionService_RejectsMalformedHistory(t *testing.T) {
	svc := NewHistoryCompactionService(newTestAuditor(), zap.NewNop())

	bad := models.NewActionSummary()
	bad.TableRenames = []models.LabelDelta{{}}

	_, err := svc.Compact(context.Background(), "doc-1", []*models.ActionSummary{bad})
	assert.ErrorIs(t, err, apperrors.ErrMalformedRename)
}
