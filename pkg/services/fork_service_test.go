package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridnote-io/gridnote-engine/pkg/apperrors"
	"github.com/gridnote-io/gridnote-engine/pkg/models"
)

func TestForkReconciliationService_AdvanceFork(t *testing.T) {
	svc := NewForkReconciliationService(newTestAuditor(), zap.NewNop())

	// Trunk renamed the table after the fork point.
	trunkStep := models.NewActionSummary()
	trunkStep.TableRenames = []models.LabelDelta{models.Renamed("tasks", "todos")}

	fork := models.NewActionSummary()
	fork.TableDeltas["tasks"] = &models.TableDelta{
		UpdateRows: []int{1},
		ColumnDeltas: map[string]models.ColumnDelta{
			"title": {1: {Before: models.Value("a"), After: models.Value("b")}},
		},
	}

	err := svc.AdvanceFork(context.Background(), "doc-1", []*models.ActionSummary{trunkStep}, fork)
	require.NoError(t, err)

	assert.NotContains(t, fork.TableDeltas, "tasks")
	require.Contains(t, fork.TableDeltas, "todos")
	assert.Equal(t, []int{1}, fork.TableDeltas["todos"].UpdateRows)
}

func TestForkReconciliationService_RejectsAmbiguousTrunk(t *testing.T) {
	svc := NewForkReconciliationService(newTestAuditor(), zap.NewNop())

	// A trunk whose fold yields two images for one name cannot be applied.
	trunkStep := models.NewActionSummary()
	trunkStep.TableRenames = []models.LabelDelta{
		models.Renamed("a", "b"),
		models.Renamed("a", "c"),
	}
	fork := models.NewActionSummary()
	fork.TableDeltas["a"] = &models.TableDelta{
		UpdateRows:   []int{1},
		ColumnDeltas: map[string]models.ColumnDelta{},
	}

	err := svc.AdvanceFork(context.Background(), "doc-1", []*models.ActionSummary{trunkStep}, fork)
	assert.ErrorIs(t, err, apperrors.ErrAmbiguousReference)
	assert.Contains(t, fork.TableDeltas, "a", "a rejected advance must leave the fork untouched")
}
