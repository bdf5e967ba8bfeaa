package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gridnote-io/gridnote-engine/pkg/config"
	"github.com/gridnote-io/gridnote-engine/pkg/models"
	"github.com/gridnote-io/gridnote-engine/pkg/render"
)

// ActivityLogService renders summaries into the bounded per-table diffs
// the activity and audit log UI consumes.
type ActivityLogService interface {
	// RenderEntry renders one summary with the configured display cap.
	RenderEntry(ctx context.Context, s *models.ActionSummary) (map[string]*render.TableDiff, error)
}

type activityLogService struct {
	cfg    config.RenderConfig
	logger *zap.Logger
}

// NewActivityLogService creates a new ActivityLogService.
func NewActivityLogService(cfg config.RenderConfig, logger *zap.Logger) ActivityLogService {
	return &activityLogService{
		cfg:    cfg,
		logger: logger,
	}
}

var _ ActivityLogService = (*activityLogService)(nil)

func (s *activityLogService) RenderEntry(ctx context.Context, sum *models.ActionSummary) (map[string]*render.TableDiff, error) {
	diffs, err := render.Render(sum, render.Options{MaxRowsPerTable: s.cfg.MaxRowsPerTable})
	if err != nil {
		return nil, fmt.Errorf("render activity entry: %w", err)
	}
	s.logger.Debug("rendered activity entry", zap.Int("tables", len(diffs)))
	return diffs, nil
}
