package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gridnote-io/gridnote-engine/pkg/audit"
	"github.com/gridnote-io/gridnote-engine/pkg/models"
	"github.com/gridnote-io/gridnote-engine/pkg/summary"
)

// ForkReconciliationService re-expresses a fork's pending changes against
// a trunk that has moved forward since the fork point, so the fork can be
// replayed, compared, or discarded.
type ForkReconciliationService interface {
	// AdvanceFork rebases fork in place onto the trunk. trunk must be the
	// entire chronological divergence since the fork point; advancing a
	// fork piecemeal or twice against the same range is undefined.
	AdvanceFork(ctx context.Context, documentID string, trunk []*models.ActionSummary, fork *models.ActionSummary) error
}

type forkReconciliationService struct {
	auditor *audit.OperationsAuditor
	logger  *zap.Logger
}

// NewForkReconciliationService creates a new ForkReconciliationService.
func NewForkReconciliationService(auditor *audit.OperationsAuditor, logger *zap.Logger) ForkReconciliationService {
	return &forkReconciliationService{
		auditor: auditor,
		logger:  logger,
	}
}

var _ ForkReconciliationService = (*forkReconciliationService)(nil)

func (s *forkReconciliationService) AdvanceFork(ctx context.Context, documentID string, trunk []*models.ActionSummary, fork *models.ActionSummary) error {
	reference, err := summary.Concatenate(trunk)
	if err != nil {
		return fmt.Errorf("fold trunk divergence for document %q: %w", documentID, err)
	}
	if err := summary.Rebase(reference, fork); err != nil {
		s.auditor.Record(audit.OperationEvent{
			Operation:  audit.OpForkAdvance,
			DocumentID: documentID,
			InputCount: len(trunk),
			Outcome:    "rejected",
			Detail:     err.Error(),
		})
		return fmt.Errorf("rebase fork for document %q: %w", documentID, err)
	}

	s.auditor.Record(audit.OperationEvent{
		Operation:   audit.OpForkAdvance,
		DocumentID:  documentID,
		InputCount:  len(trunk),
		TableCount:  len(fork.TableDeltas),
		RenameCount: len(fork.TableRenames),
		Outcome:     "ok",
	})
	s.logger.Debug("advanced fork",
		zap.String("document_id", documentID),
		zap.Int("trunk_entries", len(trunk)),
		zap.Int("surviving_tables", len(fork.TableDeltas)))
	return nil
}
