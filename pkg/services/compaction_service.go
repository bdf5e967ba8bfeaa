package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridnote-io/gridnote-engine/pkg/audit"
	"github.com/gridnote-io/gridnote-engine/pkg/models"
	"github.com/gridnote-io/gridnote-engine/pkg/summary"
)

// CompactionResult describes one folded history range.
type CompactionResult struct {
	ID         uuid.UUID
	DocumentID string
	Folded     int
	Summary    *models.ActionSummary
}

// HistoryCompactionService folds many fine-grained undo-log entries into
// one storable, displayable summary.
type HistoryCompactionService interface {
	// Compact folds a chronologically ordered history range into the
	// single equivalent summary. The entries are not modified.
	Compact(ctx context.Context, documentID string, entries []*models.ActionSummary) (*CompactionResult, error)
}

type historyCompactionService struct {
	auditor *audit.OperationsAuditor
	logger  *zap.Logger
}

// NewHistoryCompactionService creates a new HistoryCompactionService.
func NewHistoryCompactionService(auditor *audit.OperationsAuditor, logger *zap.Logger) HistoryCompactionService {
	return &historyCompactionService{
		auditor: auditor,
		logger:  logger,
	}
}

var _ HistoryCompactionService = (*historyCompactionService)(nil)

func (s *historyCompactionService) Compact(ctx context.Context, documentID string, entries []*models.ActionSummary) (*CompactionResult, error) {
	folded, err := summary.Concatenate(entries)
	if err != nil {
		s.auditor.Record(audit.OperationEvent{
			Operation:  audit.OpCompaction,
			DocumentID: documentID,
			InputCount: len(entries),
			Outcome:    "rejected",
			Detail:     err.Error(),
		})
		return nil, fmt.Errorf("compact history for document %q: %w", documentID, err)
	}

	id := s.auditor.Record(audit.OperationEvent{
		Operation:   audit.OpCompaction,
		DocumentID:  documentID,
		InputCount:  len(entries),
		TableCount:  len(folded.TableDeltas),
		RenameCount: len(folded.TableRenames),
		Outcome:     "ok",
	})
	s.logger.Debug("compacted history range",
		zap.String("document_id", documentID),
		zap.Int("entries", len(entries)),
		zap.Int("tables", len(folded.TableDeltas)))

	return &CompactionResult{
		ID:         id,
		DocumentID: documentID,
		Folded:     len(entries),
		Summary:    folded,
	}, nil
}
