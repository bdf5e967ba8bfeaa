// Package audit provides structured audit logging of summary algebra
// operations for the document engine's activity trail. Events are logged
// in structured JSON format for easy parsing and downstream ingestion.
package audit

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OperationType categorizes auditable summary operations.
type OperationType string

const (
	// OpCompaction is logged when a history range is folded into one summary.
	OpCompaction OperationType = "history_compaction"
	// OpForkAdvance is logged when a fork summary is rebased onto the trunk.
	OpForkAdvance OperationType = "fork_advance"
)

// OperationEvent represents one auditable algebra operation.
type OperationEvent struct {
	Timestamp   time.Time     `json:"timestamp"`
	EventID     uuid.UUID     `json:"event_id"`
	Operation   OperationType `json:"operation"`
	DocumentID  string        `json:"document_id,omitempty"`
	InputCount  int           `json:"input_count"`
	TableCount  int           `json:"table_count"`
	RenameCount int           `json:"rename_count"`
	Outcome     string        `json:"outcome"` // ok, rejected
	Detail      string        `json:"detail,omitempty"`
}

// OperationsAuditor logs summary operations on a dedicated logger
// namespace so the activity trail is easy to filter out of engine logs.
type OperationsAuditor struct {
	logger *zap.Logger
}

// NewOperationsAuditor creates an auditor with a "summary_audit" child
// logger namespace.
func NewOperationsAuditor(logger *zap.Logger) *OperationsAuditor {
	return &OperationsAuditor{logger: logger.Named("summary_audit")}
}

// Record logs one operation event. The event id is assigned here.
func (a *OperationsAuditor) Record(event OperationEvent) uuid.UUID {
	event.EventID = uuid.New()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	fields := []zap.Field{
		zap.Time("timestamp", event.Timestamp),
		zap.String("event_id", event.EventID.String()),
		zap.String("operation", string(event.Operation)),
		zap.Int("input_count", event.InputCount),
		zap.Int("table_count", event.TableCount),
		zap.Int("rename_count", event.RenameCount),
		zap.String("outcome", event.Outcome),
	}
	if event.DocumentID != "" {
		fields = append(fields, zap.String("document_id", event.DocumentID))
	}
	if event.Detail != "" {
		fields = append(fields, zap.String("detail", event.Detail))
	}
	if event.Outcome == "ok" {
		a.logger.Info("summary operation", fields...)
	} else {
		a.logger.Warn("summary operation", fields...)
	}
	return event.EventID
}
