// Command compact-history folds an exported action history file into one
// equivalent summary, for offline undo-log compaction and inspection.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/gridnote-io/gridnote-engine/pkg/audit"
	"github.com/gridnote-io/gridnote-engine/pkg/models"
	"github.com/gridnote-io/gridnote-engine/pkg/services"
)

func main() {
	input := flag.String("input", "history.json", "JSON array of action summaries, oldest first")
	output := flag.String("output", "", "write the compacted summary here instead of stdout")
	document := flag.String("document", "", "document id for the audit trail")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	logConfig := zap.NewDevelopmentConfig()
	if !*verbose {
		logConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := logConfig.Build()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *input, err)
	}
	var history []*models.ActionSummary
	if err := json.Unmarshal(data, &history); err != nil {
		log.Fatalf("Failed to parse %s: %v", *input, err)
	}

	svc := services.NewHistoryCompactionService(audit.NewOperationsAuditor(logger), logger)
	result, err := svc.Compact(context.Background(), *document, history)
	if err != nil {
		log.Fatalf("Compaction failed: %v", err)
	}

	out, err := json.MarshalIndent(result.Summary, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode summary: %v", err)
	}
	if *output == "" {
		fmt.Println(string(out))
		return
	}
	if err := os.WriteFile(*output, out, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *output, err)
	}
	logger.Info("wrote compacted summary",
		zap.String("path", *output),
		zap.Int("entries_folded", result.Folded),
		zap.String("run_id", result.ID.String()))
}
