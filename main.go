// Command gridnote-summary folds a chronological history of action
// summaries into one equivalent summary and prints its bounded tabular
// diff, the same structure the activity log UI consumes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gridnote-io/gridnote-engine/pkg/config"
	"github.com/gridnote-io/gridnote-engine/pkg/jsonutil"
	"github.com/gridnote-io/gridnote-engine/pkg/logging"
	"github.com/gridnote-io/gridnote-engine/pkg/models"
	"github.com/gridnote-io/gridnote-engine/pkg/render"
	"github.com/gridnote-io/gridnote-engine/pkg/summary"
)

func main() {
	input := flag.String("input", "", "path to a JSON array of action summaries, oldest first")
	format := flag.String("format", "json", "output format: json, yaml, or text")
	maxRows := flag.Int("max-rows", 0, "override the configured per-table row cap")
	flag.Parse()

	if *input == "" {
		log.Fatal("missing required -input flag")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	rowCap := cfg.Render.MaxRowsPerTable
	if *maxRows > 0 {
		rowCap = *maxRows
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *input, err)
	}
	var history []*models.ActionSummary
	if err := json.Unmarshal(data, &history); err != nil {
		log.Fatalf("Failed to parse %s: %v", *input, err)
	}

	folded, err := summary.Concatenate(history)
	if err != nil {
		log.Fatalf("Failed to fold history: %v", err)
	}
	diffs, err := render.Render(folded, render.Options{MaxRowsPerTable: rowCap})
	if err != nil {
		log.Fatalf("Failed to render diff: %v", err)
	}

	switch *format {
	case "json":
		out, err := json.MarshalIndent(diffs, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode output: %v", err)
		}
		fmt.Println(string(out))
	case "yaml":
		// Round-trip through JSON so the custom cell encoding survives.
		raw, err := json.Marshal(diffs)
		if err != nil {
			log.Fatalf("Failed to encode output: %v", err)
		}
		var tree any
		if err := json.Unmarshal(raw, &tree); err != nil {
			log.Fatalf("Failed to encode output: %v", err)
		}
		out, err := yaml.Marshal(tree)
		if err != nil {
			log.Fatalf("Failed to encode output: %v", err)
		}
		fmt.Print(string(out))
	case "text":
		printText(diffs)
	default:
		log.Fatalf("Unknown output format %q", *format)
	}
}

func printText(diffs map[string]*render.TableDiff) {
	tables := make([]string, 0, len(diffs))
	for table := range diffs {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		diff := diffs[table]
		fmt.Printf("=== %s\n", table)
		for _, row := range diff.Cells {
			if row.Kind == render.RowOmitted {
				fmt.Printf("  %s %s\n", row.Kind, row.Note)
				continue
			}
			fmt.Printf("  %s %d:", row.Kind, row.RowID)
			for i, cd := range row.CellDeltas {
				fmt.Printf(" %s=%s→%s", diff.Header[i], cellText(cd.Before), cellText(cd.After))
			}
			fmt.Println()
		}
	}
}

func cellText(c models.CellValue) string {
	if !c.IsKnown() {
		return logging.FormatCell(c)
	}
	v, _ := c.Get()
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return jsonutil.CellDisplayValue(raw)
}
