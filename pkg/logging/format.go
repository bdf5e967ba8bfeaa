package logging

import (
	"fmt"

	"github.com/gridnote-io/gridnote-engine/pkg/models"
)

const (
	// MaxCellLogLength is the maximum length of a cell value to log.
	MaxCellLogLength = 80
)

// FormatCell renders a cell endpoint for log output, bounded so arbitrary
// domain values cannot blow up log lines.
func FormatCell(c models.CellValue) string {
	switch {
	case c.IsUnknown():
		return "?"
	case c.IsAbsent():
		return "null"
	}
	v, _ := c.Get()
	return TruncateString(fmt.Sprintf("%v", v), MaxCellLogLength)
}

// FormatCellDelta renders a (before, after) pair for log output.
func FormatCellDelta(d models.CellDelta) string {
	return FormatCell(d.Before) + " -> " + FormatCell(d.After)
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
