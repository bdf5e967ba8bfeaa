package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/gridnote-io/gridnote-engine/pkg/logging"
	"github.com/gridnote-io/gridnote-engine/pkg/models"
)

// RetentionService enforces the producer-side cell retention policy:
// summaries stay bounded by degrading literal cell values beyond the
// per-table cap to the Unknown sentinel instead of retaining them.
type RetentionService interface {
	// EnforcePolicy degrades over-budget literal cell endpoints in place
	// and returns how many cells were degraded. Exempt columns are always
	// retained in full and never count against the cap. A zero cap means
	// unlimited retention.
	EnforcePolicy(ctx context.Context, policy models.RetentionPolicy, s *models.ActionSummary) (int, error)
}

type retentionService struct {
	logger *zap.Logger
}

// NewRetentionService creates a new RetentionService.
func NewRetentionService(logger *zap.Logger) RetentionService {
	return &retentionService{logger: logger.Named("retention-service")}
}

var _ RetentionService = (*retentionService)(nil)

func (s *retentionService) EnforcePolicy(ctx context.Context, policy models.RetentionPolicy, sum *models.ActionSummary) (int, error) {
	if err := sum.Validate(); err != nil {
		return 0, fmt.Errorf("enforce retention policy: %w", err)
	}
	if policy.MaxCellDeltasPerTable <= 0 || sum == nil {
		return 0, nil
	}

	degraded := 0
	var sample models.CellDelta
	for _, table := range sortedDeltaKeys(sum.TableDeltas) {
		delta := sum.TableDeltas[table]
		if delta == nil {
			continue
		}
		budget := policy.MaxCellDeltasPerTable

		for _, col := range sortedColumnKeys(delta.ColumnDeltas) {
			if policy.Exempt(col) {
				continue
			}
			cells := delta.ColumnDeltas[col]
			ids := make([]int, 0, len(cells))
			for id := range cells {
				ids = append(ids, id)
			}
			sort.Ints(ids)
			for _, id := range ids {
				cd := cells[id]
				// A cell with no literal endpoint retains nothing; it
				// neither charges the budget nor counts as degraded.
				if !cd.Before.IsKnown() && !cd.After.IsKnown() {
					continue
				}
				if budget > 0 {
					budget--
					continue
				}
				if degraded == 0 {
					sample = cd
				}
				cells[id] = degradeCell(cd)
				degraded++
			}
		}
	}

	if degraded > 0 {
		s.logger.Debug("degraded over-budget cell deltas",
			zap.Int("cells", degraded),
			zap.Int("cap", policy.MaxCellDeltasPerTable),
			zap.String("first_dropped", logging.FormatCellDelta(sample)))
	}
	return degraded, nil
}

// degradeCell forgets literal values but keeps structural nulls: a creation
// or deletion endpoint stays authoritatively absent.
func degradeCell(cd models.CellDelta) models.CellDelta {
	if cd.Before.IsKnown() {
		cd.Before = models.Unknown()
	}
	if cd.After.IsKnown() {
		cd.After = models.Unknown()
	}
	return cd
}

func sortedDeltaKeys(m map[string]*models.TableDelta) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedColumnKeys(m map[string]models.ColumnDelta) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
