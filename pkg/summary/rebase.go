package summary

import (
	"fmt"

	"github.com/gridnote-io/gridnote-engine/pkg/apperrors"
	"github.com/gridnote-io/gridnote-engine/pkg/models"
)

// remapEntry is the image of one identifier under a reference summary:
// either its new name or the fact that it no longer exists.
type remapEntry struct {
	to      string
	deleted bool
}

// buildRemap materializes a rename ledger as one snapshot partial function
// from old names to their images. It is computed once and applied
// uniformly, so a simultaneous swap is a true permutation rather than two
// chained substitutions. A ledger renaming one identifier to two different
// targets is internally inconsistent and rejected.
func buildRemap(renames []models.LabelDelta) (map[string]remapEntry, error) {
	remap := make(map[string]remapEntry, len(renames))
	for _, ld := range renames {
		if err := ld.Validate(); err != nil {
			return nil, err
		}
		if ld.From == nil {
			continue
		}
		entry := remapEntry{deleted: ld.To == nil}
		if ld.To != nil {
			entry.to = *ld.To
		}
		if prev, ok := remap[*ld.From]; ok && prev != entry {
			return nil, fmt.Errorf("identifier %q: %w", *ld.From, apperrors.ErrAmbiguousReference)
		}
		remap[*ld.From] = entry
	}
	return remap, nil
}

// Rebase adjusts target in place so its edits read as if they were made
// after reference's changes. The reference must represent the entire
// divergence since the fork point and be applied exactly once; it is never
// modified. On error the target is left untouched.
func Rebase(reference, target *models.ActionSummary) error {
	if err := reference.Validate(); err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	if err := target.Validate(); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if target.IsEmpty() {
		return nil
	}

	// Materialize every remap up front so inconsistencies surface before
	// any mutation.
	tableRemap, err := buildRemap(reference.TableRenames)
	if err != nil {
		return fmt.Errorf("reference tables: %w", err)
	}
	columnRemaps := make(map[string]map[string]remapEntry, len(reference.TableDeltas))
	for table, delta := range reference.TableDeltas {
		if models.IsRetiredKey(table) {
			// A table the reference deleted drops every target edit at
			// table scope; its column ledger can never apply.
			continue
		}
		remap, err := buildRemap(delta.ColumnRenames)
		if err != nil {
			return fmt.Errorf("reference table %q columns: %w", table, err)
		}
		columnRemaps[table] = remap
	}

	renames, origins := relabelScope(tableRemap, target.TableRenames, target.TableDeltas)
	target.TableRenames = renames

	// Independently relabel each surviving table's column namespace using
	// the reference's column ledger for the table the target was editing.
	// A table the reference deleted is already gone from the target, so a
	// column rename inside it never resurrects the edit.
	for key, delta := range target.TableDeltas {
		upstream, ok := origins[key]
		if !ok {
			// Created by the target; no upstream state to reconcile with.
			continue
		}
		remap, ok := columnRemaps[upstream]
		if !ok {
			continue
		}
		colRenames, _ := relabelScope(remap, delta.ColumnRenames, delta.ColumnDeltas)
		delta.ColumnRenames = colRenames
	}
	return nil
}

// relabelScope rewrites one scope of a target summary through a reference
// remap: ledger entries first (creations kept verbatim, sources of renames
// and deletes rewritten, anything addressing a deleted identifier dropped
// along with its content), then the remaining delta keys. Key moves are
// two-phase so swaps permute cleanly. It returns the rewritten ledger and,
// for every surviving content key, the upstream (post-reference) name of
// the entity it addresses.
func relabelScope[V any](remap map[string]remapEntry, renames []models.LabelDelta, content map[string]V) ([]models.LabelDelta, map[string]string) {
	type keyMove struct {
		from, to string
	}
	var (
		out     []models.LabelDelta
		moves   []keyMove
		doomed  []string
		owned   = make(map[string]string) // content key -> upstream name ("" for creations)
		origins = make(map[string]string)
	)

	claim := func(key, upstream string) {
		owned[key] = upstream
	}

	for _, ld := range renames {
		if ld.From == nil {
			// Creations are always safe to replay.
			out = append(out, ld)
			claim(*ld.To, "")
			continue
		}
		entry, touched := remap[*ld.From]
		if !touched {
			out = append(out, ld)
			if ld.To != nil {
				claim(*ld.To, *ld.From)
			} else {
				claim(models.RetiredKey(*ld.From), *ld.From)
			}
			continue
		}
		if entry.deleted {
			// The entity no longer exists upstream; the edit is moot.
			if ld.To != nil {
				doomed = append(doomed, *ld.To)
			} else {
				doomed = append(doomed, models.RetiredKey(*ld.From))
			}
			continue
		}
		from := entry.to
		if ld.To == nil {
			oldKey := models.RetiredKey(*ld.From)
			newKey := models.RetiredKey(from)
			if oldKey != newKey {
				moves = append(moves, keyMove{from: oldKey, to: newKey})
			}
			claim(oldKey, from)
			out = append(out, models.Deleted(from))
			continue
		}
		claim(*ld.To, from)
		if from == *ld.To {
			// The reference already carried the identifier to the name the
			// target intended; no entry remains.
			continue
		}
		out = append(out, models.Renamed(from, *ld.To))
	}

	// Delta keys with no ledger entry are implicit unchanged-name nodes;
	// relabel them through the same snapshot.
	for key := range content {
		if _, ok := owned[key]; ok {
			continue
		}
		name := models.TrimRetiredKey(key)
		entry, touched := remap[name]
		if !touched {
			owned[key] = name
			continue
		}
		if entry.deleted {
			doomed = append(doomed, key)
			continue
		}
		newKey := entry.to
		if models.IsRetiredKey(key) {
			newKey = models.RetiredKey(entry.to)
		}
		owned[key] = entry.to
		if newKey != key {
			moves = append(moves, keyMove{from: key, to: newKey})
		}
	}

	moved := make(map[string]V, len(moves))
	movedOwned := make(map[string]string, len(moves))
	for _, mv := range moves {
		if v, ok := content[mv.from]; ok {
			moved[mv.to] = v
			delete(content, mv.from)
		}
		if upstream, ok := owned[mv.from]; ok {
			movedOwned[mv.to] = upstream
			delete(owned, mv.from)
		}
	}
	for _, key := range doomed {
		delete(content, key)
	}
	for key, v := range moved {
		content[key] = v
	}
	for key, upstream := range movedOwned {
		owned[key] = upstream
	}

	for key := range content {
		if upstream, ok := owned[key]; ok && upstream != "" {
			origins[key] = upstream
		}
	}
	return out, origins
}
