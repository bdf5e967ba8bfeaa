// Package summary implements the action summary algebra: concatenation of
// chronological summary sequences into one equivalent summary, and rebasing
// of a fork's summary onto a moved-forward trunk.
package summary

import (
	"sort"

	"github.com/gridnote-io/gridnote-engine/pkg/models"
)

// scopeMerge pairs the delta content of one logical entity across two
// consecutive summaries. The created/deleted flags are set only when the
// entity's lifecycle genuinely spans the pair (created by the first summary
// and edited by the second, or edited by the first and deleted by the
// second); pure pass-through content is never renormalized, which is what
// keeps concatenation with an empty summary an exact identity.
type scopeMerge struct {
	key1      string // content key in the first summary, "" if none
	key2      string // content key in the second summary, "" if none
	resultKey string
	created   bool
	deleted   bool
}

// scopeJoin is the composed rename ledger of one identifier namespace plus
// the content-merge plan derived from it.
type scopeJoin struct {
	renames []models.LabelDelta
	merges  []scopeMerge
}

// liveEntity is one entity alive at the end of the first summary: either an
// explicit ledger entry or an implicit unchanged-name node carrying deltas.
type liveEntity struct {
	from     *string // name before the first summary; nil if created by it
	end      string  // name at the end of the first summary
	key1     string  // content key in the first summary, "" if none
	explicit bool
}

// joinScope composes the rename ledgers of two consecutive summaries over
// one identifier namespace (tables, or the columns of one table) as a
// single join between end-names of the first and source-names of the
// second, and plans the content merges that follow from it.
func joinScope(ren1 []models.LabelDelta, keys1 map[string]struct{}, ren2 []models.LabelDelta, keys2 map[string]struct{}) scopeJoin {
	var out scopeJoin

	// End-names of the first summary's explicit entries, so implicit
	// unchanged-name nodes are only synthesized for the rest.
	ends1 := make(map[string]struct{})
	dead1 := make(map[string]struct{})
	for _, ld := range ren1 {
		if ld.To != nil {
			ends1[*ld.To] = struct{}{}
		} else if ld.From != nil {
			dead1[*ld.From] = struct{}{}
		}
	}

	byFrom2 := make(map[string]models.LabelDelta)
	for _, ld := range ren2 {
		if ld.From != nil {
			byFrom2[*ld.From] = ld
		}
	}
	consumedRen2 := make(map[string]struct{})
	consumedKey2 := make(map[string]struct{})

	claimKey2 := func(key string) string {
		if _, ok := keys2[key]; !ok {
			return ""
		}
		consumedKey2[key] = struct{}{}
		return key
	}

	joinLive := func(ent liveEntity) {
		ld2, touched := byFrom2[ent.end]
		if touched {
			consumedRen2[ent.end] = struct{}{}
			if ld2.To == nil {
				// Deleted by the second summary.
				key2 := claimKey2(models.RetiredKey(ent.end))
				if ent.from == nil {
					// Created then deleted: cancels entirely, content included.
					return
				}
				out.renames = append(out.renames, models.Deleted(*ent.from))
				if ent.key1 != "" || key2 != "" {
					out.merges = append(out.merges, scopeMerge{
						key1:      ent.key1,
						key2:      key2,
						resultKey: models.RetiredKey(*ent.from),
						deleted:   ent.key1 != "",
					})
				}
				return
			}
			// Renamed by the second summary: compose the two hops.
			to := *ld2.To
			key2 := claimKey2(to)
			switch {
			case ent.from == nil:
				out.renames = append(out.renames, models.Created(to))
			case *ent.from != to:
				out.renames = append(out.renames, models.Renamed(*ent.from, to))
			}
			if ent.key1 != "" || key2 != "" {
				out.merges = append(out.merges, scopeMerge{
					key1:      ent.key1,
					key2:      key2,
					resultKey: to,
					created:   ent.from == nil && key2 != "",
				})
			}
			return
		}
		// Untouched by the second ledger; deltas may still overlap.
		key2 := claimKey2(ent.end)
		switch {
		case ent.from == nil:
			out.renames = append(out.renames, models.Created(ent.end))
		case ent.explicit && *ent.from != ent.end:
			out.renames = append(out.renames, models.Renamed(*ent.from, ent.end))
		}
		if ent.key1 != "" || key2 != "" {
			out.merges = append(out.merges, scopeMerge{
				key1:      ent.key1,
				key2:      key2,
				resultKey: ent.end,
				created:   ent.from == nil && key2 != "",
			})
		}
	}

	key1For := func(end string) string {
		if _, ok := keys1[end]; ok {
			return end
		}
		return ""
	}

	// First summary's ledger, in order. Dead entities pass through: a later
	// create reusing the same name is an unrelated instance and never
	// cancels against them.
	for _, ld := range ren1 {
		if ld.To == nil {
			out.renames = append(out.renames, ld)
			deadKey := models.RetiredKey(*ld.From)
			if _, ok := keys1[deadKey]; ok {
				out.merges = append(out.merges, scopeMerge{key1: deadKey, resultKey: deadKey})
			}
			continue
		}
		joinLive(liveEntity{from: ld.From, end: *ld.To, key1: key1For(*ld.To), explicit: true})
	}

	// Implicit unchanged-name nodes: entities with deltas but no ledger
	// entry, tracked so a later rename still finds and relabels them.
	for _, k := range sortedKeys(keys1) {
		if models.IsRetiredKey(k) {
			if _, dead := dead1[models.TrimRetiredKey(k)]; !dead {
				// Orphan retained-dead content; pass through.
				out.merges = append(out.merges, scopeMerge{key1: k, resultKey: k})
			}
			continue
		}
		if _, ok := ends1[k]; ok {
			continue
		}
		name := k
		joinLive(liveEntity{from: &name, end: k, key1: k})
	}

	// Second summary's ledger entries that joined nothing, in order.
	for _, ld := range ren2 {
		if ld.From != nil {
			if _, ok := consumedRen2[*ld.From]; ok {
				continue
			}
		}
		out.renames = append(out.renames, ld)
		var key string
		switch {
		case ld.From == nil:
			key = *ld.To
		case ld.To == nil:
			key = models.RetiredKey(*ld.From)
		default:
			key = *ld.To
		}
		if key2 := claimKey2(key); key2 != "" {
			out.merges = append(out.merges, scopeMerge{key2: key2, resultKey: key2})
		}
	}

	// Remaining second-summary content: implicit unchanged names.
	for _, k := range sortedKeys(keys2) {
		if _, ok := consumedKey2[k]; ok {
			continue
		}
		out.merges = append(out.merges, scopeMerge{key2: k, resultKey: k})
	}

	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
