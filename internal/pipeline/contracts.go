package pipeline

import (
	"slices"
	"sort"
	"strings"

	"github.com/joseph-ayodele/apl-diff/constants"
	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

var revisionOrder = []constants.RevisionType{constants.Addition, constants.Update, constants.Redaction}

// checkDiffReport enforces the Diff Report postconditions shared by the initial and final diff.
func checkDiffReport(r entity.DiffReport, oldRef, newRef entity.ReferenceID) error {
	if r.ItemCount() == 0 {
		return common.ContractViolationf("diff report has no items")
	}
	allowed := map[constants.RevisionType][]string{
		constants.Addition:  {newRef.CitationKey},
		constants.Update:    {oldRef.CitationKey, newRef.CitationKey},
		constants.Redaction: {oldRef.CitationKey},
	}
	known := []string{oldRef.CitationKey, newRef.CitationKey}

	for _, rt := range revisionOrder {
		for i, it := range r.ByType(rt) {
			if strings.TrimSpace(it.Bullet) == "" {
				return common.ContractViolationf("%s[%d]: bullet is blank", plural(rt), i)
			}
			for key := range it.Citations {
				if !slices.Contains(known, key) {
					return common.ContractViolationf("%s[%d]: unknown citation key %q", plural(rt), i, key)
				}
			}
			for _, key := range it.Citations.CitedKeys() {
				if !slices.Contains(allowed[rt], key) {
					return common.ContractViolationf("%s[%d]: %s may not cite %s", plural(rt), i, plural(rt), key)
				}
			}
		}
	}
	return nil
}

// dedupDiffReport drops items repeating an earlier item of the same category,
// compared on case- and whitespace-normalized bullet text. First occurrence wins.
func dedupDiffReport(r entity.DiffReport) (entity.DiffReport, int) {
	dropped := 0
	dedup := func(items []entity.Item) []entity.Item {
		seen := make(map[string]struct{}, len(items))
		out := make([]entity.Item, 0, len(items))
		for _, it := range items {
			key := normalizeBullet(it.Bullet)
			if _, dup := seen[key]; dup {
				dropped++
				continue
			}
			seen[key] = struct{}{}
			out = append(out, it)
		}
		return out
	}
	r.Categories.Additions = dedup(r.Categories.Additions)
	r.Categories.Updates = dedup(r.Categories.Updates)
	r.Categories.Redactions = dedup(r.Categories.Redactions)
	return r, dropped
}

// checkScoredReport enforces the Scored Report postconditions. Struct rules (score range,
// revision type, non-blank text) have already been applied by the validator.
func checkScoredReport(r entity.ScoredReport, inputItems int, oldRef, newRef entity.ReferenceID) error {
	if len(r.Bullets) > inputItems {
		return common.ContractViolationf("scored report has %d bullets for %d input items", len(r.Bullets), inputItems)
	}
	known := []string{oldRef.CitationKey, newRef.CitationKey}
	for i, b := range r.Bullets {
		if b.Score < 1 || b.Score > 10 {
			return common.ContractViolationf("bullets[%d]: score %d outside 1..10", i, b.Score)
		}
		for key := range b.Citations {
			if !slices.Contains(known, key) {
				return common.ContractViolationf("bullets[%d]: unknown citation key %q", i, key)
			}
		}
	}
	if !sort.SliceIsSorted(r.Bullets, func(i, j int) bool { return r.Bullets[i].Score > r.Bullets[j].Score }) {
		return common.ContractViolationf("bullets are not sorted by descending score")
	}
	return nil
}

func normalizeBullet(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func plural(rt constants.RevisionType) string {
	return string(rt) + "s"
}
