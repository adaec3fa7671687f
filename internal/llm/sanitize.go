package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/apl-diff/constants"
)

var (
	reportKeys   = []string{"title", "summary", "conclusion", "categories", "bullets"}
	categoryKeys = []string{"additions", "updates", "redactions"}
	itemKeys     = []string{"bullet", "citations"}
	bulletKeys   = []string{"bullet_title", "bullet_content", "score", "revision_type", "citations"}
	locationKeys = []string{"page", "line"}

	// bullet field synonyms seen in practice; applied only when the canonical key is absent
	bulletSynonyms = [][2]string{
		{"type", "revision_type"},
		{"title", "bullet_title"},
		{"content", "bullet_content"},
		{"bullet", "bullet_content"},
	}
)

// StripCodeFences removes a Markdown code fence (```json ... ```) wrapped around s.
func StripCodeFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	} else {
		t = strings.TrimPrefix(t, "```")
	}
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}

// NormalizeReportJSON rewrites the key spellings models commonly emit for Diff and Scored
// reports so the document can validate:
// - case-folds known keys (Title, Categories, Additions, ...)
// - renames bullet synonyms (type -> revision_type, title -> bullet_title, ...)
// - canonicalizes revision_type labels ("Addition", "Additions" -> "addition")
// - coerces numeric strings in score/page/line to numbers
//
// Citation keys are left untouched. Returns the rewritten document and the list of changes.
func NormalizeReportJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var changed []string
	foldKeys(m, reportKeys, "", &changed)

	if cats, ok := m["categories"].(map[string]any); ok {
		foldKeys(cats, categoryKeys, "categories.", &changed)
		for _, cat := range categoryKeys {
			items, _ := cats[cat].([]any)
			for i, it := range items {
				item, ok := it.(map[string]any)
				if !ok {
					continue
				}
				path := fmt.Sprintf("categories.%s[%d].", cat, i)
				foldKeys(item, itemKeys, path, &changed)
				normalizeCitations(item, path, &changed)
			}
		}
	}

	if bullets, ok := m["bullets"].([]any); ok {
		for i, b := range bullets {
			bullet, ok := b.(map[string]any)
			if !ok {
				continue
			}
			path := fmt.Sprintf("bullets[%d].", i)
			foldKeys(bullet, bulletKeys, path, &changed)
			for _, syn := range bulletSynonyms {
				renameKey(bullet, syn[0], syn[1], path, &changed)
			}
			if v, ok := bullet["revision_type"].(string); ok {
				if rt, ok := constants.CanonicalizeRevisionType(v); ok && string(rt) != v {
					bullet["revision_type"] = string(rt)
					changed = append(changed, path+"revision_type="+string(rt))
				}
			}
			coerceInt(bullet, "score", path, &changed)
			normalizeCitations(bullet, path, &changed)
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, changed, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(changed) > 0 {
		logger.Warn("llm.sanitize.normalized", "changes", changed)
	}
	return out, changed, nil
}

func normalizeCitations(obj map[string]any, path string, changed *[]string) {
	cits, ok := obj["citations"].(map[string]any)
	if !ok {
		return
	}
	for key, v := range cits {
		loc, ok := v.(map[string]any)
		if !ok {
			continue
		}
		p := path + "citations." + key + "."
		foldKeys(loc, locationKeys, p, changed)
		coerceInt(loc, "page", p, changed)
		coerceInt(loc, "line", p, changed)
	}
}

// foldKeys renames keys that match a canonical key case-insensitively.
func foldKeys(m map[string]any, canonical []string, path string, changed *[]string) {
	for k := range maps.Clone(m) {
		for _, c := range canonical {
			if k == c || !strings.EqualFold(k, c) {
				continue
			}
			if _, exists := m[c]; !exists {
				m[c] = m[k]
				*changed = append(*changed, path+k+"->"+c)
			}
			delete(m, k)
			break
		}
	}
}

func renameKey(m map[string]any, from, to, path string, changed *[]string) {
	if _, exists := m[to]; exists {
		return
	}
	for k, v := range maps.Clone(m) {
		if strings.EqualFold(k, from) {
			m[to] = v
			delete(m, k)
			*changed = append(*changed, path+k+"->"+to)
			return
		}
	}
}

func coerceInt(m map[string]any, key, path string, changed *[]string) {
	s, ok := m[key].(string)
	if !ok {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return
	}
	m[key] = n
	*changed = append(*changed, path+key+"(string->int)")
}
