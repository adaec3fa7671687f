package llm

import "github.com/joseph-ayodele/apl-diff/constants"

// Schemas are validated locally after every structured call. Value ranges (score 1..10,
// citation keys) are checked by the stages so the error names the offending bullet.

// BuildDiffReportSchema returns the JSON Schema of a Diff Report.
func BuildDiffReportSchema() map[string]any {
	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"bullet":    map[string]any{"type": "string", "minLength": 1},
			"citations": citationsProp(),
		},
		"required": []string{"bullet", "citations"},
	}
	items := map[string]any{"type": "array", "items": item}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":   map[string]any{"type": "string", "minLength": 1},
			"summary": map[string]any{"type": "string"},
			"categories": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"additions":  items,
					"updates":    items,
					"redactions": items,
				},
				"required": []string{"additions", "updates", "redactions"},
			},
			"conclusion": map[string]any{"type": "string"},
		},
		"required": []string{"title", "categories"},
	}
}

// BuildScoredReportSchema returns the JSON Schema of a Scored Report.
func BuildScoredReportSchema() map[string]any {
	bullet := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"bullet_title":   map[string]any{"type": "string", "minLength": 1},
			"bullet_content": map[string]any{"type": "string", "minLength": 1},
			"score":          map[string]any{"type": "integer"},
			"revision_type": map[string]any{
				"type": "string",
				"enum": constants.RevisionTypesAsStringSlice(),
			},
			"citations": citationsProp(),
		},
		"required": []string{"bullet_title", "bullet_content", "score", "revision_type", "citations"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":      map[string]any{"type": "string", "minLength": 1},
			"summary":    map[string]any{"type": "string"},
			"conclusion": map[string]any{"type": "string"},
			"bullets":    map[string]any{"type": "array", "items": bullet},
		},
		"required": []string{"title", "bullets"},
	}
}

// citationsProp: {"APL25": {"page": 3, "line": 12}, "APL21": null}
func citationsProp() map[string]any {
	return map[string]any{
		"type": "object",
		"additionalProperties": map[string]any{
			"oneOf": []any{
				map[string]any{"type": "null"},
				map[string]any{
					"type": "object",
					"properties": map[string]any{
						"page": map[string]any{"type": "integer", "minimum": 0},
						"line": map[string]any{"type": "integer", "minimum": 0},
					},
					"required": []string{"page", "line"},
				},
			},
		},
	}
}
