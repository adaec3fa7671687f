package constants

import (
	"strings"
)

// RevisionType is the category a scored bullet came from.
type RevisionType string

const (
	Addition  RevisionType = "addition"
	Update    RevisionType = "update"
	Redaction RevisionType = "redaction"
)

var allRevisionTypes = []RevisionType{
	Addition,
	Update,
	Redaction,
}

func RevisionTypesAsStringSlice() []string {
	result := make([]string, len(allRevisionTypes))
	for i, rt := range allRevisionTypes {
		result[i] = string(rt)
	}
	return result
}

// CanonicalizeRevisionType maps the labels the model tends to emit
// ("Addition", "Additions", "added", ...) onto a RevisionType.
func CanonicalizeRevisionType(input string) (RevisionType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]RevisionType{
		"additions":  Addition,
		"added":      Addition,
		"new":        Addition,
		"updates":    Update,
		"updated":    Update,
		"change":     Update,
		"changed":    Update,
		"redactions": Redaction,
		"redacted":   Redaction,
		"removed":    Redaction,
		"removal":    Redaction,
		"deleted":    Redaction,
	}
	if rt, ok := synonyms[normalized]; ok {
		return rt, true
	}

	for _, rt := range allRevisionTypes {
		if normalized == string(rt) {
			return rt, true
		}
	}
	return "", false
}
