package entity

import (
	"github.com/joseph-ayodele/apl-diff/constants"
)

// Citation points at a location inside one document.
type Citation struct {
	Page int `json:"page"`
	Line int `json:"line"`
}

// Citations maps a citation key (APL25) to a location, or nil when the document is not cited.
type Citations map[string]*Citation

// Clone deep-copies the map.
func (c Citations) Clone() Citations {
	if c == nil {
		return nil
	}
	out := make(Citations, len(c))
	for k, v := range c {
		if v == nil {
			out[k] = nil
			continue
		}
		cp := *v
		out[k] = &cp
	}
	return out
}

// CitedKeys returns the keys with a non-nil location.
func (c Citations) CitedKeys() []string {
	var keys []string
	for k, v := range c {
		if v != nil {
			keys = append(keys, k)
		}
	}
	return keys
}

// Item is one change in a Diff Report.
type Item struct {
	Bullet    string    `json:"bullet" validate:"nonblank"`
	Citations Citations `json:"citations"`
}

// Categories groups Diff Report items by revision type.
type Categories struct {
	Additions  []Item `json:"additions" validate:"required,dive"`
	Updates    []Item `json:"updates" validate:"required,dive"`
	Redactions []Item `json:"redactions" validate:"required,dive"`
}

// DiffReport is produced by the initial and final diff stages.
type DiffReport struct {
	Title      string     `json:"title" validate:"nonblank"`
	Summary    string     `json:"summary"`
	Categories Categories `json:"categories"`
	Conclusion string     `json:"conclusion"`
}

// ItemCount is the number of items across all categories.
func (d DiffReport) ItemCount() int {
	return len(d.Categories.Additions) + len(d.Categories.Updates) + len(d.Categories.Redactions)
}

// ByType returns the items of one category.
func (d DiffReport) ByType(rt constants.RevisionType) []Item {
	switch rt {
	case constants.Addition:
		return d.Categories.Additions
	case constants.Update:
		return d.Categories.Updates
	case constants.Redaction:
		return d.Categories.Redactions
	}
	return nil
}

// ScoredBullet is one entry of the final report.
type ScoredBullet struct {
	BulletTitle   string                 `json:"bullet_title" validate:"nonblank"`
	BulletContent string                 `json:"bullet_content" validate:"nonblank"`
	Score         int                    `json:"score" validate:"min=1,max=10"`
	RevisionType  constants.RevisionType `json:"revision_type" validate:"oneof=addition update redaction"`
	Citations     Citations              `json:"citations"`
}

// ScoredReport is the user-visible result. Bullets are sorted by descending score.
type ScoredReport struct {
	Title      string         `json:"title" validate:"nonblank"`
	Summary    string         `json:"summary"`
	Conclusion string         `json:"conclusion"`
	Bullets    []ScoredBullet `json:"bullets" validate:"required,dive"`
}

// Clone deep-copies the report.
func (r ScoredReport) Clone() ScoredReport {
	out := r
	if r.Bullets != nil {
		out.Bullets = make([]ScoredBullet, len(r.Bullets))
		for i, b := range r.Bullets {
			b.Citations = b.Citations.Clone()
			out.Bullets[i] = b
		}
	}
	return out
}
