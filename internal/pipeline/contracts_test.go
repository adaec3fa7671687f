package pipeline

import (
	"strings"
	"testing"

	"github.com/joseph-ayodele/apl-diff/constants"
	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

var (
	oldRef = entity.ReferenceID{ID: "21-004", Period: "2021", CitationKey: "APL21"}
	newRef = entity.ReferenceID{ID: "25-008", Period: "2025", CitationKey: "APL25"}
)

func at(page, line int) *entity.Citation { return &entity.Citation{Page: page, Line: line} }

func diffWith(add, upd, red []entity.Item) entity.DiffReport {
	if add == nil {
		add = []entity.Item{}
	}
	if upd == nil {
		upd = []entity.Item{}
	}
	if red == nil {
		red = []entity.Item{}
	}
	return entity.DiffReport{Title: "t", Categories: entity.Categories{Additions: add, Updates: upd, Redactions: red}}
}

func TestCheckDiffReport(t *testing.T) {
	tests := []struct {
		name    string
		report  entity.DiffReport
		wantErr string
	}{
		{
			name: "valid",
			report: diffWith(
				[]entity.Item{{Bullet: "a", Citations: entity.Citations{"APL25": at(1, 1), "APL21": nil}}},
				[]entity.Item{{Bullet: "u", Citations: entity.Citations{"APL21": at(1, 1), "APL25": at(2, 2)}}},
				[]entity.Item{{Bullet: "r", Citations: entity.Citations{"APL21": at(3, 1)}}},
			),
		},
		{name: "no items", report: diffWith(nil, nil, nil), wantErr: "no items"},
		{
			name:    "blank bullet",
			report:  diffWith(nil, []entity.Item{{Bullet: "  "}}, nil),
			wantErr: "updates[0]: bullet is blank",
		},
		{
			name:    "redaction cites new",
			report:  diffWith(nil, nil, []entity.Item{{Bullet: "r", Citations: entity.Citations{"APL25": at(1, 1)}}}),
			wantErr: "redactions may not cite APL25",
		},
		{
			name:    "unknown key",
			report:  diffWith([]entity.Item{{Bullet: "a", Citations: entity.Citations{"APL99": nil}}}, nil, nil),
			wantErr: `unknown citation key "APL99"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkDiffReport(tt.report, oldRef, newRef)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
			if common.CodeOf(err) != common.CodeContractViolation {
				t.Fatalf("code = %s", common.CodeOf(err))
			}
		})
	}
}

func TestDedupDiffReport(t *testing.T) {
	r := diffWith(
		[]entity.Item{
			{Bullet: "New reporting duty", Citations: entity.Citations{"APL25": at(1, 1)}},
			{Bullet: "new  reporting duty ", Citations: entity.Citations{"APL25": at(9, 9)}},
			{Bullet: "Another duty"},
		},
		[]entity.Item{{Bullet: "New reporting duty"}},
		nil,
	)
	out, dropped := dedupDiffReport(r)
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if len(out.Categories.Additions) != 2 || out.Categories.Additions[0].Citations["APL25"].Page != 1 {
		t.Fatalf("first occurrence should win: %+v", out.Categories.Additions)
	}
	if len(out.Categories.Updates) != 1 {
		t.Fatal("same text in another category is not a duplicate")
	}
}

func TestCheckScoredReport(t *testing.T) {
	bullet := func(score int) entity.ScoredBullet {
		return entity.ScoredBullet{BulletTitle: "t", BulletContent: "c", Score: score, RevisionType: constants.Update}
	}
	ok := entity.ScoredReport{Title: "t", Bullets: []entity.ScoredBullet{bullet(9), bullet(9), bullet(2)}}
	if err := checkScoredReport(ok, 3, oldRef, newRef); err != nil {
		t.Fatalf("ties keep order and are sorted: %v", err)
	}
	if err := checkScoredReport(ok, 2, oldRef, newRef); err == nil {
		t.Fatal("more bullets than input items must fail")
	}
	unsorted := entity.ScoredReport{Title: "t", Bullets: []entity.ScoredBullet{bullet(2), bullet(9)}}
	if err := checkScoredReport(unsorted, 2, oldRef, newRef); err == nil {
		t.Fatal("ascending order must fail")
	}
	zero := entity.ScoredReport{Title: "t", Bullets: []entity.ScoredBullet{bullet(0)}}
	if err := checkScoredReport(zero, 1, oldRef, newRef); err == nil {
		t.Fatal("score 0 must fail")
	}
	foreign := entity.ScoredReport{Title: "t", Bullets: []entity.ScoredBullet{bullet(5)}}
	foreign.Bullets[0].Citations = entity.Citations{"APL13": at(1, 1)}
	if err := checkScoredReport(foreign, 1, oldRef, newRef); err == nil {
		t.Fatal("citation key outside old/new must fail")
	}
}
