package llm

import (
	"strings"
	"testing"

	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

func TestInitialDiffPrompt(t *testing.T) {
	oldRef := entity.ReferenceID{ID: "21-004", Period: "2021", CitationKey: "APL21"}
	newRef := entity.ReferenceID{ID: "25-008", Period: "2025", CitationKey: "APL25"}
	msgs := InitialDiffPrompt(Example{OldText: "EX-OLD", NewText: "EX-NEW", DiffJSON: "{}"}, "OLD", "NEW", oldRef, newRef)

	if len(msgs) != 2 || msgs[0].Role != RoleSystem || msgs[1].Role != RoleUser {
		t.Fatalf("expected system then user message, got %+v", msgs)
	}
	user := msgs[1].Content
	for _, want := range []string{"EX-OLD", "EX-NEW", "OLD", "NEW", `"APL21"`, `"APL25"`, "2021", "2025", "Ignore List"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
	if !strings.Contains(msgs[0].Content, "valid JSON only") {
		t.Error("system prompt should demand JSON")
	}
}

func TestStagePromptsCarryInputs(t *testing.T) {
	if c := EstimatePrompt("OLDTEXT", `{"d":1}`)[1].Content; !strings.Contains(c, "OLDTEXT") || !strings.Contains(c, `{"d":1}`) {
		t.Error("estimate prompt missing inputs")
	}
	c := FinalDiffPrompt("ACTUAL", "ESTIMATE", "INITIAL")[1].Content
	for _, want := range []string{"ACTUAL", "ESTIMATE", "INITIAL"} {
		if !strings.Contains(c, want) {
			t.Errorf("final diff prompt missing %q", want)
		}
	}
	if c := ScorePrompt("DIFF")[1].Content; !strings.Contains(c, "DIFF") || !strings.Contains(c, "highest to lowest") {
		t.Error("score prompt missing inputs or sort instruction")
	}
}
