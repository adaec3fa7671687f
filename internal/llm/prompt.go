package llm

import (
	"strings"

	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

// Example is the validated reference comparison shown to the model in the initial diff call.
type Example struct {
	OldText  string
	NewText  string
	DiffJSON string
}

const meaningfulList = `### Definition of a "meaningful" change (include if any apply)
* Alters covered populations, benefits, services, or exclusions
* Adds or deletes reporting, documentation, audit, or data requirements
* Changes monetary amounts (rates, penalties, copays, funding)
* Modifies timelines, effective dates, or frequency of tasks
* Introduces, changes, or removes an enforcement or sanction mechanism
* Redefines terms or roles in a way that shifts responsibility or scope
* References new or rescinded statutes, regulations, or external guidance
* Adds operational procedures, clinical protocols, or data standards`

const ignoreList = `### Ignore List (DO NOT capture)
* Formatting or style guidance (fonts, italics, bolding, citation style)
* Renaming of job titles unless duties materially shift
* Section renumbering or header wording that does not change substance
* Grammar, punctuation, capitalization, hyphenation, typographical clean-ups
* Boilerplate notices (e.g. "Revised text now in plain font")
* Administrative address/phone/email updates with no policy effect`

const diffShape = `The JSON object must contain:
1. "title": the APL numbers and dates
2. "summary": the overall changes
3. "categories": an object with three arrays, "additions", "updates" and "redactions"
   - additions: content new in the new APL (cite the new APL only)
   - updates: content present in both that changed (cite both APLs)
   - redactions: content removed from the old APL (cite the old APL only)
4. every array item has a "bullet" (a complete, descriptive statement of the change) and
   "citations" mapping each citation key to {"page": <int>, "line": <int>} or null
5. "conclusion": the impact of the changes

For each change, provide precise page and line citations that point at the start of the
relevant passage in its PDF. Double check every citation against its own document.
Format text with ** for bold and * for italic when appropriate.
Make sure the output is valid JSON that can be parsed by a JSON parser.`

// InitialDiffPrompt builds the messages for the first comparison of old and new.
func InitialDiffPrompt(ex Example, oldText, newText string, oldRef, newRef entity.ReferenceID) []Message {
	sys := "You are a senior healthcare-policy analyst who prepares executive-level change briefs " +
		"for health-plan Compliance Officers. Compare two All Plan Letters (APLs) and produce a " +
		"rigorously structured JSON report that focuses ONLY on changes that can alter obligations, " +
		"benefits, eligibility, deadlines, reporting, oversight, or enforcement, ignores purely " +
		"editorial or cosmetic edits, and provides exact page-and-line citations. Answer in valid JSON only."

	var b strings.Builder
	b.WriteString("I'm providing you with two pairs of APL documents.\n\n")
	b.WriteString("1. A validated example:\n")
	b.WriteString("   - Old APL:\n" + ex.OldText + "\n")
	b.WriteString("   - New APL:\n" + ex.NewText + "\n")
	b.WriteString("   - Difference JSON:\n" + ex.DiffJSON + "\n\n")
	b.WriteString("2. The pair I want you to analyze:\n")
	b.WriteString("   - Old APL:\n" + oldText + "\n")
	b.WriteString("   - New APL:\n" + newText + "\n\n")
	b.WriteString("Analyze the second pair and create a detailed JSON document of the key differences, " +
		"following the same structure as the validated example. Only include meaningful changes.\n\n")
	b.WriteString(meaningfulList + "\n\n" + ignoreList + "\n\n" + diffShape + "\n\n")
	b.WriteString("Citation keys:\n")
	b.WriteString("- old APL: \"" + oldRef.CitationKey + "\"\n")
	b.WriteString("- new APL: \"" + newRef.CitationKey + "\"\n\n")
	b.WriteString("When referring to years, use:\n")
	b.WriteString("- old APL year: " + oldRef.Period + "\n")
	b.WriteString("- new APL year: " + newRef.Period + "\n")

	return []Message{
		{Role: RoleSystem, Content: sys},
		{Role: RoleUser, Content: b.String()},
	}
}

// EstimatePrompt asks for a reconstruction of the new document from the old one plus the diff.
func EstimatePrompt(oldText, initialDiffJSON string) []Message {
	sys := "You are an expert in healthcare policy analysis, specifically All Plan Letters (APLs). " +
		"Generate an estimate of a new APL document from an old APL document and a diff JSON."

	var b strings.Builder
	b.WriteString("1. The old APL document, converted from PDF to plain text:\n" + oldText + "\n\n")
	b.WriteString("2. A diff JSON describing the changes from the old APL to a new APL:\n" + initialDiffJSON + "\n\n")
	b.WriteString("Generate an estimate of what the new APL document looks like. Use the old APL as the base " +
		"and apply the changes described in the diff JSON. Keep the structure, formatting and style of the old APL, " +
		"as if it were also converted from PDF to plain text. The estimate will be compared to the actual new APL " +
		"to find changes we missed. Include page and line markers that match the citations in the diff JSON.\n")

	return []Message{
		{Role: RoleSystem, Content: sys},
		{Role: RoleUser, Content: b.String()},
	}
}

// FinalDiffPrompt merges the actual new document, the estimate and the initial diff.
func FinalDiffPrompt(newText, estimate, initialDiffJSON string) []Message {
	sys := "You are a senior healthcare-policy analyst who prepares change digests for Health-Plan " +
		"Compliance Officers. Merge three inputs (the actual new APL, an estimated draft APL and an " +
		"initial diff JSON) into one final, comprehensive diff JSON. Focus ONLY on changes that affect " +
		"obligations, benefits, timelines, reporting, enforcement, or statutory references and provide " +
		"exact page-and-line citations for every bullet. Output valid JSON only."

	var b strings.Builder
	b.WriteString("1. **Actual new APL**\n" + newText + "\n\n")
	b.WriteString("2. **Estimated draft APL**\n" + estimate + "\n\n")
	b.WriteString("3. **Initial diff JSON**\n" + initialDiffJSON + "\n\n")
	b.WriteString("### Task\n")
	b.WriteString("1. Compare the actual new APL to the estimated draft.\n")
	b.WriteString("2. Identify missing or incorrect bullets in the initial diff JSON.\n")
	b.WriteString("3. Produce a final diff JSON in the exact schema of the initial diff, with all valid bullets " +
		"from the initial diff plus any newly detected additions, updates, or redactions. Do not repeat a bullet.\n\n")
	b.WriteString(meaningfulList + "\n\n" + ignoreList + "\n\n" + diffShape + "\n\n")
	b.WriteString("Use the same citation keys and the same years as the initial diff JSON.\n")

	return []Message{
		{Role: RoleSystem, Content: sys},
		{Role: RoleUser, Content: b.String()},
	}
}

// ScorePrompt asks for a significance score per change and a flat, sorted bullet list.
func ScorePrompt(diffJSON string) []Message {
	sys := "You are a senior healthcare-policy analyst who scores policy changes on their significance. " +
		"Evaluate each change in a diff JSON and score it from 1 (not meaningful) to 10 (extremely meaningful). " +
		"Keep the original change type (addition, update, or redaction) of each item. Output valid JSON only."

	var b strings.Builder
	b.WriteString("Here is a diff JSON describing changes between two APL documents:\n\n" + diffJSON + "\n\n")
	b.WriteString("Score each change from 1 to 10. Score higher the more of the following apply, and lower " +
		"when only items of the ignore list apply.\n\n")
	b.WriteString(meaningfulList + "\n\n" + ignoreList + "\n\n")
	b.WriteString("Score by the work a health plan must do to stay compliant with the APL. " +
		"Drop changes that are not meaningful enough to include. When two changes overlap, replace both " +
		"with one merged bullet that has a fresh title and score and keeps the earlier citation per document.\n\n")
	b.WriteString("The output JSON object has this structure:\n")
	b.WriteString(`{"title": "", "summary": "", "conclusion": "", "bullets": [` +
		`{"bullet_title": "", "bullet_content": "", "score": 1, "revision_type": "addition" | "update" | "redaction", ` +
		`"citations": {"APL25": {"page": 3, "line": 12}, "APL21": null}}]}` + "\n\n")
	b.WriteString("Give every bullet a brief fitting bullet_title; bullet_content carries the main content. " +
		"Keep the citation keys of the diff JSON.\n")
	b.WriteString("Bullets MUST be sorted by score, highest to lowest.\n")
	b.WriteString("Make sure the output is valid JSON that can be parsed by a JSON parser.\n")

	return []Message{
		{Role: RoleSystem, Content: sys},
		{Role: RoleUser, Content: b.String()},
	}
}
