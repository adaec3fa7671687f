package constants

// TaskStatus is the canonical status of a comparison task.
type TaskStatus string

// Stable values (these exact strings are returned by the status API and stored by SQL registries).
const (
	TaskStatusProcessing TaskStatus = "processing" // initial, set when the request is accepted
	TaskStatusCompleted  TaskStatus = "completed"  // terminal, result present
	TaskStatusFailed     TaskStatus = "failed"     // terminal, error present
)

// IsTerminal reports whether no further transition is allowed.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// CanTransition reports whether s -> next is a legal edge.
// The only legal edges are processing -> completed and processing -> failed.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	return s == TaskStatusProcessing && next.IsTerminal()
}

// Mode selects which pipeline stages run.
type Mode string

const (
	ModeFull  Mode = "full"  // diff, estimate, final diff, score
	ModeQuick Mode = "quick" // diff, score
)

// Stage names, used in logs and failure messages.
const (
	StageExtract  = "extract"
	StageParse    = "parse_reference"
	StageDiff     = "initial_diff"
	StageEstimate = "estimate"
	StageFinal    = "final_diff"
	StageScore    = "score"
)
