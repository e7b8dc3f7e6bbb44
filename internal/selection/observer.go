package selection

// Outcome labels the result of a merge
type Outcome string

const (
	OutcomeWritten     Outcome = "written"
	OutcomeUnchanged   Outcome = "unchanged"
	OutcomeConflict    Outcome = "conflict"
	OutcomeParseFailed Outcome = "parse_failure"
	OutcomeStoreFailed Outcome = "store_failure"
)

// Observer receives merge telemetry
type Observer interface {
	MergeAttempt(backend string)
	MergeConflict(backend string)
	MergeOutcome(backend string, outcome Outcome)
}

type nopObserver struct{}

func (nopObserver) MergeAttempt(string)          {}
func (nopObserver) MergeConflict(string)         {}
func (nopObserver) MergeOutcome(string, Outcome) {}
