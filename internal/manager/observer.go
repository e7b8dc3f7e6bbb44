package manager

// Apply outcomes reported to the Observer
const (
	OutcomeApplied    = "applied"
	OutcomeBusy       = "busy"
	OutcomeFailed     = "failed"
	OutcomeRolledBack = "rolled_back"
)

// Observer receives manager telemetry
type Observer interface {
	ApplyOutcome(domain, outcome string)
	// ActiveDegraded is called when no option matches the enabled overlays
	ActiveDegraded(domain string)
}

type nopObserver struct{}

func (nopObserver) ApplyOutcome(string, string) {}
func (nopObserver) ActiveDegraded(string)       {}
