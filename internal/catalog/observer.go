package catalog

import "time"

// Skip reasons reported to the Observer
const (
	SkipPackageNotFound = "package_not_found"
	SkipIncomplete      = "incomplete"
	SkipNoPreview       = "no_preview"
	SkipReservedID      = "reserved_id"
)

// Observer receives catalog telemetry
type Observer interface {
	OptionSkipped(domain, reason string)
	CatalogBuilt(domain string, options int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) OptionSkipped(string, string)            {}
func (nopObserver) CatalogBuilt(string, int, time.Duration) {}
