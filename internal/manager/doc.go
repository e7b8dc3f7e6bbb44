// Package manager implements the per-domain option managers.
//
// A Manager owns one domain (wifi icons, status-bar icons, lock-screen font):
// it builds the domain's option catalog, tracks which option is active and
// applies a selection by persisting it to the shared selection document
// before enabling the matching overlays. Fetch and Apply run asynchronously
// and return a Task.
//
// Managers are created by the composition root and collected in a Registry;
// there are no package-level instances.
package manager
