// Package overlay is the view of installed overlay packages.
//
// An Index answers which packages exist per category, which one is enabled
// and lets callers enable one exclusively or disable it. MemoryIndex is the
// implementation used by the server: packages come from overlay.yaml
// manifests under a packs directory and enabled state lives in memory.
// ResourceStore serves the packages' resources (preview drawables, string
// values) by name.
package overlay
