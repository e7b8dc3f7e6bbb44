/*
Package catalog turns installed overlay packages into user-facing options.

# Building

A Builder walks a domain's categories, groups packages by their grouping key
(the package id without its last segment) and resolves preview assets for
each group:

	com.pack.a.wifi   ┐
	com.pack.a.signal ┴─> option "com.pack.a" {wifi, signal}

A synthesized Default option (no overrides in any category) comes first when
one of the domain's fallback source packages provides previews. The rest is
sorted case-insensitively by title. Incomplete options, options without
previews and packages uninstalled mid-build are skipped, never fatal.

# Previews

Each category has a Discovery: an ordered list of exact resource names, then
an ordered list of patterns (literal names or doublestar globs). The first
strategy that yields an asset wins and is recorded on the option as a
Resolution.

# Active option

ResolveActive compares a catalog against the enabled package of every
category and returns the option that matches, if any.
*/
package catalog
