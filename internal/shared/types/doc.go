// Package types provides the shared vocabulary of the overlay picker backend.
//
// Every component speaks in these terms: the overlay index reports packages per
// category, the catalog groups them into options, the selection store persists
// one package (or none) per category, and managers describe themselves with a
// Domain definition.
//
// Core Types:
//   - Category: an independently themeable surface (wifi icons, lock font, ...)
//   - PackageID: an installed overlay package
//   - Domain: metadata describing one option manager
//
// Example Usage:
//
//	pkg := types.PackageID("com.pack.a.wifi")
//	fmt.Println(pkg.Prefix()) // "com.pack.a"
package types
