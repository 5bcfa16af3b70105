// Package stdlib ships the Seed sources reachable through the "std/" import
// prefix.
package stdlib

import "embed"

// Prefix marks an import path as part of the standard library.
const Prefix = "std/"

//go:embed *.seed
var FS embed.FS
