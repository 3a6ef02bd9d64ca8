// Package domain defines the core business entities for vitae.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: The resume aggregate (meta, theme, ordered sections)
//   - Section: A typed, titled group of blocks
//   - Block: A typed record of open-ended fields
//   - ThemePatch: A partial theme update merged per nested group
//   - GenerateRequest/GenerateResult: AI assist contract
//   - PrintOptions: Paper geometry for PDF export
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
