// Package core defines the shared language of the noticeboard system.
//
// This package contains:
//   - The error taxonomy shared by the store, the dispatcher and the HTTP layer
//   - The untyped Row representation produced by the store
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
