// Package services defines shared utilities consumed by the resolution
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, plan IDs, scene indexes, and asset
//     IDs for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent run statuses (failed vs review).
//
// Use these helpers when wiring new pipeline code so error handling and
// observability stay uniform.
package services
