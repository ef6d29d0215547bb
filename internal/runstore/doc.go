// Package runstore records plan resolution runs in SQLite.
//
// Each run captures the plan it resolved, its final status, and per-asset
// outcomes (ready URL or error message) so operators can see which elements
// still need manual attention. The database is a history log, not the source
// of truth for plans; resolved plans themselves are written to files.
//
// Schema changes bump schemaVersion; users delete the database to adopt a new
// schema.
package runstore
