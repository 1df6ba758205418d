// Package store keeps the parse-run journal in SQLite.
//
// Every parse that reaches the publish step is recorded as a run: the
// document path, the blake3 hash of the bytes that were parsed, the final
// transcript status and the parse diagnostics, plus one row per annotation.
// The watch loop reads the latest run of a document to decide whether the
// file changed since it was last published.
//
// The database is a journal, not a source of truth for the published
// output. Schema changes bump schemaVersion in schema.go; users delete the
// database to adopt the new schema.
package store
