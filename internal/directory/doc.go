// Package directory holds the two lookup tables the parser resolves names
// against: the speaker directory (display name to CSS class) and the author
// directory (initials to author profile).
//
// Both tables are immutable once built and safe for concurrent reads. They
// can be loaded from TOML, YAML or a CSV export of the newsroom spreadsheet;
// the format is picked from the file extension.
package directory
