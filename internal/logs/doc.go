// Package logs reads the JSON log the watcher appends under the state
// directory.
//
// Tail returns the last lines of the file, or the lines written after a
// saved offset, with bounded memory. Follow mode waits for new lines until
// its deadline or the context ends. Entries decode each line into the
// fields the CLI filters and prints.
package logs
