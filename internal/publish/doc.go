// Package publish writes the static output of a parse: the full page, the
// segment list the polling front end reads, one embed page per published
// annotation, and the share list.
//
// Every file is written atomically. A flock in the output directory keeps
// two publishers from interleaving their writes; the second one gets
// ErrLocked instead of waiting.
package publish
