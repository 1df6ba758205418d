// Package watch keeps the published output in step with the document.
//
// A Watcher polls the document file, hashes it, and runs the full pipeline
// (directories, parse, render, publish, journal) whenever the hash differs
// from the latest recorded run. Cycles never overlap, and a flock in the
// state directory keeps a second watcher from sharing it.
package watch
