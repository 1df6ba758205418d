// Package main hosts the annodocs CLI entrypoint and command graph.
//
// The Cobra-based command tree parses a fact-check document, publishes the
// rendered output, runs the polling watcher, and inspects the run journal,
// the speaker and author directories, and the configuration. It centralizes
// configuration resolution and logger setup so subcommands only wire the
// internal packages together.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
