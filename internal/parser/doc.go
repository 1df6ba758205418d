// Package parser turns a loaded fact-check document into an ordered list of
// typed segments plus a transcript status.
//
// A parse runs in four stages:
//
//  1. The boundary region (the first horizontal rule and what follows it) is
//     inspected for END, LIVE TRANSCRIPT HAS ENDED and DO NOT WRITE BELOW THIS
//     LINE sentinels. The first two drop the region and fix the status; the
//     third is removed and the rest of the region flows back into the body.
//  2. The segmenter walks the body blocks and groups the ones between
//     annotation start and end rules. Everything else is a transcript block.
//  3. Each annotation is split on frontmatter separators into pre-amble,
//     metadata and content; the author is resolved through the author
//     directory and a slug is registered with the per-parse tracker.
//  4. Each transcript block is classified as speaker, soundbite or other by
//     the ordered rules in TranscriptRules.
//
// Parsing never mutates the document and never fails for content problems.
// Recoverable conditions are logged and counted in Diagnostics; only a
// document without a body is rejected.
package parser
