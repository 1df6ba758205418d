// Package document loads word-processor HTML exports into an ordered list of
// top-level blocks.
//
// Each Block carries two projections: the visible text used for
// classification, and a cleaned markup string that keeps inline emphasis
// (bold, italics, links, line breaks) while dropping the exporter's styling
// wrappers. Bold and italic spans are recognized both from inline styles and
// from the class rules in the export's <style> sheet.
//
// The package never mutates the parsed tree after load. The first block that
// is, or contains, a horizontal rule marks the start of the boundary region;
// callers ask for Body and BoundaryRegion separately and decide what to keep.
package document
