// Package textutil provides text helpers shared by the parser and the
// publisher: annotation slug derivation and token sanitizing for file names.
//
// Slugs follow the convention of the editors' document add-on: lowercase,
// punctuation stripped, whitespace and underscores collapsed to dashes, cut at
// a word boundary before 40 characters, and suffixed with an ordinal.
package textutil
