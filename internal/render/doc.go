// Package render turns a parse result into the ordered list of template
// contexts a page is built from, and renders them through a Renderer.
//
// Contexts are plain key/value maps keyed the way the templates expect
// (speaker, speaker_class, timestamp, text, slug, contents, author_*). The
// only transformation applied here is the fact-checked substitution on
// transcript text; annotation content is passed through untouched.
//
// TemplateRenderer is the default Renderer. It executes the html/template
// files embedded in the binary, optionally overridden file by file from a
// templates directory.
package render
