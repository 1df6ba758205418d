package render

import "annodocs/internal/textutil"

// EmbedsIndexFile is the listing page inside the embeds directory. No
// annotation slug maps onto it.
const EmbedsIndexFile = "index.html"

const reservedEmbedSuffix = "-embed"

// EmbedFileName is the file an annotation's embed page is written to,
// relative to the embeds directory.
func EmbedFileName(slug string) string {
	stem := textutil.SanitizeToken(slug)
	if stem+".html" == EmbedsIndexFile {
		stem += reservedEmbedSuffix
	}
	return stem + ".html"
}

// EmbedNameReserved reports whether slug sanitizes onto the embeds index
// and is written under a suffixed name instead.
func EmbedNameReserved(slug string) bool {
	return textutil.SanitizeToken(slug)+".html" == EmbedsIndexFile
}
