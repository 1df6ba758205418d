package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"annodocs/internal/directory"
	"annodocs/internal/document"
	"annodocs/internal/logging"
	"annodocs/internal/markers"
	"annodocs/internal/textutil"
)

var authorPattern = regexp.MustCompile(`^(.*?)\s*\(([^)]*)\)\s*$`)

type annotationDecomposer struct {
	authors *directory.Authors
	tracker *SlugTracker
	diag    *Diagnostics
	logger  *slog.Logger
}

// decompose splits an annotation span into pre-amble, metadata and content
// on frontmatter separators. The metadata region only exists once a second
// separator closes it; with a single separator everything after it is
// content. ordinal is the 1-based position of the annotation in the
// document and suffixes derived slugs.
func (d *annotationDecomposer) decompose(blocks []document.Block, ordinal int) AnnotationSegment {
	var (
		region    int
		preamble  []document.Block
		metaLines []document.Block
		content   []document.Block
	)
	for _, block := range blocks {
		if markers.IsFrontmatterSeparator(block.Text()) {
			region++
			continue
		}
		switch region {
		case 0:
			preamble = append(preamble, block)
		case 1:
			metaLines = append(metaLines, block)
		default:
			content = append(content, block)
		}
	}

	meta := Metadata{}
	if region == 1 {
		content = metaLines
	} else {
		for _, block := range metaLines {
			for _, line := range strings.Split(block.Text(), "\n") {
				d.parseMetadataLine(&meta, line, ordinal)
			}
		}
	}

	seg := AnnotationSegment{Metadata: meta}
	seg.Author, seg.AuthorResolved = d.resolveAuthor(meta.Author, ordinal)
	seg.Slug = deriveSlug(meta, preamble, content, ordinal)
	d.tracker.Register(seg.Slug)

	parts := make([]string, 0, len(content))
	for _, block := range content {
		parts = append(parts, block.Markup())
	}
	seg.Content = strings.Join(parts, "\n")
	return seg
}

func (d *annotationDecomposer) parseMetadataLine(meta *Metadata, line string, ordinal int) {
	if strings.TrimSpace(line) == "" {
		return
	}
	key, value, ok := strings.Cut(line, ":")
	key = strings.ToLower(strings.TrimSpace(key))
	if !ok || key == "" {
		d.diag.MalformedMetadata++
		logging.ErrorWithContext(d.logger, "unexpected metadata format; skipping line", "metadata_malformed",
			logging.String("line", strings.TrimSpace(line)),
			logging.Int("annotation", ordinal),
			logging.String(logging.FieldErrorHint, "metadata lines must look like 'Key: value'"),
		)
		return
	}
	value = strings.TrimSpace(value)
	switch key {
	case "slug":
		meta.Slug = textutil.NormalizeSlug(value)
	case "author":
		meta.Author = value
	case "published":
		meta.Published = strings.ToLower(value)
	default:
		if meta.Extra == nil {
			meta.Extra = map[string]string{}
		}
		meta.Extra[key] = value
	}
}

// resolveAuthor looks up the parenthesised initials of an author line. On a
// miss the display name falls back to the text before the parenthesis.
func (d *annotationDecomposer) resolveAuthor(value string, ordinal int) (directory.Author, bool) {
	if value == "" {
		return directory.Author{}, false
	}
	m := authorPattern.FindStringSubmatch(value)
	if m == nil {
		d.diag.UnresolvedAuthors++
		logging.WarnWithContext(d.logger, "author line has no initials; using it as the name", "author_unresolved",
			logging.String("author", value),
			logging.Int("annotation", ordinal),
			logging.String(logging.FieldErrorHint, "write the author as 'Name (initials)'"),
			logging.String(logging.FieldImpact, "annotation rendered without role or photo"),
		)
		return directory.Author{Name: value}, false
	}

	name, initials := strings.TrimSpace(m[1]), strings.ToLower(strings.TrimSpace(m[2]))
	if author, ok := d.authors.Lookup(initials); ok {
		if author.Name == "" {
			author.Name = name
		}
		return author, true
	}
	d.diag.UnresolvedAuthors++
	logging.WarnWithContext(d.logger, "author initials not in directory", "author_unresolved",
		logging.String("author", name),
		logging.String("initials", initials),
		logging.Int("annotation", ordinal),
		logging.String(logging.FieldErrorHint, "add the initials to the authors directory"),
		logging.String(logging.FieldImpact, "annotation rendered without role or photo"),
	)
	return directory.Author{Initials: initials, Name: name}, false
}

// deriveSlug prefers the editor-supplied slug, then the pre-amble headline,
// then the first content block.
func deriveSlug(meta Metadata, preamble, content []document.Block, ordinal int) string {
	if meta.Slug != "" {
		return meta.Slug
	}
	for _, candidates := range [][]document.Block{preamble, content} {
		for _, block := range candidates {
			if textutil.SlugStem(block.Text()) != "" {
				return textutil.Slugify(block.Text(), ordinal)
			}
		}
	}
	return textutil.Slugify("", ordinal)
}
