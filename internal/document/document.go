package document

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrMissingBody reports a tree without a <body> element. It is the only
// condition that aborts a parse.
var ErrMissingBody = errors.New("document: missing body element")

// Block is one top-level child of the document body.
type Block struct {
	tag      string
	text     string
	inner    string
	markup   string
	boundary bool
	children []Block
}

// Text returns the visible text of the block.
func (b Block) Text() string { return b.text }

// InnerMarkup returns the cleaned markup of the block's children.
func (b Block) InnerMarkup() string { return b.inner }

// Markup returns the cleaned markup of the block including its own element
// when that element is structural (paragraphs, headings, lists, tables).
func (b Block) Markup() string { return b.markup }

// IsBoundary reports whether the block is, or contains, a horizontal rule.
func (b Block) IsBoundary() bool { return b.boundary }

// Children returns the block-level elements of a container block such as a
// <div> holding paragraphs. It is nil for a paragraph, or for a container
// that also carries loose inline content.
func (b Block) Children() []Block {
	if len(b.children) == 0 {
		return nil
	}
	out := make([]Block, len(b.children))
	copy(out, b.children)
	return out
}

// IsBlank reports whether the block has no visible text.
func (b Block) IsBlank() bool { return strings.TrimSpace(b.text) == "" }

// NewBlock builds a detached paragraph block. It is mostly useful in tests and
// for re-classifying generated content.
func NewBlock(text string) Block {
	escaped := html.EscapeString(text)
	return Block{tag: "p", text: text, inner: escaped, markup: "<p>" + escaped + "</p>"}
}

// Document is an immutable, ordered view over a parsed export.
type Document struct {
	blocks   []Block
	boundary int
}

// Parse reads an HTML export.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("document: parse html: %w", err)
	}
	return FromNode(root)
}

// ParseString is Parse over an in-memory string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// FromNode builds a Document from an already parsed tree.
func FromNode(root *html.Node) (*Document, error) {
	if root == nil {
		return nil, ErrMissingBody
	}
	body := findElement(root, atom.Body)
	if body == nil {
		return nil, ErrMissingBody
	}
	styles := collectClassStyles(root)

	doc := &Document{boundary: -1}
	for child := body.FirstChild; child != nil; child = child.NextSibling {
		block, ok := newBlock(child, styles)
		if !ok {
			continue
		}
		if block.boundary && doc.boundary < 0 {
			doc.boundary = len(doc.blocks)
		}
		doc.blocks = append(doc.blocks, block)
	}
	return doc, nil
}

// Blocks returns every top-level block in document order.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// HasBoundary reports whether the document contains a horizontal rule at the
// top level.
func (d *Document) HasBoundary() bool { return d.boundary >= 0 }

// Body returns the blocks preceding the boundary region, or every block when
// there is no boundary.
func (d *Document) Body() []Block {
	end := len(d.blocks)
	if d.boundary >= 0 {
		end = d.boundary
	}
	out := make([]Block, end)
	copy(out, d.blocks[:end])
	return out
}

// BoundaryRegion returns the boundary block and every block after it. It is
// nil when the document has no boundary.
func (d *Document) BoundaryRegion() []Block {
	if d.boundary < 0 {
		return nil
	}
	out := make([]Block, len(d.blocks)-d.boundary)
	copy(out, d.blocks[d.boundary:])
	return out
}

func newBlock(n *html.Node, styles classStyles) (Block, bool) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return Block{}, false
		}
		escaped := html.EscapeString(n.Data)
		return Block{text: normalizeSpace(n.Data), inner: escaped, markup: escaped}, true
	case html.ElementNode:
	default:
		return Block{}, false
	}
	if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
		return Block{}, false
	}

	var text strings.Builder
	writeText(&text, n)
	cleaner := markupWriter{styles: styles}
	var inner strings.Builder
	cleaner.writeChildren(&inner, n)

	block := Block{
		tag:      strings.ToLower(n.Data),
		text:     text.String(),
		inner:    inner.String(),
		boundary: n.DataAtom == atom.Hr || containsElement(n, atom.Hr),
		children: blockChildren(n, styles),
	}
	if _, ok := structuralTags[n.DataAtom]; ok {
		block.markup = "<" + block.tag + ">" + block.inner + "</" + block.tag + ">"
	} else {
		block.markup = block.inner
	}
	return block, true
}

// blockLevel elements end a line in the text projection.
var blockLevel = map[atom.Atom]struct{}{
	atom.P:          {},
	atom.Div:        {},
	atom.H1:         {},
	atom.H2:         {},
	atom.H3:         {},
	atom.H4:         {},
	atom.H5:         {},
	atom.H6:         {},
	atom.Ul:         {},
	atom.Ol:         {},
	atom.Li:         {},
	atom.Blockquote: {},
	atom.Table:      {},
	atom.Tbody:      {},
	atom.Thead:      {},
	atom.Tr:         {},
	atom.Hr:         {},
}

func isBlockLevel(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	_, ok := blockLevel[n.DataAtom]
	return ok
}

// blockChildren splits a container whose visible children are all
// block-level elements. Anything else stays a single block.
func blockChildren(n *html.Node, styles classStyles) []Block {
	if n.DataAtom == atom.P || !hasBlockChild(n) {
		return nil
	}
	var out []Block
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
			continue
		case c.Type == html.CommentNode:
			continue
		case !isBlockLevel(c):
			return nil
		}
		if block, ok := newBlock(c, styles); ok {
			out = append(out, block)
		}
	}
	return out
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlockLevel(c) {
			return true
		}
	}
	return false
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(normalizeSpace(n.Data))
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			b.WriteByte('\n')
			return
		case atom.Script, atom.Style:
			return
		}
	}
	afterBlock := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if afterBlock && c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		if isBlockLevel(c) || afterBlock {
			breakLine(b)
		}
		writeText(b, c)
		afterBlock = isBlockLevel(c)
	}
}

// breakLine ends the current line unless the text is empty or already at
// a line start.
func breakLine(b *strings.Builder) {
	if s := b.String(); s != "" && !strings.HasSuffix(s, "\n") {
		b.WriteByte('\n')
	}
}

// normalizeSpace turns non-breaking spaces into plain spaces so text
// patterns see them as whitespace.
func normalizeSpace(s string) string {
	return strings.ReplaceAll(s, "\u00a0", " ")
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func containsElement(n *html.Node, a atom.Atom) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if findElement(c, a) != nil {
			return true
		}
	}
	return false
}
