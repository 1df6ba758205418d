package document

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const googleRedirectPrefix = "https://www.google.com/url?"

var (
	classRulePattern = regexp.MustCompile(`\.([A-Za-z0-9_-]+)\s*\{([^}]*)\}`)
	boldPattern      = regexp.MustCompile(`(?i)font-weight\s*:\s*(700|800|900|bold)`)
	italicPattern    = regexp.MustCompile(`(?i)font-style\s*:\s*italic`)
)

// structuralTags keep their element (without attributes) in cleaned markup.
var structuralTags = map[atom.Atom]struct{}{
	atom.P:          {},
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
	atom.Thead:      {},
	atom.Tbody:      {},
	atom.Tr:         {},
	atom.Td:         {},
	atom.Th:         {},
}

type emphasis struct {
	bold   bool
	italic bool
}

type classStyles map[string]emphasis

// collectClassStyles reads simple `.class { ... }` rules from every <style>
// element so class-based bold and italic runs can be recognized.
func collectClassStyles(root *html.Node) classStyles {
	styles := classStyles{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Style {
			var css strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					css.WriteString(c.Data)
				}
			}
			for _, m := range classRulePattern.FindAllStringSubmatch(css.String(), -1) {
				e := styles[m[1]]
				e.bold = e.bold || boldPattern.MatchString(m[2])
				e.italic = e.italic || italicPattern.MatchString(m[2])
				if e.bold || e.italic {
					styles[m[1]] = e
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return styles
}

type markupWriter struct {
	styles classStyles
}

func (w markupWriter) writeChildren(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.write(b, c)
	}
}

func (w markupWriter) write(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(html.EscapeString(n.Data))
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Hr, atom.Img, atom.Head:
		return
	case atom.Br:
		b.WriteString("<br>")
		return
	case atom.Strong, atom.B:
		w.wrap(b, n, "strong")
		return
	case atom.Em, atom.I:
		w.wrap(b, n, "em")
		return
	case atom.Sup, atom.Sub:
		w.wrap(b, n, n.Data)
		return
	case atom.A:
		href := attr(n, "href")
		if href == "" {
			w.writeChildren(b, n)
			return
		}
		b.WriteString(`<a href="`)
		b.WriteString(html.EscapeString(unwrapRedirect(href)))
		b.WriteString(`">`)
		w.writeChildren(b, n)
		b.WriteString("</a>")
		return
	case atom.Span:
		e := w.emphasisOf(n)
		switch {
		case e.bold && e.italic:
			b.WriteString("<strong><em>")
			w.writeChildren(b, n)
			b.WriteString("</em></strong>")
		case e.bold:
			w.wrap(b, n, "strong")
		case e.italic:
			w.wrap(b, n, "em")
		default:
			w.writeChildren(b, n)
		}
		return
	}

	if _, ok := structuralTags[n.DataAtom]; ok {
		w.wrap(b, n, strings.ToLower(n.Data))
		return
	}
	w.writeChildren(b, n)
}

func (w markupWriter) wrap(b *strings.Builder, n *html.Node, tag string) {
	b.WriteString("<" + tag + ">")
	w.writeChildren(b, n)
	b.WriteString("</" + tag + ">")
}

func (w markupWriter) emphasisOf(n *html.Node) emphasis {
	var e emphasis
	style := attr(n, "style")
	e.bold = boldPattern.MatchString(style)
	e.italic = italicPattern.MatchString(style)
	for _, class := range strings.Fields(attr(n, "class")) {
		if s, ok := w.styles[class]; ok {
			e.bold = e.bold || s.bold
			e.italic = e.italic || s.italic
		}
	}
	return e
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// unwrapRedirect strips the tracking redirect that Google Docs exports put
// around every outbound link.
func unwrapRedirect(href string) string {
	if !strings.HasPrefix(href, googleRedirectPrefix) {
		return href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("q"); target != "" {
		return target
	}
	return href
}
