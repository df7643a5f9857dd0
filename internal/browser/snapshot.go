package browser

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// snapshot is a parsed copy of the document a page currently shows.
type snapshot struct {
	doc  *goquery.Document
	base *url.URL
}

func newSnapshot(r io.Reader, pageURL *url.URL) (*snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base := pageURL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if u, err := pageURL.Parse(strings.TrimSpace(href)); err == nil {
			base = u
		}
	}
	doc.Url = pageURL

	return &snapshot{doc: doc, base: base}, nil
}

// xpathExpr reports whether selector is XPath. Either an explicit "xpath:"
// prefix or a leading slash selects XPath; anything else is CSS.
func xpathExpr(selector string) (string, bool) {
	s := strings.TrimSpace(selector)
	if expr, ok := strings.CutPrefix(s, "xpath:"); ok {
		return strings.TrimSpace(expr), true
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "(/") {
		return s, true
	}

	return "", false
}

func (s *snapshot) find(selector string) (*goquery.Selection, error) {
	if s == nil || s.doc == nil {
		return nil, ErrNoDocument
	}

	if expr, ok := xpathExpr(selector); ok {
		nodes, err := htmlquery.QueryAll(s.doc.Nodes[0], expr)
		if err != nil {
			return nil, fmt.Errorf("xpath %q: %w", expr, err)
		}
		return s.doc.FindNodes(nodes...), nil
	}

	return s.doc.Find(selector), nil
}

func (s *snapshot) resolve(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return "", false
	}
	low := strings.ToLower(href)
	if strings.HasPrefix(low, "javascript:") || strings.HasPrefix(low, "mailto:") {
		return "", false
	}

	u, err := s.base.Parse(href)
	if err != nil {
		return "", false
	}
	u.Fragment = ""

	return u.String(), true
}

func (s *snapshot) url() string {
	if s == nil || s.doc == nil || s.doc.Url == nil {
		return ""
	}
	return s.doc.Url.String()
}

// view implements the read-only half of Page on top of a snapshot.
type view struct {
	snap *snapshot
}

func (v *view) Exists(selector string) bool {
	sel, err := v.snap.find(selector)
	return err == nil && sel.Length() > 0
}

func (v *view) Text(selector string) (string, error) {
	sel, err := v.snap.find(selector)
	if err != nil {
		return "", err
	}
	if sel.Length() == 0 {
		return "", &SelectorTimeoutError{Selector: selector, URL: v.snap.url()}
	}

	return innerText(sel.First()), nil
}

func (v *view) Links(selector string) ([]Link, error) {
	sel, err := v.snap.find(selector)
	if err != nil {
		return nil, err
	}

	var links []Link
	sel.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		abs, ok := v.snap.resolve(href)
		if !ok {
			return
		}
		links = append(links, Link{Href: abs, Text: collapseSpace(a.Text())})
	})

	return links, nil
}

func (v *view) Href(selector string) (string, bool) {
	sel, err := v.snap.find(selector)
	if err != nil || sel.Length() == 0 {
		return "", false
	}
	href, ok := sel.First().Attr("href")
	if !ok {
		return "", false
	}

	return v.snap.resolve(href)
}

func (v *view) URL() string { return v.snap.url() }

var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Footer: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true,
	atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true,
	atom.Table: true, atom.Tr: true, atom.Ul: true,
}

// innerText approximates what a browser renders for the selection: line
// breaks for <br> and block elements, source whitespace folded, scripts
// and styles skipped.
func innerText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeText(&b, c)
		}
	}

	return b.String()
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(foldSourceSpace(n.Data))
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		case atom.Br:
			b.WriteByte('\n')
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteByte('\n')
	}
}

// foldSourceSpace turns runs of HTML source whitespace into one space.
// Non-breaking and ideographic spaces are content and stay.
func foldSourceSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}

	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
