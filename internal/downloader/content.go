package downloader

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/brogergvhs/noveld/internal/browser"
)

const DefaultMaxContentPages = 100

var reBlanks = regexp.MustCompile(`[ \t]+`)

type ContentOptions struct {
	ContentSelector string
	NextSelector    string
	// NextText is the exact label of the in-chapter "next page" control.
	// Empty accepts any label.
	NextText string
	Paginate bool
	MaxPages int
	Timeout  time.Duration
	Log      interface{ Warnf(string, ...any) }
	// Truncated is called when the walk stops at MaxPages while the page
	// still offers a next page. The text read so far is still returned.
	Truncated func(pages int)
}

// FetchContent loads a chapter and every continuation page it links to,
// returning the normalized text of all pages joined by newlines. Any
// failure discards what was collected so far.
func FetchContent(ctx context.Context, page browser.Page, url string, opts ContentOptions) (string, error) {
	maxPages := opts.MaxPages
	if maxPages < 1 {
		maxPages = DefaultMaxContentPages
	}

	var (
		parts   []string
		visited = map[string]bool{}
		target  = url
	)
	for {
		if target != "" {
			if err := page.Navigate(ctx, target, opts.Timeout); err != nil {
				return "", err
			}
			visited[target] = true
		}
		visited[page.URL()] = true

		if err := page.WaitForSelector(ctx, opts.ContentSelector); err != nil {
			return "", err
		}
		raw, err := page.Text(opts.ContentSelector)
		if err != nil {
			return "", err
		}
		parts = append(parts, NormalizeText(raw))

		if !opts.Paginate || opts.NextSelector == "" || !hasNext(page, opts) {
			break
		}
		if len(parts) >= maxPages {
			if opts.Log != nil {
				opts.Log.Warnf("chapter %s: stopped after %d pages", url, maxPages)
			}
			if opts.Truncated != nil {
				opts.Truncated(maxPages)
			}
			break
		}

		if href, ok := page.Href(opts.NextSelector); ok {
			if visited[href] {
				break
			}
			target = href
			continue
		}

		// No href: let the page handle the click, then check where it went.
		if err := page.Click(ctx, opts.NextSelector, opts.Timeout); err != nil {
			return "", err
		}
		if visited[page.URL()] {
			break
		}
		target = ""
	}

	return strings.Join(parts, "\n"), nil
}

func hasNext(page browser.Page, opts ContentOptions) bool {
	if !page.Exists(opts.NextSelector) {
		return false
	}
	if opts.NextText == "" {
		return true
	}
	label, err := page.Text(opts.NextSelector)
	if err != nil {
		return false
	}

	return strings.TrimSpace(label) == strings.TrimSpace(opts.NextText)
}

// NormalizeText cleans rendered chapter text: CRLF and NBSP are
// normalized, runs of spaces and tabs collapse, edge spaces are trimmed
// from every line and blank lines collapse to one. Ideographic spaces used
// for paragraph indentation are kept.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.Trim(reBlanks.ReplaceAllString(line, " "), " ")
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	if n := len(out); n > 0 && out[n-1] == "" {
		out = out[:n-1]
	}

	return strings.Join(out, "\n")
}
