package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brogergvhs/noveld/internal/browser"
	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/downloader"
	"github.com/brogergvhs/noveld/internal/ui"
)

const DefaultMaxListPages = 500

var ErrEmptyList = errors.New("chapter list is empty")

type ListOptions struct {
	ChapterSelector string
	NextSelector    string
	Paginate        bool
	MaxPages        int
	MaxRetries      int
	Timeout         time.Duration
	Log             *ui.Logger
}

// CollectRefs reads chapter links from the page's current document and,
// when pagination is on, from every following list page. The walk ends
// when there is no next control, a page repeats or MaxPages is reached.
// The refs keep the order they were found in.
func CollectRefs(ctx context.Context, page browser.Page, opts ListOptions) ([]chapters.Ref, error) {
	maxPages := opts.MaxPages
	if maxPages < 1 {
		maxPages = DefaultMaxListPages
	}

	var (
		refs    []chapters.Ref
		visited = map[string]bool{page.URL(): true}
	)
	for pages := 1; ; pages++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		links, err := pageLinks(ctx, page, opts.ChapterSelector)
		if err != nil {
			return nil, err
		}
		for _, l := range links {
			refs = append(refs, chapters.Ref{URL: l.Href, Text: l.Text})
		}

		if !opts.Paginate || opts.NextSelector == "" || !page.Exists(opts.NextSelector) {
			break
		}
		if pages >= maxPages {
			opts.Log.Warnf("chapter list: stopped after %d pages", maxPages)
			break
		}
		if href, ok := page.Href(opts.NextSelector); ok && visited[href] {
			opts.Log.Debugf("chapter list: %s already visited", href)
			break
		}

		from := page.URL()
		_, err = downloader.Retry(ctx, downloader.RetryOptions{MaxRetries: opts.MaxRetries, URL: from, Label: "next list page"},
			func(ctx context.Context) (struct{}, error) {
				return struct{}{}, page.Click(ctx, opts.NextSelector, opts.Timeout)
			})
		if err != nil {
			return nil, fmt.Errorf("list page %d: %w", pages+1, err)
		}

		if visited[page.URL()] {
			break
		}
		visited[page.URL()] = true
	}

	if len(refs) == 0 {
		return nil, ErrEmptyList
	}

	return refs, nil
}

// pageLinks treats a list selector that never appears as an empty page.
func pageLinks(ctx context.Context, page browser.Page, selector string) ([]browser.Link, error) {
	if err := page.WaitForSelector(ctx, selector); err != nil {
		var timeout *browser.SelectorTimeoutError
		if errors.As(err, &timeout) {
			return nil, nil
		}
		return nil, err
	}

	return page.Links(selector)
}
