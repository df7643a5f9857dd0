package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/brogergvhs/noveld/internal/browser"
	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/downloader"
	"github.com/brogergvhs/noveld/internal/output"
	"github.com/brogergvhs/noveld/internal/ui"
)

// Settings are the run-wide knobs a Crawler needs beyond its Source.
type Settings struct {
	Output          string
	Format          string
	FlushEvery      int
	MaxListPages    int
	MaxContentPages int
	// Concurrency is already resolved for the source.
	Concurrency config.Concurrency
	Range       string
	List        string
}

// Crawler harvests every novel of one source. Engine, Source and Settings
// are required; the rest may be nil.
type Crawler struct {
	Engine   browser.Engine
	Source   config.Source
	Settings Settings
	Log      *ui.Logger
	Progress *ui.MPBProgressManager
	Stats    *ui.Stats
}

type Discovery struct {
	BaseURL string
	Title   string
	Author  string
	Refs    []chapters.Ref
	// Jobs are the chapters that will be fetched, after dropping refs that
	// are not chapters and applying the range/list selection.
	Jobs []chapters.Job
	// NotChapters counts refs whose label was not a chapter.
	NotChapters int
}

type NovelReport struct {
	BaseURL   string
	Title     string
	Author    string
	Path      string
	Scheduled int
	Succeeded int
	Failed    int
	Bytes     int64
	Errors    *output.ErrorLog
	// Empty is set when not a single chapter could be fetched. The output
	// file still exists and holds only the header.
	Empty bool
}

type NovelFailure struct {
	BaseURL string
	Err     error
}

type SourceReport struct {
	Source   string
	Novels   []*NovelReport
	Failures []NovelFailure
	// Empty lists the base URLs whose chapter list had no links. That is a
	// warning, not a failure.
	Empty []string
}

func (c *Crawler) log() *ui.Logger {
	if c.Log == nil {
		return ui.Discard()
	}
	return c.Log
}

func (c *Crawler) stats() *ui.Stats {
	if c.Stats == nil {
		c.Stats = &ui.Stats{}
	}
	return c.Stats
}

// Crawl processes the source's novels one after another. A failing novel
// is recorded and never stops the others.
func (c *Crawler) Crawl(ctx context.Context) (*SourceReport, error) {
	report := &SourceReport{Source: c.Source.Name}

	for _, baseURL := range c.Source.BaseURLs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		nr, err := c.CrawlNovel(ctx, baseURL)
		if nr != nil {
			report.Novels = append(report.Novels, nr)
		}
		switch {
		case err == nil:
		case errors.Is(err, ErrEmptyList):
			c.log().Warnf("%s: %v", baseURL, err)
			report.Empty = append(report.Empty, baseURL)
		case ctx.Err() != nil:
			return report, ctx.Err()
		default:
			c.log().Errorf("Failed to crawl %s: %v", baseURL, err)
			report.Failures = append(report.Failures, NovelFailure{BaseURL: baseURL, Err: err})
		}
	}

	return report, nil
}

// Discover loads the novel's index page and builds the chapter plan
// without fetching any chapter.
func (c *Crawler) Discover(ctx context.Context, baseURL string) (*Discovery, error) {
	page, err := c.Engine.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	conc := c.Settings.Concurrency
	_, err = downloader.Retry(ctx, downloader.RetryOptions{MaxRetries: conc.MaxRetries, URL: baseURL, Label: "index"},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, page.Navigate(ctx, baseURL, conc.Timeout())
		})
	if err != nil {
		return nil, err
	}

	sel := c.Source.Selectors
	d := &Discovery{
		BaseURL: baseURL,
		Title:   novelTitle(page, sel.NovelTitle, baseURL),
		Author:  novelAuthor(page, sel.NovelAuthor),
	}

	d.Refs, err = CollectRefs(ctx, page, ListOptions{
		ChapterSelector: sel.ChapterList,
		NextSelector:    sel.ChapterListNext,
		Paginate:        c.Source.Pagination.Enabled,
		MaxPages:        c.Settings.MaxListPages,
		MaxRetries:      conc.MaxRetries,
		Timeout:         conc.Timeout(),
		Log:             c.log(),
	})
	if err != nil {
		return nil, err
	}

	all := chapters.Jobs(d.Refs)
	d.NotChapters = len(d.Refs) - len(all)

	d.Jobs, err = chapters.Select(all, c.Settings.Range, c.Settings.List)
	if err != nil {
		return nil, err
	}

	return d, nil
}

// CrawlNovel discovers a novel, fetches its chapters window by window and
// persists each window before starting the next one.
func (c *Crawler) CrawlNovel(ctx context.Context, baseURL string) (report *NovelReport, err error) {
	log := c.log()
	log.Infof("Crawling %s", baseURL)

	d, err := c.Discover(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", baseURL, err)
	}
	log.Infof("%s: %d chapters (%d links skipped)", d.Title, len(d.Jobs), d.NotChapters)

	errs := output.NewErrorLog()
	report = &NovelReport{
		BaseURL:   baseURL,
		Title:     d.Title,
		Author:    d.Author,
		Scheduled: len(d.Jobs),
		Errors:    errs,
	}
	if len(d.Jobs) == 0 {
		log.Warnf("%s: no chapters selected", d.Title)
		return report, nil
	}

	sink, err := output.Open(c.Settings.Format, c.Settings.Output, d.Title)
	if err != nil {
		return nil, err
	}
	report.Path = sink.Path()
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if lerr := output.AppendErrorLog(c.Settings.Output, errs); lerr != nil {
			log.Errorf("write error log: %v", lerr)
		}
	}()

	if err := sink.WriteHeader(d.Title, d.Author); err != nil {
		return report, err
	}

	flush := c.Settings.FlushEvery
	if flush < 1 {
		flush = config.DefaultFlushEvery
	}
	if _, ok := sink.(*output.EpubSink); ok && len(d.Jobs) > flush {
		log.Warnf("%s: epub output holds all %d chapters in memory until the book is written", d.Title, len(d.Jobs))
	}

	bar := c.Progress.Register(d.Title)
	bar.SetTotal(len(d.Jobs))
	defer bar.MarkDone()
	for start := 0; start < len(d.Jobs); start += flush {
		window := d.Jobs[start:min(start+flush, len(d.Jobs))]

		results := c.fetchWindow(ctx, window, errs, bar)
		done := output.Assemble(results)

		n, err := sink.WriteSections(done)
		if err != nil {
			return report, err
		}
		bar.AddBytes(n)

		report.Bytes += n
		report.Succeeded += len(done)
		report.Failed += len(results) - len(done)

		if ctx.Err() != nil {
			bar.Abort()
			break
		}
	}

	st := c.stats()
	st.Novels.Add(1)
	st.TotalChapters.Add(int64(report.Succeeded))
	st.FailedChapters.Add(int64(report.Failed))
	st.SkippedChapters.Add(int64(d.NotChapters))
	st.TotalBytes.Add(report.Bytes)

	if report.Succeeded == 0 {
		report.Empty = true
		log.Warnf("%s: no chapter could be fetched, %s has only the header", d.Title, report.Path)
	} else {
		log.Successf("%s: %d/%d chapters saved to %s", d.Title, report.Succeeded, report.Scheduled, report.Path)
	}

	return report, ctx.Err()
}

func (c *Crawler) fetchWindow(ctx context.Context, window []chapters.Job, errs *output.ErrorLog, bar *ui.ProgressHandle) []output.Result {
	tasks := make([]downloader.Task[string], len(window))
	for i, job := range window {
		tasks[i] = func(ctx context.Context) (string, error) {
			return c.fetchChapter(ctx, job, errs)
		}
	}

	outcomes := downloader.Settle(ctx, downloader.Pool{
		Limit:    c.Settings.Concurrency.BatchSize,
		OnSettle: func(_ int, err error) { bar.Settled(err) },
	}, tasks)

	results := make([]output.Result, len(outcomes))
	for i, o := range outcomes {
		job := window[i]
		results[i] = output.Result{Index: job.Index, Ref: job.Ref, Info: job.Info, Text: o.Value, Err: o.Err}

		// Exhausted retries are already in the log.
		var fetchErr *downloader.ChapterFetchError
		if o.Err != nil && !errors.As(o.Err, &fetchErr) {
			errs.Record(fmt.Sprintf("跳过【%s】<%s>: %v", job.Info.Header(), job.Ref.URL, o.Err))
		}
	}

	return results
}

// fetchChapter gives every attempt a fresh page so no state from a failed
// attempt leaks into the next one.
func (c *Crawler) fetchChapter(ctx context.Context, job chapters.Job, errs *output.ErrorLog) (string, error) {
	conc := c.Settings.Concurrency
	sel := c.Source.Selectors
	header := job.Info.Header()

	text, err := downloader.Retry(ctx, downloader.RetryOptions{
		MaxRetries: conc.MaxRetries,
		URL:        job.Ref.URL,
		Label:      header,
		Recorder:   errs,
	}, func(ctx context.Context) (string, error) {
		page, err := c.Engine.NewPage(ctx)
		if err != nil {
			return "", err
		}
		defer page.Close()

		return downloader.FetchContent(ctx, page, job.Ref.URL, downloader.ContentOptions{
			ContentSelector: sel.ChapterContent,
			NextSelector:    sel.ChapterContentNext,
			NextText:        c.Source.Pagination.NextPageText,
			Paginate:        c.Source.Pagination.Enabled,
			MaxPages:        c.Settings.MaxContentPages,
			Timeout:         conc.Timeout(),
			Log:             c.log(),
			Truncated: func(pages int) {
				errs.Record(fmt.Sprintf("截断【%s】<%s>: 已读取 %d 页, 后续内容未抓取", header, job.Ref.URL, pages))
			},
		})
	})
	if err != nil {
		return "", err
	}

	c.log().Debugf("fetched %s", header)
	return text, nil
}

func novelTitle(page browser.Page, selector, baseURL string) string {
	if selector != "" {
		if t, err := page.Text(selector); err == nil {
			if t = strings.Join(strings.Fields(t), " "); t != "" {
				return t
			}
		}
	}

	return titleFromURL(baseURL)
}

// titleFromURL prefers an explicit novels_name query parameter and falls
// back to the last path segment.
func titleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "novel"
	}
	if name := strings.TrimSpace(u.Query().Get("novels_name")); name != "" {
		return name
	}

	base := path.Base(strings.TrimRight(u.Path, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	if base != "" && base != "." && base != "/" {
		if s, err := url.PathUnescape(base); err == nil {
			return s
		}
		return base
	}

	return u.Host
}

// novelAuthor reads the author line, dropping a "作者：" style prefix.
func novelAuthor(page browser.Page, selector string) string {
	if selector == "" {
		return ""
	}
	t, err := page.Text(selector)
	if err != nil {
		return ""
	}
	t = strings.Join(strings.Fields(t), " ")

	for _, sep := range []string{"：", ":"} {
		if _, after, ok := strings.Cut(t, sep); ok {
			return strings.TrimSpace(after)
		}
	}

	return t
}
