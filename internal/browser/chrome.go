package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const clickSettle = 500 * time.Millisecond

type ChromeOptions struct {
	Headless  bool
	ExecPath  string
	UserAgent string
	NoSandbox bool
	Log       Debugger
}

// ChromeEngine drives one headless Chrome process. Every page is a new tab
// in that browser.
type ChromeEngine struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	log           Debugger
}

func NewChromeEngine(opts ChromeOptions) (*ChromeEngine, error) {
	log := debuggerOrNop(opts.Log)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", "zh-CN,zh"),
	)
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Debugf))

	// The first Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	log.Debugf("chrome started (headless=%v)", opts.Headless)

	return &ChromeEngine{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		log:           log,
	}, nil
}

func (e *ChromeEngine) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(e.browserCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	return &chromePage{tabCtx: tabCtx, cancel: cancel, log: e.log}, nil
}

func (e *ChromeEngine) Close() error {
	e.browserCancel()
	e.allocCancel()
	return nil
}

type chromePage struct {
	view
	tabCtx  context.Context
	cancel  context.CancelFunc
	log     Debugger
	timeout time.Duration
}

// run executes actions in the tab, bounded by timeout and by ctx. The tab
// context outlives any single call, so ctx cancellation is forwarded.
func (p *chromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(p.tabCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(p.tabCtx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	return nil
}

func (p *chromePage) capture(ctx context.Context, timeout time.Duration, target string, actions ...chromedp.Action) error {
	var html, location string
	actions = append(actions,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err := p.run(ctx, timeout, actions...); err != nil {
		return &NavigationError{URL: target, Err: err}
	}

	u, err := url.Parse(location)
	if err != nil {
		return &NavigationError{URL: target, Err: err}
	}
	snap, err := newSnapshot(strings.NewReader(html), u)
	if err != nil {
		return &NavigationError{URL: target, Err: err}
	}
	p.snap = snap
	p.log.Debugf("loaded %s", location)

	return nil
}

func (p *chromePage) Navigate(ctx context.Context, target string, timeout time.Duration) error {
	p.timeout = timeout
	return p.capture(ctx, timeout, target, chromedp.Navigate(target))
}

// WaitForSelector waits in the live page, then refreshes the snapshot so
// content rendered by scripts becomes visible to queries.
func (p *chromePage) WaitForSelector(ctx context.Context, selector string) error {
	if p.snap == nil {
		return ErrNoDocument
	}

	query, by := chromeQuery(selector)
	if err := p.run(ctx, p.timeout, chromedp.WaitReady(query, by)); err != nil {
		if ctx.Err() != nil {
			return err
		}
		return &SelectorTimeoutError{Selector: selector, URL: p.URL(), Err: err}
	}

	return p.capture(ctx, p.timeout, p.URL())
}

// Click follows the element's href when it has one and otherwise clicks it
// in the page and waits for whatever it loads.
func (p *chromePage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if href, ok := p.Href(selector); ok {
		return p.Navigate(ctx, href, timeout)
	}

	query, by := chromeQuery(selector)
	return p.capture(ctx, timeout, p.URL(),
		chromedp.Click(query, by, chromedp.NodeVisible),
		chromedp.Sleep(clickSettle),
	)
}

func (p *chromePage) Close() error {
	p.cancel()
	p.snap = nil
	return nil
}

func chromeQuery(selector string) (string, chromedp.QueryOption) {
	if expr, ok := xpathExpr(selector); ok {
		return expr, chromedp.BySearch
	}

	return selector, chromedp.ByQuery
}
