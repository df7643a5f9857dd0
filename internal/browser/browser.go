package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	KindHTTP   = "http"
	KindChrome = "chrome"
)

var ErrNoDocument = errors.New("no page loaded")

// Link is an anchor found on a page. Href is already absolute.
type Link struct {
	Href string
	Text string
}

// Engine hands out isolated pages. Pages from one engine may be used
// concurrently with each other; a single Page must not be.
type Engine interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

type Page interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	WaitForSelector(ctx context.Context, selector string) error
	Exists(selector string) bool
	Text(selector string) (string, error)
	Links(selector string) ([]Link, error)
	Href(selector string) (string, bool)
	Click(ctx context.Context, selector string, timeout time.Duration) error
	URL() string
	Close() error
}

type Debugger interface {
	Debugf(format string, args ...any)
}

// NavigationError reports a page that could not be loaded.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// SelectorTimeoutError reports a selector that never matched on a page.
type SelectorTimeoutError struct {
	Selector string
	URL      string
	Err      error
}

func (e *SelectorTimeoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("selector %q not found on %s: %v", e.Selector, e.URL, e.Err)
	}
	return fmt.Sprintf("selector %q not found on %s", e.Selector, e.URL)
}

func (e *SelectorTimeoutError) Unwrap() error { return e.Err }

type Options struct {
	Kind     string
	Client   *http.Client
	Encoding string
	Chrome   ChromeOptions
	Log      Debugger
}

// New builds the engine selected by o.Kind. An empty kind means HTTP.
func New(o Options) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(o.Kind)) {
	case "", KindHTTP:
		if o.Client == nil {
			return nil, errors.New("http engine needs a client")
		}
		return NewHTTPEngine(o.Client, o.Encoding, o.Log)
	case KindChrome:
		opts := o.Chrome
		if opts.Log == nil {
			opts.Log = o.Log
		}
		return NewChromeEngine(opts)
	default:
		return nil, fmt.Errorf("unknown engine %q (want %s or %s)", o.Kind, KindHTTP, KindChrome)
	}
}

type nopDebugger struct{}

func (nopDebugger) Debugf(string, ...any) {}

func debuggerOrNop(d Debugger) Debugger {
	if d == nil {
		return nopDebugger{}
	}
	return d
}
