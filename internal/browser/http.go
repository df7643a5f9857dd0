package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// HTTPEngine fetches pages with a plain HTTP client. It never runs
// JavaScript, so Click only works on elements that carry an href.
type HTTPEngine struct {
	client *http.Client
	enc    encoding.Encoding
	log    Debugger
}

// NewHTTPEngine wraps client. encodingName forces a page encoding; when it
// is empty the charset is taken from the response headers or <meta> tags.
func NewHTTPEngine(client *http.Client, encodingName string, log Debugger) (*HTTPEngine, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}

	return &HTTPEngine{client: client, enc: enc, log: debuggerOrNop(log)}, nil
}

func (e *HTTPEngine) NewPage(context.Context) (Page, error) {
	return &httpPage{engine: e}, nil
}

func (e *HTTPEngine) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

// LookupEncoding maps a configured encoding name to a decoder. Empty and
// "auto" return nil, meaning detect per response.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return nil, nil
	case "gbk", "gb2312", "cp936":
		return simplifiedchinese.GBK, nil
	case "gb18030":
		return simplifiedchinese.GB18030, nil
	case "hz-gb-2312":
		return simplifiedchinese.HZGB2312, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}

	return enc, nil
}

type httpPage struct {
	view
	engine *HTTPEngine
}

func (p *httpPage) Navigate(ctx context.Context, target string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &NavigationError{URL: target, Err: err}
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.6")
	if prev := p.URL(); prev != "" {
		req.Header.Set("Referer", prev)
	}

	resp, err := p.engine.client.Do(req)
	if err != nil {
		return &NavigationError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &NavigationError{URL: target, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := p.engine.decode(resp)
	if err != nil {
		return &NavigationError{URL: target, Err: err}
	}

	snap, err := newSnapshot(body, finalURL(resp, target))
	if err != nil {
		return &NavigationError{URL: target, Err: err}
	}
	p.snap = snap
	p.engine.log.Debugf("loaded %s", snap.url())

	return nil
}

func (e *HTTPEngine) decode(resp *http.Response) (io.Reader, error) {
	if e.enc != nil {
		return transform.NewReader(resp.Body, e.enc.NewDecoder()), nil
	}

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}

	return r, nil
}

func finalURL(resp *http.Response, target string) *url.URL {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL
	}
	u, err := url.Parse(target)
	if err != nil {
		return &url.URL{}
	}

	return u
}

// WaitForSelector only checks the current snapshot: a static page will not
// change by waiting.
func (p *httpPage) WaitForSelector(_ context.Context, selector string) error {
	if p.snap == nil {
		return ErrNoDocument
	}
	if !p.Exists(selector) {
		return &SelectorTimeoutError{Selector: selector, URL: p.URL()}
	}

	return nil
}

func (p *httpPage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	href, ok := p.Href(selector)
	if !ok {
		return &NavigationError{URL: p.URL(), Err: fmt.Errorf("%q has no followable href", selector)}
	}

	return p.Navigate(ctx, href, timeout)
}

func (p *httpPage) Close() error {
	p.snap = nil
	return nil
}
