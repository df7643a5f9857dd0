package util

import (
	"bufio"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

type HTTPClientOptions struct {
	Timeout     time.Duration
	UserAgent   string
	Cookie      string
	CookieFile  string
	Transport   http.RoundTripper
	// CloudflareBypass reshapes the TLS handshake and default headers so
	// sites behind Cloudflare's browser check answer plain requests.
	CloudflareBypass bool
	DebugLogger      interface {
		Debugf(string, ...any)
	}
}

func NewHTTPClient(opts HTTPClientOptions) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	var baseTransport http.RoundTripper
	if opts.Transport != nil {
		baseTransport = opts.Transport
	} else {
		baseTransport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxConnsPerHost:     32,
			MaxIdleConnsPerHost: 32,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		}
	}
	if opts.CloudflareBypass {
		baseTransport = cloudflarebp.AddCloudFlareByPass(baseTransport)
	}

	client := &http.Client{
		Timeout: opts.Timeout,
		Transport: roundTripper{
			base:         baseTransport,
			ua:           PickUserAgent(opts.UserAgent),
			cookieHeader: joinCookies(opts.Cookie, opts.CookieFile),
			log:          opts.DebugLogger,
		},
		Jar: jar,
	}

	if opts.DebugLogger != nil {
		opts.DebugLogger.Debugf("HTTP client initialized (timeout=%s, cloudflare=%t, cookieFile=%q)",
			opts.Timeout, opts.CloudflareBypass, opts.CookieFile)
	}

	return client, nil
}

type roundTripper struct {
	base         http.RoundTripper
	ua           string
	cookieHeader string
	log          interface{ Debugf(string, ...any) }
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if rt.ua != "" {
		req.Header.Set("User-Agent", rt.ua)
	}
	if rt.cookieHeader != "" && req.Header.Get("Cookie") == "" {
		req.Header.Set("Cookie", rt.cookieHeader)
	}

	if rt.log != nil {
		rt.log.Debugf("HTTP %s %s", req.Method, req.URL.String())
	}

	return rt.base.RoundTrip(req)
}

// joinCookies merges the inline cookie header with the first non-empty
// line of the cookie file.
func joinCookies(inline, file string) string {
	s := strings.TrimSpace(inline)
	if file == "" {
		return s
	}

	f, err := os.Open(file)
	if err != nil {
		return s
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if s == "" {
			return line
		}
		return s + "; " + line
	}

	return s
}

func PickUserAgent(override string) string {
	if override != "" {
		return override
	}

	return DefaultUserAgent
}
