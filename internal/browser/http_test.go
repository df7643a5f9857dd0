package browser_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brogergvhs/noveld/internal/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

const listPage = `<html><head><title>目录</title></head><body>
<h1 id="title">  凡人修仙传 </h1>
<div class="author">作者：忘语</div>
<ul id="list">
  <li><a href="/book/1.html">第1章 开端</a></li>
  <li><a href="2.html"> 第2章
     决战 </a></li>
  <li><a href="javascript:void(0)">广告</a></li>
  <li><a>无链接</a></li>
</ul>
<a class="next" href="/book/list_2.html#top">下一页</a>
</body></html>`

const contentPage = `<html><body><div id="content">
<script>var ad = 1;</script>
　　第一段内容。<br/>
　　第二段&nbsp;内容。<br>
<p>第三段</p>
</div></body></html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/book/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, listPage)
	})
	mux.HandleFunc("/chapter", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, contentPage)
	})
	mux.HandleFunc("/gbk", func(w http.ResponseWriter, r *http.Request) {
		body, _ := simplifiedchinese.GBK.NewEncoder().String(`<html><body><div id="c">第十二章 风起云涌</div></body></html>`)
		w.Header().Set("Content-Type", "text/html; charset=gbk")
		fmt.Fprint(w, body)
	})
	mux.HandleFunc("/gbk-bare", func(w http.ResponseWriter, r *http.Request) {
		body, _ := simplifiedchinese.GBK.NewEncoder().String(`<html><body><div id="c">番外 三人行</div></body></html>`)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func openPage(t *testing.T, srv *httptest.Server, enc string) browser.Page {
	t.Helper()

	engine, err := browser.NewHTTPEngine(srv.Client(), enc, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	page, err := engine.NewPage(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = page.Close() })

	return page
}

func TestHTTPPage_Queries(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	page := openPage(t, srv, "")
	ctx := context.Background()

	require.NoError(t, page.Navigate(ctx, srv.URL+"/book/index.html", 5*time.Second))
	assert.Equal(t, srv.URL+"/book/index.html", page.URL())

	t.Run("links are absolute and skip dead anchors", func(t *testing.T) {
		links, err := page.Links("#list a")
		require.NoError(t, err)
		assert.Equal(t, []browser.Link{
			{Href: srv.URL + "/book/1.html", Text: "第1章 开端"},
			{Href: srv.URL + "/book/2.html", Text: "第2章 决战"},
		}, links)
	})

	t.Run("xpath selects the same anchors", func(t *testing.T) {
		links, err := page.Links(`//ul[@id="list"]/li/a`)
		require.NoError(t, err)
		assert.Len(t, links, 2)

		links, err = page.Links(`xpath: //a[@class="next"]`)
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, srv.URL+"/book/list_2.html", links[0].Href)
	})

	t.Run("text and existence", func(t *testing.T) {
		title, err := page.Text("#title")
		require.NoError(t, err)
		assert.Equal(t, "凡人修仙传", collapse(title))

		assert.True(t, page.Exists("a.next"))
		assert.False(t, page.Exists("a.prev"))

		_, err = page.Text(".nothing")
		var timeout *browser.SelectorTimeoutError
		assert.True(t, errors.As(err, &timeout))
	})

	t.Run("wait for selector on a static page", func(t *testing.T) {
		assert.NoError(t, page.WaitForSelector(ctx, "#list"))

		err := page.WaitForSelector(ctx, "#content")
		var timeout *browser.SelectorTimeoutError
		assert.True(t, errors.As(err, &timeout))
	})

	t.Run("href strips fragments", func(t *testing.T) {
		href, ok := page.Href("a.next")
		assert.True(t, ok)
		assert.Equal(t, srv.URL+"/book/list_2.html", href)
	})
}

func TestHTTPPage_InnerText(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	page := openPage(t, srv, "")

	require.NoError(t, page.Navigate(context.Background(), srv.URL+"/chapter", time.Second))

	text, err := page.Text("#content")
	require.NoError(t, err)

	assert.NotContains(t, text, "var ad")
	assert.Contains(t, text, "　　第一段内容。\n")
	assert.Contains(t, text, "第二段\u00a0内容。")
	assert.Contains(t, text, "\n第三段\n")
}

func TestHTTPPage_Click(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	page := openPage(t, srv, "")
	ctx := context.Background()

	require.NoError(t, page.Navigate(ctx, srv.URL+"/book/", time.Second))
	require.NoError(t, page.Click(ctx, "a.next", time.Second))
	assert.Equal(t, srv.URL+"/book/list_2.html", page.URL())

	err := page.Click(ctx, "#list li:nth-child(4) a", time.Second)
	var nav *browser.NavigationError
	assert.True(t, errors.As(err, &nav))
}

func TestHTTPPage_Encoding(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	ctx := context.Background()

	t.Run("charset from headers", func(t *testing.T) {
		page := openPage(t, srv, "")
		require.NoError(t, page.Navigate(ctx, srv.URL+"/gbk", time.Second))

		text, err := page.Text("#c")
		require.NoError(t, err)
		assert.Equal(t, "第十二章 风起云涌", text)
	})

	t.Run("forced encoding", func(t *testing.T) {
		page := openPage(t, srv, "GBK")
		require.NoError(t, page.Navigate(ctx, srv.URL+"/gbk-bare", time.Second))

		text, err := page.Text("#c")
		require.NoError(t, err)
		assert.Equal(t, "番外 三人行", text)
	})

	t.Run("unknown encoding is rejected", func(t *testing.T) {
		_, err := browser.NewHTTPEngine(srv.Client(), "klingon-8", nil)
		assert.Error(t, err)
	})
}

func TestHTTPPage_NavigationErrors(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	page := openPage(t, srv, "")

	err := page.Navigate(context.Background(), srv.URL+"/missing", time.Second)

	var nav *browser.NavigationError
	require.True(t, errors.As(err, &nav))
	assert.Equal(t, srv.URL+"/missing", nav.URL)
	assert.Contains(t, err.Error(), "HTTP 404")

	assert.ErrorIs(t, page.WaitForSelector(context.Background(), "body"), browser.ErrNoDocument)
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := browser.New(browser.Options{Kind: "lynx"})
	assert.Error(t, err)

	_, err = browser.New(browser.Options{Kind: browser.KindHTTP})
	assert.Error(t, err)

	engine, err := browser.New(browser.Options{Client: http.DefaultClient})
	require.NoError(t, err)
	assert.IsType(t, &browser.HTTPEngine{}, engine)
}

func collapse(s string) string {
	out := []rune{}
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' {
			space = len(out) > 0
			continue
		}
		if space {
			out = append(out, ' ')
			space = false
		}
		out = append(out, r)
	}
	return string(out)
}
