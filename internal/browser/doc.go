// Package browser provides the navigation engines the crawler drives: a
// plain HTTP engine that parses pages with goquery, and a headless Chrome
// engine built on chromedp for sites that render their chapter lists with
// JavaScript. Both expose the same Page abstraction over a parsed snapshot
// of the current document, queried with CSS or XPath selectors.
package browser
