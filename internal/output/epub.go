package output

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmaupin/go-epub"
)

// EpubSink collects one section per chapter and writes the book on Close.
type EpubSink struct {
	book     *epub.Epub
	path     string
	sections int
}

func NewEpubSink(dir, title string) (*EpubSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	return &EpubSink{
		book: epub.NewEpub(title),
		path: filepath.Join(dir, FileName(title)+".epub"),
	}, nil
}

func (s *EpubSink) WriteHeader(title, author string) error {
	s.book.SetTitle(title)
	if author != "" {
		s.book.SetAuthor(author)
	}
	s.book.SetLang("zh")

	return nil
}

func (s *EpubSink) WriteSections(results []Result) (int64, error) {
	var bytes int64
	for _, r := range results {
		header := r.Info.Header()
		if _, err := s.book.AddSection(sectionHTML(header, r.Text), header, "", ""); err != nil {
			return bytes, fmt.Errorf("epub section %q: %w", header, err)
		}
		s.sections++
		bytes += int64(len(r.Text))
	}

	return bytes, nil
}

func sectionHTML(header, text string) string {
	var b strings.Builder
	b.WriteString("<h1>")
	b.WriteString(html.EscapeString(header))
	b.WriteString("</h1>\n")
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>\n")
	}

	return b.String()
}

func (s *EpubSink) Path() string { return s.path }

// Close writes the book. A book without sections still gets written so
// the output exists alongside the error log.
func (s *EpubSink) Close() error {
	if err := s.book.Write(s.path); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}

	return nil
}
