package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TextSink writes a single UTF-8 text file. The file is truncated when the
// sink is created and every batch is appended with one write.
type TextSink struct {
	f    *os.File
	path string
}

func NewTextSink(dir, title string) (*TextSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, FileName(title)+".txt")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	return &TextSink{f: f, path: path}, nil
}

// WriteHeader writes the title block. Without a known author there is no
// header at all.
func (s *TextSink) WriteHeader(title, author string) error {
	if author == "" {
		return nil
	}
	if _, err := fmt.Fprintf(s.f, "小说名称：%s\n作者：%s\n", title, author); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	return nil
}

func (s *TextSink) WriteSections(results []Result) (int64, error) {
	var (
		b     strings.Builder
		bytes int64
	)
	for _, r := range results {
		b.WriteString(FormatSection(r.Info.Header(), r.Text))
		bytes += int64(len(r.Text))
	}
	if b.Len() == 0 {
		return 0, nil
	}

	if _, err := io.WriteString(s.f, b.String()); err != nil {
		return 0, fmt.Errorf("append to %s: %w", s.path, err)
	}

	return bytes, nil
}

func (s *TextSink) Path() string { return s.path }

func (s *TextSink) Close() error {
	return s.f.Close()
}
