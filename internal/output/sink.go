package output

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	FormatText = "txt"
	FormatEpub = "epub"
)

// Sink receives a novel's chapters batch by batch, in order.
type Sink interface {
	WriteHeader(title, author string) error
	// WriteSections appends the successful results of one batch and
	// reports the bytes of chapter text written.
	WriteSections(results []Result) (int64, error)
	Path() string
	Close() error
}

// Open creates the sink for format inside dir, named after title.
func Open(format, dir, title string) (Sink, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewTextSink(dir, title)
	case FormatEpub:
		return NewEpubSink(dir, title)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

var reUnderscore = regexp.MustCompile(`_+`)

// FileName turns a novel title into a safe file base name. Letters of any
// script are kept; path separators and characters reserved on common
// filesystems become underscores.
func FileName(title string) string {
	repl := []string{
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	}
	s := strings.NewReplacer(repl...).Replace(strings.TrimSpace(title))

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
		case unicode.IsSpace(r):
			clean = append(clean, ' ')
		default:
			clean = append(clean, r)
		}
	}
	s = reUnderscore.ReplaceAllString(strings.Join(strings.Fields(string(clean)), " "), "_")
	s = strings.Trim(s, "_. ")

	if s == "" {
		return "untitled"
	}

	return s
}
