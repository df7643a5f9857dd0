package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Source describes one site: where its novels live and how to read them.
type Source struct {
	Name        string      `yaml:"name"`
	BaseURLs    []string    `yaml:"base_urls"`
	Encoding    string      `yaml:"encoding,omitempty"`
	Engine      string      `yaml:"engine,omitempty"`
	Selectors   Selectors   `yaml:"selectors"`
	Pagination  Pagination  `yaml:"pagination,omitempty"`
	Concurrency Concurrency `yaml:"concurrency,omitempty"`
}

type Selectors struct {
	NovelTitle         string `yaml:"novel_title,omitempty"`
	NovelAuthor        string `yaml:"novel_author,omitempty"`
	ChapterList        string `yaml:"chapter_list"`
	ChapterListNext    string `yaml:"chapter_list_next,omitempty"`
	ChapterContent     string `yaml:"chapter_content"`
	ChapterContentNext string `yaml:"chapter_content_next,omitempty"`
}

type Pagination struct {
	Enabled      bool   `yaml:"enabled"`
	NextPageText string `yaml:"next_page_text,omitempty"`
}

// ConfigError reports a missing or invalid configuration value. Source is
// empty for global settings.
type ConfigError struct {
	Source string
	Field  string
	Msg    string
}

func (e *ConfigError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("source %q: %s: %s", e.Source, e.Field, e.Msg)
}

// Validate checks the settings that apply to every source. Source problems
// are reported by Source.Validate so one bad site does not block the rest.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Engine) {
	case "http", "chrome":
	default:
		return &ConfigError{Field: "engine", Msg: fmt.Sprintf("unknown engine %q", c.Engine)}
	}
	switch strings.ToLower(c.Format) {
	case "txt", "epub":
	default:
		return &ConfigError{Field: "format", Msg: fmt.Sprintf("unknown format %q", c.Format)}
	}
	if c.FlushEvery < 1 {
		return &ConfigError{Field: "flush_every", Msg: "must be positive"}
	}
	if err := c.Concurrency.validate(""); err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, s := range c.Sources {
		if s.Name != "" && seen[s.Name] {
			return &ConfigError{Source: s.Name, Field: "name", Msg: "duplicate source name"}
		}
		seen[s.Name] = true
	}

	return nil
}

func (c Concurrency) validate(source string) error {
	switch {
	case c.BatchSize < 0:
		return &ConfigError{Source: source, Field: "concurrency.batch_size", Msg: "must not be negative"}
	case c.MaxRetries < 0:
		return &ConfigError{Source: source, Field: "concurrency.max_retries", Msg: "must not be negative"}
	case c.TimeoutMS < 0:
		return &ConfigError{Source: source, Field: "concurrency.timeout_ms", Msg: "must not be negative"}
	}

	return nil
}

func (s Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ConfigError{Field: "name", Msg: "source without a name"}
	}
	if len(s.BaseURLs) == 0 {
		return &ConfigError{Source: s.Name, Field: "base_urls", Msg: "at least one URL is required"}
	}
	for _, raw := range s.BaseURLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &ConfigError{Source: s.Name, Field: "base_urls", Msg: fmt.Sprintf("%q is not an absolute http(s) URL", raw)}
		}
	}
	if s.Selectors.ChapterList == "" {
		return &ConfigError{Source: s.Name, Field: "selectors.chapter_list", Msg: "required"}
	}
	if s.Selectors.ChapterContent == "" {
		return &ConfigError{Source: s.Name, Field: "selectors.chapter_content", Msg: "required"}
	}
	if s.Pagination.Enabled && s.Selectors.ChapterListNext == "" && s.Selectors.ChapterContentNext == "" {
		return &ConfigError{Source: s.Name, Field: "pagination.enabled", Msg: "needs chapter_list_next or chapter_content_next"}
	}
	switch strings.ToLower(s.Engine) {
	case "", "http", "chrome":
	default:
		return &ConfigError{Source: s.Name, Field: "engine", Msg: fmt.Sprintf("unknown engine %q", s.Engine)}
	}

	return s.Concurrency.validate(s.Name)
}

// SelectSources resolves a CLI source argument. Empty or "all" selects
// every configured source.
func (c *Config) SelectSources(name string) ([]Source, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "all") {
		if len(c.Sources) == 0 {
			return nil, &ConfigError{Field: "sources", Msg: "no sources configured"}
		}
		return c.Sources, nil
	}

	for _, s := range c.Sources {
		if s.Name == name {
			return []Source{s}, nil
		}
	}

	return nil, &ConfigError{Source: name, Field: "name", Msg: "no such source"}
}
