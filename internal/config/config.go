package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultOutput          = "novels"
	DefaultEngine          = "http"
	DefaultFormat          = "txt"
	DefaultFlushEvery      = 500
	DefaultMaxListPages    = 500
	DefaultMaxContentPages = 100
	DefaultBatchSize       = 10
	DefaultMaxRetries      = 3
	DefaultTimeoutMS       = 30000
)

type Config struct {
	Output string `yaml:"output"`
	Logs   string `yaml:"logs"`
	Engine string `yaml:"engine"`
	Format string `yaml:"format"`
	Debug  bool   `yaml:"debug"`

	FlushEvery      int `yaml:"flush_every"`
	MaxListPages    int `yaml:"max_list_pages"`
	MaxContentPages int `yaml:"max_content_pages"`

	Cookie           string `yaml:"cookie"`
	CookieFile       string `yaml:"cookie_file"`
	UserAgent        string `yaml:"user_agent"`
	CloudflareBypass bool   `yaml:"cloudflare_bypass"`

	Chrome      Chrome      `yaml:"chrome"`
	Concurrency Concurrency `yaml:"concurrency"`
	Sources     []Source    `yaml:"sources"`
}

type Chrome struct {
	ShowBrowser bool   `yaml:"show_browser"`
	ExecPath    string `yaml:"exec_path"`
	NoSandbox   bool   `yaml:"no_sandbox"`
}

type Concurrency struct {
	BatchSize  int `yaml:"batch_size,omitempty"`
	MaxRetries int `yaml:"max_retries,omitempty"`
	TimeoutMS  int `yaml:"timeout_ms,omitempty"`
}

func (c Concurrency) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Over returns c with its zero fields taken from base.
func (c Concurrency) Over(base Concurrency) Concurrency {
	if c.BatchSize == 0 {
		c.BatchSize = base.BatchSize
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = base.MaxRetries
	}
	if c.TimeoutMS == 0 {
		c.TimeoutMS = base.TimeoutMS
	}

	return c
}

type Options struct {
	IgnoreConfig     bool
	Debug            bool
	Output           string
	Logs             string
	Engine           string
	Format           string
	ShowBrowser      bool
	FlushEvery       int
	BatchSize        int
	MaxRetries       int
	TimeoutMS        int
	Cookie           string
	CookieFile       string
	UserAgent        string
	CloudflareBypass bool
}

func DefaultConfig() *Config {
	return &Config{
		Output:          DefaultOutput,
		Logs:            "logs",
		Engine:          DefaultEngine,
		Format:          DefaultFormat,
		FlushEvery:      DefaultFlushEvery,
		MaxListPages:    DefaultMaxListPages,
		MaxContentPages: DefaultMaxContentPages,
		Concurrency: Concurrency{
			BatchSize:  DefaultBatchSize,
			MaxRetries: DefaultMaxRetries,
			TimeoutMS:  DefaultTimeoutMS,
		},
		Sources: DefaultSources(),
	}
}

// DefaultSources are the sites a fresh profile ships with.
func DefaultSources() []Source {
	return []Source{
		{
			Name:     "deqixs",
			BaseURLs: []string{"https://www.deqixs.com/xiaoshuo/250/"},
			Selectors: Selectors{
				NovelTitle:         "h1 > a",
				ChapterList:        "#list > ul > li > a",
				ChapterListNext:    "#pages > a.gr",
				ChapterContent:     ".container > .con",
				ChapterContentNext: "div.prenext > span:nth-child(3) > a",
			},
			Pagination:  Pagination{Enabled: true, NextPageText: "下一页"},
			Concurrency: Concurrency{BatchSize: 2, MaxRetries: 4, TimeoutMS: 10000},
		},
		{
			Name:     "xuanyge",
			BaseURLs: []string{"http://www.xuanyge.org/files/article/html/187/187765/"},
			Selectors: Selectors{
				NovelTitle:     "#bookinfo > div.bookright > div.booktitle > h1",
				ChapterList:    ".all-chapter .listmain dl dd a",
				ChapterContent: "#chaptercontent",
			},
		},
		{
			Name:     "owlook",
			BaseURLs: []string{"https://www.owlook.com.cn/chapter?url=https://www.bi05.cc/html/71065/&novels_name=%E9%97%AE%E9%81%93%E7%BA%A2%E5%B0%98"},
			Selectors: Selectors{
				ChapterList:    ".all-chapter .listmain dl dd a",
				ChapterContent: "#chaptercontent",
			},
		},
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `noveld config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Logs != "" {
		c.Logs = o.Logs
	}
	if o.Engine != "" {
		c.Engine = o.Engine
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if o.ShowBrowser {
		c.Chrome.ShowBrowser = true
	}
	if o.Debug {
		c.Debug = true
	}
	if o.FlushEvery != 0 {
		c.FlushEvery = o.FlushEvery
	}
	if o.BatchSize != 0 {
		c.Concurrency.BatchSize = o.BatchSize
	}
	if o.MaxRetries != 0 {
		c.Concurrency.MaxRetries = o.MaxRetries
	}
	if o.TimeoutMS != 0 {
		c.Concurrency.TimeoutMS = o.TimeoutMS
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.CloudflareBypass {
		c.CloudflareBypass = true
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.FlushEvery == 0 {
		c.FlushEvery = DefaultFlushEvery
	}
	if c.MaxListPages == 0 {
		c.MaxListPages = DefaultMaxListPages
	}
	if c.MaxContentPages == 0 {
		c.MaxContentPages = DefaultMaxContentPages
	}
	c.Concurrency = c.Concurrency.Over(Concurrency{
		BatchSize:  DefaultBatchSize,
		MaxRetries: DefaultMaxRetries,
		TimeoutMS:  DefaultTimeoutMS,
	})
}

func (c *Config) Print() {
	fmt.Printf(" -output: %s\n", c.Output)
	if c.Logs != "" {
		fmt.Printf(" -logs: %s\n", c.Logs)
	}
	fmt.Printf(" -engine: %s\n", c.Engine)
	fmt.Printf(" -format: %s\n", c.Format)
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	fmt.Printf(" -concurrency: batch_size=%d max_retries=%d timeout_ms=%d\n",
		c.Concurrency.BatchSize, c.Concurrency.MaxRetries, c.Concurrency.TimeoutMS)
	fmt.Printf(" -flush_every: %d\n", c.FlushEvery)
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.CloudflareBypass {
		fmt.Printf(" -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
	if len(c.Sources) > 0 {
		names := make([]string, len(c.Sources))
		for i, s := range c.Sources {
			names[i] = s.Name
		}
		fmt.Printf(" -sources: %s\n", strings.Join(names, ", "))
	}
}
