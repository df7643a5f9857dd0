package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/brogergvhs/noveld/internal/browser"
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/crawler"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"

	"github.com/spf13/cobra"
)

var (
	// selection
	flagRange  string
	flagList   string
	flagDryRun bool

	// runtime
	flagOutput      string
	flagLogs        string
	flagEngine      string
	flagFormat      string
	flagShowBrowser bool
	flagFlushEvery  int
	flagBatchSize   int
	flagMaxRetries  int
	flagTimeoutMS   int

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
	flagCloudflare bool
)

func init() {
	crawlCmd := &cobra.Command{
		Use:   "crawl [source|all]",
		Short: "Crawl the novels of one or all configured sources. Uses the defaults from the selected config, overwritten by CLI flags",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCrawl,
	}

	// selection
	crawlCmd.Flags().StringVar(&flagRange, "range", "", "crawl range of chapters by index (e.g. 5-12)")
	crawlCmd.Flags().StringVar(&flagList, "list", "", "crawl specific chapter indices (e.g. 1,3,5)")
	crawlCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be crawled, don’t fetch chapters")

	// runtime
	crawlCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for novels and error.log")
	crawlCmd.Flags().StringVar(&flagLogs, "logs", "", "folder for per-source log files")
	crawlCmd.Flags().StringVar(&flagEngine, "engine", "", "page engine: http or chrome")
	crawlCmd.Flags().StringVar(&flagFormat, "format", "", "output format: txt or epub")
	crawlCmd.Flags().BoolVar(&flagShowBrowser, "show-browser", false, "run chrome with a visible window")
	crawlCmd.Flags().IntVar(&flagFlushEvery, "flush-every", 0, "chapters fetched before each write to disk")
	crawlCmd.Flags().IntVar(&flagBatchSize, "batch-size", 0, "parallel chapter fetches")
	crawlCmd.Flags().IntVar(&flagMaxRetries, "max-retries", 0, "attempts per chapter before it is skipped")
	crawlCmd.Flags().IntVar(&flagTimeoutMS, "timeout", 0, "page timeout in milliseconds")

	// headers/auth
	crawlCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	crawlCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	crawlCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	crawlCmd.Flags().BoolVar(&flagCloudflare, "cloudflare", false, "use a Cloudflare tolerant HTTP transport")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:     flagIgnoreConfig,
		Debug:            flagDebug,
		Output:           flagOutput,
		Logs:             flagLogs,
		Engine:           flagEngine,
		Format:           flagFormat,
		ShowBrowser:      flagShowBrowser,
		FlushEvery:       flagFlushEvery,
		BatchSize:        flagBatchSize,
		MaxRetries:       flagMaxRetries,
		TimeoutMS:        flagTimeoutMS,
		Cookie:           flagCookie,
		CookieFile:       flagCookieFile,
		UserAgent:        flagUserAgent,
		CloudflareBypass: flagCloudflare,
	})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var name string
	if len(args) == 1 {
		name = args[0]
	}
	sources, err := cfg.SelectSources(name)
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()

	ctx, stop := util.InterruptContext(cmd.Context(), func() { util.RemoveIfEmpty(cfg.Output) })
	defer stop()

	if flagDryRun {
		return dryRun(ctx, cfg, sources, logSvc)
	}

	pm := ui.NewProgressManager(nil)
	stats := &ui.Stats{}
	start := time.Now()

	var failures, empty int
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}

		report, err := crawlSource(ctx, cfg, src, logSvc, pm, stats)
		if err != nil {
			var cfgErr *config.ConfigError
			if errors.As(err, &cfgErr) {
				logSvc.Errorf("Skipping source: %v", err)
			} else if ctx.Err() == nil {
				logSvc.Errorf("Source %s failed: %v", src.Name, err)
			}
			failures++
		}
		if report != nil {
			failures += len(report.Failures)
			empty += len(report.Empty)
		}
	}
	pm.Close()
	util.RemoveIfEmpty(cfg.Output)

	fmt.Println()
	fmt.Println("Crawl Summary:")
	fmt.Printf("Novels:   %d\n", stats.Novels.Load())
	fmt.Printf("Chapters: %d\n", stats.TotalChapters.Load())
	fmt.Printf("Failed:   %d\n", stats.FailedChapters.Load())
	fmt.Printf("Skipped:  %d (not chapters)\n", stats.SkippedChapters.Load())
	if empty > 0 {
		fmt.Printf("Empty:    %d novel(s) without chapter links\n", empty)
	}
	fmt.Printf("Data:     %s\n", util.Human(stats.TotalBytes.Load()))
	fmt.Printf("Time:     %s\n", time.Since(start).Round(time.Second))

	if ctx.Err() != nil {
		return fmt.Errorf("interrupted, partial output kept in %s", cfg.Output)
	}
	if failures > 0 {
		return fmt.Errorf("%d source(s) or novel(s) failed, see the log above", failures)
	}

	fmt.Println("\nAll done.")
	return nil
}

func crawlSource(ctx context.Context, cfg *config.Config, src config.Source, logSvc *ui.Logger, pm *ui.MPBProgressManager, stats *ui.Stats) (*crawler.SourceReport, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	log := logSvc.With("source", src.Name)
	if cfg.Logs != "" {
		fileLog, err := log.WithFile(cfg.Logs, src.Name, time.Now())
		if err != nil {
			log.Warnf("File logging disabled: %v", err)
		} else {
			defer fileLog.Close()
			log = fileLog
		}
	}

	c, err := newCrawler(cfg, src, log)
	if err != nil {
		return nil, err
	}
	defer c.Engine.Close()

	c.Progress = pm
	c.Stats = stats

	return c.Crawl(ctx)
}

func newCrawler(cfg *config.Config, src config.Source, log *ui.Logger) (*crawler.Crawler, error) {
	conc := src.Concurrency.Over(cfg.Concurrency)
	ua := util.PickUserAgent(cfg.UserAgent)

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:          conc.Timeout(),
		UserAgent:        ua,
		Cookie:           cfg.Cookie,
		CookieFile:       cfg.CookieFile,
		CloudflareBypass: cfg.CloudflareBypass,
		DebugLogger:      log,
	})
	if err != nil {
		return nil, err
	}

	kind := cfg.Engine
	if src.Engine != "" {
		kind = src.Engine
	}

	engine, err := browser.New(browser.Options{
		Kind:     kind,
		Client:   client,
		Encoding: src.Encoding,
		Chrome: browser.ChromeOptions{
			Headless:  !cfg.Chrome.ShowBrowser,
			ExecPath:  cfg.Chrome.ExecPath,
			UserAgent: ua,
			NoSandbox: cfg.Chrome.NoSandbox,
		},
		Log: log,
	})
	if err != nil {
		return nil, &config.ConfigError{Source: src.Name, Field: "engine", Msg: err.Error()}
	}

	return &crawler.Crawler{
		Engine: engine,
		Source: src,
		Settings: crawler.Settings{
			Output:          cfg.Output,
			Format:          cfg.Format,
			FlushEvery:      cfg.FlushEvery,
			MaxListPages:    cfg.MaxListPages,
			MaxContentPages: cfg.MaxContentPages,
			Concurrency:     conc,
			Range:           flagRange,
			List:            flagList,
		},
		Log: log,
	}, nil
}

func dryRun(ctx context.Context, cfg *config.Config, sources []config.Source, logSvc *ui.Logger) error {
	for _, src := range sources {
		if err := src.Validate(); err != nil {
			logSvc.Errorf("Skipping source: %v", err)
			continue
		}

		c, err := newCrawler(cfg, src, logSvc.With("source", src.Name))
		if err != nil {
			logSvc.Errorf("Skipping source: %v", err)
			continue
		}

		fmt.Printf("Source %s\n", src.Name)
		for _, baseURL := range src.BaseURLs {
			d, err := c.Discover(ctx, baseURL)
			if err != nil {
				logSvc.Errorf("%s: %v", baseURL, err)
				continue
			}

			fmt.Printf("Dry-run: %s", d.Title)
			if d.Author != "" {
				fmt.Printf(" by %s", d.Author)
			}
			fmt.Printf(", %d chapters selected (%d links skipped).\n\n", len(d.Jobs), d.NotChapters)
			for i, job := range d.Jobs {
				fmt.Printf("%3d) %s\n    %s\n", i+1, job.Info.Header(), job.Ref.URL)
			}
			fmt.Println()
		}
		_ = c.Engine.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return nil
}
