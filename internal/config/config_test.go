package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brogergvhs/noveld/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", dir)

	return filepath.Join(dir, "noveld")
}

func TestLoadMerged(t *testing.T) {
	t.Run("defaults without a profile", func(t *testing.T) {
		isolate(t)

		cfg, used, err := config.LoadMerged(config.Options{})
		require.NoError(t, err)
		assert.Contains(t, used, "default config in memory")
		assert.Equal(t, config.DefaultOutput, cfg.Output)
		assert.Equal(t, 10, cfg.Concurrency.BatchSize)
		assert.Equal(t, 3, cfg.Concurrency.MaxRetries)
		assert.Equal(t, 30000, cfg.Concurrency.TimeoutMS)
		assert.Len(t, cfg.Sources, 3)
	})

	t.Run("flags override the active profile", func(t *testing.T) {
		isolate(t)

		path, err := config.InitDefaultConfig()
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, []byte(`
output: out
concurrency:
  batch_size: 4
sources:
  - name: demo
    base_urls: ["https://example.com/book/1/"]
    selectors:
      chapter_list: "#list a"
      chapter_content: "#content"
`), 0o644))

		cfg, used, err := config.LoadMerged(config.Options{Output: "elsewhere", MaxRetries: 7})
		require.NoError(t, err)
		assert.Equal(t, path, used)
		assert.Equal(t, "elsewhere", cfg.Output)
		assert.Equal(t, 4, cfg.Concurrency.BatchSize)
		assert.Equal(t, 7, cfg.Concurrency.MaxRetries)
		assert.Equal(t, config.DefaultTimeoutMS, cfg.Concurrency.TimeoutMS)
		assert.Equal(t, config.DefaultFlushEvery, cfg.FlushEvery)
		require.Len(t, cfg.Sources, 1)
		assert.Equal(t, "demo", cfg.Sources[0].Name)
	})

	t.Run("ignore config", func(t *testing.T) {
		isolate(t)

		_, used, err := config.LoadMerged(config.Options{IgnoreConfig: true})
		require.NoError(t, err)
		assert.Equal(t, "(ignored config)", used)
	})
}

func TestProfiles(t *testing.T) {
	root := isolate(t)

	path, err := config.InitDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "configs", "Default.yaml"), path)

	_, err = config.InitDefaultConfig()
	assert.True(t, errors.Is(err, os.ErrExist))

	_, err = config.CreateConfig("work")
	require.NoError(t, err)
	_, err = config.CreateConfig("work")
	assert.Error(t, err)
	_, err = config.CreateConfig("../escape")
	assert.Error(t, err)

	require.NoError(t, config.SwitchConfig("work"))
	label, err := config.CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "work", label)

	require.NoError(t, config.RenameConfig("work", "office"))
	label, _ = config.CurrentLabel()
	assert.Equal(t, "office", label)

	got, err := config.ConfigPathByLabel("office")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "configs", "office.yaml"), got)

	list, err := config.ListConfigs()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Default", list[0].Label)
	assert.True(t, list[1].Active)

	switched, err := config.RemoveConfig("office", false)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultLabel, switched)

	_, err = config.RemoveConfig(config.DefaultLabel, false)
	assert.Error(t, err)

	assert.Error(t, config.SwitchConfig("missing"))
}

func TestSourceValidate(t *testing.T) {
	t.Parallel()

	valid := func() config.Source {
		return config.Source{
			Name:     "demo",
			BaseURLs: []string{"https://example.com/book/"},
			Selectors: config.Selectors{
				ChapterList:    "#list a",
				ChapterContent: "#content",
			},
		}
	}

	require.NoError(t, valid().Validate())
	for _, s := range config.DefaultSources() {
		assert.NoError(t, s.Validate(), s.Name)
	}

	tests := map[string]struct {
		mutate func(*config.Source)
		field  string
	}{
		"no urls":        {func(s *config.Source) { s.BaseURLs = nil }, "base_urls"},
		"relative url":   {func(s *config.Source) { s.BaseURLs = []string{"/book/1"} }, "base_urls"},
		"no list":        {func(s *config.Source) { s.Selectors.ChapterList = "" }, "selectors.chapter_list"},
		"no content":     {func(s *config.Source) { s.Selectors.ChapterContent = "" }, "selectors.chapter_content"},
		"pagination":     {func(s *config.Source) { s.Pagination.Enabled = true }, "pagination.enabled"},
		"engine":         {func(s *config.Source) { s.Engine = "lynx" }, "engine"},
		"negative retry": {func(s *config.Source) { s.Concurrency.MaxRetries = -1 }, "concurrency.max_retries"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)

			var cfgErr *config.ConfigError
			require.True(t, errors.As(s.Validate(), &cfgErr))
			assert.Equal(t, "demo", cfgErr.Source)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Format = "pdf"
	assert.Error(t, cfg.Validate())

	cfg = config.DefaultConfig()
	cfg.Sources = append(cfg.Sources, cfg.Sources[0])
	var cfgErr *config.ConfigError
	require.True(t, errors.As(cfg.Validate(), &cfgErr))
	assert.Equal(t, "name", cfgErr.Field)
}

func TestSelectSources(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	all, err := cfg.SelectSources("all")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	all, err = cfg.SelectSources("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	one, err := cfg.SelectSources("owlook")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "owlook", one[0].Name)

	_, err = cfg.SelectSources("nope")
	var cfgErr *config.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestConcurrency_Over(t *testing.T) {
	t.Parallel()

	got := config.Concurrency{BatchSize: 2}.Over(config.Concurrency{BatchSize: 10, MaxRetries: 3, TimeoutMS: 30000})

	assert.Equal(t, config.Concurrency{BatchSize: 2, MaxRetries: 3, TimeoutMS: 30000}, got)
	assert.Equal(t, int64(30), int64(got.Timeout().Seconds()))
}
