package ui_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

	log, err := ui.Discard().With("source", "demo").WithFile(dir, "demo", now)
	require.NoError(t, err)

	log.Infof("crawling %s\n", "book")
	log.Debugf("hidden at info level")
	log.Successf("saved")
	require.NoError(t, log.Close())

	b, err := os.ReadFile(filepath.Join(dir, "demo_2024-03-09.log"))
	require.NoError(t, err)

	out := string(b)
	assert.Contains(t, out, "crawling book")
	assert.Contains(t, out, "source=demo")
	assert.Contains(t, out, "status=ok")
	assert.NotContains(t, out, "hidden")
}

func TestNilReceivers(t *testing.T) {
	t.Parallel()

	var log *ui.Logger
	log.Infof("nothing")
	log.Errorf("nothing")
	assert.Nil(t, log.With("k", "v"))
	assert.NoError(t, log.Close())

	var pm *ui.MPBProgressManager
	h := pm.Register("novel")
	assert.Nil(t, h)

	h.SetTotal(3)
	h.Settled(errors.New("boom"))
	h.AddBytes(10)
	h.MarkDone()
	h.Abort()
	pm.Close()
}
