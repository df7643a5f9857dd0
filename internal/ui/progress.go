package ui

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/noveld/internal/util"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// MPBProgressManager owns the terminal bars, one per novel being crawled.
type MPBProgressManager struct {
	p *mpb.Progress
}

func NewProgressManager(out io.Writer) *MPBProgressManager {
	if out == nil {
		out = os.Stdout
	}
	p := mpb.New(
		mpb.WithWidth(52),
		mpb.WithOutput(out),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	return &MPBProgressManager{p: p}
}

func (pm *MPBProgressManager) Close() {
	if pm == nil {
		return
	}
	pm.p.Wait()
}

// Register adds a bar. On a nil manager it returns a nil handle, whose
// methods do nothing.
func (pm *MPBProgressManager) Register(prefix string) *ProgressHandle {
	if pm == nil {
		return nil
	}
	h := &ProgressHandle{
		pm:     pm,
		prefix: prefix,
	}
	h.initBar()
	return h
}

type ProgressHandle struct {
	pm     *MPBProgressManager
	prefix string
	bar    *mpb.Bar

	total  atomic.Int64
	done   atomic.Int64
	failed atomic.Int64
	bytes  atomic.Int64

	start   time.Time
	elapsed atomic.Int64

	final atomic.Bool
}

func (h *ProgressHandle) initBar() {
	h.start = time.Now()

	h.bar = h.pm.p.New(
		0,
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(h.prefix+"  "),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d chapters", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				if n := h.failed.Load(); n > 0 {
					return fmt.Sprintf(" | %d failed", n)
				}
				return ""
			}),
			decor.Any(func(_ decor.Statistics) string {
				return " | " + util.Human(h.bytes.Load())
			}),
			decor.Any(func(_ decor.Statistics) string {
				if h.final.Load() {
					return fmt.Sprintf(" | %ds", h.elapsed.Load())
				}
				return fmt.Sprintf(" | %ds", int(time.Since(h.start).Seconds()))
			}),
		),
	)
}

func (h *ProgressHandle) SetTotal(total int) {
	if h == nil || h.final.Load() {
		return
	}

	h.total.Store(int64(total))
	h.bar.SetTotal(int64(total), false)
}

// Settled counts one finished chapter, successful or not.
func (h *ProgressHandle) Settled(err error) {
	if h == nil || h.final.Load() {
		return
	}

	if err != nil {
		h.failed.Add(1)
	}
	h.bar.SetCurrent(h.done.Add(1))
}

func (h *ProgressHandle) AddBytes(n int64) {
	if h == nil {
		return
	}
	h.bytes.Add(n)
}

func (h *ProgressHandle) MarkDone() {
	if h == nil || h.final.Swap(true) {
		return
	}

	h.elapsed.Store(int64(time.Since(h.start).Seconds()))
	total := h.total.Load()
	h.bar.SetCurrent(total)
	h.bar.SetTotal(total, true)
}

// Abort removes an unfinished bar, e.g. when the run is interrupted.
func (h *ProgressHandle) Abort() {
	if h == nil || h.final.Swap(true) {
		return
	}
	h.bar.Abort(true)
}
