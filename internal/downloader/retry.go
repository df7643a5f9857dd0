package downloader

import (
	"context"
	"fmt"
)

// Recorder receives one line per chapter that exhausted its retries.
type Recorder interface {
	Record(msg string)
}

type RetryOptions struct {
	MaxRetries int
	URL        string
	Label      string
	Recorder   Recorder
}

// ChapterFetchError is returned once every attempt at a chapter failed.
type ChapterFetchError struct {
	URL      string
	Label    string
	Attempts int
	Err      error
}

func (e *ChapterFetchError) Error() string {
	return fmt.Sprintf("fetch %s <%s> failed after %d attempt(s): %v", e.Label, e.URL, e.Attempts, e.Err)
}

func (e *ChapterFetchError) Unwrap() error { return e.Err }

// Retry runs op until it succeeds or MaxRetries attempts have failed.
// Attempts follow each other immediately. Intermediate failures are not
// reported anywhere; only exhaustion is recorded, exactly once.
func Retry[T any](ctx context.Context, opts RetryOptions, op func(ctx context.Context) (T, error)) (T, error) {
	maxRetries := opts.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var (
		zero     T
		err      error
		attempts int
	)
	for attempts < maxRetries {
		if cerr := ctx.Err(); cerr != nil {
			if err == nil {
				err = cerr
			}
			break
		}

		attempts++
		var v T
		v, err = op(ctx)
		if err == nil {
			return v, nil
		}
	}

	if opts.Recorder != nil {
		opts.Recorder.Record(fmt.Sprintf("请求【%s】<%s>(%d/%d)次失败: %v", opts.Label, opts.URL, attempts, maxRetries, err))
	}

	return zero, &ChapterFetchError{URL: opts.URL, Label: opts.Label, Attempts: attempts, Err: err}
}
