package ui

import "sync/atomic"

// Stats are run-wide counters, updated concurrently by chapter tasks.
type Stats struct {
	Novels          atomic.Int64
	TotalChapters   atomic.Int64
	FailedChapters  atomic.Int64
	SkippedChapters atomic.Int64
	TotalBytes      atomic.Int64
}
