package util

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptContext is cancelled by the first SIGINT/SIGTERM so running
// crawls stop scheduling and flush what they have. A second signal exits
// immediately after running onForce.
func InterruptContext(parent context.Context, onForce func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	stopped := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			signal.Stop(sig)
			close(stopped)
			cancel()
		})
	}

	go func() {
		select {
		case <-sig:
			fmt.Fprintln(os.Stderr, "\nInterrupt received. Finishing in-flight chapters (press Ctrl+C again to quit now)...")
			cancel()
		case <-stopped:
			return
		}

		select {
		case <-sig:
		case <-stopped:
			return
		}
		if onForce != nil {
			onForce()
		}
		fmt.Fprintln(os.Stderr, "\nExiting due to interrupt.")
		os.Exit(1)
	}()

	return ctx, stop
}

// RemoveIfEmpty deletes dir when nothing was written into it.
func RemoveIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}

	return os.Remove(dir) == nil
}
