package downloader

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

type Task[T any] func(ctx context.Context) (T, error)

// Outcome is the settled state of the task at Index.
type Outcome[T any] struct {
	Index int
	Value T
	Err   error
}

type Pool struct {
	Limit int
	// OnSettle is called once per task as it settles, from the task's
	// goroutine. It must be safe for concurrent use.
	OnSettle func(index int, err error)
}

func (p Pool) settled(index int, err error) {
	if p.OnSettle != nil {
		p.OnSettle(index, err)
	}
}

// Settle runs tasks with at most p.Limit in flight and waits for all of
// them. A failing task never cancels its siblings: every task yields one
// Outcome at its own index. Once ctx is done, tasks that have not started
// settle with ctx's error without running.
func Settle[T any](ctx context.Context, p Pool, tasks []Task[T]) []Outcome[T] {
	limit := p.Limit
	if limit < 1 {
		limit = 1
	}

	out := make([]Outcome[T], len(tasks))
	sem := semaphore.NewWeighted(int64(limit))
	var wg sync.WaitGroup

	for i, task := range tasks {
		if err := acquire(ctx, sem); err != nil {
			for j := i; j < len(tasks); j++ {
				out[j] = Outcome[T]{Index: j, Err: err}
				p.settled(j, err)
			}
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			v, err := runTask(ctx, task)
			out[i] = Outcome[T]{Index: i, Value: v, Err: err}
			p.settled(i, err)
		}()
	}

	wg.Wait()

	return out
}

// acquire never succeeds once ctx is done, even if a slot frees up at the
// same moment.
func acquire(ctx context.Context, sem *semaphore.Weighted) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sem.Acquire(ctx, 1); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		sem.Release(1)
		return err
	}

	return nil
}

func runTask[T any](ctx context.Context, task Task[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	return task(ctx)
}
