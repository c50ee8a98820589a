// Package limiter bounds how many tasks run at once.
//
// Tasks beyond the ceiling wait in a FIFO queue. A finishing task hands its
// slot directly to the head of the queue, so a queued task never races a
// newly submitted one for a free slot.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPanic wraps a panic recovered from a scheduled task.
var ErrPanic = errors.New("limiter: task panicked")

// Limiter runs at most ceiling tasks concurrently.
type Limiter struct {
	mu      sync.Mutex
	ceiling int
	active  int
	queue   []func()
}

// New returns a limiter with the given ceiling; values below 1 are treated as 1.
func New(ceiling int) *Limiter {
	if ceiling < 1 {
		ceiling = 1
	}
	return &Limiter{ceiling: ceiling}
}

// Ceiling reports the concurrency bound.
func (l *Limiter) Ceiling() int {
	return l.ceiling
}

// Active reports how many tasks are running.
func (l *Limiter) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Pending reports how many tasks are queued.
func (l *Limiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Future is the eventual result of a scheduled task.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Done is closed once the task has finished.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the task finishes or ctx ends. Abandoning the wait does
// not stop the task.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until the task finishes.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.val, f.err
}

// Schedule submits task to l. It starts immediately when a slot is free and
// is queued otherwise. Success, error and panic all release the slot.
func Schedule[T any](l *Limiter, task func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	run := func() {
		defer l.release()
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()
		f.val, f.err = task()
	}
	l.submit(run)
	return f
}

func (l *Limiter) submit(run func()) {
	l.mu.Lock()
	if l.active < l.ceiling {
		l.active++
		l.mu.Unlock()
		go run()
		return
	}
	l.queue = append(l.queue, run)
	l.mu.Unlock()
}

func (l *Limiter) release() {
	l.mu.Lock()
	if len(l.queue) > 0 {
		next := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()
		// the slot moves to next; active is unchanged
		go next()
		return
	}
	l.active--
	l.mu.Unlock()
}
