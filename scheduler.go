package hxel

import (
	"context"
	"sync"
)

// Scheduler defers tasks to a later turn, the way a microtask queue does:
// a scheduled task never runs synchronously inside Schedule.
type Scheduler interface {
	Schedule(task func())
}

// Loop is a single-consumer microtask queue.
//
// Schedule may be called from any goroutine. Tasks run on whichever
// goroutine calls Flush or Run, in the order they were scheduled; tasks
// scheduled while flushing run in the same flush, after the ones already
// queued.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}

	// OnSchedule is called when a task is queued onto an empty loop,
	// signalling the owner that a flush is needed.
	OnSchedule func()
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Schedule queues task.
func (l *Loop) Schedule(task func()) {
	l.mu.Lock()
	wasIdle := len(l.queue) == 0
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	if !wasIdle {
		return
	}
	select {
	case l.wake <- struct{}{}:
	default:
	}
	if l.OnSchedule != nil {
		l.OnSchedule()
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Flush runs queued tasks until the queue is empty and returns how many ran.
func (l *Loop) Flush() int {
	ran := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return ran
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		task()
		ran++
	}
}

// Run flushes whenever tasks are scheduled until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Flush()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
