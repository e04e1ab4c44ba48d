package hxel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsInOrder(t *testing.T) {
	l := NewLoop()
	var got []int
	for i := range 3 {
		l.Schedule(func() { got = append(got, i) })
	}
	assert.Empty(t, got)
	assert.Equal(t, 3, l.Pending())

	assert.Equal(t, 3, l.Flush())
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Equal(t, 0, l.Pending())
}

func TestLoopRunsTasksScheduledDuringFlush(t *testing.T) {
	l := NewLoop()
	var got []string
	l.Schedule(func() {
		got = append(got, "a")
		l.Schedule(func() { got = append(got, "c") })
	})
	l.Schedule(func() { got = append(got, "b") })

	assert.Equal(t, 3, l.Flush())
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestLoopOnSchedule(t *testing.T) {
	l := NewLoop()
	signals := 0
	l.OnSchedule = func() { signals++ }

	l.Schedule(func() {})
	l.Schedule(func() {})
	assert.Equal(t, 1, signals)

	l.Flush()
	l.Schedule(func() {})
	assert.Equal(t, 2, signals)
}

func TestLoopRun(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	var wg sync.WaitGroup
	wg.Add(2)
	l.Schedule(wg.Done)
	go l.Schedule(wg.Done)

	waited := make(chan struct{})
	go func() {
		wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("tasks did not run")
	}

	cancel()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
