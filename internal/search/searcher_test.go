package search

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSearcherLastIssuedWins(t *testing.T) {
	var s Searcher
	ctx1, first := s.Begin(context.Background())
	_, second := s.Begin(context.Background())

	assert.False(t, s.Accept(first))
	assert.True(t, s.Accept(second))
	assert.Equal(t, second, s.Latest())
	assert.ErrorIs(t, ctx1.Err(), context.Canceled)

	s.Reset()
	assert.False(t, s.Accept(second))
}

func TestDebouncerRunsLastCallOnly(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls, last atomic.Int32
	for i := 1; i <= 5; i++ {
		v := int32(i)
		d.Trigger(func() {
			calls.Add(1)
			last.Store(v)
		})
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(5), last.Load())
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, calls.Load())
	assert.Equal(t, DefaultDebounce, NewDebouncer(0).Delay())
}
