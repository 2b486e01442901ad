package concurrency

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorRunsEveryTask(t *testing.T) {
	e := NewExecutor(4)
	var ran atomic.Int64
	for i := 0; i < 100; i++ {
		require.NoError(t, e.Submit(func() { ran.Add(1) }))
	}
	e.Close()

	assert.Equal(t, int64(100), ran.Load())
	stats := e.Stats()
	assert.Equal(t, int64(100), stats["completed_tasks"])
	assert.Zero(t, stats["pending_tasks"])
	assert.Equal(t, int64(4), stats["num_workers"])
}

func TestExecutorSurvivesPanics(t *testing.T) {
	e := NewExecutor(1)
	var ran atomic.Bool
	require.NoError(t, e.Submit(func() { panic("boom") }))
	require.NoError(t, e.Submit(func() { ran.Store(true) }))
	e.Close()

	assert.True(t, ran.Load())
	assert.Equal(t, int64(1), e.Stats()["panics"])
}

func TestExecutorRejectsAfterClose(t *testing.T) {
	e := NewExecutor(0)
	assert.Positive(t, e.NumWorkers())
	e.Close()
	e.Close()
	assert.ErrorIs(t, e.Submit(func() {}), ErrExecutorClosed)
}
