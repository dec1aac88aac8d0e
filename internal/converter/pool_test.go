package converter

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolErrors(t *testing.T) {
	_, err := NewPool(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewPool(1, -1)
	assert.ErrorIs(t, err, ErrNegativeQueueSize)
}

func TestPoolRunsAllJobs(t *testing.T) {
	p, err := NewPool(3, 1)
	require.NoError(t, err)

	var n atomic.Int32
	for range 50 {
		require.NoError(t, p.Submit(func() { n.Add(1) }))
	}
	p.Wait()
	assert.EqualValues(t, 50, n.Load())

	require.NoError(t, p.Shutdown())
	require.NoError(t, p.Shutdown())
	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
}

func TestPoolSurvivesPanics(t *testing.T) {
	p, err := NewPool(1, 0)
	require.NoError(t, err)
	defer p.Shutdown()

	var ran atomic.Bool
	require.NoError(t, p.Submit(func() { panic("boom") }))
	require.NoError(t, p.Submit(func() { ran.Store(true) }))
	p.Wait()
	assert.True(t, ran.Load())
}
