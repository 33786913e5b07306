package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeedSemaphore_AcquireRelease(t *testing.T) {
	fs := NewFeedSemaphore(&JobConcurrencyConfig{
		MaxConcurrentJobs: 1,
		QueueTimeout:      time.Second,
	})

	release, err := fs.Acquire(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, fs.GetActiveJobCount(1))

	release()
	assert.Equal(t, 0, fs.GetActiveJobCount(1))
}

func TestFeedSemaphore_QueueTimeout(t *testing.T) {
	fs := NewFeedSemaphore(&JobConcurrencyConfig{
		MaxConcurrentJobs: 1,
		QueueTimeout:      50 * time.Millisecond,
	})

	release, err := fs.Acquire(context.Background(), 1)
	assert.NoError(t, err)
	defer release()

	_, err = fs.Acquire(context.Background(), 1)
	assert.Error(t, err)
}

func TestFeedSemaphore_PerFeedIsolation(t *testing.T) {
	fs := NewFeedSemaphore(&JobConcurrencyConfig{
		MaxConcurrentJobs: 1,
		QueueTimeout:      time.Second,
	})

	releaseA, err := fs.Acquire(context.Background(), 1)
	assert.NoError(t, err)
	defer releaseA()

	// a different feed has its own slot
	releaseB, err := fs.Acquire(context.Background(), 2)
	assert.NoError(t, err)
	defer releaseB()
}

func TestFeedSemaphore_TryAcquire(t *testing.T) {
	fs := NewFeedSemaphore(&JobConcurrencyConfig{
		MaxConcurrentJobs: 1,
		QueueTimeout:      time.Second,
	})

	release, ok := fs.TryAcquire(1)
	assert.True(t, ok)

	_, ok = fs.TryAcquire(1)
	assert.False(t, ok)

	release()
	release2, ok := fs.TryAcquire(1)
	assert.True(t, ok)
	release2()
}

func TestFeedSemaphore_Cleanup(t *testing.T) {
	fs := NewFeedSemaphore(nil)

	release, err := fs.Acquire(context.Background(), 1)
	assert.NoError(t, err)
	release()

	fs.Cleanup()
	stats := fs.GetStats()
	assert.Equal(t, 0, stats["totalFeeds"])
}
