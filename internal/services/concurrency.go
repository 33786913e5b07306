package services

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// JobConcurrencyConfig defines concurrency limits for translation jobs
type JobConcurrencyConfig struct {
	MaxConcurrentJobs int           // Max concurrent translation jobs per feed
	OfferWorkers      int           // Workers building offers inside one job
	JobTimeout        time.Duration // Max duration for a single job
	QueueTimeout      time.Duration // Max time to wait in queue
}

// DefaultConcurrencyConfig returns production-ready defaults
func DefaultConcurrencyConfig() *JobConcurrencyConfig {
	return &JobConcurrencyConfig{
		MaxConcurrentJobs: 2,
		OfferWorkers:      8,
		JobTimeout:        30 * time.Minute,
		QueueTimeout:      5 * time.Minute,
	}
}

// FeedSemaphore limits concurrent translation jobs per feed, so two runs of
// the same feed never race on its mapping writes
type FeedSemaphore struct {
	mu         sync.RWMutex
	feedSems   map[uint]chan struct{}
	config     *JobConcurrencyConfig
	activeJobs map[uint]int
}

// NewFeedSemaphore creates a new feed semaphore manager
func NewFeedSemaphore(config *JobConcurrencyConfig) *FeedSemaphore {
	if config == nil {
		config = DefaultConcurrencyConfig()
	}
	return &FeedSemaphore{
		feedSems:   make(map[uint]chan struct{}),
		config:     config,
		activeJobs: make(map[uint]int),
	}
}

func (fs *FeedSemaphore) getOrCreateSem(feedID uint) chan struct{} {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if sem, exists := fs.feedSems[feedID]; exists {
		return sem
	}

	sem := make(chan struct{}, fs.config.MaxConcurrentJobs)
	fs.feedSems[feedID] = sem
	return sem
}

// Acquire blocks until a job slot for the feed is free or the queue timeout
// elapses. Returns a release function that must be called when done.
func (fs *FeedSemaphore) Acquire(ctx context.Context, feedID uint) (func(), error) {
	queueCtx, cancel := context.WithTimeout(ctx, fs.config.QueueTimeout)
	defer cancel()

	sem := fs.getOrCreateSem(feedID)
	select {
	case sem <- struct{}{}:
	case <-queueCtx.Done():
		return nil, fmt.Errorf("timeout waiting for translation slot: feed=%d", feedID)
	}

	fs.mu.Lock()
	fs.activeJobs[feedID]++
	fs.mu.Unlock()

	release := func() {
		fs.mu.Lock()
		fs.activeJobs[feedID]--
		fs.mu.Unlock()
		<-sem
	}
	return release, nil
}

// TryAcquire attempts to acquire a job slot without blocking
func (fs *FeedSemaphore) TryAcquire(feedID uint) (func(), bool) {
	sem := fs.getOrCreateSem(feedID)
	select {
	case sem <- struct{}{}:
	default:
		return nil, false
	}

	fs.mu.Lock()
	fs.activeJobs[feedID]++
	fs.mu.Unlock()

	release := func() {
		fs.mu.Lock()
		fs.activeJobs[feedID]--
		fs.mu.Unlock()
		<-sem
	}
	return release, true
}

// GetActiveJobCount returns the number of active jobs for a feed
func (fs *FeedSemaphore) GetActiveJobCount(feedID uint) int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.activeJobs[feedID]
}

// GetStats returns concurrency statistics
func (fs *FeedSemaphore) GetStats() map[string]interface{} {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	feedStats := make(map[uint]int)
	for k, v := range fs.activeJobs {
		feedStats[k] = v
	}

	return map[string]interface{}{
		"config": map[string]interface{}{
			"maxConcurrentJobs": fs.config.MaxConcurrentJobs,
			"offerWorkers":      fs.config.OfferWorkers,
			"jobTimeout":        fs.config.JobTimeout.String(),
			"queueTimeout":      fs.config.QueueTimeout.String(),
		},
		"activeJobsByFeed": feedStats,
		"totalFeeds":       len(fs.feedSems),
	}
}

// Cleanup removes semaphores for feeds with no active jobs
func (fs *FeedSemaphore) Cleanup() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for feedID, count := range fs.activeJobs {
		if count == 0 {
			if sem, exists := fs.feedSems[feedID]; exists {
				close(sem)
				delete(fs.feedSems, feedID)
			}
			delete(fs.activeJobs, feedID)
		}
	}
}
