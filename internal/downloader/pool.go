// Package downloader runs concurrent media downloads through a worker pool.
package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/norandom/x-likes-scraper/pkg/logger"
	"github.com/norandom/x-likes-scraper/pkg/models"
	"github.com/norandom/x-likes-scraper/pkg/ratelimit"
)

// Job is a single media download task
type Job struct {
	TweetID string
	Index   int
	Media   models.Media
}

// Result is the outcome of one download job
type Result struct {
	Job       Job
	LocalPath string
	Success   bool
	Error     error
	Duration  time.Duration
	Size      int64
}

// MediaFetcher downloads one media attachment and returns its stored path
type MediaFetcher interface {
	Fetch(ctx context.Context, job Job) (localPath string, size int64, err error)
}

// WorkerPool manages concurrent download workers
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	fetcher     MediaFetcher
	pacer       *ratelimit.Pacer
	logger      logger.Logger
}

// NewWorkerPool creates a download worker pool. The pacer spaces requests
// across all workers.
func NewWorkerPool(numWorkers int, fetcher MediaFetcher, pacer *ratelimit.Pacer, log logger.Logger) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.GetLogger()
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan Result, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		fetcher:     fetcher,
		pacer:       pacer,
		logger:      log,
	}
}

// Start launches the workers
func (wp *WorkerPool) Start() {
	wp.logger.WithField("num_workers", wp.numWorkers).Debug("starting download pool")

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the job queue and waits for in-flight downloads to finish
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// Submit queues a download job
func (wp *WorkerPool) Submit(job Job) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("download pool is shutting down")
	}
}

// Results returns the channel download results arrive on
func (wp *WorkerPool) Results() <-chan Result {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			return
		default:
		}

		result := wp.processJob(job, id)

		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) processJob(job Job, workerID int) Result {
	start := time.Now()
	result := Result{Job: job}

	if wp.pacer != nil {
		if err := wp.pacer.Wait(wp.ctx); err != nil {
			result.Error = err
			result.Duration = time.Since(start)
			return result
		}
	}

	path, size, err := wp.fetcher.Fetch(wp.ctx, job)
	if err != nil {
		wp.logger.WithFields(map[string]interface{}{
			"worker_id": workerID,
			"tweet_id":  job.TweetID,
			"index":     job.Index,
		}).WithError(err).Warn("media download failed")
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	result.LocalPath = path
	result.Success = true
	result.Size = size
	result.Duration = time.Since(start)
	return result
}
