package downloader

import (
	"context"
	"strconv"
	"time"

	"github.com/norandom/x-likes-scraper/pkg/logger"
	"github.com/norandom/x-likes-scraper/pkg/models"
	"github.com/norandom/x-likes-scraper/pkg/ratelimit"
	"github.com/norandom/x-likes-scraper/pkg/storage"
)

// Options controls a media download run
type Options struct {
	Concurrency int
	Timeout     time.Duration
	UserAgent   string
	SkipVideos  bool
	// OnProgress is called after each finished download with the running
	// count and the total number of jobs
	OnProgress func(done, total int)
}

// DownloadAll downloads every media attachment of the given tweets and
// records the local path on each attachment. Returns the number of files
// downloaded. Failures are logged and skipped; a failed attachment never
// aborts the run.
func DownloadAll(ctx context.Context, tweets []models.Tweet, store *storage.Manager, opts Options, log logger.Logger) (int, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	var jobs []Job
	for ti := range tweets {
		for mi := range tweets[ti].Media {
			if opts.SkipVideos && tweets[ti].Media[mi].Type != "photo" {
				continue
			}
			jobs = append(jobs, Job{
				TweetID: tweets[ti].ID,
				Index:   mi,
				Media:   tweets[ti].Media[mi],
			})
		}
	}

	if len(jobs) == 0 {
		return 0, nil
	}

	// attachment lookup for writing local paths back onto the tweets
	type slot struct{ tweet, media int }
	slots := make(map[string]slot, len(jobs))
	for ti := range tweets {
		for mi := range tweets[ti].Media {
			slots[tweets[ti].ID+"#"+strconv.Itoa(mi)] = slot{tweet: ti, media: mi}
		}
	}

	fetcher := NewHTTPFetcher(store, opts.UserAgent, opts.Timeout)
	pacer := ratelimit.NewPacer(200 * time.Millisecond)
	pool := NewWorkerPool(opts.Concurrency, fetcher, pacer, log)
	pool.Start()

	go func() {
		for _, job := range jobs {
			if err := pool.Submit(job); err != nil {
				return
			}
		}
		pool.Stop()
	}()

	downloaded := 0
	done := 0
	for result := range pool.Results() {
		done++
		if opts.OnProgress != nil {
			opts.OnProgress(done, len(jobs))
		}
		if !result.Success {
			continue
		}
		downloaded++
		if s, ok := slots[result.Job.TweetID+"#"+strconv.Itoa(result.Job.Index)]; ok {
			tweets[s.tweet].Media[s.media].LocalPath = result.LocalPath
		}
	}

	log.WithFields(map[string]interface{}{
		"downloaded": downloaded,
		"total":      len(jobs),
	}).Info("media download finished")

	return downloaded, ctx.Err()
}
