// Package scraper drives the paginated fetch loop and orchestrates a full
// export run.
package scraper

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/norandom/x-likes-scraper/pkg/config"
	"github.com/norandom/x-likes-scraper/pkg/errors"
	"github.com/norandom/x-likes-scraper/pkg/logger"
	"github.com/norandom/x-likes-scraper/pkg/models"
	"github.com/norandom/x-likes-scraper/pkg/ratelimit"
	"github.com/norandom/x-likes-scraper/pkg/retry"
	"github.com/norandom/x-likes-scraper/pkg/twitter"
)

// LikesClient fetches one page of liked tweets
type LikesClient interface {
	FetchLikes(ctx context.Context, userID string, cursor models.Cursor, count int) (*twitter.Page, error)
}

// Callbacks hooks the fetch loop into its surroundings. All fields are
// optional.
type Callbacks struct {
	// OnProgress is called after each page with the running tweet count
	OnProgress func(total int)
	// ShouldStop is polled before each page; returning true ends the run
	ShouldStop func() bool
	// Checkpoint persists progress. Called every CheckpointInterval pages,
	// before a rate limit wait, and before stopping.
	Checkpoint func(tweets []models.Tweet, cursor models.Cursor) error
}

// Engine runs the paginated fetch loop with rate limit handling.
type Engine struct {
	client LikesClient
	pacer  *ratelimit.Pacer
	cfg    config.FetchConfig
	log    logger.Logger

	// injectable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEngine creates a fetch engine
func NewEngine(client LikesClient, cfg config.FetchConfig, log logger.Logger) *Engine {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Engine{
		client: client,
		pacer:  ratelimit.NewPacer(cfg.PoliteDelay),
		cfg:    cfg,
		log:    log,
		now:    time.Now,
		sleep:  retry.Wait,
	}
}

// FetchAll fetches every page of likes starting at the given cursor. It
// returns the tweets fetched during this run (not including any resumed
// ones) and whether the run was cut short by the stop callback.
//
// The loop checkpoints every CheckpointInterval pages, before sleeping out a
// rate limit window, and before honoring a stop request, so an interrupted
// run never loses more than one interval of progress.
func (e *Engine) FetchAll(ctx context.Context, userID string, start models.Cursor, cb Callbacks) ([]models.Tweet, bool, error) {
	var all []models.Tweet
	cursor := start
	pageCount := 0

	for {
		if cb.ShouldStop != nil && cb.ShouldStop() {
			e.log.Info("stopped by user")
			e.checkpoint(cb, all, cursor)
			return all, true, nil
		}

		e.log.WithField("page", pageCount+1).Debug("fetching page")

		page, err := e.fetchPage(ctx, userID, cursor)
		if err != nil {
			e.checkpoint(cb, all, cursor)
			return all, false, err
		}

		all = append(all, page.Tweets...)
		pageCount++

		if cb.OnProgress != nil {
			cb.OnProgress(len(all))
		}

		e.log.WithFields(map[string]interface{}{
			"page":      pageCount,
			"fetched":   len(page.Tweets),
			"total":     len(all),
			"remaining": page.Window.Remaining,
			"limit":     page.Window.Limit,
		}).Info("page fetched")

		if pageCount%e.cfg.CheckpointInterval == 0 {
			e.checkpoint(cb, all, page.Next)
		}

		if page.Next.IsEnd() || len(page.Tweets) == 0 {
			e.log.Info("no more pages to fetch")
			break
		}

		cursor = page.Next

		if page.Window.ShouldWait() {
			wait := page.Window.WaitDuration(e.now())
			if wait > 0 {
				e.log.WithField("wait_seconds", int(wait.Seconds())).Warn("rate limit reached, waiting for reset")
				e.checkpoint(cb, all, cursor)
				if err := e.sleep(ctx, wait); err != nil {
					return all, false, err
				}
			}
		}

		if err := e.pacer.Wait(ctx); err != nil {
			return all, false, err
		}
	}

	e.log.WithField("total", len(all)).Info("fetch complete")
	return all, false, nil
}

// fetchPage fetches one page, retrying transient network and server errors.
// Rate limit and credential errors are never retried here; the loop and the
// caller own those.
func (e *Engine) fetchPage(ctx context.Context, userID string, cursor models.Cursor) (*twitter.Page, error) {
	return retry.DoWithResult(func() (*twitter.Page, error) {
		return e.client.FetchLikes(ctx, userID, cursor, e.cfg.PageSize)
	}, &retry.Config{
		MaxAttempts: e.cfg.MaxRetries,
		Backoff:     retry.DefaultExponentialBackoff(),
		RetryIf:     isTransient,
		Context:     ctx,
		Logger:      e.log,
	})
}

func isTransient(err error) bool {
	var apiErr *errors.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Type {
		case errors.TypeNetwork:
			return true
		case errors.TypeHTTP:
			return errors.IsRetryableStatusCode(apiErr.Status)
		}
		return false
	}
	return false
}

func (e *Engine) checkpoint(cb Callbacks, tweets []models.Tweet, cursor models.Cursor) {
	if cb.Checkpoint == nil {
		return
	}
	if err := cb.Checkpoint(tweets, cursor); err != nil {
		e.log.WithError(err).Warn("failed to save checkpoint")
	}
}
