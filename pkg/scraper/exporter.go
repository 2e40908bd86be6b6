package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/norandom/x-likes-scraper/internal/downloader"
	"github.com/norandom/x-likes-scraper/pkg/auth"
	"github.com/norandom/x-likes-scraper/pkg/checkpoint"
	"github.com/norandom/x-likes-scraper/pkg/config"
	"github.com/norandom/x-likes-scraper/pkg/cookies"
	"github.com/norandom/x-likes-scraper/pkg/export"
	"github.com/norandom/x-likes-scraper/pkg/logger"
	"github.com/norandom/x-likes-scraper/pkg/models"
	"github.com/norandom/x-likes-scraper/pkg/storage"
	"github.com/norandom/x-likes-scraper/pkg/twitter"
)

// Stats summarizes a finished export run
type Stats struct {
	TotalTweets     int
	TweetsWithMedia int
	TotalMedia      int
	MediaDownloaded int
	Retweets        int
	Quotes          int
	Stopped         bool
	Duration        time.Duration
}

// Exporter wires the fetch engine, checkpointing, media download and the
// output formatters into one export run.
type Exporter struct {
	cfg    *config.Config
	jar    *cookies.Jar
	engine *Engine
	ckpt   *checkpoint.Store
	log    logger.Logger

	// OnProgress receives the running tweet count during the fetch
	OnProgress func(total int)
	// ShouldStop is polled between pages
	ShouldStop func() bool
}

// NewExporter builds an exporter from configuration and a loaded cookie jar
func NewExporter(cfg *config.Config, jar *cookies.Jar, log logger.Logger) (*Exporter, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	provider := auth.NewProvider(jar, cfg.API.BaseURL, cfg.API.UserAgent, cfg.API.RequestTimeout, log)
	client := twitter.NewClient(provider, jar, cfg.API.BaseURL, cfg.API.UserAgent, cfg.API.RequestTimeout, log)
	engine := NewEngine(client, cfg.Fetch, log)

	ckpt, err := checkpoint.NewStore(cfg.Output.Directory, log)
	if err != nil {
		return nil, err
	}

	return &Exporter{
		cfg:    cfg,
		jar:    jar,
		engine: engine,
		ckpt:   ckpt,
		log:    log,
	}, nil
}

// Run fetches all likes for a user and writes the configured exports.
// With resume enabled, a checkpoint from a previous run of the same user
// seeds the tweet set and the start cursor; a checkpoint belonging to a
// different user is discarded.
func (ex *Exporter) Run(ctx context.Context, userID string, resume bool) (*Stats, error) {
	start := time.Now()

	if err := ex.jar.Validate(); err != nil {
		return nil, err
	}

	existing, cursor := ex.seed(userID, resume)

	checkpointFn := func(batch []models.Tweet, cur models.Cursor) error {
		return ex.ckpt.Save(userID, mergeTweets(existing, batch), cur, ex.cfg.Download.Enabled)
	}

	fetched, stopped, fetchErr := ex.engine.FetchAll(ctx, userID, cursor, Callbacks{
		OnProgress: ex.OnProgress,
		ShouldStop: ex.ShouldStop,
		Checkpoint: checkpointFn,
	})

	tweets := mergeTweets(existing, fetched)

	stats := &Stats{Stopped: stopped}
	collectStats(stats, tweets)

	if fetchErr != nil {
		stats.Duration = time.Since(start)
		return stats, fetchErr
	}

	if ex.cfg.Download.Enabled && !stopped {
		downloaded, err := ex.downloadMedia(ctx, tweets)
		if err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}
		stats.MediaDownloaded = downloaded
	}

	if err := ex.writeExports(tweets); err != nil {
		stats.Duration = time.Since(start)
		return stats, err
	}

	if !stopped {
		if err := ex.ckpt.Clear(); err != nil {
			ex.log.WithError(err).Warn("failed to clear checkpoint")
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// seed loads resume state from the checkpoint, returning the previously
// fetched tweets and the cursor to continue from.
func (ex *Exporter) seed(userID string, resume bool) ([]models.Tweet, models.Cursor) {
	if !resume || !ex.ckpt.Exists() {
		return nil, models.StartCursor()
	}

	if !ex.ckpt.IsValid(userID) {
		// Checkpoint belongs to another user; start fresh
		ex.log.Warn("checkpoint belongs to a different user, starting fresh")
		if err := ex.ckpt.Clear(); err != nil {
			ex.log.WithError(err).Warn("failed to clear stale checkpoint")
		}
		return nil, models.StartCursor()
	}

	snap, tweets, err := ex.ckpt.Load()
	if err != nil || snap == nil {
		return nil, models.StartCursor()
	}

	ex.log.WithFields(map[string]interface{}{
		"tweets": len(tweets),
		"cursor": snap.Cursor,
	}).Info("resuming from checkpoint")

	return tweets, snap.Resume()
}

// mergeTweets combines resumed and newly fetched tweets, dropping new
// duplicates. The existing copy wins so resumed media paths survive.
func mergeTweets(existing, fetched []models.Tweet) []models.Tweet {
	if len(existing) == 0 {
		return fetched
	}

	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[t.ID] = true
	}

	merged := make([]models.Tweet, 0, len(existing)+len(fetched))
	merged = append(merged, existing...)
	for _, t := range fetched {
		if !seen[t.ID] {
			merged = append(merged, t)
			seen[t.ID] = true
		}
	}

	return merged
}

func (ex *Exporter) downloadMedia(ctx context.Context, tweets []models.Tweet) (int, error) {
	store, err := storage.NewManager(filepath.Join(ex.cfg.Output.Directory, "media"))
	if err != nil {
		return 0, err
	}

	return downloader.DownloadAll(ctx, tweets, store, downloader.Options{
		Concurrency: ex.cfg.Download.ConcurrentDownloads,
		Timeout:     ex.cfg.Download.DownloadTimeout,
		UserAgent:   ex.cfg.API.UserAgent,
		SkipVideos:  ex.cfg.Download.SkipVideos,
	}, ex.log)
}

// writeExports renders every configured format
func (ex *Exporter) writeExports(tweets []models.Tweet) error {
	if err := os.MkdirAll(ex.cfg.Output.Directory, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	formats := ex.cfg.Output.Formats
	for _, f := range formats {
		if strings.EqualFold(f, "all") {
			formats = []string{"json", "csv", "markdown", "html"}
			break
		}
	}

	opts := export.Options{
		IncludeRaw:   ex.cfg.Output.IncludeRawJSON,
		IncludeMedia: true,
		SingleFile:   ex.cfg.Output.SingleFile,
		BaseDir:      ex.cfg.Output.Directory,
	}

	for _, format := range formats {
		formatter, ok := export.ForFormat(strings.ToLower(format))
		if !ok {
			return fmt.Errorf("unknown export format: %s", format)
		}

		path := filepath.Join(ex.cfg.Output.Directory, "likes"+formatter.Extension())
		if err := formatter.Export(tweets, path, opts); err != nil {
			return fmt.Errorf("%s export failed: %w", format, err)
		}

		ex.log.WithFields(map[string]interface{}{
			"format": format,
			"path":   path,
			"tweets": len(tweets),
		}).Info("export written")
	}

	return nil
}

// CheckpointInfo returns a human-readable checkpoint summary
func (ex *Exporter) CheckpointInfo() string {
	return ex.ckpt.Progress()
}

// ClearCheckpoint discards any saved progress
func (ex *Exporter) ClearCheckpoint() error {
	return ex.ckpt.Clear()
}

func collectStats(stats *Stats, tweets []models.Tweet) {
	stats.TotalTweets = len(tweets)
	for i := range tweets {
		if len(tweets[i].Media) > 0 {
			stats.TweetsWithMedia++
			stats.TotalMedia += len(tweets[i].Media)
		}
		if tweets[i].IsRetweet {
			stats.Retweets++
		}
		if tweets[i].IsQuote {
			stats.Quotes++
		}
	}
}
