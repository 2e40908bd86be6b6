package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/norandom/x-likes-scraper/pkg/auth"
	"github.com/norandom/x-likes-scraper/pkg/config"
	"github.com/norandom/x-likes-scraper/pkg/cookies"
	"github.com/norandom/x-likes-scraper/pkg/logger"
	"github.com/norandom/x-likes-scraper/pkg/scraper"
	"github.com/norandom/x-likes-scraper/pkg/ui"
)

var (
	cookiesFile  string
	accountName  string
	outputDir    string
	formats      []string
	noMedia      bool
	includeRaw   bool
	singleFile   bool
	resumeRun    bool
	forceRestart bool
	concurrent   int
	showStats    bool
)

var exportCmd = &cobra.Command{
	Use:   "export <user_id>",
	Short: "Export all liked tweets for a user",
	Long: `Fetch every liked tweet for the given X user id and export them to the
configured formats.

Credentials come from a cookies.json file exported from your browser
(--cookies) or from a stored session (--account, see 'xlikes auth login').

The export checkpoints its progress. If it is interrupted by a rate limit,
a crash or Ctrl-C, run it again with --resume to continue where it stopped.
Press Ctrl-C once for a graceful stop with a checkpoint; press it twice to
abort immediately.`,
	Example: `  # Export likes to all formats
  xlikes export 123456789 --cookies cookies.json

  # Export only to JSON, skip media
  xlikes export 123456789 --cookies cookies.json --format json --no-media

  # Resume an interrupted export
  xlikes export 123456789 --cookies cookies.json --resume

  # Use a stored session
  xlikes export 123456789 --account personal`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&cookiesFile, "cookies", "", "path to cookies.json exported from browser")
	exportCmd.Flags().StringVarP(&accountName, "account", "a", "", "use a stored session")
	exportCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: output)")
	exportCmd.Flags().StringArrayVarP(&formats, "format", "f", nil, "export format: json, csv, markdown, html, all (repeatable)")
	exportCmd.Flags().BoolVar(&noMedia, "no-media", false, "skip downloading media files")
	exportCmd.Flags().BoolVar(&includeRaw, "include-raw", false, "include raw API response data in JSON export")
	exportCmd.Flags().BoolVar(&singleFile, "single-file", false, "export markdown as a single file instead of splitting by month")
	exportCmd.Flags().BoolVar(&resumeRun, "resume", false, "resume from previous checkpoint if available")
	exportCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "discard any existing checkpoint and start from scratch")
	exportCmd.Flags().IntVar(&concurrent, "concurrent", 0, "number of concurrent media downloads")
	exportCmd.Flags().BoolVar(&showStats, "stats", false, "show statistics after export")
}

func runExport(cmd *cobra.Command, args []string) error {
	userID := args[0]

	cfg, err := config.Load(configFile, map[string]interface{}{
		"output":      outputDir,
		"format":      formats,
		"no-media":    noMedia,
		"include-raw": includeRaw,
		"single-file": singleFile,
		"concurrent":  concurrent,
		"log-level":   logLevel,
	})
	if err != nil {
		return err
	}

	log := logger.GetLogger()

	jar, err := loadJar(cfg)
	if err != nil {
		return err
	}

	exporter, err := scraper.NewExporter(cfg, jar, log)
	if err != nil {
		return err
	}

	if forceRestart {
		if err := exporter.ClearCheckpoint(); err != nil {
			return err
		}
	}

	// First interrupt requests a graceful stop with a checkpoint, the
	// second one cancels outright.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var stopRequested atomic.Bool
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		ui.PrintWarning("Stopping after current page, press Ctrl-C again to abort")
		stopRequested.Store(true)
		<-sigCh
		cancel()
	}()

	exporter.ShouldStop = func() bool { return stopRequested.Load() }
	exporter.OnProgress = func(total int) {
		ui.PrintProgress(fmt.Sprintf("Fetched %d likes...", total))
	}

	ui.PrintInfo("User ID", userID)
	ui.PrintInfo("Output", cfg.Output.Directory)

	stats, err := exporter.Run(ctx, userID, resumeRun)
	ui.EndProgress()
	if err != nil {
		ui.PrintError("Export failed", err)
		if stats != nil && stats.TotalTweets > 0 {
			ui.PrintWarning(fmt.Sprintf("Progress checkpointed at %d tweets, rerun with --resume to continue", stats.TotalTweets))
		}
		return err
	}

	if stats.Stopped {
		ui.PrintWarning(fmt.Sprintf("Stopped at %d tweets, rerun with --resume to continue", stats.TotalTweets))
	} else {
		ui.PrintSuccess(fmt.Sprintf("Exported %d liked tweets to %s", stats.TotalTweets, cfg.Output.Directory))
	}

	if showStats {
		printStats(stats)
	}

	return nil
}

// loadJar builds the cookie jar from the cookies file or a stored session
func loadJar(cfg *config.Config) (*cookies.Jar, error) {
	if cookiesFile != "" {
		return cookies.LoadFile(cookiesFile)
	}

	manager, err := auth.NewManager()
	if err != nil {
		return nil, err
	}

	name := accountName
	if name == "" {
		name = "default"
	}

	session, err := manager.Retrieve(name)
	if err != nil {
		return nil, fmt.Errorf("no credentials: pass --cookies or store a session with 'xlikes auth login'")
	}

	return cookies.FromTokens(session.AuthToken, session.CSRFToken), nil
}

func printStats(stats *scraper.Stats) {
	ui.PrintInfo("Total tweets", fmt.Sprintf("%d", stats.TotalTweets))
	ui.PrintInfo("Tweets with media", fmt.Sprintf("%d", stats.TweetsWithMedia))
	ui.PrintInfo("Media attachments", fmt.Sprintf("%d", stats.TotalMedia))
	ui.PrintInfo("Media downloaded", fmt.Sprintf("%d", stats.MediaDownloaded))
	ui.PrintInfo("Retweets", fmt.Sprintf("%d", stats.Retweets))
	ui.PrintInfo("Quotes", fmt.Sprintf("%d", stats.Quotes))
	ui.PrintInfo("Duration", stats.Duration.Round(time.Second).String())
}
