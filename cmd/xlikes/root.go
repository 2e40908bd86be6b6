package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/norandom/x-likes-scraper/pkg/config"
	"github.com/norandom/x-likes-scraper/pkg/logger"
	"github.com/norandom/x-likes-scraper/pkg/ui"
)

var (
	// Version information, set at build time
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xlikes",
	Short: "Export your liked tweets from X (Twitter) to multiple formats",
	Long: `xlikes fetches every tweet you have liked on X (Twitter) and exports
them to JSON, CSV, Markdown and HTML, with optional media download.

Fetching is checkpointed: an interrupted export resumes where it left off
with --resume. Rate limits advertised by the API are honored automatically.

Authentication uses your browser session cookies, either from an exported
cookies.json file or from a session stored with 'xlikes auth login'.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if quiet {
			ui.SetQuiet(true)
			logLevel = "error"
		}
		if noColor {
			ui.SetColor(false)
		}
		return logger.Initialize(&config.LoggingConfig{Level: logLevel})
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .xlikes.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.SetVersionTemplate(`xlikes {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
