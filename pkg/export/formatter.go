// Package export renders fetched tweets into the supported output formats.
package export

import (
	"github.com/norandom/x-likes-scraper/pkg/models"
)

// Options controls formatter behavior
type Options struct {
	// IncludeRaw embeds the raw API payload per tweet (JSON only)
	IncludeRaw bool
	// IncludeMedia embeds media references (Markdown and HTML)
	IncludeMedia bool
	// SingleFile disables the per-month split for Markdown
	SingleFile bool
	// BaseDir is the directory exported files are relative to, used when
	// embedding local media paths
	BaseDir string
}

// Formatter renders tweets to one output format
type Formatter interface {
	// Export writes the tweets to the given path. Formatters that split
	// output across files treat path as the base name.
	Export(tweets []models.Tweet, path string, opts Options) error

	// Extension returns the file extension including the dot
	Extension() string
}

// ForFormat returns the formatter for a format name
func ForFormat(format string) (Formatter, bool) {
	switch format {
	case "json":
		return &JSONFormatter{}, true
	case "csv":
		return &CSVFormatter{}, true
	case "markdown", "md":
		return &MarkdownFormatter{}, true
	case "html":
		return &HTMLFormatter{}, true
	}
	return nil, false
}
