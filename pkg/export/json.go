package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/norandom/x-likes-scraper/pkg/models"
)

// JSONFormatter writes tweets as a JSON array
type JSONFormatter struct{}

// Extension returns ".json"
func (f *JSONFormatter) Extension() string { return ".json" }

// Export writes all tweets to a single JSON file. The raw API payload is
// stripped unless IncludeRaw is set.
func (f *JSONFormatter) Export(tweets []models.Tweet, path string, opts Options) error {
	out := tweets
	if !opts.IncludeRaw {
		out = make([]models.Tweet, len(tweets))
		copy(out, tweets)
		for i := range out {
			out[i].Raw = nil
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tweets: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
