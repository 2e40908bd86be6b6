package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/norandom/x-likes-scraper/pkg/models"
)

// CSVFormatter writes tweets as a flat CSV table, one row per tweet
type CSVFormatter struct{}

// csvColumns is the column order of the exported table
var csvColumns = []string{
	"tweet_id",
	"text",
	"created_at",
	"user_id",
	"user_screen_name",
	"user_name",
	"user_verified",
	"retweet_count",
	"favorite_count",
	"reply_count",
	"quote_count",
	"view_count",
	"lang",
	"is_retweet",
	"is_quote",
	"has_media",
	"media_count",
	"media_types",
	"url_count",
	"hashtag_count",
	"hashtags",
	"mention_count",
	"tweet_url",
}

// Extension returns ".csv"
func (f *CSVFormatter) Extension() string { return ".csv" }

// Export writes all tweets to a CSV file
func (f *CSVFormatter) Export(tweets []models.Tweet, path string, opts Options) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)

	if err := w.Write(csvColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range tweets {
		if err := w.Write(csvRow(&tweets[i])); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return file.Close()
}

func csvRow(t *models.Tweet) []string {
	mediaTypes := make([]string, 0, len(t.Media))
	for _, m := range t.Media {
		mediaTypes = append(mediaTypes, m.Type)
	}

	return []string{
		t.ID,
		t.Text,
		t.CreatedAt,
		t.User.ID,
		t.User.ScreenName,
		t.User.Name,
		strconv.FormatBool(t.User.Verified),
		strconv.Itoa(t.RetweetCount),
		strconv.Itoa(t.FavoriteCount),
		strconv.Itoa(t.ReplyCount),
		strconv.Itoa(t.QuoteCount),
		strconv.Itoa(t.ViewCount),
		t.Lang,
		strconv.FormatBool(t.IsRetweet),
		strconv.FormatBool(t.IsQuote),
		strconv.FormatBool(len(t.Media) > 0),
		strconv.Itoa(len(t.Media)),
		strings.Join(mediaTypes, ","),
		strconv.Itoa(len(t.URLs)),
		strconv.Itoa(len(t.Hashtags)),
		strings.Join(t.Hashtags, ","),
		strconv.Itoa(len(t.Mentions)),
		t.URL(),
	}
}
