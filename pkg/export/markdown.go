package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/norandom/x-likes-scraper/pkg/models"
	"github.com/norandom/x-likes-scraper/pkg/storage"
)

// unknownMonth groups tweets whose timestamp cannot be parsed
const unknownMonth = "unknown"

// MarkdownFormatter writes tweets as Markdown with embedded media. By
// default the output is split into one file per month under a by_month
// directory; SingleFile puts everything in one document.
type MarkdownFormatter struct{}

// Extension returns ".md"
func (f *MarkdownFormatter) Extension() string { return ".md" }

// Export writes the tweets as Markdown
func (f *MarkdownFormatter) Export(tweets []models.Tweet, path string, opts Options) error {
	byMonth := groupByMonth(tweets)

	if opts.SingleFile {
		return f.writeFile(path, byMonth, len(tweets), opts)
	}

	dir := filepath.Join(filepath.Dir(path), "by_month")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create by_month directory: %w", err)
	}

	for month, monthTweets := range byMonth {
		monthPath := filepath.Join(dir, fmt.Sprintf("likes_%s.md", month))
		single := map[string][]models.Tweet{month: monthTweets}
		if err := f.writeFile(monthPath, single, len(monthTweets), opts); err != nil {
			return err
		}
	}

	return nil
}

func (f *MarkdownFormatter) writeFile(path string, byMonth map[string][]models.Tweet, total int, opts Options) error {
	var b strings.Builder

	b.WriteString("# X (Twitter) Liked Tweets\n\n")
	b.WriteString(fmt.Sprintf("**Exported:** %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("**Total Tweets:** %d\n\n", total))
	b.WriteString("---\n")

	for _, month := range sortedMonths(byMonth) {
		monthTweets := byMonth[month]
		if month == unknownMonth {
			b.WriteString(fmt.Sprintf("\n## Unknown Date (%d tweets)\n", len(monthTweets)))
		} else {
			b.WriteString(fmt.Sprintf("\n## %s (%d tweets)\n", month, len(monthTweets)))
		}
		for i := range monthTweets {
			formatTweetMarkdown(&b, &monthTweets[i], filepath.Dir(path), opts)
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// groupByMonth buckets tweets by their YYYY-MM creation month
func groupByMonth(tweets []models.Tweet) map[string][]models.Tweet {
	byMonth := make(map[string][]models.Tweet)
	for _, t := range tweets {
		created, err := t.CreatedTime()
		if err != nil {
			byMonth[unknownMonth] = append(byMonth[unknownMonth], t)
			continue
		}
		month := created.Format("2006-01")
		byMonth[month] = append(byMonth[month], t)
	}
	return byMonth
}

// sortedMonths returns month keys newest first, unknown last
func sortedMonths(byMonth map[string][]models.Tweet) []string {
	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		if month != unknownMonth {
			months = append(months, month)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	if _, ok := byMonth[unknownMonth]; ok {
		months = append(months, unknownMonth)
	}
	return months
}

func formatTweetMarkdown(b *strings.Builder, t *models.Tweet, baseDir string, opts Options) {
	b.WriteString(fmt.Sprintf("\n### [@%s](https://x.com/%s)\n", t.User.ScreenName, t.User.ScreenName))
	name := t.User.Name
	if t.User.Verified {
		name += " ✓"
	}
	b.WriteString(fmt.Sprintf("**%s**\n", name))

	dateStr := t.CreatedAt
	if created, err := t.CreatedTime(); err == nil {
		dateStr = created.Format("2006-01-02 15:04:05")
	}
	b.WriteString(fmt.Sprintf("*%s*\n", dateStr))

	b.WriteString(fmt.Sprintf("\n%s\n", t.Text))

	if opts.IncludeMedia && len(t.Media) > 0 {
		b.WriteString("\n**Media:**\n\n")
		for _, m := range t.Media {
			writeMediaMarkdown(b, m, baseDir)
		}
	}

	var stats []string
	if t.RetweetCount > 0 {
		stats = append(stats, fmt.Sprintf("🔄 %d", t.RetweetCount))
	}
	if t.FavoriteCount > 0 {
		stats = append(stats, fmt.Sprintf("❤️ %d", t.FavoriteCount))
	}
	if t.ReplyCount > 0 {
		stats = append(stats, fmt.Sprintf("💬 %d", t.ReplyCount))
	}
	if t.ViewCount > 0 {
		stats = append(stats, fmt.Sprintf("👁️ %d", t.ViewCount))
	}
	if len(stats) > 0 {
		b.WriteString(fmt.Sprintf("\n*%s*\n", strings.Join(stats, " • ")))
	}

	b.WriteString(fmt.Sprintf("\n🔗 [View on X](%s)\n", t.URL()))

	if len(t.Hashtags) > 0 {
		tags := make([]string, 0, len(t.Hashtags))
		for _, tag := range t.Hashtags {
			tags = append(tags, "#"+tag)
		}
		b.WriteString(fmt.Sprintf("\n**Tags:** %s\n", strings.Join(tags, " ")))
	}

	b.WriteString("\n---\n")
}

func writeMediaMarkdown(b *strings.Builder, m models.Media, baseDir string) {
	if m.LocalPath != "" {
		rel := storage.RelPath(m.LocalPath, baseDir)
		switch m.Type {
		case "photo":
			b.WriteString(fmt.Sprintf("![Image](%s)\n", rel))
		case "video":
			b.WriteString(fmt.Sprintf("🎥 [Video](%s)\n", rel))
		case "animated_gif":
			b.WriteString(fmt.Sprintf("![GIF](%s)\n", rel))
		default:
			b.WriteString(fmt.Sprintf("[%s](%s)\n", m.Type, rel))
		}
		return
	}

	if m.Type == "photo" && m.MediaURL != "" {
		b.WriteString(fmt.Sprintf("![Image](%s)\n", m.MediaURL))
	} else if m.URL != "" {
		b.WriteString(fmt.Sprintf("🔗 [%s](%s)\n", m.Type, m.URL))
	}
}
