package export

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"

	"github.com/norandom/x-likes-scraper/pkg/models"
)

// HTMLFormatter writes tweets as a single styled HTML page. Tweet text is
// rendered through the Markdown pipeline so links and formatting come out
// the same in both formats.
type HTMLFormatter struct{}

// Extension returns ".html"
func (f *HTMLFormatter) Extension() string { return ".html" }

type htmlPage struct {
	Exported string
	Total    int
	Tweets   []htmlTweet
}

type htmlTweet struct {
	Name       string
	ScreenName string
	Date       string
	Body       template.HTML
	Media      []htmlMedia
	Retweets   int
	Likes      int
	Replies    int
	URL        string
}

type htmlMedia struct {
	Src   string
	IsImg bool
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>X Liked Tweets</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
            max-width: 800px;
            margin: 0 auto;
            padding: 20px;
            background: #f7f9f9;
            color: #0f1419;
        }
        .meta { color: #536471; }
        .tweet {
            background: #fff;
            border: 1px solid #eff3f4;
            border-radius: 12px;
            padding: 16px;
            margin: 12px 0;
        }
        .user { margin-bottom: 8px; }
        .user .handle { color: #536471; }
        .text { white-space: pre-wrap; }
        .media img { max-width: 100%; border-radius: 12px; margin-top: 8px; }
        .stats { color: #536471; margin-top: 8px; font-size: 0.9em; }
        .stats span { margin-right: 16px; }
        .stats a { color: #1d9bf0; text-decoration: none; }
    </style>
</head>
<body>
    <h1>X (Twitter) Liked Tweets</h1>
    <p class="meta">Exported: {{.Exported}} • Total: {{.Total}} tweets</p>
{{range .Tweets}}    <div class="tweet">
        <div class="user"><strong>{{.Name}}</strong> <span class="handle">@{{.ScreenName}}</span> <span class="handle">{{.Date}}</span></div>
        <div class="text">{{.Body}}</div>
{{if .Media}}        <div class="media">
{{range .Media}}{{if .IsImg}}            <img src="{{.Src}}" alt="Tweet media">
{{end}}{{end}}        </div>
{{end}}        <div class="stats">
            <span>🔄 {{.Retweets}}</span>
            <span>❤️ {{.Likes}}</span>
            <span>💬 {{.Replies}}</span>
            <a href="{{.URL}}" target="_blank">View on X</a>
        </div>
    </div>
{{end}}</body>
</html>
`))

// Export writes all tweets to one HTML file
func (f *HTMLFormatter) Export(tweets []models.Tweet, path string, opts Options) error {
	page := htmlPage{
		Exported: time.Now().Format("2006-01-02 15:04:05"),
		Total:    len(tweets),
	}

	baseDir := filepath.Dir(path)
	for i := range tweets {
		ht, err := buildHTMLTweet(&tweets[i], baseDir, opts)
		if err != nil {
			return err
		}
		page.Tweets = append(page.Tweets, ht)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := pageTemplate.Execute(file, page); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}

	return file.Close()
}

func buildHTMLTweet(t *models.Tweet, baseDir string, opts Options) (htmlTweet, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(t.Text), &body); err != nil {
		return htmlTweet{}, fmt.Errorf("failed to render tweet %s: %w", t.ID, err)
	}

	ht := htmlTweet{
		Name:       t.User.Name,
		ScreenName: t.User.ScreenName,
		Body:       template.HTML(body.String()),
		Retweets:   t.RetweetCount,
		Likes:      t.FavoriteCount,
		Replies:    t.ReplyCount,
		URL:        t.URL(),
	}

	if created, err := t.CreatedTime(); err == nil {
		ht.Date = created.Format("2006-01-02 15:04")
	} else {
		ht.Date = t.CreatedAt
	}

	if opts.IncludeMedia {
		for _, m := range t.Media {
			ht.Media = append(ht.Media, buildHTMLMedia(m, baseDir))
		}
	}

	return ht, nil
}

func buildHTMLMedia(m models.Media, baseDir string) htmlMedia {
	if m.LocalPath != "" {
		rel, err := filepath.Rel(baseDir, m.LocalPath)
		if err != nil {
			rel = m.LocalPath
		}
		return htmlMedia{Src: rel, IsImg: m.Type == "photo" || m.Type == "animated_gif"}
	}
	if m.Type == "photo" && m.MediaURL != "" {
		return htmlMedia{Src: m.MediaURL, IsImg: true}
	}
	if m.PreviewImageURL != "" {
		return htmlMedia{Src: m.PreviewImageURL, IsImg: true}
	}
	return htmlMedia{Src: m.URL}
}
