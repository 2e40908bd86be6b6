package downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/norandom/x-likes-scraper/pkg/errors"
	"github.com/norandom/x-likes-scraper/pkg/models"
	"github.com/norandom/x-likes-scraper/pkg/storage"
)

// HTTPFetcher downloads media over HTTP and stores it through the storage
// manager.
type HTTPFetcher struct {
	httpClient *http.Client
	store      *storage.Manager
	userAgent  string
}

// NewHTTPFetcher creates a media fetcher
func NewHTTPFetcher(store *storage.Manager, userAgent string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: timeout},
		store:      store,
		userAgent:  userAgent,
	}
}

// Fetch downloads one media attachment. Already stored attachments are
// returned without a network round trip.
func (f *HTTPFetcher) Fetch(ctx context.Context, job Job) (string, int64, error) {
	if f.store.IsSaved(job.TweetID, job.Index) {
		return f.store.Path(job.TweetID, job.Index), 0, nil
	}

	downloadURL := resolveURL(job.Media)
	if downloadURL == "" {
		return "", 0, errors.NewParse(fmt.Sprintf("no downloadable URL for tweet %s media %d", job.TweetID, job.Index))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", 0, errors.NewNetwork(fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", 0, errors.NewNetwork(fmt.Sprintf("failed to fetch %s: %v", downloadURL, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, errors.NewHTTP(resp.StatusCode)
	}

	ext := extension(downloadURL, resp.Header.Get("Content-Type"), job.Media.Type)
	localPath, err := f.store.Save(resp.Body, job.TweetID, job.Index, ext)
	if err != nil {
		return "", 0, err
	}

	return localPath, resp.ContentLength, nil
}

// resolveURL picks the URL to download, upgrading photos to original quality
func resolveURL(media models.Media) string {
	downloadURL := media.MediaURL
	if downloadURL == "" {
		downloadURL = media.URL
	}
	if downloadURL == "" {
		return ""
	}

	if media.Type == "photo" && media.MediaURL != "" {
		if i := strings.Index(downloadURL, "?"); i >= 0 {
			downloadURL = downloadURL[:i]
		}
		downloadURL += "?format=jpg&name=orig"
	}

	return downloadURL
}

// extension determines the file extension from the URL path, the
// content-type, or the media type, in that order
func extension(rawURL, contentType, mediaType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if ext := path.Ext(u.Path); ext != "" {
			return strings.ToLower(ext)
		}
	}

	switch {
	case strings.Contains(contentType, "image/jpeg"), strings.Contains(contentType, "image/jpg"):
		return ".jpg"
	case strings.Contains(contentType, "image/png"):
		return ".png"
	case strings.Contains(contentType, "image/gif"):
		return ".gif"
	case strings.Contains(contentType, "image/webp"):
		return ".webp"
	case strings.Contains(contentType, "video/mp4"):
		return ".mp4"
	}

	switch mediaType {
	case "photo":
		return ".jpg"
	case "video":
		return ".mp4"
	case "animated_gif":
		return ".gif"
	}

	return ".jpg"
}
