package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norandom/x-likes-scraper/pkg/models"
	"github.com/norandom/x-likes-scraper/pkg/storage"
)

func mediaServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("bytes"))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDownloadAll(t *testing.T) {
	server := mediaServer(t)

	tweets := []models.Tweet{
		{ID: "1", Media: []models.Media{
			{Type: "photo", MediaURL: server.URL + "/a.jpg"},
			{Type: "photo", MediaURL: server.URL + "/b.jpg"},
		}},
		{ID: "2", Media: []models.Media{
			{Type: "video", MediaURL: server.URL + "/v.mp4"},
		}},
	}

	store, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)

	var progress []int
	downloaded, err := DownloadAll(context.Background(), tweets, store, Options{
		Concurrency: 2,
		Timeout:     5 * time.Second,
		UserAgent:   "test-agent",
		OnProgress:  func(done, total int) { progress = append(progress, done) },
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, downloaded)
	assert.Equal(t, 3, store.SavedCount())
	assert.Len(t, progress, 3)

	// Local paths are written back onto the attachments
	assert.NotEmpty(t, tweets[0].Media[0].LocalPath)
	assert.NotEmpty(t, tweets[0].Media[1].LocalPath)
	assert.NotEmpty(t, tweets[1].Media[0].LocalPath)
}

func TestDownloadAllSkipsVideos(t *testing.T) {
	server := mediaServer(t)

	tweets := []models.Tweet{
		{ID: "1", Media: []models.Media{
			{Type: "photo", MediaURL: server.URL + "/a.jpg"},
			{Type: "video", MediaURL: server.URL + "/v.mp4"},
		}},
	}

	store, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)

	downloaded, err := DownloadAll(context.Background(), tweets, store, Options{
		Concurrency: 1,
		Timeout:     5 * time.Second,
		UserAgent:   "test-agent",
		SkipVideos:  true,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, downloaded)
	assert.Empty(t, tweets[0].Media[1].LocalPath)
}

func TestDownloadAllToleratesFailures(t *testing.T) {
	server := mediaServer(t)

	tweets := []models.Tweet{
		{ID: "1", Media: []models.Media{
			{Type: "photo", MediaURL: server.URL + "/missing.jpg"},
			{Type: "photo", MediaURL: server.URL + "/ok.jpg"},
		}},
	}

	store, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)

	downloaded, err := DownloadAll(context.Background(), tweets, store, Options{
		Concurrency: 1,
		Timeout:     5 * time.Second,
		UserAgent:   "test-agent",
	}, nil)

	require.NoError(t, err, "a failed attachment must not abort the run")
	assert.Equal(t, 1, downloaded)
	assert.Empty(t, tweets[0].Media[0].LocalPath)
	assert.NotEmpty(t, tweets[0].Media[1].LocalPath)
}

func TestDownloadAllNoMedia(t *testing.T) {
	store, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)

	downloaded, err := DownloadAll(context.Background(), []models.Tweet{{ID: "1"}}, store, Options{
		Concurrency: 1,
	}, nil)

	require.NoError(t, err)
	assert.Zero(t, downloaded)
}
