package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norandom/x-likes-scraper/pkg/config"
	"github.com/norandom/x-likes-scraper/pkg/cookies"
	"github.com/norandom/x-likes-scraper/pkg/models"
)

func TestMergeTweetsDeduplicates(t *testing.T) {
	existing := []models.Tweet{
		{ID: "1", Text: "old copy", Media: []models.Media{{Type: "photo", LocalPath: "media/1_0.jpg"}}},
		{ID: "2", Text: "two"},
	}
	fetched := []models.Tweet{
		{ID: "1", Text: "new copy"},
		{ID: "3", Text: "three"},
	}

	merged := mergeTweets(existing, fetched)

	require.Len(t, merged, 3)
	assert.Equal(t, "old copy", merged[0].Text, "the resumed copy wins on conflict")
	assert.Equal(t, "media/1_0.jpg", merged[0].Media[0].LocalPath, "resumed media paths survive the merge")
	assert.Equal(t, "2", merged[1].ID)
	assert.Equal(t, "3", merged[2].ID)
}

func TestMergeTweetsNoExisting(t *testing.T) {
	fetched := []models.Tweet{{ID: "1"}, {ID: "2"}}

	merged := mergeTweets(nil, fetched)

	assert.Len(t, merged, 2)
}

func TestMergeTweetsIdempotent(t *testing.T) {
	existing := []models.Tweet{{ID: "1"}, {ID: "2"}}

	// Refetching the same page after a resume must not duplicate anything
	merged := mergeTweets(existing, existing)

	assert.Len(t, merged, 2)
}

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Output.Directory = t.TempDir()

	jar := cookies.FromTokens("tok", "csrf")
	exporter, err := NewExporter(cfg, jar, nil)
	require.NoError(t, err)
	return exporter
}

func TestSeedWithoutCheckpoint(t *testing.T) {
	exporter := newTestExporter(t)

	tweets, cursor := exporter.seed("42", true)

	assert.Nil(t, tweets)
	assert.True(t, cursor.IsStart())
}

func TestSeedResumesOwnCheckpoint(t *testing.T) {
	exporter := newTestExporter(t)

	saved := []models.Tweet{{ID: "1"}, {ID: "2"}}
	require.NoError(t, exporter.ckpt.Save("42", saved, models.NextCursor("c9"), false))

	tweets, cursor := exporter.seed("42", true)

	assert.Len(t, tweets, 2)
	assert.Equal(t, "c9", cursor.String())
}

func TestSeedDiscardsOtherUsersCheckpoint(t *testing.T) {
	exporter := newTestExporter(t)

	require.NoError(t, exporter.ckpt.Save("99", []models.Tweet{{ID: "1"}}, models.NextCursor("c9"), false))

	tweets, cursor := exporter.seed("42", true)

	assert.Nil(t, tweets, "a checkpoint for another user must not seed the run")
	assert.True(t, cursor.IsStart())
	assert.False(t, exporter.ckpt.Exists(), "the stale checkpoint must be cleared")
}

func TestSeedIgnoredWithoutResumeFlag(t *testing.T) {
	exporter := newTestExporter(t)

	require.NoError(t, exporter.ckpt.Save("42", []models.Tweet{{ID: "1"}}, models.NextCursor("c9"), false))

	tweets, cursor := exporter.seed("42", false)

	assert.Nil(t, tweets)
	assert.True(t, cursor.IsStart())
	assert.True(t, exporter.ckpt.Exists(), "without --resume the checkpoint is left alone")
}

func TestCollectStats(t *testing.T) {
	tweets := []models.Tweet{
		{ID: "1", Media: []models.Media{{Type: "photo"}, {Type: "video"}}},
		{ID: "2", IsRetweet: true},
		{ID: "3", IsQuote: true, Media: []models.Media{{Type: "photo"}}},
	}

	var stats Stats
	collectStats(&stats, tweets)

	assert.Equal(t, 3, stats.TotalTweets)
	assert.Equal(t, 2, stats.TweetsWithMedia)
	assert.Equal(t, 3, stats.TotalMedia)
	assert.Equal(t, 1, stats.Retweets)
	assert.Equal(t, 1, stats.Quotes)
}
