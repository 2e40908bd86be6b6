package scraper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norandom/x-likes-scraper/pkg/config"
	"github.com/norandom/x-likes-scraper/pkg/errors"
	"github.com/norandom/x-likes-scraper/pkg/models"
	"github.com/norandom/x-likes-scraper/pkg/ratelimit"
	"github.com/norandom/x-likes-scraper/pkg/twitter"
)

// fakeClient serves canned pages in order
type fakeClient struct {
	pages   []*twitter.Page
	errAt   map[int]error
	calls   int
	cursors []models.Cursor
}

func (f *fakeClient) FetchLikes(ctx context.Context, userID string, cursor models.Cursor, count int) (*twitter.Page, error) {
	idx := f.calls
	f.calls++
	f.cursors = append(f.cursors, cursor)

	if err, ok := f.errAt[idx]; ok {
		return nil, err
	}
	if idx >= len(f.pages) {
		return &twitter.Page{Next: models.EndCursor()}, nil
	}
	return f.pages[idx], nil
}

func makePage(n, firstID int, next models.Cursor, window ratelimit.Window) *twitter.Page {
	tweets := make([]models.Tweet, 0, n)
	for i := 0; i < n; i++ {
		tweets = append(tweets, models.Tweet{ID: fmt.Sprintf("%d", firstID+i)})
	}
	return &twitter.Page{Tweets: tweets, Next: next, Window: window}
}

// healthyWindow has plenty of quota left
func healthyWindow() ratelimit.Window {
	return ratelimit.Window{Limit: 500, Remaining: 400, Reset: time.Now().Unix() + 900}
}

func testEngine(client LikesClient) *Engine {
	cfg := config.FetchConfig{
		PageSize:           20,
		PoliteDelay:        0,
		CheckpointInterval: 10,
		MaxRetries:         1,
	}
	return NewEngine(client, cfg, nil)
}

// checkpointRecorder captures every checkpoint call
type checkpointRecorder struct {
	counts  []int
	cursors []models.Cursor
}

func (r *checkpointRecorder) save(tweets []models.Tweet, cursor models.Cursor) error {
	r.counts = append(r.counts, len(tweets))
	r.cursors = append(r.cursors, cursor)
	return nil
}

func TestFetchAllThreePages(t *testing.T) {
	client := &fakeClient{pages: []*twitter.Page{
		makePage(20, 0, models.NextCursor("c1"), healthyWindow()),
		makePage(20, 100, models.NextCursor("c2"), healthyWindow()),
		makePage(0, 0, models.EndCursor(), healthyWindow()),
	}}

	engine := testEngine(client)
	tweets, stopped, err := engine.FetchAll(context.Background(), "42", models.StartCursor(), Callbacks{})

	require.NoError(t, err)
	assert.False(t, stopped)
	assert.Len(t, tweets, 40)
	assert.Equal(t, 3, client.calls)

	// First request starts pagination, later ones carry the cursor forward
	assert.True(t, client.cursors[0].IsStart())
	assert.Equal(t, "c1", client.cursors[1].String())
	assert.Equal(t, "c2", client.cursors[2].String())
}

func TestFetchAllEndsWhenCursorAbsent(t *testing.T) {
	client := &fakeClient{pages: []*twitter.Page{
		makePage(15, 0, models.EndCursor(), healthyWindow()),
	}}

	engine := testEngine(client)
	tweets, _, err := engine.FetchAll(context.Background(), "42", models.StartCursor(), Callbacks{})

	require.NoError(t, err)
	assert.Len(t, tweets, 15)
	assert.Equal(t, 1, client.calls, "an absent bottom cursor ends the run")
}

func TestFetchAllEndsOnEmptyPage(t *testing.T) {
	client := &fakeClient{pages: []*twitter.Page{
		makePage(0, 0, models.NextCursor("c1"), healthyWindow()),
	}}

	engine := testEngine(client)
	tweets, _, err := engine.FetchAll(context.Background(), "42", models.StartCursor(), Callbacks{})

	require.NoError(t, err)
	assert.Empty(t, tweets)
	assert.Equal(t, 1, client.calls, "an empty page ends the run even with a cursor present")
}

func TestCheckpointEveryInterval(t *testing.T) {
	client := &fakeClient{pages: []*twitter.Page{
		makePage(20, 0, models.NextCursor("c1"), healthyWindow()),
		makePage(20, 100, models.NextCursor("c2"), healthyWindow()),
		makePage(20, 200, models.NextCursor("c3"), healthyWindow()),
		makePage(20, 300, models.NextCursor("c4"), healthyWindow()),
		makePage(20, 400, models.EndCursor(), healthyWindow()),
	}}

	engine := testEngine(client)
	engine.cfg.CheckpointInterval = 2

	rec := &checkpointRecorder{}
	tweets, _, err := engine.FetchAll(context.Background(), "42", models.StartCursor(), Callbacks{
		Checkpoint: rec.save,
	})

	require.NoError(t, err)
	assert.Len(t, tweets, 100)

	require.Len(t, rec.counts, 2, "expected a checkpoint after pages 2 and 4")
	assert.Equal(t, []int{40, 80}, rec.counts)
	assert.Equal(t, "c2", rec.cursors[0].String())
	assert.Equal(t, "c4", rec.cursors[1].String())
}

func TestRateLimitWaitCheckpointsFirst(t *testing.T) {
	now := time.Unix(1700000000, 0)

	client := &fakeClient{pages: []*twitter.Page{
		makePage(20, 0, models.NextCursor("c1"), ratelimit.Window{Limit: 500, Remaining: 1, Reset: now.Unix() + 30}),
		makePage(5, 100, models.EndCursor(), healthyWindow()),
	}}

	engine := testEngine(client)
	engine.now = func() time.Time { return now }

	var events []string
	var slept time.Duration
	engine.sleep = func(ctx context.Context, d time.Duration) error {
		events = append(events, "sleep")
		slept = d
		return nil
	}

	rec := &checkpointRecorder{}
	tweets, _, err := engine.FetchAll(context.Background(), "42", models.StartCursor(), Callbacks{
		Checkpoint: func(ts []models.Tweet, c models.Cursor) error {
			events = append(events, "checkpoint")
			return rec.save(ts, c)
		},
	})

	require.NoError(t, err)
	assert.Len(t, tweets, 25)

	assert.Equal(t, 35*time.Second, slept, "wait = reset - now + 5s buffer")
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, []string{"checkpoint", "sleep"}, events[:2], "progress must be durable before sleeping")
	assert.Equal(t, "c1", rec.cursors[0].String(), "checkpoint must carry the next cursor")
}

func TestStopBeforeFirstPage(t *testing.T) {
	client := &fakeClient{}

	engine := testEngine(client)
	rec := &checkpointRecorder{}
	tweets, stopped, err := engine.FetchAll(context.Background(), "42", models.StartCursor(), Callbacks{
		ShouldStop: func() bool { return true },
		Checkpoint: rec.save,
	})

	require.NoError(t, err)
	assert.True(t, stopped)
	assert.Empty(t, tweets)
	assert.Zero(t, client.calls)
	require.Len(t, rec.counts, 1, "stop must checkpoint before returning")
	assert.True(t, rec.cursors[0].IsStart())
}

func TestStopAfterFirstPage(t *testing.T) {
	client := &fakeClient{pages: []*twitter.Page{
		makePage(20, 0, models.NextCursor("c1"), healthyWindow()),
	}}

	engine := testEngine(client)

	polls := 0
	rec := &checkpointRecorder{}
	tweets, stopped, err := engine.FetchAll(context.Background(), "42", models.StartCursor(), Callbacks{
		ShouldStop: func() bool {
			polls++
			return polls > 1
		},
		Checkpoint: rec.save,
	})

	require.NoError(t, err)
	assert.True(t, stopped)
	assert.Len(t, tweets, 20)
	assert.Equal(t, 1, client.calls)
	require.Len(t, rec.counts, 1)
	assert.Equal(t, 20, rec.counts[0])
	assert.Equal(t, "c1", rec.cursors[0].String())
}

func TestFetchErrorCheckpointsProgress(t *testing.T) {
	client := &fakeClient{
		pages: []*twitter.Page{
			makePage(20, 0, models.NextCursor("c1"), healthyWindow()),
		},
		errAt: map[int]error{1: errors.NewHTTP(403)},
	}

	engine := testEngine(client)
	rec := &checkpointRecorder{}
	tweets, _, err := engine.FetchAll(context.Background(), "42", models.StartCursor(), Callbacks{
		Checkpoint: rec.save,
	})

	require.Error(t, err)
	assert.Len(t, tweets, 20, "tweets fetched before the failure are returned")
	require.NotEmpty(t, rec.counts, "failure must checkpoint what was fetched")
	assert.Equal(t, "c1", rec.cursors[len(rec.cursors)-1].String())
}

func TestProgressCallback(t *testing.T) {
	client := &fakeClient{pages: []*twitter.Page{
		makePage(20, 0, models.NextCursor("c1"), healthyWindow()),
		makePage(10, 100, models.EndCursor(), healthyWindow()),
	}}

	engine := testEngine(client)

	var totals []int
	_, _, err := engine.FetchAll(context.Background(), "42", models.StartCursor(), Callbacks{
		OnProgress: func(total int) { totals = append(totals, total) },
	})

	require.NoError(t, err)
	assert.Equal(t, []int{20, 30}, totals)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(errors.NewNetwork("connection reset")))
	assert.True(t, isTransient(errors.NewHTTP(503)))
	assert.False(t, isTransient(errors.NewHTTP(403)))
	assert.False(t, isTransient(errors.NewHTTP(429)), "rate limits are handled by the window, not retries")
	assert.False(t, isTransient(errors.NewInvalidCredentials("bad cookies")))
	assert.False(t, isTransient(fmt.Errorf("plain error")))
}
