package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norandom/x-likes-scraper/pkg/auth"
	"github.com/norandom/x-likes-scraper/pkg/cookies"
	apierrors "github.com/norandom/x-likes-scraper/pkg/errors"
	"github.com/norandom/x-likes-scraper/pkg/models"
)

// mockXServer mimics the X web client and GraphQL API
type mockXServer struct {
	server      *httptest.Server
	scriptCalls int32
	likesCalls  int32
	likesStatus int32 // response status for the next likes calls
	remaining   int32
}

func newMockXServer(t *testing.T) *mockXServer {
	t.Helper()

	m := &mockXServer{likesStatus: http.StatusOK, remaining: 100}
	mux := http.NewServeMux()

	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><link rel="preload" href="%s/responsive-web/client-web/main.abc123.js" as="script"></head></html>`, m.server.URL)
	})

	mux.HandleFunc("/responsive-web/client-web/main.abc123.js", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.scriptCalls, 1)
		fmt.Fprint(w, `var t="Bearer AAAAmock%3Dbearer";e.exports={queryId:"QID123",operationName:"Likes",operationType:"query"}`)
	})

	mux.HandleFunc("/i/api/graphql/QID123/Likes", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.likesCalls, 1)

		w.Header().Set("x-rate-limit-limit", "500")
		w.Header().Set("x-rate-limit-remaining", fmt.Sprintf("%d", atomic.LoadInt32(&m.remaining)))
		w.Header().Set("x-rate-limit-reset", fmt.Sprintf("%d", time.Now().Unix()+900))

		status := int(atomic.LoadInt32(&m.likesStatus))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		if r.Header.Get("authorization") != "Bearer AAAAmock%3Dbearer" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		cursor := requestCursor(r)
		fmt.Fprint(w, likesPageJSON(cursor))
	})

	m.server = httptest.NewServer(mux)
	t.Cleanup(m.server.Close)
	return m
}

// requestCursor pulls the cursor out of the variables query parameter
func requestCursor(r *http.Request) string {
	var variables struct {
		Cursor string `json:"cursor"`
	}
	_ = json.Unmarshal([]byte(r.URL.Query().Get("variables")), &variables)
	return variables.Cursor
}

// likesPageJSON builds a timeline page with two tweets, one tombstoned
// entry and a bottom cursor
func likesPageJSON(cursor string) string {
	tweet := func(id, text string) string {
		return fmt.Sprintf(`{
			"entryId": "tweet-%s",
			"content": {
				"entryType": "TimelineTimelineItem",
				"itemContent": {
					"tweet_results": {
						"result": {
							"rest_id": "%s",
							"core": {
								"user_results": {
									"result": {
										"rest_id": "42",
										"legacy": {
											"screen_name": "tester",
											"name": "Test User",
											"verified": true,
											"followers_count": 10,
											"friends_count": 5
										}
									}
								}
							},
							"views": {"count": "1234"},
							"legacy": {
								"id_str": "%s",
								"full_text": "%s",
								"created_at": "Sun Nov 09 11:05:17 +0000 2025",
								"retweet_count": 3,
								"favorite_count": 7,
								"reply_count": 1,
								"quote_count": 0,
								"lang": "en",
								"conversation_id_str": "%s",
								"entities": {
									"hashtags": [{"text": "golang"}],
									"urls": [{"expanded_url": "https://example.com"}],
									"user_mentions": [{"screen_name": "friend"}]
								},
								"extended_entities": {
									"media": [{
										"type": "photo",
										"url": "https://t.co/x",
										"media_url_https": "https://pbs.twimg.com/media/x.jpg",
										"original_info": {"width": 800, "height": 600}
									}]
								}
							}
						}
					}
				}
			}
		}`, id, id, id, text, id)
	}

	tombstone := `{
		"entryId": "tweet-gone",
		"content": {
			"entryType": "TimelineTimelineItem",
			"itemContent": {"tweet_results": {"result": {"rest_id": "0"}}}
		}
	}`

	bottom := `{
		"entryId": "cursor-bottom",
		"content": {"entryType": "TimelineTimelineCursor", "cursorType": "Bottom", "value": "NEXT_` + cursor + `"}
	}`

	return fmt.Sprintf(`{
		"data": {"user": {"result": {"timeline": {"timeline": {"instructions": [
			{"type": "TimelineClearCache"},
			{"type": "TimelineAddEntries", "entries": [%s, %s, %s, %s]}
		]}}}}}
	}`, tweet("1001", "hello world"), tweet("1002", "second tweet"), tombstone, bottom)
}

func newTestClient(m *mockXServer) *Client {
	jar := cookies.FromTokens("authtok", "csrftok")
	provider := auth.NewProvider(jar, m.server.URL, "test-agent", 5*time.Second, nil)
	return NewClient(provider, jar, m.server.URL, "test-agent", 5*time.Second, nil)
}

func TestFetchLikesFirstPage(t *testing.T) {
	m := newMockXServer(t)
	client := newTestClient(m)

	page, err := client.FetchLikes(context.Background(), "42", models.StartCursor(), 20)
	require.NoError(t, err)

	require.Len(t, page.Tweets, 2, "tombstoned entry must be skipped")

	tw := page.Tweets[0]
	assert.Equal(t, "1001", tw.ID)
	assert.Equal(t, "hello world", tw.Text)
	assert.Equal(t, "tester", tw.User.ScreenName)
	assert.True(t, tw.User.Verified)
	assert.Equal(t, 1234, tw.ViewCount)
	assert.Equal(t, []string{"golang"}, tw.Hashtags)
	assert.Equal(t, []string{"https://example.com"}, tw.URLs)
	assert.Equal(t, []string{"friend"}, tw.Mentions)
	require.Len(t, tw.Media, 1)
	assert.Equal(t, "photo", tw.Media[0].Type)
	assert.Equal(t, 800, tw.Media[0].Width)
	assert.NotEmpty(t, tw.Raw, "raw payload must be carried")

	assert.False(t, page.Next.IsEnd())
	assert.Equal(t, "NEXT_", page.Next.String())

	assert.Equal(t, 500, page.Window.Limit)
	assert.Equal(t, 100, page.Window.Remaining)
}

func TestFetchLikesPassesCursor(t *testing.T) {
	m := newMockXServer(t)
	client := newTestClient(m)

	page, err := client.FetchLikes(context.Background(), "42", models.NextCursor("DAAB"), 20)
	require.NoError(t, err)

	// The mock echoes the request cursor into the bottom cursor value
	assert.Equal(t, "NEXT_DAAB", page.Next.String())
}

func TestFetchLikesRateLimited(t *testing.T) {
	m := newMockXServer(t)
	atomic.StoreInt32(&m.likesStatus, http.StatusTooManyRequests)
	client := newTestClient(m)

	_, err := client.FetchLikes(context.Background(), "42", models.StartCursor(), 20)
	require.Error(t, err)

	apiErr, ok := err.(*apierrors.Error)
	require.True(t, ok, "expected typed error, got %T", err)
	assert.Equal(t, apierrors.TypeRateLimit, apiErr.Type)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
}

func TestFetchLikesUnauthorizedInvalidatesToken(t *testing.T) {
	m := newMockXServer(t)
	atomic.StoreInt32(&m.likesStatus, http.StatusUnauthorized)
	client := newTestClient(m)

	_, err := client.FetchLikes(context.Background(), "42", models.StartCursor(), 20)
	require.Error(t, err)

	apiErr, ok := err.(*apierrors.Error)
	require.True(t, ok)
	assert.Equal(t, apierrors.TypeInvalidCredentials, apiErr.Type)

	scriptCallsAfterFirst := atomic.LoadInt32(&m.scriptCalls)

	// The cached bearer was dropped, so the next fetch re-scrapes
	atomic.StoreInt32(&m.likesStatus, http.StatusOK)
	_, err = client.FetchLikes(context.Background(), "42", models.StartCursor(), 20)
	require.NoError(t, err)

	assert.Greater(t, atomic.LoadInt32(&m.scriptCalls), scriptCallsAfterFirst,
		"bearer token must be re-extracted after a 401")
}

func TestExtractCursorAbsentMeansEnd(t *testing.T) {
	payload := `{
		"data": {"user": {"result": {"timeline": {"timeline": {"instructions": [
			{"type": "TimelineAddEntries", "entries": []}
		]}}}}}
	}`

	var resp likesResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	assert.True(t, extractCursor(&resp).IsEnd(), "missing bottom cursor must mean end of stream")
}
