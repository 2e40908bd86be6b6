package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norandom/x-likes-scraper/pkg/cookies"
)

type bundleServer struct {
	server    *httptest.Server
	homeCalls int32
	bundle    atomic.Value // string
}

func newBundleServer(t *testing.T) *bundleServer {
	t.Helper()

	b := &bundleServer{}
	b.bundle.Store(`var n="Bearer AAAAtest%3Dtoken";e.exports={queryId:"LIKES_QID",operationName:"Likes",operationType:"query"},e.exports={queryId:"TWEET_QID",operationName:"TweetDetail"}`)

	mux := http.NewServeMux()
	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.homeCalls, 1)
		fmt.Fprintf(w, `<html><head><link rel="preload" href="%s/responsive-web/client-web/main.9f3a2b.js" as="script"></head></html>`, b.server.URL)
	})
	mux.HandleFunc("/responsive-web/client-web/main.9f3a2b.js", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, b.bundle.Load().(string))
	})

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func newTestProvider(b *bundleServer) *Provider {
	jar := cookies.FromTokens("tok", "csrf")
	return NewProvider(jar, b.server.URL, "test-agent", 5*time.Second, nil)
}

func TestBearerToken(t *testing.T) {
	b := newBundleServer(t)
	provider := newTestProvider(b)

	bearer, err := provider.BearerToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer AAAAtest%3Dtoken", bearer)
}

func TestBearerTokenCached(t *testing.T) {
	b := newBundleServer(t)
	provider := newTestProvider(b)

	_, err := provider.BearerToken(context.Background())
	require.NoError(t, err)

	callsAfterFirst := atomic.LoadInt32(&b.homeCalls)
	_, err = provider.BearerToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, atomic.LoadInt32(&b.homeCalls),
		"a cached bearer must not re-fetch the bundle")
}

func TestInvalidateDropsCache(t *testing.T) {
	b := newBundleServer(t)
	provider := newTestProvider(b)

	_, err := provider.BearerToken(context.Background())
	require.NoError(t, err)

	provider.Invalidate()

	callsBefore := atomic.LoadInt32(&b.homeCalls)
	_, err = provider.BearerToken(context.Background())
	require.NoError(t, err)

	assert.Greater(t, atomic.LoadInt32(&b.homeCalls), callsBefore,
		"invalidation must force a re-scrape")
}

func TestQueryID(t *testing.T) {
	b := newBundleServer(t)
	provider := newTestProvider(b)

	id, err := provider.QueryID(context.Background(), "Likes")
	require.NoError(t, err)
	assert.Equal(t, "LIKES_QID", id)

	id, err = provider.QueryID(context.Background(), "TweetDetail")
	require.NoError(t, err)
	assert.Equal(t, "TWEET_QID", id)
}

func TestQueryIDNotFound(t *testing.T) {
	b := newBundleServer(t)
	provider := newTestProvider(b)

	_, err := provider.QueryID(context.Background(), "NoSuchOperation")
	require.Error(t, err)
}

func TestBearerMissingFromBundle(t *testing.T) {
	b := newBundleServer(t)
	b.bundle.Store(`var nothing=1;`)
	provider := newTestProvider(b)

	_, err := provider.BearerToken(context.Background())
	require.Error(t, err)

	// Failures are never cached; a fixed bundle succeeds on the next call
	b.bundle.Store(`var n="Bearer AAAArecovered";`)
	bearer, err := provider.BearerToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer AAAArecovered", bearer)
}
