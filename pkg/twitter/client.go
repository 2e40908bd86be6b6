// Package twitter talks to the X GraphQL API. It fetches one page of liked
// tweets at a time and surfaces the rate limit window observed on each
// response.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/norandom/x-likes-scraper/pkg/auth"
	"github.com/norandom/x-likes-scraper/pkg/cookies"
	"github.com/norandom/x-likes-scraper/pkg/errors"
	"github.com/norandom/x-likes-scraper/pkg/logger"
	"github.com/norandom/x-likes-scraper/pkg/models"
	"github.com/norandom/x-likes-scraper/pkg/ratelimit"
)

// Page is the result of fetching one page of likes.
type Page struct {
	Tweets []models.Tweet
	Next   models.Cursor
	Window ratelimit.Window
}

// Client fetches liked tweets from the X GraphQL API.
type Client struct {
	httpClient *http.Client
	provider   *auth.Provider
	jar        *cookies.Jar
	baseURL    string
	userAgent  string
	log        logger.Logger
}

// NewClient creates an API client. The provider supplies the bearer token and
// query id, the jar supplies the session cookies.
func NewClient(provider *auth.Provider, jar *cookies.Jar, baseURL, userAgent string, timeout time.Duration, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		provider:   provider,
		jar:        jar,
		baseURL:    baseURL,
		userAgent:  userAgent,
		log:        log,
	}
}

// FetchLikes fetches one page of liked tweets for a user. The cursor selects
// the page; pass models.StartCursor() for the first one.
func (c *Client) FetchLikes(ctx context.Context, userID string, cursor models.Cursor, count int) (*Page, error) {
	bearer, err := c.provider.BearerToken(ctx)
	if err != nil {
		return nil, err
	}
	queryID, err := c.provider.QueryID(ctx, LikesOperation)
	if err != nil {
		return nil, err
	}

	url, err := likesURL(c.baseURL, queryID, userID, cursor, count)
	if err != nil {
		return nil, errors.NewParse(err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewNetwork(fmt.Sprintf("failed to create request: %v", err))
	}

	req.Header.Set("authorization", bearer)
	req.Header.Set("x-csrf-token", c.jar.CSRFToken())
	req.Header.Set("x-twitter-active-user", "yes")
	req.Header.Set("x-twitter-auth-type", "OAuth2Session")
	req.Header.Set("x-twitter-client-language", "en")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.baseURL+"/")
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Cookie", c.jar.Header())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNetwork(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	window := ratelimit.ParseHeaders(resp.Header)

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode == http.StatusUnauthorized {
			// The scraped bearer token may have rotated; drop it so the
			// next attempt re-extracts.
			c.provider.Invalidate()
		}
		return nil, errors.NewHTTP(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetwork(fmt.Sprintf("failed to read response: %v", err))
	}

	var parsed likesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.NewParse(fmt.Sprintf("failed to decode response: %v", err))
	}

	tweets := extractTweets(&parsed, c.log)
	next := extractCursor(&parsed)

	c.log.WithFields(map[string]interface{}{
		"tweets":    len(tweets),
		"remaining": window.Remaining,
		"limit":     window.Limit,
	}).Debug("fetched likes page")

	return &Page{Tweets: tweets, Next: next, Window: window}, nil
}
