// Package auth extracts the bearer token and GraphQL query ids the X web
// client embeds in its script bundle, and stores session credentials.
package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/norandom/x-likes-scraper/pkg/cookies"
	"github.com/norandom/x-likes-scraper/pkg/errors"
	"github.com/norandom/x-likes-scraper/pkg/logger"
)

var (
	// scriptURLPattern finds the main web client bundle in the home page
	// HTML, served from abs.twimg.com in production.
	scriptURLPattern = regexp.MustCompile(`<link[^>]+href="(https?://[^"]+/responsive-web/client-web/main\.[^"]+\.js)"`)

	// bearerPattern finds the public bearer token inside the bundle.
	bearerPattern = regexp.MustCompile(`"(Bearer [\w%]+)"`)
)

// Provider scrapes authentication material from the X web client. Extraction
// is brittle by nature; a successful result is cached for the provider's
// lifetime, failures are not cached and are retried on the next call.
type Provider struct {
	httpClient *http.Client
	jar        *cookies.Jar
	baseURL    string
	userAgent  string
	log        logger.Logger

	mu       sync.Mutex
	bearer   string
	queryIDs map[string]string
}

// NewProvider creates an auth provider bound to a cookie jar.
func NewProvider(jar *cookies.Jar, baseURL, userAgent string, timeout time.Duration, log logger.Logger) *Provider {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Provider{
		httpClient: &http.Client{Timeout: timeout},
		jar:        jar,
		baseURL:    baseURL,
		userAgent:  userAgent,
		log:        log,
		queryIDs:   make(map[string]string),
	}
}

// BearerToken returns the API bearer token, scraping it from the web client
// bundle on first use.
func (p *Provider) BearerToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bearer != "" {
		return p.bearer, nil
	}

	script, err := p.fetchMainScript(ctx)
	if err != nil {
		return "", err
	}

	match := bearerPattern.FindStringSubmatch(script)
	if match == nil {
		return "", errors.NewAuthExtraction("bearer token not found in main script")
	}

	p.bearer = match[1]
	p.log.Debug("bearer token extracted")
	return p.bearer, nil
}

// QueryID returns the GraphQL query id for an operation name such as "Likes".
func (p *Provider) QueryID(ctx context.Context, operationName string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id, ok := p.queryIDs[operationName]; ok {
		return id, nil
	}

	script, err := p.fetchMainScript(ctx)
	if err != nil {
		return "", err
	}

	pattern, err := regexp.Compile(`\{queryId:"([^"]+)",operationName:"` + regexp.QuoteMeta(operationName) + `"`)
	if err != nil {
		return "", errors.NewAuthExtraction(fmt.Sprintf("invalid operation name: %v", err))
	}

	match := pattern.FindStringSubmatch(script)
	if match == nil {
		return "", errors.NewAuthExtraction(fmt.Sprintf("query id for %s not found in main script", operationName))
	}

	p.queryIDs[operationName] = match[1]
	p.log.WithField("operation", operationName).Debug("query id extracted")
	return match[1], nil
}

// Invalidate drops the cached bearer token. The API client calls this on a
// 401 so the next fetch re-scrapes instead of reusing a dead token.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bearer = ""
}

// fetchMainScript downloads the home page, locates the main script bundle
// and returns its text. Callers must hold p.mu.
func (p *Provider) fetchMainScript(ctx context.Context) (string, error) {
	html, err := p.get(ctx, p.baseURL+"/home", true)
	if err != nil {
		return "", err
	}

	match := scriptURLPattern.FindStringSubmatch(html)
	if match == nil {
		return "", errors.NewAuthExtraction("main script URL not found in home page")
	}

	script, err := p.get(ctx, match[1], false)
	if err != nil {
		return "", err
	}

	return script, nil
}

func (p *Provider) get(ctx context.Context, url string, withCookies bool) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.NewAuthExtraction(fmt.Sprintf("failed to create request: %v", err))
	}

	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if withCookies {
		req.Header.Set("Cookie", p.jar.Header())
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", errors.NewAuthExtraction(fmt.Sprintf("failed to fetch %s: %v", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewAuthExtraction(fmt.Sprintf("unexpected status %d fetching %s", resp.StatusCode, url))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewAuthExtraction(fmt.Sprintf("failed to read %s: %v", url, err))
	}

	return string(body), nil
}
