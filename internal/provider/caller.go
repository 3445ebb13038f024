// Package provider is the caller for the repository search API. It issues
// search and readme requests, authenticates with an access token when one is
// configured, and classifies every response as payload, throttle, or failure.
// Throttle responses carry the provider's reset instant so the caller can
// sleep until exactly then and retry; there is no backoff curve of our own.

package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/opencatalog/repo-scanner/cfg"
	"github.com/opencatalog/repo-scanner/internal/limiter"
	"github.com/opencatalog/repo-scanner/pkg/log"
)

// ErrNoReadme means the repository has no documentation file. This is a
// designed skip, not a failure: callers drop the record and move on.
var ErrNoReadme = errors.New("readme not available")

// ThrottleError is returned when the provider rate-limits us. ResetAt is the
// instant the provider said the limit clears; callers must wait until then
// and retry the same request.
type ThrottleError struct {
	ResetAt time.Time
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("rate limited until %s", e.ResetAt.Format(time.RFC3339))
}

// Wait returns how long to sleep before retrying. Never negative.
func (e *ThrottleError) Wait() time.Duration {
	d := time.Until(e.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

type Caller struct {
	Logger      log.Logger
	Config      *cfg.Config
	rateLimiter *limiter.RateLimiter
	client      *http.Client
}

func NewCaller(logger log.Logger, config *cfg.Config) *Caller {
	return &Caller{
		Logger:      logger,
		Config:      config,
		rateLimiter: limiter.NewRateLimiter(config.Provider.RequestsPerSecond),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Search requests one page of repositories for a language, filtered by the
// configured minimum popularity and sorted by stars descending.
func (c *Caller) Search(ctx context.Context, language string, page int) ([]RepoSummary, error) {
	query := fmt.Sprintf("language:%s stars:>=%d", language, c.Config.Scanner.MinPopularity)
	fullUrl := fmt.Sprintf("%s?q=%s&sort=stars&order=desc&per_page=%d&page=%d",
		c.Config.Provider.SearchApiUrl,
		strings.ReplaceAll(query, " ", "+"),
		c.Config.Scanner.PageSize,
		page,
	)

	body, err := c.get(ctx, fullUrl)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	rawResponse := &searchResponse{}
	if err := json.NewDecoder(body).Decode(rawResponse); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	c.Logger.Info(ctx, "Search %s page %d: %d items (total %d)",
		language, page, len(rawResponse.Items), rawResponse.TotalCount)

	return rawResponse.Items, nil
}

// FetchReadme fetches and decodes the documentation file for owner/name.
// Returns ErrNoReadme when the repository has none.
func (c *Caller) FetchReadme(ctx context.Context, fullName string) (string, error) {
	readmeUrl := strings.ReplaceAll(c.Config.Provider.ReadmeApiUrl, "{full_name}", fullName)

	body, err := c.get(ctx, readmeUrl)
	if err != nil {
		return "", err
	}
	defer body.Close()

	raw := &readmeResponse{}
	if err := json.NewDecoder(body).Decode(raw); err != nil {
		return "", fmt.Errorf("failed to decode readme response: %w", err)
	}

	// Content arrives base64 encoded with embedded newlines
	cleaned := strings.ReplaceAll(raw.Content, "\n", "")
	decoded, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return "", fmt.Errorf("failed to decode readme content: %w", err)
	}

	return string(decoded), nil
}

// get issues one request through the limiter and classifies the response.
func (c *Caller) get(ctx context.Context, fullUrl string) (io.ReadCloser, error) {
	if err := c.rateLimiter.WaitAllow(ctx, time.Duration(c.Config.Provider.ThrottleDelay)*time.Millisecond); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullUrl, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.Config.Provider.AccessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("token %s", c.Config.Provider.AccessToken))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot send request: %w", err)
	}

	if throttle := c.handleRateLimit(ctx, resp); throttle != nil {
		resp.Body.Close()
		return nil, throttle
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrNoReadme
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected response: %s", resp.Status)
	}

	return resp.Body, nil
}

// handleRateLimit classifies throttle responses using the reset header from
// the provider. A 403 or 429 is a throttle; the reset instant comes from the
// X-RateLimit-Reset header (unix seconds) or falls back to the configured
// default wait when the header is absent or unparseable.
func (c *Caller) handleRateLimit(ctx context.Context, resp *http.Response) *ThrottleError {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	defaultWait := time.Duration(c.Config.Provider.DefaultResetWait) * time.Second

	resetTimeStr := resp.Header.Get("X-RateLimit-Reset")
	resetTimeInt, err := strconv.ParseInt(resetTimeStr, 10, 64)
	if err != nil {
		c.Logger.Warn(ctx, "Rate limit hit, no usable reset header, waiting %v", defaultWait)
		return &ThrottleError{ResetAt: time.Now().Add(defaultWait)}
	}

	resetTime := time.Unix(resetTimeInt, 0)
	if time.Until(resetTime) < 0 {
		// Reset already in the past, still wait the default
		resetTime = time.Now().Add(defaultWait)
	}

	c.Logger.Warn(ctx, "Rate limit hit, waiting until %s", resetTime.Format(time.RFC3339))
	return &ThrottleError{ResetAt: resetTime}
}
