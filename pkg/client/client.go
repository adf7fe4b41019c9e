// Package client provides the review tracking API client with rate
// limiting, caching, retries, and typed error handling.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prodtrack/asset-review-client/pkg/cache"
	"github.com/prodtrack/asset-review-client/pkg/logging"
	"github.com/prodtrack/asset-review-client/pkg/ratelimit"
)

// Prometheus metrics for review API operations.
var (
	reviewRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "review_requests_total",
		Help: "Total review API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	reviewRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "review_request_duration_seconds",
		Help:    "Review API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	reviewErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "review_errors_total",
		Help: "Total review API errors by class",
	}, []string{"class"})
)

// Client is the review tracking API client.
type Client struct {
	httpClient  *http.Client
	redis       *redis.Client
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	config      Config
	logger      zerolog.Logger

	tokenMu sync.RWMutex
	token   string
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the root of the review tracking server, without trailing slash.
	BaseURL string

	// Token is the bearer token for the current session.
	Token string

	// UserAgent identifies the consuming application.
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// Redis enables the response cache and shared rate-limit state when
	// set. A nil client disables both; requests go straight through.
	Redis *redis.Client

	// Timeout per HTTP request.
	Timeout time.Duration

	// OnTokenRefresh is invoked with the refreshed session token whenever
	// a response carries one. The client updates its own token either way.
	OnTokenRefresh func(token string)
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, token, userAgent string) Config {
	return Config{
		BaseURL:   baseURL,
		Token:     token,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// New creates a new review API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := logging.NewLogger("review-client")

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		redis:  cfg.Redis,
		config: cfg,
		logger: logger,
		token:  cfg.Token,
	}

	if cfg.Redis != nil {
		c.rateLimiter = ratelimit.NewTracker(cfg.Redis, logger)
		c.cache = cache.NewManager(cfg.Redis)
	}

	return c, nil
}

// SetToken replaces the session token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	c.token = token
	c.tokenMu.Unlock()
}

func (c *Client) currentToken() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.token
}

// FetchAssetPage fetches one page of the project asset list.
// page is 0-based; the wire protocol is 1-based and the client translates.
func (c *Client) FetchAssetPage(ctx context.Context, project string, page, pageSize int) (*AssetPage, error) {
	if page < 0 {
		return nil, fmt.Errorf("page must be >= 0 (got %d)", page)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("page size must be >= 1 (got %d)", pageSize)
	}

	path := fmt.Sprintf("/api/projects/%s/reviews/assets", url.PathEscape(project))
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(pageSize))
	query.Set("page", strconv.Itoa(page+1))

	var result AssetPage
	if err := c.getJSON(ctx, "assets", path, query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchReviewInfos fetches all review records for one asset relation.
// An asset with no reviews yet yields an empty slice, not an error.
func (c *Client) FetchReviewInfos(ctx context.Context, project, asset, relation string) ([]ReviewInfo, error) {
	path := fmt.Sprintf("/api/projects/%s/assets/%s/relations/%s/reviewInfos",
		url.PathEscape(project), url.PathEscape(asset), url.PathEscape(relation))

	var result reviewInfoListResponse
	if err := c.getJSON(ctx, "review_infos", path, nil, &result); err != nil {
		return nil, err
	}
	return result.Reviews, nil
}

// FetchThumbnail fetches the review thumbnail for one asset relation.
// Returns (nil, nil) when the server answers 204 No Content, the explicit
// "no thumbnail exists" sentinel. Thumbnails are never cached.
func (c *Client) FetchThumbnail(ctx context.Context, project, asset, relation string) (*Thumbnail, error) {
	path := fmt.Sprintf("/api/projects/%s/assets/%s/relations/%s/reviewthumbnail",
		url.PathEscape(project), url.PathEscape(asset), url.PathEscape(relation))

	resp, err := c.get(ctx, "thumbnail", path, nil, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read thumbnail body: %w", err)
	}

	return &Thumbnail{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// getJSON performs a cacheable GET and decodes the JSON response body.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	resp, err := c.get(ctx, endpoint, path, query, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// get performs a GET request with rate limiting, optional caching, and
// retry logic. This is the core request method.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, cacheable bool) (*http.Response, error) {
	startTime := time.Now()
	defer func() {
		reviewRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: rate limit gate
	if c.rateLimiter != nil {
		allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("Rate limit check failed")
			return nil, fmt.Errorf("rate limit check: %w", err)
		}
		if !allowed {
			c.logger.Warn().
				Str("endpoint", endpoint).
				Msg("Request blocked by rate limiter")
			reviewRequestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
			return nil, &APIError{
				StatusCode: http.StatusTooManyRequests,
				ErrorClass: ErrorClassRateLimit,
				Message:    "request blocked: rate limit critical",
			}
		}
	}

	requestURL := c.config.BaseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Step 2: cache lookup and conditional headers
	var cachedEntry *cache.Entry
	var cacheKey cache.Key
	if cacheable && c.cache != nil {
		cacheKey = cache.Key{Endpoint: path, Query: query}

		cachedEntry, err = c.cache.Get(ctx, cacheKey)
		if err != nil && err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}

		if cachedEntry != nil && cache.ShouldMakeConditionalRequest(cachedEntry) {
			cache.AddConditionalHeaders(req, cachedEntry)
			cache.ConditionalRequestsSent.Inc()
			c.logger.Debug().
				Str("endpoint", endpoint).
				Str("etag", cachedEntry.ETag).
				Msg("Making conditional request")
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("path", path).
		Msg("Executing review API request")

	// Step 3: execute with retry
	var resp *http.Response
	retryErr := retryWithBackoff(ctx, func() (ErrorClass, error) {
		var reqErr error
		resp, reqErr = c.httpClient.Do(req)

		if reqErr != nil {
			if ctx.Err() != nil {
				// Cancellation is not a failure and must not be retried
				return "", reqErr
			}
			c.logger.Error().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			reviewErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			reviewRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return ErrorClassNetwork, &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        reqErr,
			}
		}

		if c.rateLimiter != nil {
			if err := c.rateLimiter.UpdateFromHeaders(ctx, resp.Header); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
			}
		}

		// 304 Not Modified is a success; the cache entry is served below
		if resp.StatusCode == http.StatusNotModified {
			return "", nil
		}

		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			reviewRequestsTotal.WithLabelValues(endpoint, "401").Inc()
			reviewErrorsTotal.WithLabelValues(string(ErrorClassClient)).Inc()
			return ErrorClassClient, &AuthorizationError{Endpoint: endpoint}
		}

		if resp.StatusCode >= 400 {
			errClass := classifyStatus(resp.StatusCode)
			reviewErrorsTotal.WithLabelValues(string(errClass)).Inc()
			reviewRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Review API request error")

			apiErr := &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Message:    resp.Status,
			}
			resp.Body.Close()
			return errClass, apiErr
		}

		reviewRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
		return "", nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	// Step 4: serve 304 from cache
	if resp.StatusCode == http.StatusNotModified {
		c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified - using cache")
		reviewRequestsTotal.WithLabelValues(endpoint, "304").Inc()
		cache.NotModifiedResponses.Inc()

		if expiresStr := resp.Header.Get("Expires"); expiresStr != "" && c.cache != nil {
			if newExpires, err := http.ParseTime(expiresStr); err == nil {
				if err := c.cache.UpdateTTL(ctx, cacheKey, newExpires); err != nil {
					c.logger.Warn().Err(err).Msg("Failed to update cache TTL")
				}
			}
		}

		resp.Body.Close()
		if cachedEntry == nil {
			return nil, &APIError{
				StatusCode: http.StatusNotModified,
				ErrorClass: ErrorClassServer,
				Message:    "304 without cached entry",
			}
		}
		return cache.EntryToResponse(cachedEntry), nil
	}

	// Step 5: refreshed session token
	if newToken := resp.Header.Get("X-Refresh-Token"); newToken != "" {
		c.SetToken(newToken)
		if c.config.OnTokenRefresh != nil {
			c.config.OnTokenRefresh(newToken)
		}
	}

	// Step 6: update cache on success
	if cacheable && c.cache != nil && resp.StatusCode == http.StatusOK {
		entry, err := cache.ResponseToEntry(resp)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		} else if entry.TTL() > 0 {
			if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to cache response")
			} else {
				c.logger.Debug().
					Str("endpoint", endpoint).
					Dur("ttl", entry.TTL()).
					Msg("Cached response")
			}
		}
	}

	return resp, nil
}

// classifyStatus categorizes an HTTP status code for retry and observability.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Close releases client resources. The Redis client is owned by the
// caller and is not closed here.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
