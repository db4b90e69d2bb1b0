package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "bin-finder/1.0"
	DefaultTimeout   = 5 * time.Second
	// OSM usage policy allows one request per second.
	DefaultRateLimit = rate.Limit(1.0)
	DefaultRetries   = 2
	DefaultBackoff   = 1 * time.Second
	DefaultLanguage  = "ko"
)

// ErrNoResult is returned when Nominatim has no address for the point.
var ErrNoResult = errors.New("nominatim: no result")

// Client talks to the Nominatim reverse geocoding endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	language   string
	limiter    *rate.Limiter
	retries    int
	backoff    time.Duration
	sleep      func(context.Context, time.Duration) error
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// WithRateLimit sets requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithRetries sets how many times a failed request is repeated.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = max(n, 0) }
}

// WithBackoff sets the base delay. Attempt n waits n*base before retrying.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// NewClient builds a client. email is appended to the User-Agent as the OSM
// policy asks.
func NewClient(baseURL, email string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	ua := DefaultUserAgent
	if email != "" {
		ua = fmt.Sprintf("%s (%s)", DefaultUserAgent, email)
	}

	client := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    baseURL,
		userAgent:  ua,
		language:   DefaultLanguage,
		limiter:    rate.NewLimiter(DefaultRateLimit, 1),
		retries:    DefaultRetries,
		backoff:    DefaultBackoff,
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Reverse resolves a coordinate to its address.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*ReverseResult, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid latitude: %f", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid longitude: %f", lon)
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	if c.language != "" {
		params.Set("accept-language", c.language)
	}

	var result ReverseResult
	if err := c.doWithRetry(ctx, c.baseURL+"/reverse?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("reverse geocoding: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrNoResult, result.Error)
	}
	return &result, nil
}

func (c *Client) doWithRetry(ctx context.Context, requestURL string, result any) error {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.backoff*time.Duration(attempt)); err != nil {
				return err
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		retry, err := c.do(ctx, requestURL, result)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// do performs one request. retry reports whether the failure is transient.
func (c *Client) do(ctx context.Context, requestURL string, result any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("http request: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return true, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return true, fmt.Errorf("rate limited (429)")
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("server error (%d)", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return false, fmt.Errorf("parse json: %w", err)
	}
	return false, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
