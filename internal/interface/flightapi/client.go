package flightapi

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/internal/domain/repository"
	"flightsched-service/pkg/clock"
	"flightsched-service/pkg/logger"
)

const (
	defaultBaseURL = "https://aerodatabox.p.rapidapi.com"
	defaultHost    = "aerodatabox.p.rapidapi.com"

	// MaxWindowMinutes is the longest window the provider accepts in one call
	MaxWindowMinutes = 720

	windowLayout = "2006-01-02T15:04"
	maxErrorBody = 2048
)

// UpstreamError is returned for non-2xx responses and transport failures.
// StatusCode is 0 when no response was received.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("flight api request failed: %v", e.Err)
	}
	return fmt.Sprintf("flight api returned status %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Client calls the airport departures/arrivals endpoint of the flight-data API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiHost    string
	clock      clock.Clock
	zone       func(iata string) *time.Location
	logger     logger.Logger
}

type ClientOption func(c *Client)

func WithHttpClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithAPIHost(host string) ClientOption {
	return func(c *Client) {
		c.apiHost = host
	}
}

func WithClock(clk clock.Clock) ClientOption {
	return func(c *Client) {
		c.clock = clk
	}
}

// WithZoneResolver sets how the local time of an airport is determined.
// Window bounds are sent as airport wall-clock times.
func WithZoneResolver(zone func(iata string) *time.Location) ClientOption {
	return func(c *Client) {
		c.zone = zone
	}
}

// NewClient creates a flight-data API client
func NewClient(apiKey string, logger logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		apiKey: apiKey,
		logger: logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.httpClient = cmp.Or(c.httpClient, &http.Client{Timeout: 30 * time.Second})
	c.baseURL = cmp.Or(c.baseURL, defaultBaseURL)
	c.apiHost = cmp.Or(c.apiHost, defaultHost)
	if c.clock == nil {
		c.clock = clock.Real()
	}
	if c.zone == nil {
		c.zone = func(string) *time.Location { return time.UTC }
	}

	return c
}

// WindowURL builds the request URL for [from, to] expressed in airport local time
func (c *Client) WindowURL(iata string, from, to time.Time) string {
	q := url.Values{}
	q.Set("withLeg", "true")
	q.Set("direction", "Both")
	q.Set("withCancelled", "true")
	q.Set("withCodeshared", "true")
	q.Set("withCargo", "true")
	q.Set("withPrivate", "true")
	q.Set("withLocation", "false")

	return fmt.Sprintf("%s/flights/airports/iata/%s/%s/%s?%s",
		c.baseURL,
		url.PathEscape(strings.ToUpper(iata)),
		from.Format(windowLayout),
		to.Format(windowLayout),
		q.Encode(),
	)
}

// FetchWindow fetches departures and arrivals for the window starting
// offsetMinutes from now and lasting durationMinutes (capped at 720).
func (c *Client) FetchWindow(ctx context.Context, iata string, offsetMinutes, durationMinutes int) (*entity.RawWindow, error) {
	durationMinutes = min(durationMinutes, MaxWindowMinutes)
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("invalid window duration %d", durationMinutes)
	}

	now := c.clock.Now().In(c.zone(iata)).Truncate(time.Minute)
	from := now.Add(time.Duration(offsetMinutes) * time.Minute)
	to := from.Add(time.Duration(durationMinutes) * time.Minute)

	return c.fetch(ctx, c.WindowURL(iata, from, to))
}

func (c *Client) fetch(ctx context.Context, reqURL string) (*entity.RawWindow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("Flight API response",
		"url", reqURL,
		"status", resp.StatusCode,
		"latency", time.Since(start))

	// the provider answers 204 for windows without movements
	if resp.StatusCode == http.StatusNoContent {
		return &entity.RawWindow{}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var window entity.RawWindow
	if err := json.NewDecoder(resp.Body).Decode(&window); err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return &window, nil
}

var _ repository.FlightDataProvider = (*Client)(nil)
