// Package upstream fetches players, teams and fixtures from the FPL API.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/okian/fplpredict/internal/domain/model"
	"github.com/okian/fplpredict/pkg/logger"
	"github.com/okian/fplpredict/pkg/metrics"
)

// Defaults.
const (
	DefaultBaseURL   = "https://fantasy.premierleague.com/api"
	DefaultUserAgent = "fplpredict/1.0"
	DefaultTimeout   = 15 * time.Second

	defaultBreakerFailures = 3
	defaultBreakerOpenFor  = 30 * time.Second
	maxBodyBytes           = 16 << 20
)

// Endpoint names, also used as metric labels.
const (
	EndpointBootstrap = "bootstrap-static"
	EndpointFixtures  = "fixtures"
)

// Client reads the public FPL API. Each Fetch issues one request per
// endpoint and never retries.
type Client struct {
	http            *http.Client
	baseURL         string
	userAgent       string
	timeout         time.Duration
	breakerFailures uint32
	breakerOpenFor  time.Duration
	breaker         *gobreaker.CircuitBreaker
	logger          logger.Logger
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:         DefaultBaseURL,
		userAgent:       DefaultUserAgent,
		timeout:         DefaultTimeout,
		breakerFailures: defaultBreakerFailures,
		breakerOpenFor:  defaultBreakerOpenFor,
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	// Copy so the timeout does not leak into a client the caller shares.
	hc := http.Client{}
	if c.http != nil {
		hc = *c.http
	}
	hc.Timeout = c.timeout
	c.http = &hc

	threshold := c.breakerFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "fpl-upstream",
		Timeout: c.breakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(int(to))
			c.logger.Warn(context.Background(), "circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	metrics.UpdateBreakerState(int(gobreaker.StateClosed))
	return c
}

// BreakerState returns the current breaker state name.
func (c *Client) BreakerState() string { return c.breaker.State().String() }

// Fetch returns the full dataset. Any failure aborts the whole fetch and is
// returned as a *FetchError.
func (c *Client) Fetch(ctx context.Context) (model.Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var boot bootstrapPayload
	if err := c.get(ctx, EndpointBootstrap, &boot); err != nil {
		return model.Dataset{}, err
	}
	var fixtures []fixturePayload
	if err := c.get(ctx, EndpointFixtures, &fixtures); err != nil {
		return model.Dataset{}, err
	}

	ds := model.Dataset{
		Players:      make([]model.Player, 0, len(boot.Elements)),
		Teams:        make([]model.Team, 0, len(boot.Teams)),
		Fixtures:     make([]model.Fixture, 0, len(fixtures)),
		CurrentRound: currentRound(boot.Events),
	}
	var coerced coercions
	for _, e := range boot.Elements {
		ds.Players = append(ds.Players, e.toPlayer(&coerced))
	}
	for _, t := range boot.Teams {
		ds.Teams = append(ds.Teams, model.Team{ID: t.ID, Name: t.Name, ShortName: t.ShortName})
	}
	for _, f := range fixtures {
		ds.Fixtures = append(ds.Fixtures, f.toFixture())
	}

	if coerced.total() > 0 {
		metrics.RecordCoercion("form", coerced.form)
		metrics.RecordCoercion("ownership", coerced.ownership)
		metrics.RecordCoercion("points_per_game", coerced.pointsPerGame)
		c.logger.Warn(ctx, "non-numeric player fields replaced by defaults",
			logger.Int("form", coerced.form),
			logger.Int("ownership", coerced.ownership),
			logger.Int("points_per_game", coerced.pointsPerGame),
		)
	}
	return ds, nil
}

// get performs one breaker-guarded GET and decodes the body into target.
func (c *Client) get(ctx context.Context, endpoint string, target any) error {
	start := time.Now()
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, endpoint, target)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = ErrCircuitOpen
	}
	metrics.RecordFetch(endpoint, outcome(err), float64(time.Since(start).Milliseconds()))
	if err != nil {
		c.logger.Debug(ctx, "upstream request failed",
			logger.String("endpoint", endpoint),
			logger.Error(err),
		)
		return &FetchError{Endpoint: endpoint, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint string, target any) error {
	url := fmt.Sprintf("%s/%s/", c.baseURL, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrRequest, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
