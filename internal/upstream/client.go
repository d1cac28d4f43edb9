package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	std_errors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"iot-connector/internal/circuitbreaker"
	"iot-connector/internal/common/errors"
	"iot-connector/internal/common/httpclient"
	"iot-connector/internal/common/logging"
	"iot-connector/internal/common/utils"
	"iot-connector/internal/oauth2"
)

// locationsThing is the platform Thing exposing the location services
const locationsThing = "Engie.Locations"

// Platform service names
const (
	serviceListLocations    = "GetAllLocations"
	serviceGetLocation      = "GetLocationById"
	serviceMeasureHistory   = "GetLocationPropertyHistory"
	serviceListActivations  = "GetAllActivations"
	serviceCreateActivation = "SendActivations"
)

// transientRetryDelay is the fixed backoff before the single transient retry
const transientRetryDelay = 200 * time.Millisecond

// HistoryParams bound a measure-history query
type HistoryParams struct {
	// FromSeconds is how far back from now the series starts
	FromSeconds int
	// To is an optional ISO-8601 end timestamp
	To string
	// FrequencySeconds is the sampling interval
	FrequencySeconds int
}

// TokenProvider supplies and invalidates bearer tokens per environment.
// Implemented by oauth2.Cache.
type TokenProvider interface {
	GetToken(ctx context.Context, environment string) (*oauth2.Token, error)
	Invalidate(environment string)
}

// Client calls the upstream platform. It borrows tokens from the provider
// per call and owns no token state itself.
type Client struct {
	baseURL     string
	appKey      string
	environment string
	tokens      TokenProvider
	httpClient  *http.Client
	breaker     *circuitbreaker.GoBreakerAdapter
	logger      logging.Logger
	retryDelay  time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// WithRetryDelay overrides the transient retry backoff, for tests
func WithRetryDelay(d time.Duration) Option {
	return func(cl *Client) {
		cl.retryDelay = d
	}
}

// NewClient creates an upstream platform client
func NewClient(baseURL, appKey, environment string, tokens TokenProvider, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		appKey:      appKey,
		environment: environment,
		tokens:      tokens,
		httpClient:  httpclient.New(),
		logger:      logging.GetGlobalLogger(),
		retryDelay:  transientRetryDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = circuitbreaker.NewGoBreaker("upstream-platform", circuitbreaker.UpstreamConfig, c.logger)

	return c
}

// ListLocations fetches the full location hierarchy
func (c *Client) ListLocations(ctx context.Context) (json.RawMessage, error) {
	return c.callService(ctx, serviceListLocations, nil)
}

// GetLocation fetches the real-time view of one location
func (c *Client) GetLocation(ctx context.Context, locationID string) (json.RawMessage, error) {
	return c.callService(ctx, serviceGetLocation, map[string]interface{}{
		"locationId": locationID,
	})
}

// GetMeasureHistory fetches the measure series for one property of a location
func (c *Client) GetMeasureHistory(ctx context.Context, locationID, property string, params HistoryParams) (json.RawMessage, error) {
	body := map[string]interface{}{
		"locationId": locationID,
		"property":   property,
	}
	if params.FromSeconds > 0 {
		body["from"] = params.FromSeconds
	}
	if params.To != "" {
		body["to"] = params.To
	}
	if params.FrequencySeconds > 0 {
		body["frequency"] = params.FrequencySeconds
	}
	return c.callService(ctx, serviceMeasureHistory, body)
}

// ListActivations fetches all activations known to the platform
func (c *Client) ListActivations(ctx context.Context) (json.RawMessage, error) {
	return c.callService(ctx, serviceListActivations, nil)
}

// CreateActivation submits an activation payload to the platform
func (c *Client) CreateActivation(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	var params map[string]interface{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &params); err != nil {
			return nil, errors.ValidationError("activation payload must be a JSON object")
		}
	}
	return c.callService(ctx, serviceCreateActivation, params)
}

// SetProperty writes one allow-listed property of a Thing. The allow-list is
// enforced before any network call.
func (c *Client) SetProperty(ctx context.Context, thingID, property string, value interface{}) (json.RawMessage, error) {
	if !IsWritable(property) {
		return nil, errors.ValidationError(fmt.Sprintf(
			"property %q is not allowed; allowed properties: %s",
			property, strings.Join(WritableProperties(), ", "),
		))
	}

	body, err := json.Marshal(map[string]interface{}{"value": value})
	if err != nil {
		return nil, errors.ValidationError("property value is not serializable")
	}

	url := fmt.Sprintf("%s/Things/%s/Properties/%s", c.baseURL, thingID, property)
	return c.do(ctx, http.MethodPut, url, body)
}

// callService invokes a platform service. The platform's convention is POST
// for reads, with parameters in the JSON body.
func (c *Client) callService(ctx context.Context, service string, params map[string]interface{}) (json.RawMessage, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, errors.InternalError("failed to encode service parameters", err)
	}

	url := fmt.Sprintf("%s/Things/%s/Services/%s", c.baseURL, locationsThing, service)
	return c.do(ctx, http.MethodPost, url, body)
}

// do runs an authenticated call with the transient-retry policy: only
// upstream_unavailable is retried, at most once, after a fixed backoff.
func (c *Client) do(ctx context.Context, method, url string, body []byte) (json.RawMessage, error) {
	var result json.RawMessage

	err := utils.Retry(ctx, utils.RetryConfig{
		MaxAttempts: 2,
		Delay:       c.retryDelay,
		RetryableErrors: func(err error) bool {
			return errors.IsType(err, errors.ErrTypeUpstreamUnavailable)
		},
	}, func() error {
		var callErr error
		result, callErr = c.doAuthenticated(ctx, method, url, body)
		return callErr
	})

	return result, err
}

// doAuthenticated is the explicit two-step 401 state machine: attempt with
// the cached token; on 401 invalidate, refetch, attempt once more; a second
// 401 is an authentication failure.
func (c *Client) doAuthenticated(ctx context.Context, method, url string, body []byte) (json.RawMessage, error) {
	token, err := c.tokens.GetToken(ctx, c.environment)
	if err != nil {
		return nil, err
	}

	status, respBody, err := c.attempt(ctx, method, url, body, token.Value)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		c.logger.Warn("Upstream returned 401, refreshing token",
			logging.Field{Key: "url", Value: url},
		)
		c.tokens.Invalidate(c.environment)

		token, err = c.tokens.GetToken(ctx, c.environment)
		if err != nil {
			return nil, err
		}

		status, respBody, err = c.attempt(ctx, method, url, body, token.Value)
		if err != nil {
			return nil, err
		}

		if status == http.StatusUnauthorized {
			return nil, errors.AuthError("upstream rejected a freshly issued token").
				WithContext("http_status", status)
		}
	}

	return c.classify(status, respBody, url)
}

// attempt performs one HTTP exchange. The returned error is already typed
// and covers only transport-level failures; HTTP statuses are returned for
// the caller to interpret.
func (c *Client) attempt(ctx context.Context, method, url string, body []byte, bearer string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, errors.InternalError("failed to create upstream request", err)
	}

	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("appKey", c.appKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()

	var resp *http.Response
	err = c.breaker.Execute(ctx, func() error {
		var httpErr error
		resp, httpErr = c.httpClient.Do(req)
		return httpErr
	})
	if err != nil {
		if errors.IsType(err, errors.ErrTypeUpstreamUnavailable) {
			// Breaker open; already classified as retryable
			return 0, nil, err
		}
		if std_errors.Is(err, context.DeadlineExceeded) || std_errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, nil, errors.TimeoutError("upstream call")
		}
		return 0, nil, errors.UpstreamUnavailableError("upstream platform unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.UpstreamUnavailableError("failed to read upstream response", err)
	}

	c.logger.Debug("Upstream call completed",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "url", Value: url},
		logging.Field{Key: "status", Value: resp.StatusCode},
		logging.Field{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
	)

	return resp.StatusCode, respBody, nil
}

// classify maps an HTTP status plus body to the typed taxonomy. 401 never
// reaches here; doAuthenticated consumes it.
func (c *Client) classify(status int, body []byte, url string) (json.RawMessage, error) {
	switch {
	case status >= 200 && status < 300:
		if len(body) == 0 {
			// Property writes may legitimately return an empty 200
			return json.RawMessage(`{}`), nil
		}
		if !json.Valid(body) {
			return nil, errors.ProtocolError("upstream returned a non-JSON body on success", nil).
				WithContext("url", url)
		}
		return json.RawMessage(body), nil

	case status == http.StatusNotFound:
		return nil, errors.NotFoundError("upstream resource")

	case status >= 400 && status < 500:
		return nil, errors.BadRequestError(
			fmt.Sprintf("upstream rejected the call with status %d", status),
			string(body),
		)

	default:
		return nil, errors.UpstreamUnavailableError(
			fmt.Sprintf("upstream returned status %d", status), nil,
		)
	}
}
