package oauth2

import (
	"context"
	"encoding/json"
	std_errors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"iot-connector/internal/circuitbreaker"
	"iot-connector/internal/common/errors"
	"iot-connector/internal/common/httpclient"
	"iot-connector/internal/common/logging"
)

// Token endpoints are fixed per environment; they are not deployment
// configuration.
const (
	devTokenURL  = "https://apis-int1.svc.engie-solutions.fr/oauth2/b2b/v1/token"
	prodTokenURL = "https://apis.svc.engie-solutions.fr/oauth2/b2b/v1/token"

	// tokenScope is the only scope the platform accepts for B2B clients
	tokenScope = "apis"
)

// TokenResponse maps the token endpoint's JSON response (RFC 6749 §5.1)
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Client performs the OAuth2 client-credentials exchange. It holds no token
// state; Cache owns the token lifecycle.
type Client struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	breaker      *circuitbreaker.GoBreakerAdapter
	logger       logging.Logger

	// tokenURL overrides the fixed per-environment endpoint, for tests
	tokenURL string
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTokenURL overrides the environment token endpoint
func WithTokenURL(u string) ClientOption {
	return func(cl *Client) {
		cl.tokenURL = u
	}
}

// WithLogger sets the logger
func WithLogger(l logging.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient creates an auth client for the given credentials
func NewClient(clientID, clientSecret string, opts ...ClientOption) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpclient.NewWithTimeout(10 * time.Second),
		logger:       logging.GetGlobalLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = circuitbreaker.NewGoBreaker("oauth2-token", circuitbreaker.OAuthConfig, c.logger)

	return c
}

// TokenEndpoint returns the fixed token URL for an environment
func TokenEndpoint(environment string) string {
	if environment == "prod" {
		return prodTokenURL
	}
	return devTokenURL
}

// FetchToken exchanges the client credentials for a bearer token. The
// returned error never contains the credentials; HTTP status, when known, is
// attached as error context. Retrying is the caller's concern.
func (c *Client) FetchToken(ctx context.Context, environment string) (*TokenResponse, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, errors.AuthError("missing OAuth2 client credentials")
	}

	endpoint := c.tokenURL
	if endpoint == "" {
		endpoint = TokenEndpoint(environment)
	}

	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("grant_type", "client_credentials")
	data.Set("scope", tokenScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errors.InternalError("failed to create token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Requesting bearer token",
		logging.Field{Key: "environment", Value: environment},
	)

	var resp *http.Response
	err = c.breaker.Execute(ctx, func() error {
		var httpErr error
		resp, httpErr = c.httpClient.Do(req)
		return httpErr
	})
	if err != nil {
		if std_errors.Is(err, context.DeadlineExceeded) || std_errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.TimeoutError("token exchange")
		}
		return nil, errors.AuthError("token request failed").WithContext("cause", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Body is discarded: the error response may echo request parameters
		return nil, errors.AuthError(fmt.Sprintf("token endpoint returned status %d", resp.StatusCode)).
			WithContext("http_status", resp.StatusCode)
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, errors.AuthError("malformed token response").WithContext("cause", err.Error())
	}

	if tokenResp.AccessToken == "" {
		return nil, errors.AuthError("malformed token response: missing access_token")
	}
	if tokenResp.TokenType != "Bearer" {
		return nil, errors.AuthError("malformed token response: token_type must be Bearer")
	}
	if tokenResp.ExpiresIn <= 0 {
		return nil, errors.AuthError("malformed token response: missing expires_in")
	}

	c.logger.Info("Obtained bearer token",
		logging.Field{Key: "environment", Value: environment},
		logging.Field{Key: "expires_in", Value: tokenResp.ExpiresIn},
	)

	return &tokenResp, nil
}
