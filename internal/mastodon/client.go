package mastodon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"mammut/pkg/logging"
)

const (
	// DefaultHTTPTimeout is the timeout for the default HTTP client.
	DefaultHTTPTimeout = 30 * time.Second

	// maxResponseBytes caps response body reads. API responses are small
	// JSON documents.
	maxResponseBytes = 1024 * 1024
)

// Endpoint paths relative to the instance base URL.
const (
	AppsPath              = "/api/v1/apps"
	TokenPath             = "/oauth/token"
	AuthorizePath         = "/oauth/authorize"
	VerifyCredentialsPath = "/api/v1/accounts/verify_credentials"
)

// Client talks to Mastodon instances.
type Client struct {
	httpClient *http.Client
}

// NewClient creates an API client with the given http.Client.
// If httpClient is nil, a client with a 30-second timeout is used.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: DefaultHTTPTimeout,
		}
	}

	return &Client{httpClient: httpClient}
}

// Endpoint returns OAuth endpoints of an instance.
func Endpoint(instance string) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   endpointURL(instance, AuthorizePath),
		TokenURL:  endpointURL(instance, TokenPath),
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

func endpointURL(instance, path string) string {
	return strings.TrimRight(instance, "/") + path
}

// RegisterApp registers a new OAuth application on the instance.
func (c *Client) RegisterApp(ctx context.Context, instance string, req CreateAppRequest) (*AppRegistration, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshalling request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL(instance, AppsPath), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	logging.Debug("Mastodon", "POST %s %s", httpReq.URL, payload)

	var app AppRegistration
	if err := c.do(httpReq, AppsPath, &app); err != nil {
		return nil, err
	}

	return &app, nil
}

// ExchangeCode trades an authorization code for an access token.
// The code must have been issued for app's redirect URI.
func (c *Client) ExchangeCode(ctx context.Context, instance string, app *AppRegistration, code string) (*AccessToken, error) {
	data := url.Values{
		"client_id":     {app.ClientID},
		"client_secret": {app.ClientSecret},
		"redirect_uri":  {app.RedirectURI},
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"scope":         {app.Scope()},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL(instance, TokenPath), strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	// Never log the form itself; it carries the client secret and the code.
	logging.Debug("Mastodon", "POST %s client_id=%s", req.URL, app.ClientID)

	var token AccessToken
	if err := c.do(req, TokenPath, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, &APIError{Endpoint: TokenPath, StatusCode: http.StatusOK, Err: fmt.Errorf("response has no access_token")}
	}

	return &token, nil
}

// VerifyCredentials returns the account the token belongs to.
func (c *Client) VerifyCredentials(ctx context.Context, instance string, token *AccessToken) (*Account, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	authClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token.OAuth2Token()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL(instance, VerifyCredentialsPath), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	logging.Debug("Mastodon", "GET %s", req.URL)

	var account Account
	if err := doWith(authClient, req, VerifyCredentialsPath, &account); err != nil {
		return nil, err
	}

	return &account, nil
}

func (c *Client) do(req *http.Request, endpoint string, result interface{}) error {
	return doWith(c.httpClient, req, endpoint, result)
}

// doWith sends req and decodes a 2xx JSON response into result. Failed
// responses are logged verbatim at debug level before being returned.
func doWith(httpClient *http.Client, req *http.Request, endpoint string, result interface{}) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return &APIError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Debug("Mastodon", "Response %d from %s: %s", resp.StatusCode, endpoint, body)
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: body}
	}

	if err := json.Unmarshal(body, result); err != nil {
		logging.Debug("Mastodon", "Response %d from %s: %s", resp.StatusCode, endpoint, body)
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: body, Err: err}
	}

	return nil
}
