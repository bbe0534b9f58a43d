package plex

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cdzombak/plex-meta-migrator/internal/services"
)

const defaultAccountBaseURL = "https://plex.tv"

// ErrTwoFactorRequired signals that plex.tv wants a verification code in
// addition to the password.
var ErrTwoFactorRequired = services.Wrap(services.ErrUnauthorized, "plex.tv", "sign in", "verification code required", nil)

// AccountClient talks to plex.tv on behalf of an account.
type AccountClient struct {
	baseURL  string
	clientID string
	client   HTTPDoer
}

// AccountClientOption customises AccountClient construction.
type AccountClientOption func(*AccountClient)

// WithAccountBaseURL overrides the plex.tv endpoint (used in tests).
func WithAccountBaseURL(baseURL string) AccountClientOption {
	return func(c *AccountClient) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithAccountHTTPDoer overrides the HTTP backend (used in tests).
func WithAccountHTTPDoer(client HTTPDoer) AccountClientOption {
	return func(c *AccountClient) {
		c.client = client
	}
}

// NewAccountClient builds a plex.tv client sending the given client
// identifier.
func NewAccountClient(clientID string, opts ...AccountClientOption) *AccountClient {
	c := &AccountClient{
		baseURL:  defaultAccountBaseURL,
		clientID: strings.TrimSpace(clientID),
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SignIn authenticates with username and password, returning the account auth
// token. code carries the 2FA verification code and may be empty; when the
// account requires one, ErrTwoFactorRequired is returned so the caller can
// prompt and retry.
func (c *AccountClient) SignIn(ctx context.Context, username, password, code string) (string, error) {
	form := url.Values{}
	form.Set("login", username)
	form.Set("password", password)
	if strings.TrimSpace(code) != "" {
		form.Set("verificationCode", strings.TrimSpace(code))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/users/signin", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build sign-in request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	applyStandardHeaders(req, c.clientID)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("plex.tv sign-in failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if twoFactorHinted(string(body)) {
			return "", ErrTwoFactorRequired
		}
		return "", services.Wrap(services.ErrUnauthorized, "plex.tv", "sign in", strings.TrimSpace(string(body)), nil)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("plex.tv sign-in returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AuthToken string `json:"authToken"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode sign-in response: %w", err)
	}
	if strings.TrimSpace(payload.AuthToken) == "" {
		return "", services.Wrap(services.ErrExternalService, "plex.tv", "sign in", "missing authToken in response", nil)
	}
	return payload.AuthToken, nil
}

// twoFactorHinted matches the responses plex.tv sends when a verification
// code is needed (error code 1029 or a prose hint).
func twoFactorHinted(body string) bool {
	lowered := strings.ToLower(body)
	return strings.Contains(lowered, "verification code") || strings.Contains(lowered, "1029")
}

// CheckToken verifies that an auth token is still accepted by plex.tv.
func (c *AccountClient) CheckToken(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2/user", nil)
	if err != nil {
		return fmt.Errorf("build token check request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", strings.TrimSpace(token))
	applyStandardHeaders(req, c.clientID)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("plex.tv token check failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		return services.Wrap(services.ErrUnauthorized, "plex.tv", "token check", "cached token rejected", nil)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("plex.tv token check returned %d", resp.StatusCode)
	}
	return nil
}

// Servers lists the account resources that provide a server.
func (c *AccountClient) Servers(ctx context.Context, token string) ([]Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2/resources?includeHttps=1", nil)
	if err != nil {
		return nil, fmt.Errorf("build resources request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("X-Plex-Token", strings.TrimSpace(token))
	applyStandardHeaders(req, c.clientID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch plex resources: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, services.Wrap(services.ErrUnauthorized, "plex.tv", "list resources", "token rejected", nil)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("plex resources returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var list resourceList
	if err := xml.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode plex resources: %w", err)
	}

	servers := make([]Resource, 0, len(list.Resources))
	for _, res := range list.Resources {
		if strings.Contains(res.Provides, "server") {
			servers = append(servers, res)
		}
	}
	return servers, nil
}

// Connect builds a ServerClient for the resource using its best connection
// and access token.
func (c *AccountClient) Connect(resource Resource) (*ServerClient, error) {
	endpoint := selectBestConnection(resource.Connections)
	if endpoint == "" {
		return nil, services.Wrap(services.ErrNotFound, "plex.tv", "connect", fmt.Sprintf("no usable connection for server %q", resource.Name), nil)
	}
	return NewServerClient(endpoint, resource.AccessToken, WithClientIdentifier(c.clientID)), nil
}
