package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/singleflight"

	"github.com/dmleblanc/gitrelay/pkg/domain/interfaces"
	"github.com/dmleblanc/gitrelay/pkg/domain/model"
	"github.com/dmleblanc/gitrelay/pkg/domain/types"
)

const (
	defaultAPIBase = "https://api.github.com"
	userAgent      = "gitrelay"

	// GitHub rejects app JWTs older than 10 minutes; the backdated
	// issued-at absorbs clock skew against the verifier.
	appTokenLifetime = 10 * time.Minute
	appTokenBackdate = 60 * time.Second

	// Cached installation tokens are discarded this long before their
	// upstream expiry so an in-flight request never holds a dead token.
	tokenExpiryMargin = 5 * time.Minute
)

// Client talks to the GitHub API as a GitHub App. It implements both
// interfaces.TokenIssuer and interfaces.GitHubClient.
type Client struct {
	secrets    interfaces.SecretStore
	httpClient *http.Client
	apiBase    string
	now        func() time.Time

	mu     sync.Mutex
	cached *model.InstallationToken
	group  singleflight.Group
}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithAPIBase overrides the GitHub API base URL
func WithAPIBase(base string) Option {
	return func(c *Client) {
		c.apiBase = base
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a GitHub App client backed by the given secret store
func New(secrets interfaces.SecretStore, opts ...Option) *Client {
	c := &Client{
		secrets:    secrets,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiBase:    defaultAPIBase,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IssueInstallationToken returns an installation access token, reusing
// a cached one until shortly before expiry. Concurrent callers share a
// single exchange via singleflight.
func (c *Client) IssueInstallationToken(ctx context.Context) (*model.InstallationToken, error) {
	if token := c.cachedToken(); token != nil {
		return token, nil
	}

	v, err, _ := c.group.Do("installation-token", func() (any, error) {
		if token := c.cachedToken(); token != nil {
			return token, nil
		}

		token, err := c.exchangeToken(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cached = token
		c.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.InstallationToken), nil
}

func (c *Client) cachedToken() *model.InstallationToken {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached != nil && !c.cached.Expired(c.now(), tokenExpiryMargin) {
		return c.cached
	}
	return nil
}

// exchangeToken signs an app JWT and trades it for an installation
// access token. No retry: retry policy belongs to the caller.
func (c *Client) exchangeToken(ctx context.Context) (*model.InstallationToken, error) {
	creds, err := c.secrets.GetCredentials(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load GitHub App credentials", goerr.T(types.ErrTagAuthFailed))
	}

	appJWT, err := c.signAppJWT(creds)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sign app JWT", goerr.T(types.ErrTagAuthFailed))
	}

	url := fmt.Sprintf("%s/app/installations/%s/access_tokens", c.apiBase, creds.InstallationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create token exchange request")
	}
	req.Header.Set("Authorization", "Bearer "+appJWT)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "token exchange request failed", goerr.T(types.ErrTagAuthFailed))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read token exchange response", goerr.T(types.ErrTagAuthFailed))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.New("token exchange returned non-2xx status",
			goerr.T(types.ErrTagAuthFailed),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)),
		)
	}

	var token model.InstallationToken
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, goerr.Wrap(err, "failed to parse installation token response", goerr.T(types.ErrTagAuthFailed))
	}

	return &token, nil
}

func (c *Client) signAppJWT(creds *model.Credentials) (string, error) {
	key, err := jwk.ParseKey([]byte(creds.PrivateKey), jwk.WithPEM(true))
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse app private key")
	}

	now := c.now()
	token, err := jwt.NewBuilder().
		Issuer(creds.AppID).
		IssuedAt(now.Add(-appTokenBackdate)).
		Expiration(now.Add(appTokenLifetime)).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build app JWT claims")
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256, key))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign app JWT")
	}

	return string(signed), nil
}

const contributionsQuery = `
query($username: String!) {
    user(login: $username) {
        contributionsCollection {
            contributionCalendar {
                totalContributions
                weeks {
                    contributionDays {
                        date
                        contributionCount
                        color
                    }
                }
            }
        }
    }
}`

// QueryContributions fetches the contribution calendar for a user via
// the GraphQL API and returns the raw response body.
func (c *Client) QueryContributions(ctx context.Context, token, username string) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     contributionsQuery,
		"variables": map[string]string{"username": username},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal GraphQL query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/graphql", bytes.NewReader(payload))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GraphQL request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "GraphQL request failed", goerr.V("username", username))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read GraphQL response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.New("GraphQL query returned non-2xx status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)),
			goerr.V("username", username),
		)
	}

	return body, nil
}
