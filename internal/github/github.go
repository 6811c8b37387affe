// Package github queries the GitHub REST API for repository and user
// metadata, and probes raw.githubusercontent.com for license and notice
// files.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/git-pkgs/notices/client"
	"github.com/git-pkgs/notices/internal/fetch"
)

const (
	DefaultAPIURL = "https://api.github.com"
	DefaultRawURL = "https://raw.githubusercontent.com"

	userAgent    = "notices/1.0"
	acceptHeader = "application/vnd.github.v3+json"
)

// RESTError describes an error response from the GitHub REST API.
type RESTError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *RESTError) Error() string {
	return fmt.Sprintf("while calling %s %s: HTTP %d %s", e.Method, e.Path, e.Status, e.Message)
}

// Repo is the subset of repository metadata the resolvers need.
type Repo struct {
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	DefaultBranch string   `json:"default_branch"`
	Fork          bool     `json:"fork"`
	License       *License `json:"license"`
	Owner         User     `json:"owner"`
	Source        *Repo    `json:"source"`
}

// License is the license block GitHub attaches to repository metadata.
// Key is "other" when GitHub could not recognize the license.
type License struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	SPDXID string `json:"spdx_id"`
	URL    string `json:"url"`
}

// User is a GitHub user or organization.
type User struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// Rate is the core REST rate limit status for the current credentials.
type Rate struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

// Client talks to the GitHub REST API and raw file host. A token avoids the
// strict rate limiting on anonymous requests; no write permissions are
// needed.
type Client struct {
	apiURL  string
	rawURL  string
	token   string
	http    *client.Client
	fetcher fetch.TextFetcher
}

// Option configures a Client.
type Option func(*Client)

// WithAPIURL overrides the REST API base URL.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		c.apiURL = strings.TrimSuffix(u, "/")
	}
}

// WithRawURL overrides the raw file host base URL.
func WithRawURL(u string) Option {
	return func(c *Client) {
		c.rawURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient sets the client used for REST API requests. The Accept and
// Authorization headers are still applied to it.
func WithHTTPClient(hc *client.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithFetcher sets the fetcher used for raw file requests.
func WithFetcher(f fetch.TextFetcher) Option {
	return func(c *Client) {
		c.fetcher = f
	}
}

// New creates a GitHub client. An empty token means anonymous access.
func New(token string, opts ...Option) *Client {
	c := &Client{
		apiURL: DefaultAPIURL,
		rawURL: DefaultRawURL,
		token:  token,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = client.NewClient().WithUserAgent(userAgent)
	}
	c.http.WithHeader("Accept", acceptHeader)
	if token != "" {
		c.http.WithHeader("Authorization", "token "+token)
	}

	if c.fetcher == nil {
		fopts := []fetch.Option{fetch.WithUserAgent(userAgent)}
		if token != "" {
			raw := c.rawURL
			fopts = append(fopts, fetch.WithAuthFunc(func(url string) (string, string) {
				if strings.HasPrefix(url, raw+"/") {
					return "Authorization", "token " + token
				}
				return "", ""
			}))
		}
		c.fetcher = fetch.NewCircuitBreakerFetcher(fetch.NewFetcher(fopts...))
	}

	return c
}

// Repo fetches repository metadata for account/repo.
func (c *Client) Repo(ctx context.Context, account, repo string) (*Repo, error) {
	var out Repo
	if err := c.get(ctx, fmt.Sprintf("repos/%s/%s", account, repo), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// User fetches profile metadata for a user or organization.
func (c *Client) User(ctx context.Context, login string) (*User, error) {
	var out User
	if err := c.get(ctx, "users/"+login, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserName returns the real name of a GitHub user or organization. Accounts
// without a usable name fall back to a label built from the login.
func (c *Client) UserName(ctx context.Context, login string) (string, error) {
	u, err := c.User(ctx, login)
	if err != nil {
		return "", err
	}
	if u.Name != "" && u.Name != login {
		return u.Name, nil
	}
	return fmt.Sprintf("GitHub user %q", login), nil
}

// OwnerName returns the real name of the owner of a repo. If the repo is a
// fork, the upstream repo and its owner are mentioned too.
func (c *Client) OwnerName(ctx context.Context, account, repo string) (string, error) {
	r, err := c.Repo(ctx, account, repo)
	if err != nil {
		return "", err
	}
	owner, err := c.UserName(ctx, r.Owner.Login)
	if err != nil {
		return "", err
	}
	if r.Fork && r.Source != nil {
		upstream, err := c.UserName(ctx, r.Source.Owner.Login)
		if err != nil {
			return "", err
		}
		owner += fmt.Sprintf(", modified (forked) from original GitHub repo '%s' owned by %s",
			r.Source.FullName, upstream)
	}
	return owner, nil
}

// RateLimit reports the core REST rate limit status.
func (c *Client) RateLimit(ctx context.Context) (*Rate, error) {
	var out struct {
		Resources struct {
			Core Rate `json:"core"`
		} `json:"resources"`
	}
	if err := c.get(ctx, "rate_limit", &out); err != nil {
		return nil, err
	}
	return &out.Resources.Core, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	err := c.http.GetJSON(ctx, c.apiURL+"/"+path, v)
	if err == nil {
		return nil
	}
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		return &RESTError{
			Method:  http.MethodGet,
			Path:    path,
			Status:  httpErr.StatusCode,
			Message: apiMessage(httpErr.Body),
		}
	}
	return err
}

// apiMessage extracts the "message" field GitHub includes in error bodies.
func apiMessage(body string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return body
}
