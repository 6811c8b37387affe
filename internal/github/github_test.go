package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/git-pkgs/notices/client"
	"github.com/git-pkgs/notices/internal/fetch"
)

func newTestClient(t *testing.T, apiURL, rawURL string) *Client {
	t.Helper()
	return New("testtoken",
		WithAPIURL(apiURL),
		WithRawURL(rawURL),
		WithHTTPClient(client.NewClient(client.WithMaxRetries(0))),
		WithFetcher(fetch.NewFetcher(fetch.WithMaxRetries(0))),
	)
}

func TestRepo(t *testing.T) {
	var gotAccept, gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/uber-go/zap" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAccept = r.Header.Get("Accept")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{
			"full_name": "uber-go/zap",
			"description": "Blazing fast, structured, leveled logging in Go.",
			"default_branch": "master",
			"fork": false,
			"owner": {"login": "uber-go"},
			"license": {"key": "mit", "name": "MIT License", "spdx_id": "MIT"}
		}`))
	}))
	defer api.Close()

	c := newTestClient(t, api.URL, "http://raw.invalid")
	repo, err := c.Repo(context.Background(), "uber-go", "zap")
	if err != nil {
		t.Fatalf("Repo failed: %v", err)
	}

	if repo.FullName != "uber-go/zap" {
		t.Errorf("FullName = %q, want %q", repo.FullName, "uber-go/zap")
	}
	if repo.License == nil || repo.License.SPDXID != "MIT" {
		t.Errorf("License = %+v, want SPDX ID MIT", repo.License)
	}
	if repo.Owner.Login != "uber-go" {
		t.Errorf("Owner.Login = %q, want %q", repo.Owner.Login, "uber-go")
	}
	if gotAccept != "application/vnd.github.v3+json" {
		t.Errorf("Accept = %q, want %q", gotAccept, "application/vnd.github.v3+json")
	}
	if gotAuth != "token testtoken" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "token testtoken")
	}
}

func TestRepoError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found"}`))
	}))
	defer api.Close()

	c := newTestClient(t, api.URL, "http://raw.invalid")
	_, err := c.Repo(context.Background(), "acct", "missing")
	if err == nil {
		t.Fatal("expected error for missing repo")
	}

	var restErr *RESTError
	if !errors.As(err, &restErr) {
		t.Fatalf("expected RESTError, got %T: %v", err, err)
	}
	if restErr.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", restErr.Status)
	}
	if restErr.Path != "repos/acct/missing" {
		t.Errorf("Path = %q, want %q", restErr.Path, "repos/acct/missing")
	}
	if restErr.Message != "Not Found" {
		t.Errorf("Message = %q, want %q", restErr.Message, "Not Found")
	}
}

func TestUserName(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/octocat":
			_, _ = w.Write([]byte(`{"login": "octocat", "name": "The Octocat"}`))
		case "/users/plainuser":
			_, _ = w.Write([]byte(`{"login": "plainuser", "name": "plainuser"}`))
		case "/users/noname":
			_, _ = w.Write([]byte(`{"login": "noname"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer api.Close()

	c := newTestClient(t, api.URL, "http://raw.invalid")

	tests := []struct {
		login string
		want  string
	}{
		{"octocat", "The Octocat"},
		{"plainuser", `GitHub user "plainuser"`},
		{"noname", `GitHub user "noname"`},
	}

	for _, tt := range tests {
		got, err := c.UserName(context.Background(), tt.login)
		if err != nil {
			t.Fatalf("UserName(%q) failed: %v", tt.login, err)
		}
		if got != tt.want {
			t.Errorf("UserName(%q) = %q, want %q", tt.login, got, tt.want)
		}
	}
}

func TestOwnerName(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/widget":
			_, _ = w.Write([]byte(`{"full_name": "acme/widget", "fork": false, "owner": {"login": "acme"}}`))
		case "/users/acme":
			_, _ = w.Write([]byte(`{"login": "acme", "name": "Acme Corp"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer api.Close()

	c := newTestClient(t, api.URL, "http://raw.invalid")
	got, err := c.OwnerName(context.Background(), "acme", "widget")
	if err != nil {
		t.Fatalf("OwnerName failed: %v", err)
	}
	if got != "Acme Corp" {
		t.Errorf("OwnerName = %q, want %q", got, "Acme Corp")
	}
}

func TestOwnerNameFork(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/fred/widget":
			_, _ = w.Write([]byte(`{
				"full_name": "fred/widget",
				"fork": true,
				"owner": {"login": "fred"},
				"source": {"full_name": "acme/widget", "owner": {"login": "acme"}}
			}`))
		case "/users/fred":
			_, _ = w.Write([]byte(`{"login": "fred", "name": "Fred Jones"}`))
		case "/users/acme":
			_, _ = w.Write([]byte(`{"login": "acme", "name": "Acme Corp"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer api.Close()

	c := newTestClient(t, api.URL, "http://raw.invalid")
	got, err := c.OwnerName(context.Background(), "fred", "widget")
	if err != nil {
		t.Fatalf("OwnerName failed: %v", err)
	}
	want := "Fred Jones, modified (forked) from original GitHub repo 'acme/widget' owned by Acme Corp"
	if got != want {
		t.Errorf("OwnerName = %q, want %q", got, want)
	}
}

func TestRateLimit(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rate_limit" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"resources": {"core": {"limit": 5000, "remaining": 4999, "reset": 1700000000}}}`))
	}))
	defer api.Close()

	c := newTestClient(t, api.URL, "http://raw.invalid")
	rate, err := c.RateLimit(context.Background())
	if err != nil {
		t.Fatalf("RateLimit failed: %v", err)
	}
	if rate.Limit != 5000 {
		t.Errorf("Limit = %d, want 5000", rate.Limit)
	}
	if rate.Remaining != 4999 {
		t.Errorf("Remaining = %d, want 4999", rate.Remaining)
	}
}

func TestDefaultFetcherAuth(t *testing.T) {
	var gotAuth string
	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("license text"))
	}))
	defer raw.Close()

	// No WithFetcher: the default fetcher must send the token to the raw host.
	c := New("sekrit",
		WithAPIURL("http://api.invalid"),
		WithRawURL(raw.URL),
		WithHTTPClient(client.NewClient(client.WithMaxRetries(0))),
	)

	text, err := c.FindLicenseFile(context.Background(), "acct", "repo")
	if err != nil {
		t.Fatalf("FindLicenseFile failed: %v", err)
	}
	if text != "license text" {
		t.Errorf("text = %q, want %q", text, "license text")
	}
	if gotAuth != "token sekrit" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "token sekrit")
	}
}
