package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFindLicenseFile(t *testing.T) {
	var paths []string
	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/acct/repo/master/LICENSE.txt" {
			_, _ = w.Write([]byte("MIT license text"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer raw.Close()

	c := newTestClient(t, "http://api.invalid", raw.URL)
	text, err := c.FindLicenseFile(context.Background(), "acct", "repo")
	if err != nil {
		t.Fatalf("FindLicenseFile failed: %v", err)
	}
	if text != "MIT license text" {
		t.Errorf("text = %q, want %q", text, "MIT license text")
	}

	// Probes filenames in order and stops at the first hit
	if len(paths) != 2 {
		t.Fatalf("probed %d paths, want 2: %v", len(paths), paths)
	}
	if paths[0] != "/acct/repo/master/LICENSE" {
		t.Errorf("first probe = %q, want %q", paths[0], "/acct/repo/master/LICENSE")
	}
}

func TestFindLicenseFileDefaultBranchFallback(t *testing.T) {
	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/acct/repo/main/LICENSE" {
			_, _ = w.Write([]byte("Apache license text"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer raw.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acct/repo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"full_name": "acct/repo", "default_branch": "main"}`))
	}))
	defer api.Close()

	c := newTestClient(t, api.URL, raw.URL)
	text, err := c.FindLicenseFile(context.Background(), "acct", "repo")
	if err != nil {
		t.Fatalf("FindLicenseFile failed: %v", err)
	}
	if text != "Apache license text" {
		t.Errorf("text = %q, want %q", text, "Apache license text")
	}
}

func TestFindLicenseFileAbsent(t *testing.T) {
	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer raw.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"full_name": "acct/repo", "default_branch": "master"}`))
	}))
	defer api.Close()

	c := newTestClient(t, api.URL, raw.URL)
	text, err := c.FindLicenseFile(context.Background(), "acct", "repo")
	if err != nil {
		t.Fatalf("FindLicenseFile failed: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty for repo without a license file", text)
	}
}

func TestFindNoticeFile(t *testing.T) {
	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/acct/repo/master/NOTICE" {
			_, _ = w.Write([]byte("NOTICE contents"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer raw.Close()

	c := newTestClient(t, "http://api.invalid", raw.URL)
	text, err := c.FindNoticeFile(context.Background(), "acct", "repo")
	if err != nil {
		t.Fatalf("FindNoticeFile failed: %v", err)
	}
	if text != "NOTICE contents" {
		t.Errorf("text = %q, want %q", text, "NOTICE contents")
	}
}

func TestRawFileURL(t *testing.T) {
	c := New("", WithRawURL("https://raw.example.com"))
	got := c.RawFileURL("twitter", "twemoji", "gh-pages", "LICENSE-GRAPHICS")
	want := "https://raw.example.com/twitter/twemoji/gh-pages/LICENSE-GRAPHICS"
	if got != want {
		t.Errorf("RawFileURL = %q, want %q", got, want)
	}
}
