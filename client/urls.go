package client

import (
	"net/url"
	"strings"
)

// CleanRepoURL normalizes a repository URL as reported by a package registry.
// Registries carry URLs in several git-flavored forms; the cleaned result is
// always a plain https URL without credentials or a .git suffix.
func CleanRepoURL(raw string) string {
	raw = strings.TrimPrefix(raw, "git+")
	if rest, ok := strings.CutPrefix(raw, "git@github.com:"); ok {
		raw = "https://github.com/" + rest
	}
	if strings.HasPrefix(raw, "github.com/") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(raw, ".git")
	}

	// Drop any user@ prefix and force https.
	cleaned := "https://" + u.Host + u.Path
	return strings.TrimSuffix(cleaned, ".git")
}

// GitHubPath extracts the account and repository names from a GitHub URL.
// It returns ok=false when the URL does not point at a GitHub repository.
func GitHubPath(rawURL string) (account, repo string, ok bool) {
	if !strings.Contains(rawURL, "//github.com/") && !strings.HasPrefix(rawURL, "github.com/") {
		return "", "", false
	}

	u, err := url.Parse(CleanRepoURL(rawURL))
	if err != nil || u.Host != "github.com" {
		return "", "", false
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
