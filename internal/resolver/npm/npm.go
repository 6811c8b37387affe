// Package npm resolves the dependencies of a package.json manifest against
// the npm registry.
//
// npm metadata is the loosest of the supported ecosystems: the author,
// repository, and license fields each come in several shapes, and enough
// popular packages omit them outright that the resolver carries fallbacks
// for all three, ending at the GitHub repo when the registry gives nothing.
package npm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/git-pkgs/notices/client"
	"github.com/git-pkgs/notices/internal/core"
	"github.com/git-pkgs/notices/internal/resolver"
)

const DefaultURL = "https://registry.npmjs.org"

func init() {
	resolver.Register(core.NamespaceNPM, DefaultURL, func(baseURL string, env *resolver.Env) resolver.Resolver {
		return New(baseURL, env)
	})
}

// Resolver handles package.json manifests.
type Resolver struct {
	baseURL string
	env     *resolver.Env
}

// New creates an npm resolver.
func New(baseURL string, env *resolver.Env) *Resolver {
	return &Resolver{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		env:     env,
	}
}

// Namespace returns "npm".
func (r *Resolver) Namespace() string {
	return core.NamespaceNPM
}

// Recognize matches npm manifests.
func (r *Resolver) Recognize(name string, dir bool) bool {
	return !dir && name == "package.json"
}

type manifest struct {
	Dependencies map[string]string `json:"dependencies"`
}

// Resolve reads the manifest at path and resolves every runtime dependency
// against the registry. Records come back sorted by name.
func (r *Resolver) Resolve(ctx context.Context, sourceFile, path string) ([]*core.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", sourceFile, err)
	}

	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]*core.Record, 0, len(names))
	for _, name := range names {
		rec, err := r.resolveOne(ctx, sourceFile, name, m.Dependencies[name])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// packageResponse is the subset of the npm registry metadata we use. The
// author, contributors, license, homepage, and repository fields vary in
// shape across packages, so they stay untyped until the extract helpers
// sort them out.
type packageResponse struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Homepage     any                    `json:"homepage"`
	Repository   any                    `json:"repository"`
	Author       any                    `json:"author"`
	Contributors any                    `json:"contributors"`
	License      any                    `json:"license"`
	Versions     map[string]versionInfo `json:"versions"`
	DistTags     map[string]string      `json:"dist-tags"`
}

type versionInfo struct {
	Author       any    `json:"author"`
	Contributors any    `json:"contributors"`
	Description  string `json:"description"`
}

// fallbackRepos maps packages whose registry entries lack a repository link
// to their known homes.
var fallbackRepos = map[string]string{
	"react-native-cookies":                      "https://github.com/joeferraro/react-native-cookies",
	"react-native-section-list-get-item-layout": "https://github.com/jsoendermann/rn-section-list-get-item-layout",
	"redux-action-buffer":                       "https://github.com/rt2zz/redux-action-buffer",
}

// githubBlobURL spots GitHub HTML links where a raw file link belongs.
var githubBlobURL = regexp.MustCompile(`github\.com/.+/.+/blob/.+`)

func (r *Resolver) resolveOne(ctx context.Context, sourceFile, name, version string) (*core.Record, error) {
	u := fmt.Sprintf("%s/%s", r.baseURL, url.PathEscape(name))
	r.env.Logger.Debug().Str("package", name).Msg("querying npm")

	var resp packageResponse
	if err := r.env.Client.GetJSON(ctx, u, &resp); err != nil {
		var httpErr *client.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Namespace: core.NamespaceNPM, Name: name}
		}
		return nil, fmt.Errorf("querying npm for %s: %w", name, err)
	}
	latest := resp.Versions[resp.DistTags["latest"]]

	draft := core.Draft{
		SourceFile: sourceFile,
		Namespace:  core.NamespaceNPM,
		Name:       name,
		Version:    version,
	}

	repoURL, fromFallback, err := r.repoURL(name, resp.Repository)
	if err != nil {
		return nil, err
	}
	draft.RepoURL = repoURL
	if fromFallback {
		draft.Discrepancies = append(draft.Discrepancies, core.DiscrepRegistryNoRepo)
	}
	account, repoName, onGitHub := client.GitHubPath(repoURL)

	owner := coalesceString(
		extractPerson(resp.Author),
		extractPerson(latest.Author),
		extractFirstPerson(resp.Contributors),
		extractFirstPerson(latest.Contributors),
	)
	if owner == "" {
		draft.Discrepancies = append(draft.Discrepancies, core.DiscrepRegistryNoAuthor)
		if !onGitHub {
			return nil, fmt.Errorf("unable to determine owner for NPM package %q", name)
		}
		owner, err = r.env.GitHub.OwnerName(ctx, account, repoName)
		if err != nil {
			return nil, fmt.Errorf("npm package %s: %w", name, err)
		}
	}
	draft.Owner = owner

	draft.Description = coalesceString(resp.Description, latest.Description)
	if draft.Description == "" {
		draft.Discrepancies = append(draft.Discrepancies, core.DiscrepRegistryNoDescription)
		if onGitHub {
			repo, err := r.env.GitHub.Repo(ctx, account, repoName)
			if err != nil {
				return nil, fmt.Errorf("npm package %s: %w", name, err)
			}
			if repo.Description != "" {
				draft.Description = repo.Description
			} else {
				draft.Discrepancies = append(draft.Discrepancies, core.DiscrepGitHubNoDescription)
			}
		}
		if draft.Description == "" {
			return nil, fmt.Errorf("unable to determine description for NPM package %q", name)
		}
	}

	var textURL string
	if resp.License != nil {
		var id string
		id, textURL = extractLicense(resp.License)
		if id != "" {
			draft.LicenseID = id
			draft.LicenseIDSource = core.IDSourceRegistry
		}
	} else {
		draft.Discrepancies = append(draft.Discrepancies, core.DiscrepRegistryNoLicense)
		if onGitHub {
			repo, err := r.env.GitHub.Repo(ctx, account, repoName)
			if err != nil {
				return nil, fmt.Errorf("npm package %s: %w", name, err)
			}
			// The GitHub API reports "other" when it can't name the license.
			if repo.License != nil && repo.License.Key != "other" {
				draft.LicenseID = repo.License.SPDXID
				draft.LicenseIDSource = core.IDSourceGitHub
			}
		}
	}

	draft.ProjectURL = extractString(resp.Homepage)
	if draft.ProjectURL == "" {
		draft.ProjectURL = repoURL
	}

	if textURL != "" {
		// Sometimes the URL is a GitHub HTML page instead of the raw file.
		if githubBlobURL.MatchString(textURL) {
			textURL = strings.ReplaceAll(textURL, "/blob/", "/raw/")
		}
		text, err := r.env.Fetcher.FetchText(ctx, textURL)
		if err != nil {
			return nil, fmt.Errorf("npm package %s: fetching license text: %w", name, err)
		}
		draft.LicenseText = text
		draft.LicenseTextSource = core.TextSourceRegistry
	}

	if onGitHub {
		if draft.LicenseText == "" {
			text, err := r.env.GitHub.FindLicenseFile(ctx, account, repoName)
			if err != nil {
				return nil, fmt.Errorf("npm package %s: %w", name, err)
			}
			if text != "" {
				draft.LicenseText = text
				draft.LicenseTextSource = core.TextSourceInline
			}

			if name == "twemoji" {
				if err := r.assembleTwemoji(ctx, &draft); err != nil {
					return nil, err
				}
			}
		}

		notice, err := r.env.GitHub.FindNoticeFile(ctx, account, repoName)
		if err != nil {
			return nil, fmt.Errorf("npm package %s: %w", name, err)
		}
		draft.NoticeText = notice
	}

	// A "github:acct/repo#ref" version spec pointing anywhere but the
	// official repo means the dependency is a fork.
	if spec, ok := strings.CutPrefix(version, "github:"); ok {
		forkPath, _, _ := strings.Cut(spec, "#")
		if onGitHub && forkPath == account+"/"+repoName {
			draft.Modified = core.ModifiedNo
		} else {
			draft.Modified = core.ModifiedYes
		}
	}

	return r.env.Reconciler.Reconcile(draft)
}

// repoURL determines the repository URL for a package. The second return is
// true when the registry entry had no repository and a fallback supplied it.
func (r *Resolver) repoURL(name string, repository any) (string, bool, error) {
	if raw := extractRepoURL(repository); raw != "" {
		return cleanRepoURL(raw), false, nil
	}
	for _, org := range r.env.OwnOrgs {
		if strings.HasPrefix(name, org+"-") {
			return fmt.Sprintf("https://github.com/%s/%s", org, name), true, nil
		}
	}
	if u, ok := fallbackRepos[name]; ok {
		return u, true, nil
	}
	return "", false, fmt.Errorf("unable to determine repo_url for NPM package %q", name)
}

// twemoji ships code under MIT and its graphics under CC-BY-4.0, with the
// graphics license on a separate branch. Stitch the two texts together.
func (r *Resolver) assembleTwemoji(ctx context.Context, draft *core.Draft) error {
	if draft.LicenseID != "(MIT AND CC-BY-4.0)" {
		return fmt.Errorf("unexpected license %q for twemoji", draft.LicenseID)
	}
	graphics, err := r.env.Fetcher.FetchText(ctx, r.env.GitHub.RawFileURL("twitter", "twemoji", "gh-pages", "LICENSE-GRAPHICS"))
	if err != nil {
		return fmt.Errorf("npm package twemoji: fetching graphics license: %w", err)
	}
	draft.LicenseText = "# Code licensed under the MIT License:\n\n" + draft.LicenseText +
		"\n\n# Graphics licensed under CC-BY 4.0:\n\n" + graphics
	return nil
}

// cleanRepoURL normalizes the git URL forms npm carries into a plain https
// URL.
func cleanRepoURL(raw string) string {
	// One package publishes a URL with a stray colon that defeats parsing.
	if rest, ok := strings.CutPrefix(raw, "https://git@github.com:facebook/"); ok {
		raw = "https://git@github.com/facebook/" + rest
	}
	return client.CleanRepoURL(raw)
}

func extractString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if arr, ok := v.([]any); ok && len(arr) > 0 {
		if s, ok := arr[0].(string); ok {
			return s
		}
	}
	return ""
}

func extractRepoURL(v any) string {
	switch repo := v.(type) {
	case string:
		return repo
	case map[string]any:
		if u, ok := repo["url"].(string); ok {
			return u
		}
	case []any:
		if len(repo) > 0 {
			if m, ok := repo[0].(map[string]any); ok {
				if u, ok := m["url"].(string); ok {
					return u
				}
			}
		}
	}
	return ""
}

// extractLicense pulls an SPDX identifier, and a license text URL when one
// is given, out of the license field's several shapes.
func extractLicense(v any) (id, textURL string) {
	switch l := v.(type) {
	case string:
		id = l
	case map[string]any:
		id, _ = l["type"].(string)
		textURL, _ = l["url"].(string)
	case []any:
		ids := make([]string, 0, len(l))
		for _, item := range l {
			if s, ok := item.(string); ok {
				ids = append(ids, s)
			}
		}
		id = "(" + strings.Join(ids, " AND ") + ")"
	}
	return id, textURL
}

// extractPerson reads a person field, which is either an object with a name
// or a plain string.
func extractPerson(v any) string {
	switch p := v.(type) {
	case string:
		return p
	case map[string]any:
		if name, ok := p["name"].(string); ok {
			return name
		}
	}
	return ""
}

func extractFirstPerson(v any) string {
	if arr, ok := v.([]any); ok && len(arr) > 0 {
		return extractPerson(arr[0])
	}
	return ""
}

func coalesceString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
