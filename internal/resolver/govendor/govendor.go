// Package govendor resolves Go dependencies without registry help: the
// information comes from the dependency's import path, the vendored files
// themselves, and the hosting site.
//
// Three scan methods are supported. The vendor-dir method walks a vendor/
// tree and recognizes host/account/repo layouts. The go-list method asks
// the go tool for vendored imports. The go-mod method reads the direct
// requirements out of go.mod.
package govendor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/git-pkgs/notices/internal/core"
	"github.com/git-pkgs/notices/internal/github"
	"github.com/git-pkgs/notices/internal/resolver"
)

func init() {
	resolver.Register(core.NamespaceGoVendor, "", func(baseURL string, env *resolver.Env) resolver.Resolver {
		return New(env)
	})
}

// Resolver handles vendored Go dependency trees.
type Resolver struct {
	env *resolver.Env
}

// New creates a Go vendor resolver.
func New(env *resolver.Env) *Resolver {
	return &Resolver{env: env}
}

// Namespace returns "golang-vendor".
func (r *Resolver) Namespace() string {
	return core.NamespaceGoVendor
}

// Recognize matches vendor directories when the vendor-dir scan method is
// active. The go-list and go-mod methods work from the project root instead.
func (r *Resolver) Recognize(name string, dir bool) bool {
	return dir && name == "vendor" && r.env.GoScanMethod == resolver.GoScanVendorDir
}

// gopkgVersionSuffix matches the ".v2"-style suffix of gopkg.in import
// paths.
var gopkgVersionSuffix = regexp.MustCompile(`\.v.+$`)

// recognizeDep maps a vendor subtree or import path onto a hosting layout.
// Paths it cannot place are not Go dependencies, and not an error.
func recognizeDep(path string) (host, account, repodir string, ok bool) {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) < 2 {
		return "", "", "", false
	}
	last, parent := parts[len(parts)-1], parts[len(parts)-2]

	switch {
	case parent == "gopkg.in" && gopkgVersionSuffix.MatchString(last):
		// gopkg.in/yaml.v2 redirects to github.com/go-yaml/yaml.
		repodir = gopkgVersionSuffix.ReplaceAllString(last, "")
		return "github.com", "go-" + repodir, repodir, true

	case parent == "google.golang.org" || parent == "go.uber.org":
		// Repos hosted at the top level of the domain.
		return parent, "", last, true

	case len(parts) >= 3:
		host = parts[len(parts)-3]
		if !strings.Contains(host, ".") {
			return "", "", "", false
		}
		account, repodir = parent, last
		if host == "gopkg.in" {
			host = "github.com"
			repodir = gopkgVersionSuffix.ReplaceAllString(repodir, "")
		}
		return host, account, repodir, true
	}
	return "", "", "", false
}

// Resolve walks the vendor tree at path. Dependencies live either two
// levels down (gopkg.in/yaml.v2) or three (github.com/foo/bar); recognized
// subtrees are not descended into.
func (r *Resolver) Resolve(ctx context.Context, sourceFile, path string) ([]*core.Record, error) {
	root := filepath.Clean(path)
	var records []*core.Record

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() || p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		depth := strings.Count(filepath.ToSlash(rel), "/") + 1
		if depth == 1 {
			// Host level, like "github.com".
			return nil
		}

		rec, err := r.resolveDep(ctx, sourceFile, p, p, nil)
		if err != nil {
			return err
		}
		if rec != nil {
			records = append(records, rec)
			return fs.SkipDir
		}
		if depth >= 3 {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// sourceConstraint is a Gopkg.toml constraint naming an alternate source
// repo for a dependency, the dep tool's way of pinning a fork.
type sourceConstraint struct {
	Name   string `toml:"name"`
	Source string `toml:"source"`
}

// resolveDep builds the record for one dependency. dir points at the
// vendored files when the dependency came from a vendor tree, and is empty
// for import-path scans. depPath carries the path recognizeDep reads.
func (r *Resolver) resolveDep(ctx context.Context, sourceFile, dir, depPath string, constraint *sourceConstraint) (*core.Record, error) {
	host, account, repodir, ok := recognizeDep(depPath)
	if !ok {
		return nil, nil
	}

	name := repodir
	if account != "" {
		name = account + "/" + repodir
	}
	r.env.Logger.Debug().Str("dependency", name).Str("host", host).Msg("resolving go dependency")

	draft := core.Draft{
		SourceFile: sourceFile,
		Namespace:  core.NamespaceGoVendor,
		Name:       name,
	}

	// The account on GitHub, for hosts that redirect there.
	githubAccount := account
	var textURL string

	switch host {
	case "github.com":
		draft.ProjectURL = fmt.Sprintf("https://github.com/%s/%s", account, repodir)
		draft.RepoURL = draft.ProjectURL

		owner, err := r.env.GitHub.OwnerName(ctx, account, repodir)
		if err != nil {
			return nil, fmt.Errorf("go dependency %s: %w", name, err)
		}
		draft.Owner = owner

		repo, err := r.env.GitHub.Repo(ctx, account, repodir)
		if err != nil {
			return nil, fmt.Errorf("go dependency %s: %w", name, err)
		}
		draft.Description = repo.Description
		if repo.License != nil && repo.License.Key != "other" {
			draft.LicenseID = repo.License.SPDXID
			draft.LicenseIDSource = core.IDSourceGitHub
		}

	case "google.golang.org":
		draft.ProjectURL = fmt.Sprintf("https://%s/%s", host, repodir)
		draft.RepoURL = draft.ProjectURL
		draft.Owner = "Google"
		draft.LicenseID = "Apache-2.0"
		draft.LicenseIDSource = core.IDSourceProject
		draft.Description = googleDescriptions[repodir]

	case "go.uber.org":
		// Some go.uber.org paths don't follow this pattern; see
		// https://go.uber.org/ for the list.
		githubAccount = "uber-go"
		draft.ProjectURL = "https://github.com/uber-go/" + repodir
		draft.RepoURL = draft.ProjectURL
		draft.Owner = "Uber Technologies, Inc."

		repo, err := r.env.GitHub.Repo(ctx, "uber-go", repodir)
		if err != nil {
			return nil, fmt.Errorf("go dependency %s: %w", name, err)
		}
		draft.Description = repo.Description
		if repo.License != nil && repo.License.Key != "other" {
			draft.LicenseID = repo.License.SPDXID
			draft.LicenseIDSource = core.IDSourceGitHub
		}

	case "golang.org":
		githubAccount = "golang"
		draft.ProjectURL = "https://github.com/golang/" + repodir
		draft.RepoURL = draft.ProjectURL
		draft.Owner = "The Go Authors"

		repo, err := r.env.GitHub.Repo(ctx, "golang", repodir)
		if err != nil {
			return nil, fmt.Errorf("go dependency %s: %w", name, err)
		}
		draft.Description = repo.Description

		// The GitHub API doesn't recognize the Go license text, so take it
		// straight from the repo.
		textURL = r.env.GitHub.RawFileURL("golang", repodir, "master", "LICENSE")

	case "willnorris.com":
		githubAccount = "willnorris"
		draft.ProjectURL = "https://github.com/willnorris/" + repodir
		draft.RepoURL = draft.ProjectURL
		draft.Owner = "Will Norris"

		repo, err := r.env.GitHub.Repo(ctx, "willnorris", repodir)
		if err != nil {
			return nil, fmt.Errorf("go dependency %s: %w", name, err)
		}
		draft.Description = repo.Description
		if repo.License != nil && repo.License.Key != "other" {
			draft.LicenseID = repo.License.SPDXID
			draft.LicenseIDSource = core.IDSourceGitHub
		}

	default:
		return nil, fmt.Errorf("unhandled host %q", host)
	}

	// License text vendored with the code outranks everything else.
	if dir != "" {
		text, err := readFirst(dir, github.LicenseFilenames)
		if err != nil {
			return nil, err
		}
		if text != "" {
			draft.LicenseText = text
			draft.LicenseTextSource = core.TextSourceInline
		}
	}

	if draft.LicenseText == "" && textURL != "" {
		text, err := r.env.Fetcher.FetchText(ctx, textURL)
		if err != nil {
			return nil, fmt.Errorf("go dependency %s: fetching license text: %w", name, err)
		}
		draft.LicenseText = text
		draft.LicenseTextSource = core.TextSourceProject
	}

	onGitHub := strings.Contains(draft.RepoURL, "//github.com/")
	if draft.LicenseText == "" && onGitHub {
		text, err := r.env.GitHub.FindLicenseFile(ctx, githubAccount, repodir)
		if err != nil {
			return nil, fmt.Errorf("go dependency %s: %w", name, err)
		}
		if text != "" {
			draft.LicenseText = text
			draft.LicenseTextSource = core.TextSourceInline
		}
	}

	if dir != "" {
		notice, err := readFirst(dir, github.NoticeFilenames)
		if err != nil {
			return nil, err
		}
		draft.NoticeText = notice
	}
	if draft.NoticeText == "" && onGitHub {
		notice, err := r.env.GitHub.FindNoticeFile(ctx, githubAccount, repodir)
		if err != nil {
			return nil, fmt.Errorf("go dependency %s: %w", name, err)
		}
		draft.NoticeText = notice
	}

	// A constraint pointing anywhere but the canonical repo means a fork.
	if constraint != nil && constraint.Source != "" {
		if constraint.Source == draft.RepoURL {
			draft.Modified = core.ModifiedNo
		} else {
			draft.Modified = core.ModifiedYes
		}
	}

	if draft.Description == "" {
		draft.Description = fmt.Sprintf("This is a Go package called %s.", name)
	}

	return r.env.Reconciler.Reconcile(draft)
}

// Descriptions for google.golang.org repos, which offer no queryable
// metadata. See https://cloud.google.com/go/google.golang.org.
var googleDescriptions = map[string]string{
	"api":       "A set of auto-generated packages that provide low-level access to various Google APIs",
	"appengine": "A set of packages that provide access to the Google App Engine APIs.",
	"cloud":     "A set of idiomatically-designed packages that provide access to Google Cloud Platform APIs, including Datastore, Storage, Pub/Sub, Bigtable, BigQuery and Logging.",
	"genproto":  "Protocol code related to Google services",
	"grpc":      "Package grpc implements an RPC system called gRPC.",
}

// readFirst returns the contents of the first file in names that exists
// under dir.
func readFirst(dir string, names []string) (string, error) {
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return string(b), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}
