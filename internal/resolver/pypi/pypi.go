// Package pypi resolves the Python dependencies listed in a requirements.txt
// manifest against the PyPI registry.
package pypi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/git-pkgs/notices/client"
	"github.com/git-pkgs/notices/internal/core"
	"github.com/git-pkgs/notices/internal/resolver"
)

const DefaultURL = "https://pypi.org"

func init() {
	resolver.Register(core.NamespacePyPI, DefaultURL, func(baseURL string, env *resolver.Env) resolver.Resolver {
		return New(baseURL, env)
	})
}

// Resolver handles requirements.txt manifests.
type Resolver struct {
	baseURL string
	env     *resolver.Env
}

// New creates a PyPI resolver.
func New(baseURL string, env *resolver.Env) *Resolver {
	return &Resolver{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		env:     env,
	}
}

// Namespace returns "pypi".
func (r *Resolver) Namespace() string {
	return core.NamespacePyPI
}

// Recognize matches pip requirement manifests.
func (r *Resolver) Recognize(name string, dir bool) bool {
	return !dir && name == "requirements.txt"
}

// Resolve parses the manifest at path and resolves every requirement against
// the registry. Records come back sorted by name.
func (r *Resolver) Resolve(ctx context.Context, sourceFile, path string) ([]*core.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reqs, err := parseRequirements(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", sourceFile, err)
	}

	records := make([]*core.Record, 0, len(reqs))
	for _, req := range reqs {
		rec, err := r.resolveOne(ctx, sourceFile, req)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// requirement is one dependency line from a requirements.txt file.
type requirement struct {
	Name       string
	Constraint string
}

// requirementName matches the package name, and any extras that follow it,
// at the start of a PEP 508 requirement.
var requirementName = regexp.MustCompile(`^([A-Za-z0-9][-A-Za-z0-9._]*[A-Za-z0-9]|[A-Za-z0-9])(\s*\[.*?\])?`)

func parseRequirements(r io.Reader) ([]requirement, error) {
	var reqs []requirement
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "-"):
			// Flags like -r and -e pull in other files or VCS trees that
			// never reach the registry.
			return nil, fmt.Errorf("unhandled line %q", line)
		case strings.Contains(line, "#egg="):
			continue
		}

		req, err := parseRequirement(line)
		if err != nil {
			return nil, err
		}
		if seen[req.Name] {
			return nil, fmt.Errorf("duplicate requirement %q", req.Name)
		}
		seen[req.Name] = true
		reqs = append(reqs, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return reqs, nil
}

func parseRequirement(line string) (requirement, error) {
	// Environment markers follow a semicolon and don't affect the name.
	spec, _, _ := strings.Cut(line, ";")
	spec = strings.TrimSpace(spec)

	m := requirementName.FindStringSubmatch(spec)
	if m == nil {
		return requirement{}, fmt.Errorf("unparseable requirement %q", line)
	}
	return requirement{
		Name:       m[1],
		Constraint: strings.TrimSpace(spec[len(m[0]):]),
	}, nil
}

// packageResponse is the subset of the PyPI JSON API response we use.
type packageResponse struct {
	Info infoBlock `json:"info"`
}

type infoBlock struct {
	Author     string `json:"author"`
	HomePage   string `json:"home_page"`
	License    string `json:"license"`
	ProjectURL string `json:"project_url"`
	Summary    string `json:"summary"`
}

// registryLicenseIDs translates the free-form license strings found on PyPI
// into SPDX identifiers.
var registryLicenseIDs = map[string]string{
	"Apache License, Version 2.0": "Apache-2.0",
	"Apache License 2.0":          "Apache-2.0",
	"Apache 2.0":                  "Apache-2.0",
	"CC0-1.0":                     "CC0-1.0",
	"MIT":                         "MIT",
	"MIT License":                 "MIT",
	"BSD-2-Clause":                "BSD-2-Clause",

	// "BSD" on PyPI is ambiguous. Assume the more restrictive 3-clause
	// license and let the text match sort out the variant.
	"BSD":         "BSD-3-Clause",
	"BSD License": "BSD-3-Clause",
	"BSD-like":    "BSD-3-Clause",

	"MPL-2.0":                            "MPL-2.0",
	"MPL2":                               "MPL-2.0",
	"Standard PIL License":               "MIT",
	"LGPL":                               "LGPL-2.1",
	"BSD or Apache License, Version 2.0": "(BSD-3-Clause OR Apache-2.0)",
	"Python Software Foundation License": "Python-2.0",
	"PSF":                                "Python-2.0",
	"LGPL with exceptions or ZPL":        "(LGPL-3.0 OR ZPL-2.1)",
	"ZPL 2.1":                            "ZPL-2.1",
}

// translateLicense maps a PyPI license string to an SPDX identifier. An empty
// string is no signal rather than an error.
func translateLicense(raw string) (string, error) {
	if strings.HasPrefix(raw, `"`) { // bad quotes
		raw = strings.TrimSuffix(raw[1:], `"`)
	}
	if raw == "" {
		return "", nil
	}
	id, ok := registryLicenseIDs[raw]
	if !ok {
		return "", fmt.Errorf("no SPDX translation of PyPi license type %q", raw)
	}
	return id, nil
}

func (r *Resolver) resolveOne(ctx context.Context, sourceFile string, req requirement) (*core.Record, error) {
	u := fmt.Sprintf("%s/pypi/%s/json", r.baseURL, url.PathEscape(req.Name))
	r.env.Logger.Debug().Str("package", req.Name).Msg("querying pypi")

	var resp packageResponse
	if err := r.env.Client.GetJSON(ctx, u, &resp); err != nil {
		var httpErr *client.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Namespace: core.NamespacePyPI, Name: req.Name}
		}
		return nil, fmt.Errorf("querying pypi for %s: %w", req.Name, err)
	}
	info := resp.Info

	draft := core.Draft{
		SourceFile:  sourceFile,
		Namespace:   core.NamespacePyPI,
		Name:        req.Name,
		Version:     req.Constraint,
		Owner:       info.Author,
		ProjectURL:  info.HomePage,
		RepoURL:     info.ProjectURL,
		Description: info.Summary,
	}
	if draft.Description == "" {
		draft.Description = fmt.Sprintf("A PyPi package named %s", req.Name)
	}

	id, err := translateLicense(info.License)
	if err != nil {
		return nil, fmt.Errorf("pypi package %s: %w", req.Name, err)
	}
	if id != "" {
		draft.LicenseID = id
		draft.LicenseIDSource = core.IDSourceRegistry
	} else {
		draft.Discrepancies = append(draft.Discrepancies, core.DiscrepRegistryNoLicense)
	}

	// PyPI entries don't carry license text. When the project lives on
	// GitHub, go look for the usual files.
	if account, repo, ok := client.GitHubPath(info.HomePage); ok {
		text, err := r.env.GitHub.FindLicenseFile(ctx, account, repo)
		if err != nil {
			return nil, fmt.Errorf("pypi package %s: %w", req.Name, err)
		}
		if text != "" {
			draft.LicenseText = text
			draft.LicenseTextSource = core.TextSourceInline
		}

		notice, err := r.env.GitHub.FindNoticeFile(ctx, account, repo)
		if err != nil {
			return nil, fmt.Errorf("pypi package %s: %w", req.Name, err)
		}
		draft.NoticeText = notice
	}

	return r.env.Reconciler.Reconcile(draft)
}
