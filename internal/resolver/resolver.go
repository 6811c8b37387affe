// Package resolver defines the interface implemented by dependency
// resolvers and the registry through which they are looked up.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/git-pkgs/notices/client"
	"github.com/git-pkgs/notices/internal/core"
	"github.com/git-pkgs/notices/internal/fetch"
	"github.com/git-pkgs/notices/internal/github"
	"github.com/git-pkgs/notices/internal/license"
)

// Methods for locating Go dependencies.
const (
	GoScanVendorDir = "vendor-dir"
	GoScanGoList    = "go-list-vendor"
	GoScanGoMod     = "go-mod"
)

// Env carries the collaborators resolvers share.
type Env struct {
	Client     *client.Client
	GitHub     *github.Client
	Fetcher    fetch.TextFetcher
	Reconciler *license.Reconciler

	// GoScanMethod selects how Go dependencies are located.
	GoScanMethod string
	// UseGopkgToml enables reading Gopkg.toml source constraints to detect
	// modified dependencies.
	UseGopkgToml bool
	// OwnOrgs lists organization path segments whose imports are skipped
	// as first-party code.
	OwnOrgs []string

	Logger zerolog.Logger
}

// Resolver turns one manifest or vendor tree into dependency records.
type Resolver interface {
	// Namespace returns the namespace this resolver produces (e.g. "pypi").
	Namespace() string

	// Recognize reports whether this resolver handles the named directory
	// entry. dir is true when the entry is a directory.
	Recognize(name string, dir bool) bool

	// Resolve reads the manifest at path and returns one record per
	// dependency, reconciled and validated. sourceFile is the path relative
	// to the project root, for reporting.
	Resolve(ctx context.Context, sourceFile, path string) ([]*core.Record, error)
}

// RootScanner is implemented by resolvers that scan from the project root
// rather than from a manifest file found during the walk.
type RootScanner interface {
	ScanRoot(ctx context.Context, root string) ([]*core.Record, error)
}

// Factory creates a resolver instance for a given registry base URL.
type Factory func(baseURL string, env *Env) Resolver

var (
	factories = make(map[string]Factory)
	defaults  = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a resolver factory to the global registry.
// namespace is the dependency namespace (e.g. "pypi", "npm").
// defaultURL is the default registry URL for the namespace.
func Register(namespace string, defaultURL string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[namespace] = factory
	defaults[namespace] = defaultURL
}

// New creates a new resolver for the given namespace.
// If baseURL is empty, the default registry URL is used.
func New(namespace string, baseURL string, env *Env) (Resolver, error) {
	mu.RLock()
	factory, ok := factories[namespace]
	defaultURL := defaults[namespace]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown namespace: %s", namespace)
	}

	if baseURL == "" {
		baseURL = defaultURL
	}

	if env == nil {
		env = DefaultEnv()
	}

	return factory(baseURL, env), nil
}

// DefaultEnv returns an Env wired with default collaborators and anonymous
// GitHub access.
func DefaultEnv() *Env {
	return &Env{
		Client:       client.DefaultClient(),
		GitHub:       github.New(""),
		Fetcher:      fetch.NewCircuitBreakerFetcher(fetch.NewFetcher()),
		Reconciler:   license.NewReconciler(license.NewStore(), license.WithOverrides(license.Builtin())),
		GoScanMethod: GoScanVendorDir,
		Logger:       zerolog.Nop(),
	}
}

// Supported returns all registered namespaces, sorted.
func Supported() []string {
	mu.RLock()
	defer mu.RUnlock()

	namespaces := make([]string, 0, len(factories))
	for ns := range factories {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	return namespaces
}

// DefaultURL returns the default registry URL for a namespace.
func DefaultURL(namespace string) string {
	mu.RLock()
	defer mu.RUnlock()
	return defaults[namespace]
}
