// Package notices scans projects for third-party dependencies and gathers
// the license and ownership metadata needed to assemble a NOTICE document.
//
// The package recognizes Python requirements.txt manifests, Node
// package.json manifests, and Go vendor trees (or "go list" / go.mod), asks
// the package registries and GitHub about each dependency, and reconciles
// the collected license signals into one validated identifier and text per
// dependency.
//
// Basic usage:
//
//	import (
//		"context"
//		"os"
//
//		"github.com/git-pkgs/notices"
//		_ "github.com/git-pkgs/notices/all"
//	)
//
//	result, err := notices.Scan(context.Background(), notices.DefaultEnv(),
//		[]string{"/path/to/project"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = notices.WriteNotice(os.Stdout, result.Records(), notices.NoticeOptions{})
//
// Importing the all package registers every shipped resolver. Individual
// resolvers can be registered instead by importing their packages directly.
package notices

import (
	"context"

	"github.com/git-pkgs/notices/client"
	"github.com/git-pkgs/notices/internal/core"
	"github.com/git-pkgs/notices/internal/github"
	"github.com/git-pkgs/notices/internal/license"
	"github.com/git-pkgs/notices/internal/report"
	"github.com/git-pkgs/notices/internal/resolver"
	"github.com/git-pkgs/notices/internal/scan"
)

// Re-export types from internal/core
type (
	// Record is one fully reconciled third-party dependency.
	Record = core.Record

	// Draft holds the license signals gathered for a dependency before
	// reconciliation.
	Draft = core.Draft

	// Discrepancy describes a metadata problem found while gathering.
	Discrepancy = core.Discrepancy

	// TextSource identifies where a record's license text came from.
	TextSource = core.TextSource

	// IDSource identifies where a record's license identifier came from.
	IDSource = core.IDSource

	// ModifiedStatus records whether a dependency diverges from upstream.
	ModifiedStatus = core.ModifiedStatus
)

// Re-export types from internal/resolver
type (
	// Resolver turns one manifest or vendor tree into dependency records.
	Resolver = resolver.Resolver

	// RootScanner is implemented by resolvers that scan from the project
	// root rather than from a manifest found during the walk.
	RootScanner = resolver.RootScanner

	// Env carries the collaborators resolvers share.
	Env = resolver.Env
)

// Re-export types from internal/scan and internal/report
type (
	// Result is the outcome of one scan run.
	Result = scan.Result

	// ProjectRecord pairs a record with the project it was first found in.
	ProjectRecord = scan.ProjectRecord

	// ScanOption configures a scan run.
	ScanOption = scan.Option

	// NoticeOptions configures the NOTICE document writer.
	NoticeOptions = report.NoticeOptions
)

// Re-export types from the license reconciler
type (
	// Reconciler merges gathered license signals into a validated record.
	Reconciler = license.Reconciler

	// Store validates identifiers, matches texts, and renders templates.
	Store = license.Store

	// OverrideTable pins license determinations for known dependencies.
	OverrideTable = license.Table

	// StoreOption configures a Store.
	StoreOption = license.StoreOption

	// ReconcilerOption configures a Reconciler.
	ReconcilerOption = license.ReconcilerOption
)

// Re-export types from client
type (
	// Client is an HTTP client with retry logic for registry APIs.
	Client = client.Client

	// ClientOption configures a Client.
	ClientOption = client.Option
)

// Dependency namespaces.
const (
	NamespacePyPI     = core.NamespacePyPI
	NamespaceNPM      = core.NamespaceNPM
	NamespaceGoVendor = core.NamespaceGoVendor
)

// Methods for locating Go dependencies, for Env.GoScanMethod.
const (
	GoScanVendorDir = resolver.GoScanVendorDir
	GoScanGoList    = resolver.GoScanGoList
	GoScanGoMod     = resolver.GoScanGoMod
)

// License text and identifier provenance values.
const (
	TextSourceInline   = core.TextSourceInline
	TextSourceProject  = core.TextSourceProject
	TextSourceRegistry = core.TextSourceRegistry
	TextSourceTemplate = core.TextSourceTemplate

	IDSourceText     = core.IDSourceText
	IDSourceProject  = core.IDSourceProject
	IDSourceRegistry = core.IDSourceRegistry
	IDSourceGitHub   = core.IDSourceGitHub
)

// Modification statuses.
const (
	ModifiedUnknown = core.ModifiedUnknown
	ModifiedYes     = core.ModifiedYes
	ModifiedNo      = core.ModifiedNo
)

// Discrepancies recorded while gathering metadata.
const (
	DiscrepGitHubUnrecognized    = core.DiscrepGitHubUnrecognized
	DiscrepNoLicenseFile         = core.DiscrepNoLicenseFile
	DiscrepNonstandardLicense    = core.DiscrepNonstandardLicense
	DiscrepNonstandardVariant    = core.DiscrepNonstandardVariant
	DiscrepRegistryInconsistent  = core.DiscrepRegistryInconsistent
	DiscrepTextUnavailable       = core.DiscrepTextUnavailable
	DiscrepRegistryNoRepo        = core.DiscrepRegistryNoRepo
	DiscrepRegistryNoAuthor      = core.DiscrepRegistryNoAuthor
	DiscrepRegistryNoDescription = core.DiscrepRegistryNoDescription
	DiscrepGitHubNoDescription   = core.DiscrepGitHubNoDescription
	DiscrepRegistryNoLicense     = core.DiscrepRegistryNoLicense
	DiscrepRegistryBadURL        = core.DiscrepRegistryBadURL
)

// Re-export errors
var ErrNotFound = client.ErrNotFound

// Error types
type (
	HTTPError      = client.HTTPError
	NotFoundError  = client.NotFoundError
	RateLimitError = client.RateLimitError

	// GitHubError describes an error response from the GitHub REST API.
	GitHubError = github.RESTError

	// UndeterminedError reports that no license could be determined.
	UndeterminedError = license.UndeterminedError

	// MismatchError reports license text that contradicts the declared
	// identifier.
	MismatchError = license.MismatchError

	// InvalidIdentifierError reports an identifier token that is not a
	// known license.
	InvalidIdentifierError = license.InvalidIdentifierError
)

// New creates a resolver for the given namespace.
// If baseURL is empty, the default registry URL is used.
// If env is nil, DefaultEnv() is used.
//
// Supported namespaces: "pypi", "npm", "golang-vendor" (once registered,
// see the all package).
func New(namespace string, baseURL string, env *Env) (Resolver, error) {
	return resolver.New(namespace, baseURL, env)
}

// Supported returns all registered namespaces, sorted.
// Note: resolvers must be imported to be registered.
func Supported() []string {
	return resolver.Supported()
}

// DefaultURL returns the default registry URL for a namespace.
func DefaultURL(namespace string) string {
	return resolver.DefaultURL(namespace)
}

// DefaultEnv returns an Env wired with default collaborators and anonymous
// GitHub access.
func DefaultEnv() *Env {
	return resolver.DefaultEnv()
}

// DefaultClient returns a registry HTTP client with sensible defaults.
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a registry HTTP client with the given options.
func NewClient(opts ...ClientOption) *Client {
	return client.NewClient(opts...)
}

// WithTimeout sets the HTTP client timeout.
var WithTimeout = client.WithTimeout

// WithMaxRetries sets the maximum number of retries.
var WithMaxRetries = client.WithMaxRetries

// WithMaxDepth bounds how deep a scan descends into each project.
var WithMaxDepth = scan.WithMaxDepth

// WithConcurrency bounds how many manifests resolve in parallel.
var WithConcurrency = scan.WithConcurrency

// Scan walks the given project roots with every registered resolver and
// returns the combined, de-duped dependency records.
func Scan(ctx context.Context, env *Env, roots []string, opts ...ScanOption) (*Result, error) {
	s, err := scan.New(env, opts...)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, roots)
}

// NewStore creates a license template store.
var NewStore = license.NewStore

// NewReconciler creates a reconciler backed by a store.
var NewReconciler = license.NewReconciler

// WithOverrides sets the override table a reconciler consults before any
// signal reconciliation.
var WithOverrides = license.WithOverrides

// ParseOverrides reads a YAML override table.
var ParseOverrides = license.ParseOverrides

// BuiltinOverrides returns the override table that ships with the scanner.
var BuiltinOverrides = license.Builtin

// WriteNotice writes the NOTICE document for the given records.
var WriteNotice = report.WriteNotice

// WriteQuality writes a per-field metadata quality report.
var WriteQuality = report.WriteQuality

// WriteDiscrepancies writes the discrepancy report grouped by problem.
var WriteDiscrepancies = report.WriteDiscrepancies

// WriteXLSX writes the dependency workbook.
var WriteXLSX = report.WriteXLSX

// WriteDiscrepancyXLSX writes the discrepancy workbook.
var WriteDiscrepancyXLSX = report.WriteDiscrepancyXLSX

// SplitNotice splits a NOTICE document into per-dependency files.
var SplitNotice = report.SplitNotice

// LicenseURL returns the spdx.org URL (or compound expression) for a
// license identifier.
var LicenseURL = report.LicenseURL
