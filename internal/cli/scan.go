package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/git-pkgs/notices/client"
	"github.com/git-pkgs/notices/internal/fetch"
	"github.com/git-pkgs/notices/internal/github"
	"github.com/git-pkgs/notices/internal/license"
	"github.com/git-pkgs/notices/internal/report"
	"github.com/git-pkgs/notices/internal/resolver"
	"github.com/git-pkgs/notices/internal/scan"
)

// scanOpts holds the command-line flags for the scan command.
type scanOpts struct {
	dirs            []string
	qa              bool
	fullText        bool
	xlsxPath        string
	discrepPath     string
	discrepXLSXPath string
	scanMethod      string
	useGopkgToml    bool
	maxDepth        int
	concurrency     int
	overridesPath   string
	ownOrgs         []string
	ownNoticePhrase string
}

func newScanCmd(cfg *Config) *cobra.Command {
	opts := scanOpts{
		scanMethod:  resolver.GoScanVendorDir,
		maxDepth:    cfg.MaxDepth,
		concurrency: cfg.Concurrency,
	}

	cmd := &cobra.Command{
		Use:   "scan --dir <project> [--dir <project> ...]",
		Short: "Scan projects and print the NOTICE document to stdout",
		Long: `Scan one or more project directories for third-party dependencies and
print the combined NOTICE document to stdout. Dependencies found in more
than one project are credited once, under the project where they were
first seen.

Examples:
  # Scan a single project
  notices scan --dir ~/src/server > NOTICE.txt

  # Scan two projects, full license texts, plus an XLSX workbook
  notices scan --dir ~/src/server --dir ~/src/webapp --full-text --xlsx deps.xlsx > NOTICE.txt

  # Report metadata discrepancies on stdout instead of the notice
  notices scan --dir ~/src/server --discrepancies - > /dev/null

  # Resolve Go dependencies with "go list" instead of crawling vendor/
  notices scan --dir ~/src/server --scan-method go-list-vendor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), cfg, &opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&opts.dirs, "dir", nil, "project directory to scan (repeatable)")
	flags.BoolVar(&opts.qa, "qa", false, "print a metadata quality report after the notice")
	flags.BoolVar(&opts.fullText, "full-text", false, "include full license texts in the notice")
	flags.StringVar(&opts.xlsxPath, "xlsx", "", "write the dependency workbook to this file")
	flags.StringVar(&opts.discrepPath, "discrepancies", "", `write the discrepancy report to this file ("-" for stdout)`)
	flags.StringVar(&opts.discrepXLSXPath, "discrepancies-xlsx", "", "write the discrepancy workbook to this file (requires --discrepancies)")
	flags.StringVar(&opts.scanMethod, "scan-method", opts.scanMethod, "how Go dependencies are located: vendor-dir, go-list-vendor, or go-mod")
	flags.BoolVar(&opts.useGopkgToml, "use-gopkg-toml", false, "read Gopkg.toml source constraints to detect modified dependencies")
	flags.IntVar(&opts.maxDepth, "max-depth", opts.maxDepth, "directory depth searched for manifests")
	flags.IntVar(&opts.concurrency, "concurrency", opts.concurrency, "manifests resolved in parallel")
	flags.StringVar(&opts.overridesPath, "overrides", "", "YAML file of license overrides, layered over the built-in table")
	flags.StringArrayVar(&opts.ownOrgs, "own-org", nil, "organization whose Go imports are skipped as first-party code (repeatable)")
	flags.StringVar(&opts.ownNoticePhrase, "own-notice-phrase", "", "NOTICE files containing this phrase are first-party and omitted")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

func runScan(ctx context.Context, cfg *Config, opts *scanOpts, stdout io.Writer) error {
	logger := zerolog.Ctx(ctx)

	switch opts.scanMethod {
	case resolver.GoScanVendorDir, resolver.GoScanGoList, resolver.GoScanGoMod:
	default:
		return fmt.Errorf("unknown scan method %q", opts.scanMethod)
	}

	overrides, err := loadOverrides(opts.overridesPath)
	if err != nil {
		return err
	}

	if cfg.GitHubToken == "" {
		logger.Warn().Msg("Without a github access token, you are very likely to hit rate limits")
	}

	env, fetcher := newScanEnv(cfg, opts, overrides, *logger)

	if rate, err := env.GitHub.RateLimit(ctx); err == nil {
		logger.Debug().Int("remaining", rate.Remaining).Int("limit", rate.Limit).Msg("github rate limit")
	}

	scanner, err := scan.New(env, scan.WithMaxDepth(opts.maxDepth), scan.WithConcurrency(opts.concurrency))
	if err != nil {
		return err
	}
	result, err := scanner.Run(ctx, opts.dirs)
	if err != nil {
		return err
	}

	for host, state := range fetcher.GetBreakerState() {
		if state == "open" {
			logger.Warn().Str("host", host).Msg("circuit breaker still open at end of run")
		}
	}

	return writeReports(result, opts, stdout)
}

// loadOverrides layers a user-supplied override file over the built-in
// table.
func loadOverrides(path string) (*license.Table, error) {
	table := license.Builtin()
	if path == "" {
		return table, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides: %w", err)
	}
	custom, err := license.ParseOverrides(data)
	if err != nil {
		return nil, err
	}
	return table.Merge(custom), nil
}

// newScanEnv wires the collaborators for one scan run. The fetcher is
// returned separately so the run can report on circuit breaker state
// afterwards.
func newScanEnv(cfg *Config, opts *scanOpts, overrides *license.Table, logger zerolog.Logger) (*resolver.Env, *fetch.CircuitBreakerFetcher) {
	var fopts []fetch.Option
	if cfg.GitHubToken != "" {
		token := cfg.GitHubToken
		fopts = append(fopts, fetch.WithAuthFunc(func(url string) (string, string) {
			if strings.HasPrefix(url, github.DefaultRawURL+"/") {
				return "Authorization", "token " + token
			}
			return "", ""
		}))
	}
	fetcher := fetch.NewCircuitBreakerFetcher(fetch.NewFetcher(fopts...))

	env := &resolver.Env{
		Client:       client.DefaultClient(),
		GitHub:       github.New(cfg.GitHubToken, github.WithFetcher(fetcher)),
		Fetcher:      fetcher,
		Reconciler:   license.NewReconciler(license.NewStore(), license.WithOverrides(overrides)),
		GoScanMethod: opts.scanMethod,
		UseGopkgToml: opts.useGopkgToml,
		OwnOrgs:      opts.ownOrgs,
		Logger:       logger,
	}
	return env, fetcher
}

// writeReports emits the requested reports: discrepancies first (with the
// discrepancy workbook riding along), then the notice itself, then the
// dependency workbook and quality report.
func writeReports(result *scan.Result, opts *scanOpts, stdout io.Writer) error {
	records := result.Records()

	if opts.discrepPath != "" {
		w, closeOut, err := openOutput(opts.discrepPath, stdout)
		if err != nil {
			return err
		}
		err = report.WriteDiscrepancies(w, records)
		if cerr := closeOut(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}

		if opts.discrepXLSXPath != "" {
			if err := report.WriteDiscrepancyXLSX(opts.discrepXLSXPath, result); err != nil {
				return err
			}
		}
	}

	noticeOpts := report.NoticeOptions{
		FullText:        opts.fullText,
		OwnNoticePhrase: opts.ownNoticePhrase,
	}
	if err := report.WriteNotice(stdout, records, noticeOpts); err != nil {
		return err
	}

	if opts.xlsxPath != "" {
		if err := report.WriteXLSX(opts.xlsxPath, result); err != nil {
			return err
		}
	}

	if opts.qa {
		if err := report.WriteQuality(stdout, records); err != nil {
			return err
		}
	}
	return nil
}

// openOutput opens path for writing; "-" means stdout.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
