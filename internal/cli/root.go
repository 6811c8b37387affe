// Package cli implements the notices command line interface.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/git-pkgs/notices/internal/logging"

	// Register the shipped resolvers.
	_ "github.com/git-pkgs/notices/internal/resolver/govendor"
	_ "github.com/git-pkgs/notices/internal/resolver/npm"
	_ "github.com/git-pkgs/notices/internal/resolver/pypi"
)

// version is injected at build time.
var version = "dev"

// Execute loads the configuration and runs the CLI.
func Execute(ctx context.Context) error {
	return newRootCmd(LoadConfig()).ExecuteContext(ctx)
}

func newRootCmd(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "notices",
		Short: "Collect third-party dependency licenses into a NOTICE document",
		Long: `notices scans projects for third-party dependencies, gathers license and
ownership metadata from package registries and GitHub, and assembles a
NOTICE document crediting every dependency.

Python dependencies are read from requirements.txt, Node dependencies from
package.json, and Go dependencies from the vendor directory (or "go list"
or go.mod, see "notices scan --help").

Set GITHUB_USER_ACCESS_TOKEN to avoid the strict rate limiting on
anonymous GitHub requests. Generate one from
https://github.com/settings/tokens; no write permissions are needed.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogJSON)
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}

	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: trace, debug, info, warn, or error")
	root.PersistentFlags().BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "log JSON even when stderr is a terminal")

	root.AddCommand(newScanCmd(cfg))
	root.AddCommand(newSplitCmd())
	root.AddCommand(newEcosystemsCmd())
	return root
}
