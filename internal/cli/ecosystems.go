package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/git-pkgs/notices/internal/resolver"
)

func newEcosystemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ecosystems",
		Short: "List the supported dependency ecosystems",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			for _, ns := range resolver.Supported() {
				if url := resolver.DefaultURL(ns); url != "" {
					fmt.Fprintf(w, "%s\t%s\n", ns, url)
				} else {
					fmt.Fprintln(w, ns)
				}
			}
		},
	}
}
