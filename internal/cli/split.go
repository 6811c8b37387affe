package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/git-pkgs/notices/internal/report"
)

func newSplitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "split <notice-file> [out-dir]",
		Short: "Split a NOTICE document into one file per dependency",
		Long: `Split a NOTICE document into a preamble file and one text file per
dependency, named after the dependency's short name. Pass "-" to read the
document from stdin. Files are written to out-dir, or the current
directory if omitted.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir := "."
			if len(args) == 2 {
				outDir = args[1]
			}

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return report.SplitNotice(in, outDir)
		},
	}
}
