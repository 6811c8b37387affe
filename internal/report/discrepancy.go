package report

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/git-pkgs/notices/internal/core"
)

// reportable filters out the discrepancy tags that aren't worth chasing
// down with upstream maintainers.
func reportable(discreps []core.Discrepancy) []core.Discrepancy {
	var out []core.Discrepancy
	for _, d := range discreps {
		if d == core.DiscrepNonstandardLicense {
			continue
		}
		out = append(out, d)
	}
	return out
}

// WriteDiscrepancies prints the metadata problems noted for these
// dependencies, grouped by discrepancy.
func WriteDiscrepancies(w io.Writer, records []*core.Record) error {
	byType := make(map[core.Discrepancy][]string)
	for _, rec := range records {
		for _, d := range reportable(rec.Discrepancies) {
			byType[d] = append(byType[d], rec.Namespace+"/"+rec.Name)
		}
	}

	bw := bufio.NewWriter(w)
	if len(byType) == 0 {
		fmt.Fprint(bw, "No discrepancies.\n")
		return bw.Flush()
	}

	keys := make([]core.Discrepancy, 0, len(byType))
	for k := range byType {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, k := range keys {
		fmt.Fprintf(bw, "--- %s ---\n", k)
		entries := byType[k]
		sort.Strings(entries)
		fmt.Fprint(bw, strings.Join(entries, "\n"))
		fmt.Fprint(bw, "\n")
	}
	return bw.Flush()
}
