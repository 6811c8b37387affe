package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/git-pkgs/notices/internal/core"
)

// WriteQuality prints a report on the quality of the metadata gathered for
// each dependency: a per-field dump followed by a license summary table.
func WriteQuality(w io.Writer, records []*core.Record) error {
	bw := bufio.NewWriter(w)

	fields := []struct {
		name string
		get  func(*core.Record) string
	}{
		{"source_file", func(r *core.Record) string { return r.SourceFile }},
		{"owner", func(r *core.Record) string { return r.Owner }},
		{"project_url", func(r *core.Record) string { return r.ProjectURL }},
		{"repo_url", func(r *core.Record) string { return r.RepoURL }},
		{"description", func(r *core.Record) string { return r.Description }},
	}

	for _, field := range fields {
		fmt.Fprintf(bw, "--- %s ---\n", field.name)
		for _, rec := range records {
			fmt.Fprintf(bw, "%-30s %q\n", rec.Name, field.get(rec))
		}
	}

	fmt.Fprint(bw, "--- license ---\n")
	for _, rec := range records {
		text := "*** MISSING ***"
		if rec.LicenseText != "" {
			runes := []rune(rec.LicenseText)
			if len(runes) > 40 {
				runes = runes[:40]
			}
			text = string(runes) + "..."
		}
		fmt.Fprintf(bw, "%-30s %-26s %-20s %-20s %46q %q\n",
			rec.Name, rec.LicenseIDSource, rec.LicenseID, rec.LicenseTextSource, text, rec.NoticeText)
	}

	return bw.Flush()
}
