// Package report renders the documents produced from a scan: the NOTICE
// markdown, the XLSX workbooks, the metadata quality report, and the
// discrepancy reports. It also splits existing NOTICE documents back into
// per-dependency files.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/git-pkgs/notices/internal/core"
)

// NoticeOptions control how the NOTICE document is rendered.
type NoticeOptions struct {
	// FullText embeds the complete license text for every dependency
	// instead of linking to the license.
	FullText bool
	// OwnNoticePhrase, when non-empty, drops upstream NOTICE texts that
	// contain it. First-party notices don't belong in the document.
	OwnNoticePhrase string
}

// WriteNotice renders the NOTICE document: one markdown block per
// dependency, separated by horizontal rules.
func WriteNotice(w io.Writer, records []*core.Record, opts NoticeOptions) error {
	blocks := make([]string, 0, len(records))
	for _, rec := range records {
		block := markdownBlock(rec, !opts.FullText)
		if opts.FullText {
			body, err := bodyText(rec)
			if err != nil {
				return err
			}
			block += "\n\n" + body
		}

		if rec.NoticeText != "" &&
			(opts.OwnNoticePhrase == "" || !strings.Contains(rec.NoticeText, opts.OwnNoticePhrase)) {
			block += "\n\n* This package includes the following NOTICE:\n\n"
			block += strings.TrimRight(rec.NoticeText, " \t\r\n")
		}

		blocks = append(blocks, block)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, strings.Join(blocks, "\n\n---\n\n"))
	fmt.Fprint(bw, "\n")
	return bw.Flush()
}

// markdownBlock renders one dependency's entry. The heading carries the
// full name; the sentence uses the short name.
func markdownBlock(rec *core.Record, includeURL bool) string {
	license := " " + rec.LicenseID
	if includeURL {
		license += "\n  * " + LicenseURL(rec.LicenseID)
	}

	modified := ""
	if rec.Modified == core.ModifiedYes {
		modified = " a modified version of"
	}

	return fmt.Sprintf(`## %s

This product contains%s '%s' by %s.

%s

* HOMEPAGE:
  * %s

* LICENSE:%s`,
		rec.Name, modified, rec.ShortName(), rec.Owner, rec.Description, rec.ProjectURL, license)
}

// templateReasons explains, per identifier provenance, how the license type
// was determined when the text had to be synthesized.
var templateReasons = map[core.IDSource]string{
	core.IDSourceProject:  "the official project website",
	core.IDSourceRegistry: "the package registry entry for this project",
	core.IDSourceGitHub:   "the GitHub repository for this project",
}

// bodyText returns the full license text for a record, prefaced with an
// explanation when the text was rendered from an SPDX template.
func bodyText(rec *core.Record) (string, error) {
	if rec.LicenseText == "" {
		return "", fmt.Errorf("no license text available for %s", rec.Key())
	}

	var b strings.Builder
	if rec.LicenseTextSource == core.TextSourceTemplate {
		reason, ok := templateReasons[rec.LicenseIDSource]
		if !ok {
			reason = "the gathered license metadata"
		}
		fmt.Fprintf(&b, "Note: An original license file for this dependency is not available. We determined the type of license based on %s. The following text has been prepared using a template from the SPDX Workgroup (https://spdx.org) for this type of license.\n\n", reason)
	}
	b.WriteString(strings.TrimRight(rec.LicenseText, " \t\r\n"))
	return b.String(), nil
}

// LicenseURL returns the spdx.org page for an identifier. Compound
// identifiers become one URL per token with the operators kept in place.
func LicenseURL(id string) string {
	if !strings.HasPrefix(id, "(") {
		return licenseURLOne(id)
	}

	parts := strings.Split(strings.Trim(id, "()"), " ")
	out := make([]string, len(parts))
	for i, p := range parts {
		if p == "AND" || p == "OR" {
			out[i] = p
		} else {
			out[i] = licenseURLOne(p)
		}
	}
	return strings.Join(out, " ")
}

func licenseURLOne(id string) string {
	return fmt.Sprintf("https://spdx.org/licenses/%s.html", id)
}
