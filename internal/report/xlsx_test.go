package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/git-pkgs/notices/internal/core"
	"github.com/git-pkgs/notices/internal/scan"
)

func cell(t *testing.T, f *excelize.File, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheetName, ref)
	if err != nil {
		t.Fatalf("reading cell %s: %v", ref, err)
	}
	return v
}

func TestWriteXLSX(t *testing.T) {
	result := &scan.Result{
		Projects: []string{"app", "web"},
		ByProject: map[string][]*core.Record{
			"app": {alphaRecord()},
			"web": {betaRecord()},
		},
	}

	path := filepath.Join(t.TempDir(), "deps.xlsx")
	if err := WriteXLSX(path, result); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	if got := cell(t, f, "A1"); got != "Name of Open Source Software" {
		t.Errorf("unexpected header: %q", got)
	}
	if got := cell(t, f, "A2"); got != "acme/alpha" {
		t.Errorf("unexpected first row name: %q", got)
	}
	if got := cell(t, f, "B2"); got != "https://spdx.org/licenses/MIT.html" {
		t.Errorf("unexpected license URL: %q", got)
	}
	if got := cell(t, f, "D2"); got != "app (pypi dependency)" {
		t.Errorf("unexpected where-used: %q", got)
	}

	// Rows continue across projects instead of restarting per project.
	if got := cell(t, f, "A3"); got != "beta" {
		t.Errorf("unexpected second row name: %q", got)
	}
	if got := cell(t, f, "D3"); got != "web (npm dependency)" {
		t.Errorf("unexpected where-used: %q", got)
	}

	if got := cell(t, f, "A4"); !strings.HasPrefix(got, "Generated by notices at ") {
		t.Errorf("unexpected footer: %q", got)
	}
}

func TestWriteDiscrepancyXLSX(t *testing.T) {
	alpha := alphaRecord()
	alpha.Discrepancies = []core.Discrepancy{
		core.DiscrepRegistryNoAuthor,
		core.DiscrepRegistryNoLicense,
		core.DiscrepNonstandardLicense,
	}

	beta := betaRecord()
	beta.RepoURL = ""
	beta.Discrepancies = []core.Discrepancy{core.DiscrepRegistryNoRepo}

	result := &scan.Result{
		Deduped: []scan.ProjectRecord{
			{Project: "app", Record: alpha},
			{Project: "web", Record: beta},
		},
	}

	path := filepath.Join(t.TempDir(), "discrepancies.xlsx")
	if err := WriteDiscrepancyXLSX(path, result); err != nil {
		t.Fatalf("WriteDiscrepancyXLSX failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	if got := cell(t, f, "D1"); got != "Discrepancy" {
		t.Errorf("unexpected header: %q", got)
	}
	if got := cell(t, f, "A2"); got != "app" {
		t.Errorf("unexpected project: %q", got)
	}
	if got := cell(t, f, "D2"); got != string(core.DiscrepRegistryNoAuthor) {
		t.Errorf("unexpected discrepancy: %q", got)
	}
	if got := cell(t, f, "E2"); got != "https://github.com/acme/alpha" {
		t.Errorf("unexpected repo URL: %q", got)
	}
	if got := cell(t, f, "D3"); got != string(core.DiscrepRegistryNoLicense) {
		t.Errorf("unexpected discrepancy: %q", got)
	}

	// The nonstandard-license tag is excluded, so beta's row comes next.
	if got := cell(t, f, "C4"); got != "beta" {
		t.Errorf("unexpected name: %q", got)
	}
	if got := cell(t, f, "E4"); got != "" {
		t.Errorf("expected empty repo URL cell, got %q", got)
	}

	if got := cell(t, f, "A5"); !strings.HasPrefix(got, "Generated by notices at ") {
		t.Errorf("unexpected footer: %q", got)
	}
}
