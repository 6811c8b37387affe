package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/git-pkgs/notices/internal/scan"
)

const (
	sheetName  = "Sheet1"
	timeFormat = "2006-01-02T15:04:05"
)

// WriteXLSX writes a workbook listing every dependency of every project,
// one row per use, with a generated-at footer.
func WriteXLSX(path string, result *scan.Result) error {
	rows := [][]any{{
		"Name of Open Source Software",
		"Link to Software License",
		"License Type (SPDX ID)",
		"Where Used",
		"Functionality",
	}}

	for _, project := range result.Projects {
		for _, rec := range result.ByProject[project] {
			rows = append(rows, []any{
				rec.Name,
				LicenseURL(rec.LicenseID),
				rec.LicenseID,
				fmt.Sprintf("%s (%s dependency)", project, rec.Namespace),
				rec.Description,
			})
		}
	}
	rows = append(rows, []any{footer()})

	return saveWorkbook(path, rows)
}

// WriteDiscrepancyXLSX writes a workbook with one row per discrepancy of
// each de-duped dependency, attributed to the project where the dependency
// was first found.
func WriteDiscrepancyXLSX(path string, result *scan.Result) error {
	rows := [][]any{{
		"Source Project",
		"Namespace",
		"Name",
		"Discrepancy",
		"Repo URL",
	}}

	for _, pr := range result.Deduped {
		for _, d := range reportable(pr.Record.Discrepancies) {
			row := []any{pr.Project, pr.Record.Namespace, pr.Record.Name, string(d)}
			if pr.Record.RepoURL != "" {
				row = append(row, pr.Record.RepoURL)
			}
			rows = append(rows, row)
		}
	}
	rows = append(rows, []any{footer()})

	return saveWorkbook(path, rows)
}

func footer() string {
	return fmt.Sprintf("Generated by notices at %s", time.Now().UTC().Format(timeFormat))
}

func saveWorkbook(path string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, cells := range rows {
		for j, v := range cells {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}
