package license

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/git-pkgs/notices/internal/core"
)

//go:embed overrides.yaml
var builtinOverrideData []byte

// Override pins the license determination for one dependency. This is the
// wire form of one overrides.yaml entry.
type Override struct {
	Namespace     string   `yaml:"namespace"`
	Name          string   `yaml:"name"`
	License       string   `yaml:"license"`
	Comment       string   `yaml:"comment,omitempty"`
	Discrepancies []string `yaml:"discrepancies,omitempty"`
}

// Entry is a resolved override: the pinned license expression plus the
// discrepancies to record against the dependency.
type Entry struct {
	License       string
	Comment       string
	Discrepancies []core.Discrepancy
}

// Table holds license overrides keyed by namespace and name. An override
// always wins over automatically gathered signals.
type Table struct {
	entries map[string]Entry
}

// discrepancyCodes maps the short codes used in override files to the full
// discrepancy descriptions.
var discrepancyCodes = map[string]core.Discrepancy{
	"github-unrecognized":         core.DiscrepGitHubUnrecognized,
	"no-license-file":             core.DiscrepNoLicenseFile,
	"nonstandard-license":         core.DiscrepNonstandardLicense,
	"nonstandard-license-variant": core.DiscrepNonstandardVariant,
	"registry-inconsistent":       core.DiscrepRegistryInconsistent,
	"text-unavailable":            core.DiscrepTextUnavailable,
	"registry-no-repo":            core.DiscrepRegistryNoRepo,
	"registry-no-author":          core.DiscrepRegistryNoAuthor,
	"registry-no-description":     core.DiscrepRegistryNoDescription,
	"github-no-description":       core.DiscrepGitHubNoDescription,
	"registry-no-license":         core.DiscrepRegistryNoLicense,
	"registry-bad-url":            core.DiscrepRegistryBadURL,
}

// ParseOverrides reads a YAML override table.
func ParseOverrides(data []byte) (*Table, error) {
	var doc struct {
		Overrides []Override `yaml:"overrides"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing overrides: %w", err)
	}

	t := &Table{entries: make(map[string]Entry, len(doc.Overrides))}
	for _, ov := range doc.Overrides {
		if ov.Namespace == "" || ov.Name == "" || ov.License == "" {
			return nil, fmt.Errorf("override for %q/%q is missing a namespace, name, or license", ov.Namespace, ov.Name)
		}
		e := Entry{License: ov.License, Comment: ov.Comment}
		for _, code := range ov.Discrepancies {
			d, ok := discrepancyCodes[code]
			if !ok {
				return nil, fmt.Errorf("override for %s/%s names unknown discrepancy %q", ov.Namespace, ov.Name, code)
			}
			e.Discrepancies = append(e.Discrepancies, d)
		}
		t.entries[overrideKey(ov.Namespace, ov.Name)] = e
	}
	return t, nil
}

// overrideKey normalizes the legacy "golang.vendor" namespace spelling so
// older override files keep working.
func overrideKey(namespace, name string) string {
	if namespace == "golang.vendor" {
		namespace = core.NamespaceGoVendor
	}
	return namespace + "/" + name
}

var (
	builtinOnce  sync.Once
	builtinTable *Table
)

// Builtin returns the override table that ships with the scanner.
func Builtin() *Table {
	builtinOnce.Do(func() {
		t, err := ParseOverrides(builtinOverrideData)
		if err != nil {
			panic("corrupt built-in override table: " + err.Error())
		}
		builtinTable = t
	})
	return builtinTable
}

// Lookup returns the override entry for a dependency, if one exists.
func (t *Table) Lookup(namespace, name string) (Entry, bool) {
	e, ok := t.entries[overrideKey(namespace, name)]
	return e, ok
}

// Merge returns a new table with other's entries layered over t's. Entries
// in other win on conflict.
func (t *Table) Merge(other *Table) *Table {
	merged := &Table{entries: make(map[string]Entry, len(t.entries)+len(other.entries))}
	for k, e := range t.entries {
		merged.entries[k] = e
	}
	for k, e := range other.entries {
		merged.entries[k] = e
	}
	return merged
}

// Len returns the number of overrides in the table.
func (t *Table) Len() int {
	return len(t.entries)
}
