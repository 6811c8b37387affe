// Package license reconciles the license signals gathered for a dependency
// into a single validated identifier and full-text pair.
//
// The package is organized around three pieces: Store answers identifier
// validity, fuzzy-matches raw text to identifiers, and serves license
// templates; Table holds hand-maintained overrides for dependencies whose
// upstream metadata is wrong; Reconciler runs the reconciliation itself.
package license

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/github/go-spdx/v2/spdxexp"
)

//go:embed templates/*.txt
var builtinTemplates embed.FS

// Store answers license identifier validity, matches license text to
// identifiers, and serves full-text license templates.
type Store struct {
	templates     fs.FS
	allowed       map[string]bool
	minConfidence float64
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithAllowedIDs restricts the identifiers the store treats as valid.
// Without it, any identifier on the SPDX license list is valid.
func WithAllowedIDs(ids ...string) StoreOption {
	return func(s *Store) {
		s.allowed = make(map[string]bool, len(ids))
		for _, id := range ids {
			s.allowed[id] = true
		}
	}
}

// WithMinConfidence sets the minimum match confidence, in percent, below
// which text matches are discarded.
func WithMinConfidence(pct float64) StoreOption {
	return func(s *Store) {
		s.minConfidence = pct
	}
}

// WithTemplates replaces the built-in template corpus. The filesystem must
// hold one <identifier>.txt file per license under templates/.
func WithTemplates(fsys fs.FS) StoreOption {
	return func(s *Store) {
		s.templates = fsys
	}
}

// NewStore creates a store backed by the built-in template corpus and the
// full SPDX license list.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		templates:     builtinTemplates,
		minConfidence: 75,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsValid reports whether id is a recognized atomic SPDX license identifier.
// Compound expressions are not accepted here; validate them per token.
func (s *Store) IsValid(id string) bool {
	if id == "" || strings.ContainsAny(id, "() ") {
		return false
	}
	if s.allowed != nil {
		return s.allowed[id]
	}
	valid, _ := spdxexp.ValidateLicenses([]string{id})
	return valid
}

// Template returns the raw license template for an atomic identifier.
func (s *Store) Template(id string) (string, error) {
	b, err := fs.ReadFile(s.templates, "templates/"+id+".txt")
	if err != nil {
		return "", fmt.Errorf("%w for %s", ErrNoTemplate, id)
	}
	return string(b), nil
}

// TemplateIDs returns the identifiers the store has templates for, sorted.
func (s *Store) TemplateIDs() []string {
	entries, err := fs.ReadDir(s.templates, "templates")
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".txt") {
			ids = append(ids, strings.TrimSuffix(name, ".txt"))
		}
	}
	sort.Strings(ids)
	return ids
}
