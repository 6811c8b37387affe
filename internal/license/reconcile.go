package license

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/git-pkgs/notices/internal/core"
)

// Reconciler merges the license signals gathered for a dependency into a
// single validated identifier and text pair.
//
// Signals reconcile in a fixed order: a table override wins outright; when
// both an identifier and text are present the text must confirm the
// identifier; a lone identifier gets template-synthesized text; lone text
// gets a matched identifier. Whatever survives is validated token by token
// and the record's URLs are vetted.
type Reconciler struct {
	store     *Store
	overrides *Table
	now       func() time.Time
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithOverrides sets the override table consulted before any signal
// reconciliation.
func WithOverrides(t *Table) ReconcilerOption {
	return func(r *Reconciler) {
		r.overrides = t
	}
}

// WithClock replaces the clock used to date synthesized copyright lines.
func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		r.now = now
	}
}

// NewReconciler creates a reconciler backed by store. Without WithOverrides
// it reconciles from gathered signals alone.
func NewReconciler(store *Store, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile validates a draft and returns the finished record. Any error is
// fatal for the dependency: an undetermined license, a text/identifier
// mismatch, an invalid identifier, or an incompletely expanded template.
func (r *Reconciler) Reconcile(d core.Draft) (*core.Record, error) {
	rec := &core.Record{
		SourceFile:        d.SourceFile,
		Namespace:         d.Namespace,
		Name:              d.Name,
		Version:           d.Version,
		Owner:             d.Owner,
		ProjectURL:        d.ProjectURL,
		RepoURL:           d.RepoURL,
		Description:       d.Description,
		LicenseID:         d.LicenseID,
		LicenseIDSource:   d.LicenseIDSource,
		LicenseText:       d.LicenseText,
		LicenseTextSource: d.LicenseTextSource,
		NoticeText:        d.NoticeText,
		Discrepancies:     append([]core.Discrepancy(nil), d.Discrepancies...),
		Modified:          d.Modified,
	}

	overridden := false
	if r.overrides != nil {
		if entry, ok := r.overrides.Lookup(d.Namespace, d.Name); ok {
			rec.LicenseID = entry.License
			rec.LicenseIDSource = core.IDSourceProject
			rec.Discrepancies = append(rec.Discrepancies, entry.Discrepancies...)
			overridden = true
		}
	}

	// With both signals in hand, the text has to confirm the identifier.
	// A table override is trusted over whatever the signals say.
	if !overridden && rec.LicenseID != "" && rec.LicenseText != "" {
		if err := r.confirm(rec); err != nil {
			return nil, err
		}
	}

	if rec.LicenseID == "" && rec.LicenseText == "" {
		return nil, &UndeterminedError{
			Namespace: rec.Namespace,
			Name:      rec.Name,
			Reason:    "no license text or identifier from any source",
		}
	}

	if rec.LicenseText == "" {
		if err := r.synthesize(rec); err != nil {
			return nil, err
		}
	}

	if rec.LicenseID == "" {
		if err := r.infer(rec); err != nil {
			return nil, err
		}
	}

	for _, tok := range Tokens(rec.LicenseID) {
		if !r.store.IsValid(tok) {
			return nil, &InvalidIdentifierError{Namespace: rec.Namespace, Name: rec.Name, ID: tok}
		}
	}

	if rec.LicenseID == "" || rec.LicenseText == "" {
		return nil, &UndeterminedError{
			Namespace: rec.Namespace,
			Name:      rec.Name,
			Reason:    "reconciliation produced an empty license",
		}
	}

	for _, u := range []string{rec.ProjectURL, rec.RepoURL} {
		if u == "" {
			continue
		}
		if problems := core.VetURL(u); problems != "" {
			rec.Discrepancies = append(rec.Discrepancies, core.BadURLDiscrepancy(problems))
		}
	}

	return rec, nil
}

// confirm checks the license text against the declared identifier. Texts the
// matcher cannot place at all are let through; the declared identifier
// stands.
func (r *Reconciler) confirm(rec *core.Record) error {
	matched, _, ok := r.store.Match(rec.LicenseText)
	if !ok {
		return nil
	}

	switch {
	case matched == rec.LicenseID:
	case IsCompound(rec.LicenseID) && strings.Contains(rec.LicenseID, matched):
	case strings.HasPrefix(matched, "BSD-") && strings.HasPrefix(rec.LicenseID, "BSD-"):
		// Don't quibble between BSD variants.
	default:
		return &MismatchError{
			Namespace: rec.Namespace,
			Name:      rec.Name,
			Declared:  rec.LicenseID,
			Matched:   matched,
		}
	}
	return nil
}

// synthesize renders license text from the SPDX template for the record's
// identifier.
func (r *Reconciler) synthesize(rec *core.Record) error {
	owner := rec.Owner
	if owner == "" {
		owner = rec.Name
	}

	text, err := r.store.Render(rec.LicenseID, owner, r.now().Year())
	if err != nil {
		if errors.Is(err, ErrNoTemplate) {
			return &UndeterminedError{Namespace: rec.Namespace, Name: rec.Name, Reason: err.Error()}
		}
		return fmt.Errorf("synthesizing license text for %s/%s: %w", rec.Namespace, rec.Name, err)
	}

	rec.LicenseText = text
	rec.LicenseTextSource = core.TextSourceTemplate
	if !rec.HasDiscrepancy(core.DiscrepNoLicenseFile) {
		rec.Discrepancies = append(rec.Discrepancies, core.DiscrepTextUnavailable)
	}
	return nil
}

// infer matches unlabeled license text to an identifier.
func (r *Reconciler) infer(rec *core.Record) error {
	matched, _, ok := r.store.Match(rec.LicenseText)
	if !ok {
		return &UndeterminedError{
			Namespace: rec.Namespace,
			Name:      rec.Name,
			Reason:    "license text does not match any known license",
		}
	}
	rec.LicenseID = matched
	rec.LicenseIDSource = core.IDSourceText
	return nil
}
