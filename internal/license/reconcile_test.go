package license

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/git-pkgs/notices/internal/core"
)

func fixedClock() time.Time {
	return time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func testReconciler(t *testing.T, opts ...ReconcilerOption) (*Reconciler, *Store) {
	t.Helper()
	store := NewStore()
	opts = append([]ReconcilerOption{WithClock(fixedClock)}, opts...)
	return NewReconciler(store, opts...), store
}

func renderedText(t *testing.T, s *Store, id string) string {
	t.Helper()
	text, err := s.Render(id, "Test Owner", 2020)
	if err != nil {
		t.Fatalf("Render(%s) failed: %v", id, err)
	}
	return text
}

func TestReconcileAgreement(t *testing.T) {
	r, store := testReconciler(t)

	rec, err := r.Reconcile(core.Draft{
		Namespace:         core.NamespaceNPM,
		Name:              "left-pad",
		LicenseID:         "MIT",
		LicenseIDSource:   core.IDSourceRegistry,
		LicenseText:       renderedText(t, store, "MIT"),
		LicenseTextSource: core.TextSourceInline,
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if rec.LicenseID != "MIT" {
		t.Errorf("expected MIT, got %q", rec.LicenseID)
	}
	if rec.LicenseIDSource != core.IDSourceRegistry {
		t.Errorf("expected the registry source to survive, got %q", rec.LicenseIDSource)
	}
	if len(rec.Discrepancies) != 0 {
		t.Errorf("expected no discrepancies, got %v", rec.Discrepancies)
	}
}

func TestReconcileMismatch(t *testing.T) {
	r, store := testReconciler(t)

	_, err := r.Reconcile(core.Draft{
		Namespace:   core.NamespaceNPM,
		Name:        "mislabeled",
		LicenseID:   "Apache-2.0",
		LicenseText: renderedText(t, store, "MIT"),
	})
	if err == nil {
		t.Fatal("expected a mismatch error")
	}
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}

	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *MismatchError, got %T", err)
	}
	if mismatch.Declared != "Apache-2.0" || mismatch.Matched != "MIT" {
		t.Errorf("unexpected mismatch fields: declared %q, matched %q", mismatch.Declared, mismatch.Matched)
	}
}

func TestReconcileBSDVariantsTolerated(t *testing.T) {
	r, store := testReconciler(t)

	rec, err := r.Reconcile(core.Draft{
		Namespace:   core.NamespacePyPI,
		Name:        "some-lib",
		LicenseID:   "BSD-3-Clause",
		LicenseText: renderedText(t, store, "BSD-2-Clause"),
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	// The declared identifier stands.
	if rec.LicenseID != "BSD-3-Clause" {
		t.Errorf("expected BSD-3-Clause to survive, got %q", rec.LicenseID)
	}
}

func TestReconcileCompoundContainment(t *testing.T) {
	r, store := testReconciler(t)

	rec, err := r.Reconcile(core.Draft{
		Namespace:   core.NamespacePyPI,
		Name:        "dual-licensed",
		LicenseID:   "(MIT OR Apache-2.0)",
		LicenseText: renderedText(t, store, "MIT"),
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if rec.LicenseID != "(MIT OR Apache-2.0)" {
		t.Errorf("expected the compound identifier to survive, got %q", rec.LicenseID)
	}
}

func TestReconcileUnplaceableTextTrustsDeclared(t *testing.T) {
	r, _ := testReconciler(t)

	rec, err := r.Reconcile(core.Draft{
		Namespace:   core.NamespaceNPM,
		Name:        "custom-text",
		LicenseID:   "MIT",
		LicenseText: "Use of this code is governed by the Frobnication Consortium bylaws.",
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if rec.LicenseID != "MIT" {
		t.Errorf("expected the declared identifier to stand, got %q", rec.LicenseID)
	}
}

func TestReconcileSynthesizesText(t *testing.T) {
	r, _ := testReconciler(t)

	rec, err := r.Reconcile(core.Draft{
		Namespace:       core.NamespacePyPI,
		Name:            "textless",
		Owner:           "Acme Corp",
		LicenseID:       "MIT",
		LicenseIDSource: core.IDSourceRegistry,
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if rec.LicenseTextSource != core.TextSourceTemplate {
		t.Errorf("expected template text source, got %q", rec.LicenseTextSource)
	}
	if !strings.Contains(rec.LicenseText, "Copyright (c) 2020 Acme Corp") {
		t.Error("expected the synthesized text to carry the owner and clock year")
	}
	if !rec.HasDiscrepancy(core.DiscrepTextUnavailable) {
		t.Error("expected the text-unavailable discrepancy")
	}
}

func TestReconcileSynthesisSuppressesDuplicateDiscrepancy(t *testing.T) {
	r, _ := testReconciler(t)

	rec, err := r.Reconcile(core.Draft{
		Namespace:     core.NamespaceGoVendor,
		Name:          "example/pkg",
		Owner:         "Example",
		LicenseID:     "MIT",
		Discrepancies: []core.Discrepancy{core.DiscrepNoLicenseFile},
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if rec.HasDiscrepancy(core.DiscrepTextUnavailable) {
		t.Error("expected no text-unavailable discrepancy when no-license-file is already recorded")
	}
}

func TestReconcileSynthesisOwnerFallsBackToName(t *testing.T) {
	r, _ := testReconciler(t)

	rec, err := r.Reconcile(core.Draft{
		Namespace: core.NamespaceNPM,
		Name:      "ownerless",
		LicenseID: "MIT",
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if !strings.Contains(rec.LicenseText, "Copyright (c) 2020 ownerless") {
		t.Error("expected the dependency name to stand in for a missing owner")
	}
}

func TestReconcileInfersFromText(t *testing.T) {
	r, store := testReconciler(t)

	rec, err := r.Reconcile(core.Draft{
		Namespace:         core.NamespaceGoVendor,
		Name:              "example/pkg",
		LicenseText:       renderedText(t, store, "BSD-3-Clause"),
		LicenseTextSource: core.TextSourceInline,
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if rec.LicenseID != "BSD-3-Clause" {
		t.Errorf("expected BSD-3-Clause, got %q", rec.LicenseID)
	}
	if rec.LicenseIDSource != core.IDSourceText {
		t.Errorf("expected inferred-from-license-text source, got %q", rec.LicenseIDSource)
	}
}

func TestReconcileInferenceFailure(t *testing.T) {
	r, _ := testReconciler(t)

	_, err := r.Reconcile(core.Draft{
		Namespace:   core.NamespaceGoVendor,
		Name:        "example/pkg",
		LicenseText: "This code may be used only on alternate Tuesdays.",
	})
	if !errors.Is(err, ErrUndetermined) {
		t.Fatalf("expected ErrUndetermined, got %v", err)
	}
}

func TestReconcileNoSignals(t *testing.T) {
	r, _ := testReconciler(t)

	_, err := r.Reconcile(core.Draft{
		Namespace: core.NamespaceNPM,
		Name:      "mystery",
	})
	if !errors.Is(err, ErrUndetermined) {
		t.Fatalf("expected ErrUndetermined, got %v", err)
	}

	var undetermined *UndeterminedError
	if !errors.As(err, &undetermined) {
		t.Fatalf("expected *UndeterminedError, got %T", err)
	}
	if undetermined.Name != "mystery" {
		t.Errorf("expected the dependency name in the error, got %q", undetermined.Name)
	}
}

func TestReconcileValidatesCompoundTokens(t *testing.T) {
	r, store := testReconciler(t)

	_, err := r.Reconcile(core.Draft{
		Namespace:   core.NamespaceNPM,
		Name:        "bad-compound",
		LicenseID:   "(MIT OR Bogus-1.0)",
		LicenseText: renderedText(t, store, "MIT"),
	})
	if !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}

	var invalid *InvalidIdentifierError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidIdentifierError, got %T", err)
	}
	if invalid.ID != "Bogus-1.0" {
		t.Errorf("expected the offending token, got %q", invalid.ID)
	}
}

func TestReconcileRestrictedValidSet(t *testing.T) {
	store := NewStore(WithAllowedIDs("MIT"))
	r := NewReconciler(store, WithClock(fixedClock))

	text, err := NewStore().Render("MIT", "Test Owner", 2020)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// Both tokens validated individually; Apache-2.0 is outside the set.
	_, err = r.Reconcile(core.Draft{
		Namespace:   core.NamespaceNPM,
		Name:        "dual",
		LicenseID:   "(MIT OR Apache-2.0)",
		LicenseText: text,
	})
	if !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}

func TestReconcileOverrideWins(t *testing.T) {
	r, store := testReconciler(t, WithOverrides(Builtin()))

	// fuse.js has a built-in override to Apache-2.0. Feed it contradicting
	// signals and make sure no mismatch is raised.
	rec, err := r.Reconcile(core.Draft{
		Namespace:       core.NamespaceNPM,
		Name:            "fuse.js",
		LicenseID:       "MIT",
		LicenseIDSource: core.IDSourceRegistry,
		LicenseText:     renderedText(t, store, "MIT"),
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if rec.LicenseID != "Apache-2.0" {
		t.Errorf("expected the override to win, got %q", rec.LicenseID)
	}
	if rec.LicenseIDSource != core.IDSourceProject {
		t.Errorf("expected the project source, got %q", rec.LicenseIDSource)
	}
	if !rec.HasDiscrepancy(core.DiscrepRegistryInconsistent) {
		t.Error("expected the override's discrepancy to be recorded")
	}
}

func TestReconcileOverrideWithSynthesis(t *testing.T) {
	r, _ := testReconciler(t, WithOverrides(Builtin()))

	rec, err := r.Reconcile(core.Draft{
		Namespace: core.NamespaceGoVendor,
		Name:      "certifi/gocertifi",
		Owner:     "Certifi",
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if rec.LicenseID != "MPL-2.0" {
		t.Errorf("expected MPL-2.0 from the override, got %q", rec.LicenseID)
	}
	if rec.LicenseTextSource != core.TextSourceTemplate {
		t.Errorf("expected synthesized text, got source %q", rec.LicenseTextSource)
	}
	// The override already records no-license-file, so the synthesis
	// discrepancy stays out.
	if rec.HasDiscrepancy(core.DiscrepTextUnavailable) {
		t.Error("expected no text-unavailable discrepancy")
	}
}

func TestReconcileVetsURLs(t *testing.T) {
	r, store := testReconciler(t)

	rec, err := r.Reconcile(core.Draft{
		Namespace:   core.NamespacePyPI,
		Name:        "oldschool",
		ProjectURL:  "http://oldschool.example.org/",
		RepoURL:     "https://github.com/example/oldschool?tab=readme",
		LicenseID:   "MIT",
		LicenseText: renderedText(t, store, "MIT"),
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if !rec.HasDiscrepancy(core.BadURLDiscrepancy("Scheme is not https://")) {
		t.Errorf("expected a bad-URL discrepancy for the project URL, got %v", rec.Discrepancies)
	}
	if !rec.HasDiscrepancy(core.BadURLDiscrepancy("URL includes parameters or a query string")) {
		t.Errorf("expected a bad-URL discrepancy for the repo URL, got %v", rec.Discrepancies)
	}
}

func TestReconcileMissingTemplate(t *testing.T) {
	r, _ := testReconciler(t)

	_, err := r.Reconcile(core.Draft{
		Namespace: core.NamespacePyPI,
		Name:      "lgpl-thing",
		LicenseID: "LGPL-2.1",
	})
	if !errors.Is(err, ErrUndetermined) {
		t.Fatalf("expected ErrUndetermined for a missing template, got %v", err)
	}
}

func TestReconcileIncompleteTemplate(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/Odd-1.0.txt": &fstest.MapFile{Data: []byte("<<mystery markup>>")},
	}
	store := NewStore(WithTemplates(fsys), WithAllowedIDs("Odd-1.0"))
	r := NewReconciler(store, WithClock(fixedClock))

	_, err := r.Reconcile(core.Draft{
		Namespace: core.NamespaceNPM,
		Name:      "odd",
		LicenseID: "Odd-1.0",
	})
	if !errors.Is(err, ErrIncompleteTemplate) {
		t.Fatalf("expected ErrIncompleteTemplate, got %v", err)
	}
}
