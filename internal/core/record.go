package core

import "strings"

// Draft carries the raw signals a resolver gathered for one dependency,
// before license reconciliation.
type Draft struct {
	SourceFile  string
	Namespace   string
	Name        string
	Version     string
	Owner       string
	ProjectURL  string
	RepoURL     string
	Description string

	LicenseID         string
	LicenseIDSource   IDSource
	LicenseText       string
	LicenseTextSource TextSource
	NoticeText        string

	Discrepancies []Discrepancy
	Modified      ModifiedStatus
}

// Record is a reconciled dependency: exactly one validated license identifier
// and one body of license text, plus the metadata the notice documents need.
type Record struct {
	SourceFile  string
	Namespace   string
	Name        string
	Version     string
	Owner       string
	ProjectURL  string
	RepoURL     string
	Description string

	LicenseID         string
	LicenseIDSource   IDSource
	LicenseText       string
	LicenseTextSource TextSource
	NoticeText        string

	Discrepancies []Discrepancy
	Modified      ModifiedStatus
}

// Key identifies a dependency across projects. Two manifests referring to the
// same namespace and name describe the same dependency.
func (r *Record) Key() string {
	return r.Namespace + "/" + r.Name
}

// ShortName returns the name with its leading path segment dropped, or the
// name itself when it has no path.
func (r *Record) ShortName() string {
	if _, short, ok := strings.Cut(r.Name, "/"); ok {
		return short
	}
	return r.Name
}

// HasDiscrepancy reports whether d was recorded against this dependency.
func (r *Record) HasDiscrepancy(d Discrepancy) bool {
	for _, got := range r.Discrepancies {
		if got == d {
			return true
		}
	}
	return false
}
