package license

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks. Each fatal reconciliation failure
// unwraps to one of these.
var (
	ErrUndetermined       = errors.New("license undetermined")
	ErrMismatch           = errors.New("license mismatch")
	ErrInvalidIdentifier  = errors.New("invalid license identifier")
	ErrIncompleteTemplate = errors.New("incomplete license template")
	ErrNoTemplate         = errors.New("no license template")
)

// UndeterminedError reports that no usable license signal survived
// reconciliation for a dependency.
type UndeterminedError struct {
	Namespace string
	Name      string
	Reason    string
}

func (e *UndeterminedError) Error() string {
	return fmt.Sprintf("cannot determine license for %s/%s: %s", e.Namespace, e.Name, e.Reason)
}

func (e *UndeterminedError) Unwrap() error {
	return ErrUndetermined
}

// MismatchError reports that a dependency's license text matches a different
// license than the one its metadata declares.
type MismatchError struct {
	Namespace string
	Name      string
	Declared  string
	Matched   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("license mismatch for %s/%s: metadata declares %s but the text matches %s",
		e.Namespace, e.Name, e.Declared, e.Matched)
}

func (e *MismatchError) Unwrap() error {
	return ErrMismatch
}

// InvalidIdentifierError reports a license identifier that is not a
// recognized SPDX identifier.
type InvalidIdentifierError struct {
	Namespace string
	Name      string
	ID        string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid SPDX license identifier %q for %s/%s", e.ID, e.Namespace, e.Name)
}

func (e *InvalidIdentifierError) Unwrap() error {
	return ErrInvalidIdentifier
}

// IncompleteTemplateError reports template markup that survived
// substitution.
type IncompleteTemplateError struct {
	ID       string
	Leftover string
}

func (e *IncompleteTemplateError) Error() string {
	return fmt.Sprintf("template for %s still contains markup after substitution: %q", e.ID, e.Leftover)
}

func (e *IncompleteTemplateError) Unwrap() error {
	return ErrIncompleteTemplate
}
