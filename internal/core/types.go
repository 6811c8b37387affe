// Package core defines the dependency record model shared by resolvers,
// the license reconciler, and the report writers.
package core

// Namespaces for the ecosystems the scanner recognizes.
const (
	NamespacePyPI     = "pypi"
	NamespaceNPM      = "npm"
	NamespaceGoVendor = "golang-vendor"
)

// TextSource identifies where a record's license text came from.
type TextSource string

const (
	// TextSourceNone means no license text was found.
	TextSourceNone TextSource = ""
	// TextSourceInline means the text was found inside the dependency's own code.
	TextSourceInline TextSource = "inline"
	// TextSourceProject means the text came from the project's official website.
	TextSourceProject TextSource = "project"
	// TextSourceRegistry means the text came from the package registry entry.
	TextSourceRegistry TextSource = "package-registry"
	// TextSourceTemplate means the text was rendered from an SPDX license template.
	TextSourceTemplate TextSource = "spdx"
)

// IDSource identifies where a record's license identifier came from.
type IDSource string

const (
	// IDSourceNone means no license identifier was found.
	IDSourceNone IDSource = ""
	// IDSourceText means the identifier was inferred by matching the license text.
	IDSourceText IDSource = "inferred-from-license-text"
	// IDSourceProject means the identifier came from the project itself.
	IDSourceProject IDSource = "project"
	// IDSourceRegistry means the identifier came from the package registry entry.
	IDSourceRegistry IDSource = "package-registry"
	// IDSourceGitHub means the identifier came from the GitHub license API.
	IDSourceGitHub IDSource = "github"
)

// ModifiedStatus records whether a dependency appears to diverge from its
// upstream source.
type ModifiedStatus string

const (
	ModifiedUnknown ModifiedStatus = ""
	ModifiedYes     ModifiedStatus = "modified"
	ModifiedNo      ModifiedStatus = "unmodified"
)
