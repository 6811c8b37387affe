package core

import (
	"strings"

	packageurl "github.com/package-url/packageurl-go"
)

// purlTypes maps scanner namespaces to package URL types.
var purlTypes = map[string]string{
	NamespacePyPI:     packageurl.TypePyPi,
	NamespaceNPM:      packageurl.TypeNPM,
	NamespaceGoVendor: packageurl.TypeGolang,
}

// MakePURL renders a package URL for a dependency in one of the scanner's
// namespaces. Path-style names keep their leading path as the purl namespace,
// so "uber-go/zap" becomes pkg:golang/uber-go/zap.
func MakePURL(namespace, name, version string) string {
	ptype, ok := purlTypes[namespace]
	if !ok {
		ptype = packageurl.TypeGeneric
	}

	var ns string
	if i := strings.LastIndex(name, "/"); i >= 0 {
		ns, name = name[:i], name[i+1:]
	}
	if ptype == packageurl.TypePyPi {
		name = strings.ToLower(name)
	}

	// Version constraints from a manifest are not a pinned version.
	if strings.ContainsAny(version, "<>=~^*, |") {
		version = ""
	}

	return packageurl.NewPackageURL(ptype, ns, name, version, nil, "").ToString()
}

// PURL returns the package URL form of the dependency.
func (r *Record) PURL() string {
	return MakePURL(r.Namespace, r.Name, r.Version)
}
