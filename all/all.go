// Package all imports every shipped resolver for its registration side
// effect.
//
//	import (
//		"github.com/git-pkgs/notices"
//		_ "github.com/git-pkgs/notices/all"
//	)
//
//	// Now all resolvers are available
//	namespaces := notices.Supported()
//	// ["golang-vendor", "npm", "pypi"]
package all

import (
	_ "github.com/git-pkgs/notices/internal/resolver/govendor"
	_ "github.com/git-pkgs/notices/internal/resolver/npm"
	_ "github.com/git-pkgs/notices/internal/resolver/pypi"
)
