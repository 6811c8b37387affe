package license

import (
	"strings"

	"github.com/google/licensecheck"
)

// forcedMatches short-circuit the fuzzy matcher for texts it is known to
// misjudge. Each entry maps a phrase that can only appear in one license to
// that license's identifier.
var forcedMatches = []struct {
	phrase string
	id     string
}{
	{`Licensed under the Apache License, Version 2.0 (the "License")`, "Apache-2.0"},
	{"This LICENSE AGREEMENT is between the Python Software Foundation", "Python-2.0"},
}

// Match fuzzy-matches license text to an SPDX identifier. It returns the
// best-matching identifier and the match confidence in percent, or ok=false
// when nothing matched above the store's confidence floor.
func (s *Store) Match(text string) (id string, confidence float64, ok bool) {
	for _, f := range forcedMatches {
		if strings.Contains(text, f.phrase) {
			return f.id, 99.0, true
		}
	}

	if id, confidence, ok = s.scan(text); ok {
		return id, confidence, true
	}

	// Many license files open with a project-specific preamble that drags
	// the match confidence down. Retry without the first block.
	if i := strings.Index(text, "\n\n"); i >= 0 {
		return s.scan(text[i+1:])
	}
	return "", 0, false
}

func (s *Store) scan(text string) (string, float64, bool) {
	cov := licensecheck.Scan([]byte(text))
	if len(cov.Match) == 0 || cov.Percent < s.minConfidence {
		return "", 0, false
	}
	return cov.Match[0].ID, cov.Percent, true
}
