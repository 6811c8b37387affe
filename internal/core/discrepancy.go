package core

// Discrepancy flags a quality problem found in a dependency's upstream
// metadata. Discrepancies never invalidate a record; they feed the QA
// reports so the problems can be chased down with upstream maintainers.
type Discrepancy string

const (
	DiscrepGitHubUnrecognized    Discrepancy = "Code has a valid license, but the GitHub API does not recognize it"
	DiscrepNoLicenseFile         Discrepancy = "Code has a valid license, but it's somewhere other than a LICENSE file"
	DiscrepNonstandardLicense    Discrepancy = "Code has a valid license, but it is not one recognized by SPDX"
	DiscrepNonstandardVariant    Discrepancy = "Code has a valid license, and should be recognized by SPDX, but varies too much"
	DiscrepRegistryInconsistent  Discrepancy = "Code has a valid license, but the package registry lists a different one"
	DiscrepTextUnavailable       Discrepancy = "Code has a valid license, but we don't know where to find the original text"
	DiscrepRegistryNoRepo        Discrepancy = "Package registry entry is missing a link to the repo URL"
	DiscrepRegistryNoAuthor      Discrepancy = "Package registry entry does not list an author"
	DiscrepRegistryNoDescription Discrepancy = "Package registry entry does not list a description"
	DiscrepGitHubNoDescription   Discrepancy = "GitHub repo does not list a description"
	DiscrepRegistryNoLicense     Discrepancy = "Package registry entry does not list a license"
	DiscrepRegistryBadURL        Discrepancy = "Package registry entry has a bad project or repo URL"
)

// BadURLDiscrepancy returns the bad-URL discrepancy with the specific
// problems appended.
func BadURLDiscrepancy(problems string) Discrepancy {
	return DiscrepRegistryBadURL + Discrepancy(": "+problems)
}
